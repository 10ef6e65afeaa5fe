package db

import (
	"database/sql"
)

// Database is a file-backed SQL store that post repositories are built on.
// Connect must run schema migrations before DB is handed out.
type Database interface {
	Connect() error
	Close() error
	DB() *sql.DB
	Path() string
}
