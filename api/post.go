package api

import "github.com/dfryer1193/memento/memento/domain"

// Post is the wire form of a daily post
type Post struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Body     string `json:"body"`
	Takeaway string `json:"takeaway"`
	Date     string `json:"date"`
}

// GenerateResponse is returned by the generate-or-fetch endpoint
type GenerateResponse struct {
	OK   bool `json:"ok"`
	Post Post `json:"post"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func FromDomain(p *domain.Post) Post {
	return Post{
		Type:     p.Type,
		Title:    p.Title,
		Body:     p.Body,
		Takeaway: p.Takeaway,
		Date:     p.Date,
	}
}

func FromDomainList(posts []*domain.Post) []Post {
	out := make([]Post, 0, len(posts))
	for _, p := range posts {
		out = append(out, FromDomain(p))
	}
	return out
}
