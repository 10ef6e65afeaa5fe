package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dfryer1193/memento/memento/domain"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newGenerateCmd(loadConfig configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Generate and store today's post unless it already exists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.RequireAPIKey(); err != nil {
				return err
			}

			a, err := newApp(cfg)
			if err != nil {
				return err
			}
			defer func() {
				if err := a.close(); err != nil {
					log.Error().Err(err).Msg("Failed to close post store")
				}
			}()

			result, err := a.service.GetOrCreateTodayPost(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if result.Created {
				fmt.Fprintln(out, "Saved post for", result.Post.Date)
			} else {
				fmt.Fprintln(out, "Post already exists for", result.Post.Date)
			}
			return printPost(out, result.Post)
		},
	}
}

func newShowCmd(loadConfig configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "show [date]",
		Short: "Print the stored post for a date (defaults to today)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			a, err := newApp(cfg)
			if err != nil {
				return err
			}
			defer a.close()

			var post *domain.Post
			if len(args) == 1 {
				post, err = a.service.GetPost(cmd.Context(), args[0])
			} else {
				post, err = a.service.GetTodayPost(cmd.Context())
			}
			if err != nil {
				return err
			}
			return printPost(cmd.OutOrStdout(), post)
		},
	}
}

func printPost(w io.Writer, post *domain.Post) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(post)
}
