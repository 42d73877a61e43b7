package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/KeyIP-Chat/internal/app"
	"github.com/turtacn/KeyIP-Chat/pkg/errors"
)

func newAskCommand(opts *rootOptions) *cobra.Command {
	var sessionID string

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask one question against the ingested corpus",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			query := strings.TrimSpace(strings.Join(args, " "))
			if query == "" {
				return errors.New(errors.ErrCodeBadRequest, "question must not be blank")
			}

			ctx := cmd.Context()
			application, err := app.New(ctx, cfg)
			if err != nil {
				return err
			}
			defer application.Close()

			res, err := application.Engine.Ask(ctx, query, sessionID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, res.Answer)
			if len(res.Sources) > 0 {
				fmt.Fprintln(out)
				fmt.Fprintln(out, "출처:")
				for _, s := range res.Sources {
					fmt.Fprintf(out, "  - %s / %s / %s\n", s.PatentNo, s.ApplicationNo, s.Title)
				}
			}
			fmt.Fprintf(out, "\nsession: %s\n", res.SessionID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&sessionID, "session", "s", "", "continue an existing chat session")
	return cmd
}
