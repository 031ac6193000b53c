package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"maskctl/internal/editor"
	"maskctl/internal/jmap"
	"maskctl/internal/preflight"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check the editor, git, directories and Fastmail access",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			var session preflight.SessionFetcher
			if strings.TrimSpace(cfg.Fastmail.APIToken) != "" {
				session = jmap.NewFromConfig(cfg)
			}
			results := preflight.RunAll(cmd.Context(), cfg, session)

			if ctx.JSONMode() {
				if err := writeJSON(cmd, results); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				colorize := editor.IsTerminal(out)
				for _, r := range results {
					fmt.Fprintln(out, renderStatusLine(r.Name, resultKind(r), r.Detail, colorize))
				}
			}
			if preflight.Failed(results) {
				return errors.New("one or more required checks failed")
			}
			return nil
		},
	}
}

func resultKind(r preflight.Result) statusKind {
	switch {
	case r.Passed:
		return statusOK
	case r.Optional:
		return statusWarn
	default:
		return statusError
	}
}
