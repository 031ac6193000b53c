package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"maskctl/internal/config"
	"maskctl/internal/deps"
	"maskctl/internal/editor"
	"maskctl/internal/history"
	"maskctl/internal/logging"
	"maskctl/internal/services"
	"maskctl/internal/staging"
	"maskctl/internal/vcs"
	"maskctl/internal/workflow"
)

func newEditCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool
	var assumeYes bool
	var remoteFlag string
	var numbered bool

	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Edit all aliases in your editor and submit the changes",
		Long: `Fetch every masked e-mail alias, open them in your editor as a flat text
file, and submit the fields you changed.

Keep blocks in their original order and leave the "(id: ...)" headers alone.
Blocks you delete are left untouched on the server. When a git remote is
configured the file is committed before and after editing and pushed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger(cmd, cfg)
			if err != nil {
				return err
			}
			store, err := ctx.maskedEmails(cfg)
			if err != nil {
				return err
			}

			remote := strings.TrimSpace(cfg.Staging.Remote)
			if cmd.Flags().Changed("remote") {
				remote = strings.TrimSpace(remoteFlag)
			}
			checkpoints, err := newCheckpointer(cfg, remote, logger)
			if err != nil {
				return err
			}

			argv, err := cfg.EditorArgv()
			if err != nil {
				return err
			}
			ed, err := editor.New(argv)
			if err != nil {
				return err
			}
			// Only a real file is handed to the editor; a pipe would be
			// drained before the confirmation prompt reads it.
			ed.Stdin = nil
			if in, ok := cmd.InOrStdin().(*os.File); ok {
				ed.Stdin = in
			}
			ed.Stdout = cmd.OutOrStdout()
			ed.Stderr = cmd.ErrOrStderr()
			if !editor.IsTerminal(cmd.InOrStdin()) {
				logging.WarnWithContext(logger, "stdin is not a terminal", "editor_not_interactive",
					logging.String("editor", cfg.Editor.Command),
					logging.String(logging.FieldErrorHint, "terminal editors may exit immediately; use a GUI editor with a wait flag"),
				)
			}

			coordinator, err := staging.NewCoordinator(staging.Options{
				BaseDir:      cfg.Staging.Dir,
				FileName:     cfg.Staging.FileName,
				Remote:       remote,
				Numbered:     numbered || cfg.Staging.Numbered,
				CommitBefore: cfg.Staging.CommitBefore,
				CommitAfter:  cfg.Staging.CommitAfter,
			}, checkpoints, ed, logger)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			colorize := editor.IsTerminal(out)
			opts := []workflow.Option{
				workflow.WithRemote(remote),
				workflow.WithRejectDir(cfg.Paths.StateDir),
				workflow.WithConfirmer(promptConfirmer(cmd.InOrStdin(), out, colorize)),
			}
			if cfg.History.Enabled {
				hist, err := history.Open(cfg)
				if err != nil {
					logging.WarnWithContext(logger, "history unavailable", "history_open_failed",
						logging.Error(err),
						logging.String(logging.FieldImpact, "session will not appear in 'maskctl history'"),
					)
				} else {
					defer hist.Close()
					opts = append(opts, workflow.WithHistory(hist))
				}
			}

			runner := workflow.NewRunner(store, coordinator, logger, opts...)
			report, runErr := runner.Edit(cmd.Context(), workflow.Options{DryRun: dryRun, AssumeYes: assumeYes})
			if report != nil && report.RejectedPath != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Your edits were saved to %s\n", report.RejectedPath)
			}
			if runErr != nil {
				return runErr
			}
			if ctx.JSONMode() {
				return writeJSON(cmd, editReportJSON(report))
			}
			printEditReport(out, report, colorize)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Show the changes without submitting them")
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Submit without asking for confirmation")
	cmd.Flags().StringVar(&remoteFlag, "remote", "", "Git remote to clone into the staging directory (overrides staging.remote)")
	cmd.Flags().BoolVar(&numbered, "numbered", false, "Prefix each alias header with its position")
	return cmd
}

// newCheckpointer returns git for checkpoints, or nil when git is missing and
// no remote needs it.
func newCheckpointer(cfg *config.Config, remote string, logger *slog.Logger) (staging.VCS, error) {
	if !deps.Available(cfg.Git.Binary) {
		if remote != "" {
			return nil, services.Wrap(services.ErrConfiguration, "edit", "checkpoints",
				fmt.Sprintf("staging remote %q needs git but %q was not found", remote, cfg.Git.Binary), nil)
		}
		logging.WarnWithContext(logger, "git not found; editing without checkpoints", "git_unavailable",
			logging.String("binary", cfg.Git.Binary),
			logging.String(logging.FieldImpact, "staged file is not committed"),
		)
		return nil, nil
	}
	git, err := vcs.New(cfg.Git.Binary, vcs.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	return git, nil
}

func promptConfirmer(in io.Reader, out io.Writer, colorize bool) workflow.Confirmer {
	reader := bufio.NewReader(in)
	return func(ctx context.Context, preview workflow.Preview) (bool, error) {
		fmt.Fprint(out, renderPreview(preview, colorize))
		fmt.Fprintf(out, "Submit %d field changes to %d aliases? [y/N]: ", len(preview.Changes), preview.Records())
		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return false, err
		}
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true, nil
		default:
			return false, nil
		}
	}
}

func renderPreview(preview workflow.Preview, colorize bool) string {
	rows := make([][]string, 0, len(preview.Changes))
	for _, c := range preview.Changes {
		rows = append(rows, []string{
			c.Email,
			c.Field,
			colorizeValue(displayValue(c.Old), ansiRed, colorize),
			colorizeValue(displayValue(c.New), ansiGreen, colorize),
		})
	}
	return renderTable([]string{"Alias", "Field", "Old", "New"}, rows, nil)
}

func displayValue(v *string) string {
	if v == nil {
		return "(null)"
	}
	if *v == "" {
		return `""`
	}
	return *v
}

func printEditReport(out io.Writer, report *workflow.Report, colorize bool) {
	switch report.Status {
	case history.StatusNoChanges:
		fmt.Fprintln(out, "No changes")
	case history.StatusDryRun:
		fmt.Fprint(out, renderPreview(report.Preview, colorize))
		fmt.Fprintf(out, "Dry run: %d field changes to %d aliases not submitted\n", len(report.Preview.Changes), report.Preview.Records())
	case history.StatusDeclined:
		fmt.Fprintln(out, "Aborted; nothing was submitted")
	case history.StatusSubmitted:
		fmt.Fprintf(out, "Updated %d aliases\n", len(report.Result.Updated))
		ids := make([]string, 0, len(report.Result.NotUpdated))
		for id := range report.Result.NotUpdated {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			setErr := report.Result.NotUpdated[id]
			detail := setErr.Type
			if setErr.Description != "" {
				detail += ": " + setErr.Description
			}
			fmt.Fprintf(out, "  Not updated %s (%s)\n", id, detail)
		}
	}
	if report.Pushed {
		fmt.Fprintln(out, "Staged file pushed to remote")
	}
}

func editReportJSON(report *workflow.Report) map[string]any {
	changes := make([]map[string]any, 0, len(report.Preview.Changes))
	for _, c := range report.Preview.Changes {
		changes = append(changes, map[string]any{
			"id":    c.RecordID,
			"email": c.Email,
			"field": c.Field,
			"old":   c.Old,
			"new":   c.New,
		})
	}
	payload := map[string]any{
		"session_id": report.SessionID,
		"status":     report.Status,
		"records":    report.Records,
		"changes":    changes,
		"pushed":     report.Pushed,
	}
	if report.Result != nil {
		payload["updated"] = report.Result.Updated
		payload["not_updated"] = report.Result.NotUpdated
	}
	return payload
}
