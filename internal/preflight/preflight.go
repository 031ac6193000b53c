package preflight

import (
	"context"
	"strings"

	"maskctl/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name     string `json:"name"`
	Passed   bool   `json:"passed"`
	Optional bool   `json:"optional,omitempty"`
	Detail   string `json:"detail"`
}

// RunAll executes all applicable preflight checks for the given config.
// The Fastmail check only runs when a token is configured.
func RunAll(ctx context.Context, cfg *config.Config, session SessionFetcher) []Result {
	if cfg == nil {
		return nil
	}

	results := CheckBinaries(cfg)
	results = append(results,
		CheckDirectoryAccess("Staging directory", cfg.Staging.Dir),
		CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
	)

	if strings.TrimSpace(cfg.Fastmail.APIToken) == "" {
		results = append(results, Result{Name: fastmailCheckName, Detail: "API token missing (set FASTMAIL_API_TOKEN)"})
		return results
	}
	results = append(results, CheckFastmail(ctx, session))
	return results
}

// Failed reports whether any required check did not pass.
func Failed(results []Result) bool {
	for _, r := range results {
		if !r.Passed && !r.Optional {
			return true
		}
	}
	return false
}
