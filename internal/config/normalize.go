package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeFastmail()
	c.normalizeEditor()
	if err := c.normalizeStaging(); err != nil {
		return err
	}
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.Git.Binary = strings.TrimSpace(c.Git.Binary)
	if c.Git.Binary == "" {
		c.Git.Binary = defaultGitBinary
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeFastmail() {
	c.Fastmail.APIToken = strings.TrimSpace(c.Fastmail.APIToken)
	if c.Fastmail.APIToken == "" {
		if value, ok := os.LookupEnv("FASTMAIL_API_TOKEN"); ok {
			c.Fastmail.APIToken = strings.TrimSpace(value)
		}
	}
	c.Fastmail.SessionURL = strings.TrimSpace(c.Fastmail.SessionURL)
	if c.Fastmail.SessionURL == "" {
		c.Fastmail.SessionURL = defaultSessionURL
	}
	if c.Fastmail.RequestTimeout == 0 {
		c.Fastmail.RequestTimeout = defaultRequestTimeout
	}
	c.Fastmail.Locale = strings.TrimSpace(c.Fastmail.Locale)
	if c.Fastmail.Locale == "" {
		c.Fastmail.Locale = defaultLocale
	}
}

func (c *Config) normalizeEditor() {
	c.Editor.Command = strings.TrimSpace(c.Editor.Command)
	if c.Editor.Command != "" {
		return
	}
	for _, key := range []string{"VISUAL", "EDITOR"} {
		if value := strings.TrimSpace(os.Getenv(key)); value != "" {
			c.Editor.Command = value
			return
		}
	}
	c.Editor.Command = defaultEditorCommand
}

func (c *Config) normalizeStaging() error {
	var err error
	if strings.TrimSpace(c.Staging.Dir) == "" {
		c.Staging.Dir = filepath.Join(os.TempDir(), "maskctl")
	}
	if c.Staging.Dir, err = expandPath(c.Staging.Dir); err != nil {
		return fmt.Errorf("staging.dir: %w", err)
	}
	c.Staging.FileName = strings.TrimSpace(c.Staging.FileName)
	if c.Staging.FileName == "" {
		c.Staging.FileName = defaultStagingFileName
	}
	c.Staging.Remote = strings.TrimSpace(c.Staging.Remote)
	if c.Staging.Remote == "" {
		if value, ok := os.LookupEnv("MASKCTL_GIT_REMOTE"); ok {
			c.Staging.Remote = strings.TrimSpace(value)
		}
	}
	if strings.TrimSpace(c.Staging.CommitBefore) == "" {
		c.Staging.CommitBefore = defaultCommitMessageBefore
	}
	if strings.TrimSpace(c.Staging.CommitAfter) == "" {
		c.Staging.CommitAfter = defaultCommitMessageAfter
	}
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
