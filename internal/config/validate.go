package config

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateFastmail(); err != nil {
		return err
	}
	if err := c.validateStaging(); err != nil {
		return err
	}
	argv, err := c.EditorArgv()
	if err != nil {
		return err
	}
	if len(argv) == 0 {
		return errors.New("editor.command must be set (or export VISUAL/EDITOR)")
	}
	return nil
}

// RequireAPIToken reports an actionable error when no Fastmail API token is
// configured. Commands that talk to Fastmail call it; local-only commands
// such as history and staging cleanup do not.
func (c *Config) RequireAPIToken() error {
	if strings.TrimSpace(c.Fastmail.APIToken) != "" {
		return nil
	}
	defaultPath, err := DefaultConfigPath()
	if err != nil {
		defaultPath = "~/.config/maskctl/config.toml"
	}
	return fmt.Errorf("fastmail.api_token is required. Set FASTMAIL_API_TOKEN (environment or .env) or edit %s (create with 'maskctl config init')", defaultPath)
}

func (c *Config) validateFastmail() error {
	parsed, err := url.Parse(c.Fastmail.SessionURL)
	if err != nil {
		return fmt.Errorf("fastmail.session_url: %w", err)
	}
	if parsed.Scheme != "https" && parsed.Scheme != "http" {
		return fmt.Errorf("fastmail.session_url must be an http(s) URL, got %q", c.Fastmail.SessionURL)
	}
	if c.Fastmail.RequestTimeout <= 0 {
		return errors.New("fastmail.request_timeout must be positive (seconds)")
	}
	return nil
}

func (c *Config) validateStaging() error {
	name := c.Staging.FileName
	if name == "" {
		return errors.New("staging.file_name must be set")
	}
	if filepath.Base(name) != name || name == "." || name == ".." {
		return fmt.Errorf("staging.file_name must be a plain file name, got %q", name)
	}
	if c.Staging.StaleAfterHours < 0 {
		return errors.New("staging.stale_after_hours must be >= 0")
	}
	return nil
}
