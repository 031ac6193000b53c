package config

const (
	defaultSessionURL          = "https://api.fastmail.com/jmap/session"
	defaultRequestTimeout      = 30
	defaultLocale              = "en"
	defaultEditorCommand       = "vim"
	defaultStagingFileName     = "masked-emails.txt"
	defaultStagingStaleHours   = 24
	defaultGitBinary           = "git"
	defaultStateDir            = "~/.local/share/maskctl"
	defaultLogDir              = "~/.local/share/maskctl/logs"
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
	defaultHistoryEnabled      = true
	defaultCommitMessageBefore = "maskctl: snapshot before edit"
	defaultCommitMessageAfter  = "maskctl: edit masked emails"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Fastmail: Fastmail{
			SessionURL:     defaultSessionURL,
			RequestTimeout: defaultRequestTimeout,
			Locale:         defaultLocale,
		},
		Staging: Staging{
			FileName:        defaultStagingFileName,
			StaleAfterHours: defaultStagingStaleHours,
			CommitBefore:    defaultCommitMessageBefore,
			CommitAfter:     defaultCommitMessageAfter,
		},
		Git: Git{
			Binary: defaultGitBinary,
		},
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		History: History{
			Enabled: defaultHistoryEnabled,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
