package config

import "time"

// Default values shared by Load and Init.
const (
	DefaultCommitMessage = "Import Trac wiki"
	DefaultAuthorName    = "trac2md"
	DefaultAuthorEmail   = "trac2md@localhost"
	DefaultNATSSubject   = "trac2md.pages"
	DefaultSyncInterval  = time.Hour
	DefaultStateFile     = ".trac2md-state.yaml"
)

// DefaultStripMacros lists the macros removed when preprocess.strip_macros is not set.
var DefaultStripMacros = []string{"PageOutline", "TOC", "Emails", "TicketQuery"}

// Default returns a configuration populated with defaults only.
func Default() *Config {
	return &Config{
		Links: LinksConfig{CamelCase: CamelCaseKnown},
		Output: OutputConfig{
			Git: GitConfig{
				Message:     DefaultCommitMessage,
				AuthorName:  DefaultAuthorName,
				AuthorEmail: DefaultAuthorEmail,
			},
		},
		Preprocess:  PreprocessConfig{StripMacros: append([]string(nil), DefaultStripMacros...)},
		Code:        CodeConfig{HTML: HTMLFence},
		Attachments: AttachmentsConfig{CopyUnreferenced: true},
		Logging:     LoggingConfig{Level: LogLevelInfo, Format: LogFormatText},
		Notify:      NotifyConfig{Subject: DefaultNATSSubject},
		Sync:        SyncConfig{Interval: DefaultSyncInterval, StateFile: DefaultStateFile},
	}
}

// applyDefaults fills values a config file explicitly blanked.
func applyDefaults(cfg *Config) {
	if cfg.Output.Git.Message == "" {
		cfg.Output.Git.Message = DefaultCommitMessage
	}
	if cfg.Output.Git.AuthorName == "" {
		cfg.Output.Git.AuthorName = DefaultAuthorName
	}
	if cfg.Output.Git.AuthorEmail == "" {
		cfg.Output.Git.AuthorEmail = DefaultAuthorEmail
	}
	if cfg.Notify.Subject == "" {
		cfg.Notify.Subject = DefaultNATSSubject
	}
	if cfg.Sync.Interval <= 0 {
		cfg.Sync.Interval = DefaultSyncInterval
	}
	if cfg.Sync.StateFile == "" {
		cfg.Sync.StateFile = DefaultStateFile
	}
	if cfg.Links.CamelCase == "" {
		cfg.Links.CamelCase = CamelCaseKnown
	}
	if cfg.Code.HTML == "" {
		cfg.Code.HTML = HTMLFence
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = LogLevelInfo
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = LogFormatText
	}
}
