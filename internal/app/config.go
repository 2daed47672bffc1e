package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	DocPath string // .lg.hcl files

	Backend            string // "mem" or "remote"
	RemoteURL          string
	RemoteNamespace    string
	InsecureSkipVerify bool

	LogFormat string
	LogLevel  string
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.DocPath == "" {
		return nil, errors.New("DocPath is a required configuration field and cannot be empty")
	}
	if cfg.Backend == "remote" && cfg.RemoteURL == "" {
		return nil, errors.New("remote backend requires RemoteURL")
	}
	return &cfg, nil
}
