package config

import (
	"fmt"
	"strconv"
)

// Config represents the persistent cosmo configuration stored as config.toml
// in the .cosmo/ directory. The TOML layout uses sections for logical grouping.
type Config struct {
	Version int          `toml:"version"`
	Client  ClientConfig `toml:"client"`
	Chat    ChatConfig   `toml:"chat"`
	Quiz    QuizConfig   `toml:"quiz"`
	Stub    StubConfig   `toml:"stub"`
	Upload  UploadConfig `toml:"upload"`
}

// ClientConfig holds settings for CLI commands that connect to the running
// cosmo server (e.g. cosmo ask, cosmo chat, cosmo quiz).
// Target is a full URL (scheme + host + port).
type ClientConfig struct {
	Target string `toml:"target,omitempty"`
}

// ChatConfig holds defaults for the ask and chat commands.
type ChatConfig struct {
	Mode     string `toml:"mode,omitempty"`
	NResults int    `toml:"n_results,omitempty"`
}

// QuizConfig holds quiz-taking settings.
type QuizConfig struct {
	// ResultsPath is the SQLite database file for recorded attempts.
	// Empty means <dotdir>/results.db.
	ResultsPath string `toml:"results_path,omitempty"`
}

// StubConfig holds settings for the local stub server.
type StubConfig struct {
	Listen string `toml:"listen,omitempty"`
}

// UploadConfig holds document ingestion settings.
type UploadConfig struct {
	Workers uint `toml:"workers,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"client.target": {
		get: func(c *Config) string { return c.Client.Target },
		set: func(c *Config, v string) error { c.Client.Target = v; return nil },
	},
	"chat.mode": {
		get: func(c *Config) string { return c.Chat.Mode },
		set: func(c *Config, v string) error { c.Chat.Mode = v; return nil },
	},
	"chat.n_results": {
		get: func(c *Config) string {
			if c.Chat.NResults == 0 {
				return ""
			}
			return strconv.Itoa(c.Chat.NResults)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid value for chat.n_results: %w", err)
			}
			if n < 1 {
				return fmt.Errorf("chat.n_results must be at least 1, got %d", n)
			}
			c.Chat.NResults = n
			return nil
		},
	},
	"quiz.results_path": {
		get: func(c *Config) string { return c.Quiz.ResultsPath },
		set: func(c *Config, v string) error { c.Quiz.ResultsPath = v; return nil },
	},
	"stub.listen": {
		get: func(c *Config) string { return c.Stub.Listen },
		set: func(c *Config, v string) error { c.Stub.Listen = v; return nil },
	},
	"upload.workers": {
		get: func(c *Config) string {
			if c.Upload.Workers == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(c.Upload.Workers), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for upload.workers: %w", err)
			}
			c.Upload.Workers = uint(n)
			return nil
		},
	},
}
