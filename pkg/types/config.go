// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ConversionConfig holds settings for the YAML-to-JSON conversion.
type ConversionConfig struct {
	// Input is the YAML source: a file path, "-" for stdin, or an http(s) URL.
	Input string `json:"input" yaml:"input" mapstructure:"input"`

	// Output is the JSON destination: a file path or "-" for stdout.
	Output string `json:"output" yaml:"output" mapstructure:"output"`

	// Indent is the number of spaces per nesting level. Zero means compact output.
	Indent int `json:"indent" yaml:"indent" mapstructure:"indent"`

	// SecretsDir holds credential files for URL inputs (default ".secrets").
	SecretsDir string `json:"secrets_dir" yaml:"secrets_dir" mapstructure:"secrets_dir"`
}

// HistoryConfig holds settings for the conversion run ledger.
type HistoryConfig struct {
	// Enabled controls whether convert records each run.
	Enabled bool `json:"enabled" yaml:"enabled" mapstructure:"enabled"`

	// DBPath is the SQLite database file (default ".parseyaml/history.db").
	DBPath string `json:"db_path" yaml:"db_path" mapstructure:"db_path"`

	// MaxResults is the default number of runs listed (default 20).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`
}

// LogFormat selects the zap encoder.
type LogFormat string

const (
	LogJSON    LogFormat = "json"
	LogConsole LogFormat = "console"
)

// LogConfig holds logger settings.
type LogConfig struct {
	// Level is a zap level name: debug, info, warn, error.
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format selects json or console encoding.
	Format LogFormat `json:"format" yaml:"format" mapstructure:"format"`
}

// Config groups all settings read from parseyaml.yaml.
type Config struct {
	Conversion ConversionConfig `json:"conversion" yaml:"conversion" mapstructure:"conversion"`
	History    HistoryConfig    `json:"history" yaml:"history" mapstructure:"history"`
	Log        LogConfig        `json:"log" yaml:"log" mapstructure:"log"`
}
