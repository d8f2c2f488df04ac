// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ConversionStatus indicates how a conversion run ended.
type ConversionStatus string

const (
	ConversionDone   ConversionStatus = "converted"
	ConversionFailed ConversionStatus = "failed"
)

// ConversionRun is one entry in the run history.
type ConversionRun struct {
	// ID is assigned by the history store.
	ID int64 `json:"id" yaml:"id"`

	// Input is the YAML location as given on the command line or in config.
	Input string `json:"input" yaml:"input"`

	// Output is the JSON destination.
	Output string `json:"output" yaml:"output"`

	Status ConversionStatus `json:"status" yaml:"status"`

	// ErrorKind is "read", "parse", or "write" for classified failures, empty otherwise.
	ErrorKind string `json:"error_kind,omitempty" yaml:"error_kind,omitempty"`

	// Error is the failure message, empty on success.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`

	// Bytes is the size of the JSON written.
	Bytes int `json:"bytes" yaml:"bytes"`

	// SHA256 is the hex digest of the JSON written.
	SHA256 string `json:"sha256,omitempty" yaml:"sha256,omitempty"`

	StartedAt time.Time     `json:"started_at" yaml:"started_at"`
	Duration  time.Duration `json:"duration" yaml:"duration"`
}
