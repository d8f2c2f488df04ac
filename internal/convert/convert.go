// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert turns a YAML document into JSON.
//
// A conversion is read → parse → serialise → write, run once and never
// retried. Failures come back as *Error tagged with the step that failed,
// so callers can tell a missing input from malformed YAML from an
// unwritable output without looking at message text.
package convert

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"
)

// Stdio is the location that selects standard input or standard output.
const Stdio = "-"

const (
	outputPerm     = 0o644
	defaultTimeout = 30 * time.Second
)

// Result describes a completed conversion.
type Result struct {
	InputPath  string
	OutputPath string
	// Bytes is the length of the JSON written.
	Bytes int
	// SHA256 is the hex digest of the JSON written.
	SHA256 string
}

// Option configures a Converter.
type Option func(*Converter)

// WithIndent pretty-prints output with n spaces per level. Zero keeps
// the output compact.
func WithIndent(n int) Option {
	return func(c *Converter) {
		if n > 0 {
			c.indent = n
		}
	}
}

// WithHTTPClient sets the client used to fetch http(s) inputs.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Converter) { c.client = client }
}

// WithBearerToken sends token as a bearer Authorization header when
// fetching http(s) inputs. An empty token sends no header.
func WithBearerToken(token string) Option {
	return func(c *Converter) { c.token = token }
}

// WithStdio sets the streams used when a location is "-".
func WithStdio(in io.Reader, out io.Writer) Option {
	return func(c *Converter) {
		c.stdin = in
		c.stdout = out
	}
}

// Converter converts YAML inputs to JSON outputs. The zero value is not
// usable; build one with New.
type Converter struct {
	indent int
	client *http.Client
	token  string
	stdin  io.Reader
	stdout io.Writer
}

// New returns a Converter with compact output, a 30 s HTTP client, and
// the process's standard streams.
func New(opts ...Option) *Converter {
	c := &Converter{
		client: &http.Client{Timeout: defaultTimeout},
		stdin:  os.Stdin,
		stdout: os.Stdout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Convert is shorthand for New(opts...).Convert.
func Convert(ctx context.Context, inputPath, outputPath string, opts ...Option) (Result, error) {
	return New(opts...).Convert(ctx, inputPath, outputPath)
}

// Marshal is shorthand for New(opts...).Marshal.
func Marshal(src []byte, opts ...Option) ([]byte, error) {
	return New(opts...).Marshal(src)
}

// Convert reads the YAML at inputPath and writes its JSON form to
// outputPath, replacing any existing file. The output is only touched
// once parsing has succeeded, and file outputs are replaced atomically.
func (c *Converter) Convert(ctx context.Context, inputPath, outputPath string) (Result, error) {
	log := zap.L().With(zap.String("input", inputPath), zap.String("output", outputPath))

	src, err := c.read(ctx, inputPath)
	if err != nil {
		return Result{}, &Error{Op: "convert", Kind: KindRead, Path: inputPath, Err: err}
	}
	log.Debug("read input", zap.Int("bytes", len(src)))

	out, err := c.marshal(src)
	if err != nil {
		return Result{}, &Error{Op: "convert", Kind: KindParse, Path: inputPath, Err: err}
	}

	if err := c.write(outputPath, out); err != nil {
		return Result{}, &Error{Op: "convert", Kind: KindWrite, Path: outputPath, Err: err}
	}

	sum := sha256.Sum256(out)
	res := Result{
		InputPath:  inputPath,
		OutputPath: outputPath,
		Bytes:      len(out),
		SHA256:     hex.EncodeToString(sum[:]),
	}
	log.Debug("wrote output", zap.Int("bytes", res.Bytes), zap.String("sha256", res.SHA256))
	return res, nil
}

// Marshal parses src as a single YAML document and returns its JSON
// encoding. The only error kind it returns is KindParse.
func (c *Converter) Marshal(src []byte) ([]byte, error) {
	out, err := c.marshal(src)
	if err != nil {
		return nil, &Error{Op: "marshal", Kind: KindParse, Err: err}
	}
	return out, nil
}

func (c *Converter) marshal(src []byte) ([]byte, error) {
	doc, err := parseDocument(src)
	if err != nil {
		return nil, err
	}
	return encodeDocument(doc, c.indent)
}
