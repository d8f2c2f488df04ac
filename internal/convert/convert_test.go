// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ghodss/yaml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshal(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "mapping with sequence", in: "a: 1\nb:\n  - x\n  - y\n", want: `{"a":1,"b":["x","y"]}`},
		{name: "bool and null", in: "flag: true\nval: null\n", want: `{"flag":true,"val":null}`},
		{name: "keeps key order", in: "z: 1\na: 2\nm: 3\n", want: `{"z":1,"a":2,"m":3}`},
		{name: "nested flow mapping", in: "outer:\n  inner: {k: v}\n", want: `{"outer":{"inner":{"k":"v"}}}`},
		{name: "on stays a string key", in: "on:\n  push:\n    branches: [main]\n", want: `{"on":{"push":{"branches":["main"]}}}`},
		{name: "yes stays a string", in: "a: yes\nb: off\n", want: `{"a":"yes","b":"off"}`},
		{name: "capitalised bool", in: "a: True\nb: FALSE\n", want: `{"a":true,"b":false}`},
		{name: "null forms", in: "a: ~\nb:\nc: Null\n", want: `{"a":null,"b":null,"c":null}`},
		{name: "quoted number stays string", in: "a: \"1\"\nb: '2'\n", want: `{"a":"1","b":"2"}`},
		{name: "hex and octal ints", in: "a: 0x1F\nb: 0o17\n", want: `{"a":31,"b":15}`},
		{name: "negative int", in: "a: -42\n", want: `{"a":-42}`},
		{name: "int beyond int64", in: "n: 12345678901234567890\n", want: `{"n":12345678901234567890}`},
		{name: "negative int beyond int64", in: "n: -12345678901234567890\n", want: `{"n":-12345678901234567890}`},
		{name: "leading zero is decimal", in: "mode: 0755\nn: 017\n", want: `{"mode":755,"n":17}`},
		{name: "signed decimal", in: "a: +12\nb: -0\n", want: `{"a":12,"b":0}`},
		{name: "binary form stays string", in: "n: 0b101\n", want: `{"n":"0b101"}`},
		{name: "underscore digits stay string", in: "n: 1_000\nf: 1_000.5\n", want: `{"n":"1_000","f":"1_000.5"}`},
		{name: "signed hex stays string", in: "n: -0x10\n", want: `{"n":"-0x10"}`},
		{name: "exponent without fraction", in: "a: 1e3\nb: .5\n", want: `{"a":1000,"b":0.5}`},
		{name: "float", in: "a: 1.5\n", want: `{"a":1.5}`},
		{name: "integral float", in: "a: 2.0\n", want: `{"a":2}`},
		{name: "small float uses exponent", in: "a: 1.5e-7\n", want: `{"a":1.5e-7}`},
		{name: "negative zero", in: "a: -0.0\n", want: `{"a":0}`},
		{name: "infinities and nan become null", in: "a: .inf\nb: -.Inf\nc: .nan\n", want: `{"a":null,"b":null,"c":null}`},
		{name: "timestamp stays string", in: "d: 2001-12-14\n", want: `{"d":"2001-12-14"}`},
		{name: "custom tag keeps scalar text", in: "ref: !Ref Bucket\n", want: `{"ref":"Bucket"}`},
		{name: "explicit str tag", in: "a: !!str 123\n", want: `{"a":"123"}`},
		{name: "explicit int tag", in: "a: !!int 7\n", want: `{"a":7}`},
		{name: "scalar keys use literal text", in: "1: a\ntrue: b\n", want: `{"1":"a","true":"b"}`},
		{name: "empty collections", in: "a: {}\nb: []\n", want: `{"a":{},"b":[]}`},
		{name: "escapes", in: "s: \"line\\nbreak \\\"q\\\"\"\n", want: `{"s":"line\nbreak \"q\""}`},
		{name: "unicode", in: "s: héllo ✓\n", want: `{"s":"héllo ✓"}`},
		{name: "literal block", in: "run: |\n  a\n  b\n", want: `{"run":"a\nb\n"}`},
		{name: "top-level sequence", in: "- 1\n- two\n", want: `[1,"two"]`},
		{name: "top-level scalar", in: "hello\n", want: `"hello"`},
		{name: "empty input", in: "", want: `null`},
		{name: "explicit empty document", in: "---\n", want: `null`},
		{name: "alias", in: "base: &b {x: 1}\ncopy: *b\n", want: `{"base":{"x":1},"copy":{"x":1}}`},
		{name: "alias as key", in: "k: &k name\n*k : v\n", want: `{"k":"name","name":"v"}`},
		{
			name: "merge key with override",
			in:   "base: &b\n  x: 1\n  y: 2\nderived:\n  <<: *b\n  y: 3\n",
			want: `{"base":{"x":1,"y":2},"derived":{"x":1,"y":3}}`,
		},
		{
			name: "merge sequence earlier wins",
			in:   "a: &a {k: 1, p: a}\nb: &b {k: 2, q: b}\nc:\n  <<: [*a, *b]\n",
			want: `{"a":{"k":1,"p":"a"},"b":{"k":2,"q":"b"},"c":{"k":1,"p":"a","q":"b"}}`,
		},
		{
			name: "merged keys sit where the merge key is",
			in:   "a: &a {m: 1}\nc:\n  first: 0\n  <<: *a\n  last: 2\n",
			want: `{"a":{"m":1},"c":{"first":0,"m":1,"last":2}}`,
		},
		{name: "quoted merge key is a plain key", in: "\"<<\": 1\n", want: `{"<<":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Marshal([]byte(tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestMarshal_ParseErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{name: "unterminated flow sequence", in: "key: [unterminated"},
		{name: "bad indentation", in: "a:\n  b: 1\n c: 2\n"},
		{name: "duplicate key", in: "a: 1\na: 2\n"},
		{name: "keys with the same text", in: "1: a\n\"1\": b\n"},
		{name: "multiple documents", in: "a: 1\n---\nb: 2\n"},
		{name: "sequence as key", in: "? [a, b]\n: c\n"},
		{name: "mapping as key", in: "? {a: 1}\n: c\n"},
		{name: "unknown anchor", in: "a: *missing\n"},
		{name: "merge of a scalar", in: "a:\n  <<: 1\n"},
		{name: "merge alias to sequence", in: "s: &s [1]\nm:\n  <<: *s\n"},
		{name: "self-referencing alias", in: "a: &x [*x]\n"},
		{name: "invalid utf-8", in: "a: \xff\xfe\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Marshal([]byte(tt.in))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrParse)
			assert.True(t, IsKind(err, KindParse))
		})
	}
}

func TestMarshal_Indent(t *testing.T) {
	in := []byte("a: 1\nb:\n  - x\n  - y\n")

	compact, err := Marshal(in)
	require.NoError(t, err)
	pretty, err := Marshal(in, WithIndent(2))
	require.NoError(t, err)

	assert.Contains(t, string(pretty), "\n")
	assert.NotContains(t, string(compact), "\n")
	assert.JSONEq(t, string(compact), string(pretty))
}

func TestMarshal_Workflow(t *testing.T) {
	in, err := os.ReadFile(filepath.Join("testdata", "workflow.yml"))
	require.NoError(t, err)
	want, err := os.ReadFile(filepath.Join("testdata", "workflow.json"))
	require.NoError(t, err)

	got, err := Marshal(in)
	require.NoError(t, err)
	assert.Equal(t, string(want), string(got))
}

// TestMarshal_RoundTrip converts the JSON back to YAML with an independent
// library and checks the re-parsed tree matches the first parse.
func TestMarshal_RoundTrip(t *testing.T) {
	inputs := map[string]string{
		"workflow": "",
		"mixed":    "a: 1\nb: [x, {c: null, d: 2.5}]\ne: 'yes'\nf: \"multi\\nline\"\n",
		"anchors":  "base: &b {x: 1}\nuse:\n  <<: *b\n  y: [*b]\n",
	}
	wf, err := os.ReadFile(filepath.Join("testdata", "workflow.yml"))
	require.NoError(t, err)
	inputs["workflow"] = string(wf)

	for name, in := range inputs {
		t.Run(name, func(t *testing.T) {
			first, err := Marshal([]byte(in))
			require.NoError(t, err)

			back, err := yaml.JSONToYAML(first)
			require.NoError(t, err)

			second, err := Marshal(back)
			require.NoError(t, err)
			assert.JSONEq(t, string(first), string(second))
		})
	}
}

// TestMarshal_MatchesIndependentParser compares against ghodss/yaml for
// input where both libraries agree on scalar resolution.
func TestMarshal_MatchesIndependentParser(t *testing.T) {
	in := []byte("name: build\nsteps:\n  - run: make\n    retries: 3\n  - run: test\n    env: {CI: true}\nratio: 0.25\nnothing: null\n")

	got, err := Marshal(in)
	require.NoError(t, err)

	want, err := yaml.YAMLToJSON(in)
	require.NoError(t, err)
	assert.JSONEq(t, string(want), string(got))
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestConvert(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "main.yml", "a: 1\nb:\n  - x\n  - y\n")
	out := filepath.Join(dir, "parseyml.json")

	res, err := Convert(context.Background(), in, out)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1,"b":["x","y"]}`, string(data))

	sum := sha256.Sum256(data)
	assert.Equal(t, in, res.InputPath)
	assert.Equal(t, out, res.OutputPath)
	assert.Equal(t, len(data), res.Bytes)
	assert.Equal(t, hex.EncodeToString(sum[:]), res.SHA256)
}

func TestConvert_Idempotent(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "main.yml", "flag: true\nval: null\nlist: [3, 2, 1]\n")
	out := filepath.Join(dir, "out.json")

	first, err := Convert(context.Background(), in, out)
	require.NoError(t, err)
	firstBytes, err := os.ReadFile(out)
	require.NoError(t, err)

	second, err := Convert(context.Background(), in, out)
	require.NoError(t, err)
	secondBytes, err := os.ReadFile(out)
	require.NoError(t, err)

	assert.Equal(t, firstBytes, secondBytes)
	assert.Equal(t, first.SHA256, second.SHA256)
	assert.Equal(t, `{"flag":true,"val":null,"list":[3,2,1]}`, string(secondBytes))
}

func TestConvert_OverwritesExistingOutput(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "main.yml", "a: 1\n")
	out := writeFile(t, dir, "out.json", `{"stale":"content that is longer than the new output"}`)

	_, err := Convert(context.Background(), in, out)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(data))
}

func TestConvert_MissingInput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "missing.yml")
	out := filepath.Join(dir, "out.json")

	_, err := Convert(context.Background(), in, out)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRead)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.NotErrorIs(t, err, ErrParse)
	assert.Equal(t, KindRead, KindOf(err))

	_, statErr := os.Stat(out)
	assert.True(t, errors.Is(statErr, fs.ErrNotExist), "output should not be created")
}

func TestConvert_InputIsDirectory(t *testing.T) {
	dir := t.TempDir()

	_, err := Convert(context.Background(), dir, filepath.Join(dir, "out.json"))
	assert.ErrorIs(t, err, ErrRead)
}

func TestConvert_MalformedInputLeavesOutput(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "main.yml", "key: [unterminated")
	out := writeFile(t, dir, "out.json", `{"previous":true}`)

	_, err := Convert(context.Background(), in, out)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrParse)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, `{"previous":true}`, string(data))
}

func TestConvert_MalformedInputCreatesNoOutput(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "main.yml", "key: [unterminated")
	out := filepath.Join(dir, "out.json")

	_, err := Convert(context.Background(), in, out)
	assert.ErrorIs(t, err, ErrParse)

	_, statErr := os.Stat(out)
	assert.True(t, errors.Is(statErr, fs.ErrNotExist))
}

func TestConvert_MissingOutputDirectory(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "main.yml", "a: 1\n")
	out := filepath.Join(dir, "no", "such", "dir", "out.json")

	_, err := Convert(context.Background(), in, out)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrWrite)
	assert.True(t, IsKind(err, KindWrite))

	_, statErr := os.Stat(filepath.Join(dir, "no"))
	assert.True(t, errors.Is(statErr, fs.ErrNotExist), "parent directories should not be created")
}

func TestConvert_Stdio(t *testing.T) {
	var stdout bytes.Buffer
	stdin := strings.NewReader("a: 1\nb:\n  - x\n  - y\n")

	res, err := Convert(context.Background(), Stdio, Stdio, WithStdio(stdin, &stdout))
	require.NoError(t, err)
	assert.Equal(t, `{"a":1,"b":["x","y"]}`, stdout.String())
	assert.Equal(t, stdout.Len(), res.Bytes)
}

func TestConvert_URLInput(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/main.yml" {
			http.NotFound(w, r)
			return
		}
		assert.Equal(t, userAgent, r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte("flag: true\nval: null\n"))
	}))
	defer ts.Close()

	dir := t.TempDir()
	out := filepath.Join(dir, "out.json")

	t.Run("fetches and converts", func(t *testing.T) {
		_, err := Convert(context.Background(), ts.URL+"/main.yml", out, WithHTTPClient(ts.Client()))
		require.NoError(t, err)

		data, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.Equal(t, `{"flag":true,"val":null}`, string(data))
	})

	t.Run("non-2xx is a read error", func(t *testing.T) {
		_, err := Convert(context.Background(), ts.URL+"/missing.yml", filepath.Join(dir, "other.json"), WithHTTPClient(ts.Client()))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrRead)
		assert.Contains(t, err.Error(), "404")
	})
}

func TestConvert_URLInputBearerToken(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer s3cret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte("private: true\n"))
	}))
	defer ts.Close()

	out := filepath.Join(t.TempDir(), "out.json")

	_, err := Convert(context.Background(), ts.URL, out, WithHTTPClient(ts.Client()))
	assert.ErrorIs(t, err, ErrRead)

	_, err = Convert(context.Background(), ts.URL, out, WithHTTPClient(ts.Client()), WithBearerToken("s3cret"))
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, `{"private":true}`, string(data))
}

func TestIsURL(t *testing.T) {
	assert.True(t, isURL("https://example.com/a.yml"))
	assert.True(t, isURL("http://localhost:8080/a.yml"))
	assert.False(t, isURL(".github/workflows/main.yml"))
	assert.False(t, isURL("C:\\workflows\\main.yml"))
	assert.False(t, isURL("file:///tmp/a.yml"))
	assert.False(t, isURL("-"))
}
