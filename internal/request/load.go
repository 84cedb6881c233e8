package request

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaSource []byte

// Format is a request file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatCUE  Format = "cue"
)

// FormatOf picks the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".cue":
		return FormatCUE, nil
	}
	return "", fmt.Errorf("unsupported request file extension %q (want .yaml, .yml, .json or .cue)", filepath.Ext(path))
}

// Load reads and validates a request file.
func Load(path string) (*Request, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read request: %w", err)
	}
	req, err := Decode(data, format, filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return req, nil
}

// Decode parses data in the given format, applies defaults and validates.
// name labels CUE positions in error messages.
func Decode(data []byte, format Format, name string) (*Request, error) {
	var (
		req *Request
		err error
	)
	switch format {
	case FormatYAML:
		req, err = decodeYAML(data)
	case FormatJSON:
		req, err = decodeJSON(data)
	case FormatCUE:
		req, err = decodeCUE(data, name)
	default:
		return nil, fmt.Errorf("unknown request format %q", format)
	}
	if err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}

func decodeYAML(data []byte) (*Request, error) {
	req := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &Error{Message: "empty request"}
		}
		return nil, fmt.Errorf("parse YAML: %w", err)
	}
	return &req, nil
}

func decodeJSON(data []byte) (*Request, error) {
	req := Default()
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &Error{Message: "empty request"}
		}
		return nil, fmt.Errorf("parse JSON: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("parse JSON: trailing data after request object")
	}
	return &req, nil
}

// decodeCUE unifies the file with the embedded #Request definition, which
// closes the struct and supplies defaults.
func decodeCUE(data []byte, name string) (*Request, error) {
	ctx := cuecontext.New()
	schema := ctx.CompileBytes(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile request schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Request"))

	v := ctx.CompileBytes(data, cue.Filename(name))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("parse CUE: %w", err)
	}
	unified := def.Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("validate CUE: %w", err)
	}

	var req Request
	if err := unified.Decode(&req); err != nil {
		return nil, fmt.Errorf("decode CUE: %w", err)
	}
	return &req, nil
}
