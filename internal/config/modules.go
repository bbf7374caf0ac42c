package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/reactor/docsproxy/internal/core"
)

//go:embed modules.yml
var defaultModules []byte

// LoadModules reads module entries from a multi-document YAML file, one
// module per document. An empty path loads the built-in modules.
func LoadModules(path string) ([]core.ModuleEntry, error) {
	if path == "" {
		return DecodeModules(bytes.NewReader(defaultModules))
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening modules file: %w", err)
	}
	defer func() { _ = f.Close() }()

	entries, err := DecodeModules(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return entries, nil
}

// DecodeModules decodes every YAML document of r as a module entry.
// Documents without a name are rejected, as are duplicate names.
func DecodeModules(r io.Reader) ([]core.ModuleEntry, error) {
	dec := yaml.NewDecoder(r)
	seen := make(map[string]bool)

	var entries []core.ModuleEntry
	for i := 0; ; i++ {
		var e core.ModuleEntry
		err := dec.Decode(&e)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
		if e.Name == "" {
			return nil, fmt.Errorf("document %d: module without name", i)
		}
		if seen[e.Name] {
			return nil, fmt.Errorf("document %d: duplicate module %q", i, e.Name)
		}
		seen[e.Name] = true
		entries = append(entries, e)
	}
	return entries, nil
}
