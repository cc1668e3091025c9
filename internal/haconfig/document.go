package haconfig

import (
	"fmt"
	"os"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Store is the single loader+normalizer+saver for the HA UI config
// document (spec.md §4.7: "Single loader+normalizer+saver").
type Store struct {
	fs   afero.Fs
	path string

	Config Config
	Patina Patina
}

// Load reads path, detecting the on-disk shape structurally: a document
// with a top-level "config" or "patina" key is V2; otherwise the whole
// file is a bare V1 config object, upgraded in memory (and re-saved on
// first mutation, per spec.md's "re-saved on first mutation"). A missing
// file yields Default() with empty patina.
func Load(fs afero.Fs, path string) (*Store, error) {
	s := &Store{fs: fs, path: path, Config: Default()}

	raw, err := afero.ReadFile(fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("reading HA UI config %s: %w", path, err)
	}

	var probe map[string]yaml.Node
	if err := yaml.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("parsing HA UI config %s: %w", path, err)
	}

	_, hasConfig := probe["config"]
	_, hasPatina := probe["patina"]

	if hasConfig || hasPatina {
		var doc Document
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("parsing HA UI config (v2) %s: %w", path, err)
		}
		s.Config = doc.Config
		s.Patina = doc.Patina
		return s, nil
	}

	var v1 Config
	if err := yaml.Unmarshal(raw, &v1); err != nil {
		return nil, fmt.Errorf("parsing HA UI config (v1) %s: %w", path, err)
	}
	s.Config = v1
	return s, nil
}

// Save normalizes the current config and writes the V2 document shape.
func (s *Store) Save() error {
	s.Config.Normalize()

	out, err := yaml.Marshal(Document{Config: s.Config, Patina: s.Patina})
	if err != nil {
		return fmt.Errorf("marshaling HA UI config: %w", err)
	}
	if err := afero.WriteFile(s.fs, s.path, out, 0o644); err != nil {
		return fmt.Errorf("writing HA UI config %s: %w", s.path, err)
	}
	return nil
}
