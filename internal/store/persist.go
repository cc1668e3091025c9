package store

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/eriknyberg/huebridge/internal/identity"
	"github.com/eriknyberg/huebridge/internal/model"
)

// stateVersion is the persisted-file schema version. V0 predates the aux/
// id_v1 sections; V1 carries them. Bump and extend migrate() whenever the
// on-disk shape changes — never rewrite an old version's struct in place.
const stateVersion = 1

// fileV0 is the pre-aux persisted shape: resources only.
type fileV0 struct {
	Resources []resourceRecord `yaml:"resources"`
}

// fileV1 adds the aux sidecar and the legacy v1 index, both addressed by
// the resource's canonical id so neither survives without its owner.
type fileV1 struct {
	Version   int              `yaml:"version"`
	Resources []resourceRecord `yaml:"resources"`
	Aux       []auxRecord      `yaml:"aux,omitempty"`
	IDv1      []idv1Record     `yaml:"id_v1,omitempty"`
}

type resourceRecord struct {
	ID   string        `yaml:"id"`
	Type identity.Kind `yaml:"type"`
	Body yaml.Node     `yaml:"body"`
}

type auxRecord struct {
	ID    string  `yaml:"id"`
	Index *uint32 `yaml:"index,omitempty"`
	Topic *string `yaml:"topic,omitempty"`
}

type idv1Record struct {
	Path string `yaml:"path"`
	ID   string `yaml:"id"`
}

// Load restores a Store from path on fs, transparently migrating a V0 file
// to V1 (writing a "<path>.v0.bak" backup first) and persisting the
// upgraded form immediately. A missing file is not an error: New() is
// returned so first-run bootstrap can populate it from scratch.
func Load(fs afero.Fs, path string) (*Store, error) {
	raw, err := afero.ReadFile(fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(), nil
		}
		return nil, fmt.Errorf("reading state file %s: %w", path, err)
	}

	var probe struct {
		Version int `yaml:"version"`
	}
	if err := yaml.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("parsing state file %s: %w", path, err)
	}

	if probe.Version < 1 {
		backupPath := path + ".v0.bak"
		if err := afero.WriteFile(fs, backupPath, raw, 0o644); err != nil {
			return nil, fmt.Errorf("backing up v0 state file: %w", err)
		}

		var v0 fileV0
		if err := yaml.Unmarshal(raw, &v0); err != nil {
			return nil, fmt.Errorf("parsing v0 state file %s: %w", path, err)
		}

		s, err := fromV1(fileV1{Version: stateVersion, Resources: v0.Resources})
		if err != nil {
			return nil, err
		}
		if err := s.Save(fs, path); err != nil {
			return nil, fmt.Errorf("persisting migrated state file: %w", err)
		}
		return s, nil
	}

	var v1 fileV1
	if err := yaml.Unmarshal(raw, &v1); err != nil {
		return nil, fmt.Errorf("parsing state file %s: %w", path, err)
	}
	return fromV1(v1)
}

// Save writes the current state atomically-enough for a single-writer
// bridge process: marshal to YAML, then overwrite path in one call.
func (s *Store) Save(fs afero.Fs, path string) error {
	f, err := s.toV1()
	if err != nil {
		return err
	}

	out, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshaling state: %w", err)
	}

	if err := afero.WriteFile(fs, path, out, 0o644); err != nil {
		return fmt.Errorf("writing state file %s: %w", path, err)
	}
	return nil
}

func (s *Store) toV1() (fileV1, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f := fileV1{Version: stateVersion}

	for id, res := range s.resources {
		var node yaml.Node
		if err := node.Encode(res.Body); err != nil {
			return fileV1{}, fmt.Errorf("encoding resource %s: %w", id, err)
		}
		f.Resources = append(f.Resources, resourceRecord{ID: id.String(), Type: res.Type, Body: node})
	}

	for id, aux := range s.aux {
		if aux.Index == nil && aux.Topic == nil {
			continue
		}
		f.Aux = append(f.Aux, auxRecord{ID: id.String(), Index: aux.Index, Topic: aux.Topic})
	}

	for path, id := range s.v1index {
		f.IDv1 = append(f.IDv1, idv1Record{Path: path, ID: id.String()})
	}

	return f, nil
}

func fromV1(f fileV1) (*Store, error) {
	s := New()

	for _, rr := range f.Resources {
		id, err := uuid.Parse(rr.ID)
		if err != nil {
			return nil, fmt.Errorf("parsing resource id %q: %w", rr.ID, err)
		}

		body, err := model.DecodeBody(rr.Type, rr.Body)
		if err != nil {
			return nil, fmt.Errorf("decoding resource %s (%s): %w", rr.ID, rr.Type, err)
		}

		s.resources[id] = model.Resource{ID: id, Type: rr.Type, Body: body}
	}

	for _, ar := range f.Aux {
		id, err := uuid.Parse(ar.ID)
		if err != nil {
			return nil, fmt.Errorf("parsing aux id %q: %w", ar.ID, err)
		}
		s.aux[id] = AuxData{Index: ar.Index, Topic: ar.Topic}
	}

	for _, ir := range f.IDv1 {
		id, err := uuid.Parse(ir.ID)
		if err != nil {
			return nil, fmt.Errorf("parsing id_v1 entry %q: %w", ir.Path, err)
		}
		s.v1index[ir.Path] = id

		if n, ok := parseTrailingInt(ir.Path); ok {
			if namespace, ok := v1NamespaceForPath(ir.Path); ok && uint32(n) >= s.v1counter[namespace] {
				s.v1counter[namespace] = uint32(n) + 1
			}
		}
	}

	return s, nil
}

// parseTrailingInt extracts the numeric suffix of a legacy path like
// "/lights/12" (-> 12, true).
func parseTrailingInt(path string) (int, bool) {
	i := strings.LastIndex(path, "/")
	if i < 0 || i == len(path)-1 {
		return 0, false
	}
	n, err := strconv.Atoi(path[i+1:])
	if err != nil {
		return 0, false
	}
	return n, true
}

// v1NamespaceForPath maps a legacy path prefix back to the counter
// namespace that must stay ahead of it on restore, so a freshly loaded
// store never reissues an index already recorded on disk. Scenes are
// room-scoped (see idv1Locked) and so have no shared counter to advance.
func v1NamespaceForPath(path string) (string, bool) {
	switch {
	case strings.HasPrefix(path, "/lights/"):
		return v1NamespaceLight, true
	case strings.HasPrefix(path, "/groups/"):
		return v1NamespaceGroup, true
	default:
		return "", false
	}
}
