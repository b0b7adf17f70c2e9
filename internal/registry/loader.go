// Package registry loads benchmark model descriptors from a directory of
// manifest files.
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"benchopt/internal/common/fsutil"
	"benchopt/internal/model"
	"benchopt/pkg/types"
)

// Registry is an immutable, id-sorted set of model descriptors.
type Registry struct {
	models []types.Model
	byID   map[string]int
}

// New builds a registry from descriptors, applying defaults and validating
// each one. Duplicate ids are rejected.
func New(models ...types.Model) (*Registry, error) {
	r := &Registry{byID: make(map[string]int, len(models))}
	for _, m := range models {
		m = withDefaults(m)
		if err := validate(m); err != nil {
			return nil, err
		}
		if _, dup := r.byID[m.ID]; dup {
			return nil, fmt.Errorf("duplicate model id %q", m.ID)
		}
		r.byID[m.ID] = -1
		r.models = append(r.models, m)
	}
	sort.Slice(r.models, func(i, j int) bool { return r.models[i].ID < r.models[j].ID })
	for i, m := range r.models {
		r.byID[m.ID] = i
	}
	return r, nil
}

// LoadDir reads every *.yaml, *.yml, *.json and *.toml manifest in dir. A
// manifest without an id takes its file name without extension.
func LoadDir(dir string) (*Registry, error) {
	paths, err := fsutil.ListByExt(dir, manifestExts...)
	if err != nil {
		return nil, err
	}
	models := make([]types.Model, 0, len(paths))
	for _, p := range paths {
		m, err := loadManifest(p)
		if err != nil {
			return nil, err
		}
		models = append(models, m)
	}
	return New(models...)
}

var manifestExts = []string{".yaml", ".yml", ".json", ".toml"}

func loadManifest(path string) (types.Model, error) {
	var m types.Model
	b, err := os.ReadFile(path)
	if err != nil {
		return m, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(b, &m)
	case ".toml":
		err = toml.Unmarshal(b, &m)
	default:
		err = yaml.Unmarshal(b, &m)
	}
	if err != nil {
		return m, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	if m.ID == "" {
		m.ID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	m.Path = path
	return m, nil
}

func withDefaults(m types.Model) types.Model {
	if m.Name == "" {
		m.Name = m.ID
	}
	if m.Device == "" {
		m.Device = types.DeviceCUDA
	}
	if m.Test == "" {
		m.Test = types.TestEval
	}
	if m.BatchSize == 0 {
		m.BatchSize = 1
	}
	return m
}

func validate(m types.Model) error {
	if m.ID == "" {
		return fmt.Errorf("model without id")
	}
	switch m.Device {
	case types.DeviceCPU, types.DeviceCUDA:
	default:
		return fmt.Errorf("model %s: unknown device %q", m.ID, m.Device)
	}
	switch m.Test {
	case types.TestEval, types.TestTrain:
	default:
		return fmt.Errorf("model %s: unknown test %q", m.ID, m.Test)
	}
	switch m.Family {
	case types.FamilyNone, types.FamilyTorchVision, types.FamilyHuggingFace, types.FamilyTimm, types.FamilyFAMBench:
	default:
		return fmt.Errorf("model %s: unknown family %q", m.ID, m.Family)
	}
	if m.BatchSize < 0 {
		return fmt.Errorf("model %s: negative batch size", m.ID)
	}
	if _, err := model.ParseCapabilities(m.Capabilities); err != nil {
		return fmt.Errorf("model %s: %w", m.ID, err)
	}
	for _, p := range []types.Precision{m.DefaultEvalCUDAPrecision, m.DefaultTrainCUDAPrecision} {
		if p != "" && !knownPrecision(p) {
			return fmt.Errorf("model %s: unknown default precision %q", m.ID, p)
		}
	}
	return nil
}

func knownPrecision(p types.Precision) bool {
	for _, s := range types.Precisions {
		if string(p) == s {
			return true
		}
	}
	return false
}

// List returns a copy of all descriptors, sorted by id.
func (r *Registry) List() []types.Model {
	out := make([]types.Model, len(r.models))
	copy(out, r.models)
	return out
}

// Find returns the descriptor registered under id.
func (r *Registry) Find(id string) (types.Model, bool) {
	i, ok := r.byID[id]
	if !ok {
		return types.Model{}, false
	}
	return r.models[i], true
}

// Len returns the number of registered models.
func (r *Registry) Len() int { return len(r.models) }
