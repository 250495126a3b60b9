// Package manifest reads and writes package.json, the external manifest
// file. Only the "dependencies" field is consumed, per spec.md §3.
package manifest

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/huskpm/husk/internal/huskerr"
)

// FileName is the manifest's fixed filename under the output root.
const FileName = "package.json"

// Manifest is the external package.json, restricted to the one field the
// install pipeline consumes.
type Manifest struct {
	Dependencies map[string]string `json:"dependencies"`
}

// Read loads package.json from dir. A missing or unparseable manifest is a
// fatal Manifest-missing error, per spec.md §7.
func Read(dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, huskerr.New(huskerr.KindManifestMissing, errors.Errorf("no %s found in %s", FileName, dir))
		}
		return nil, huskerr.New(huskerr.KindManifestMissing, errors.Wrapf(err, "failed to read %s", path))
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, huskerr.New(huskerr.KindManifestMissing, errors.Wrapf(err, "failed to parse %s", path))
	}
	if m.Dependencies == nil {
		m.Dependencies = make(map[string]string)
	}
	return &m, nil
}

// Write serializes the manifest back to package.json in dir, preserving
// any fields already on disk besides "dependencies" by merging into the
// raw JSON object rather than overwriting the whole file.
func Write(dir string, m *Manifest) error {
	path := filepath.Join(dir, FileName)
	raw := map[string]json.RawMessage{}
	if existing, err := os.ReadFile(path); err == nil {
		if err := json.Unmarshal(existing, &raw); err != nil {
			return errors.Wrapf(err, "failed to parse existing %s", path)
		}
	} else if !os.IsNotExist(err) {
		return errors.Wrapf(err, "failed to read existing %s", path)
	}

	depsJSON, err := json.MarshalIndent(m.Dependencies, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal dependencies")
	}
	raw["dependencies"] = depsJSON

	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal package.json")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return nil
}
