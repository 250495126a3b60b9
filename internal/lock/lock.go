// Package lock implements C6: serializing and deserializing the full
// DependencyGraph as the project's lock file, grounded on trywpm-cli's
// wpmlock package (other_examples/trywpm-cli__lockfile.go) for the
// New/Read/Write shape.
package lock

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/huskpm/husk/internal/graph"
)

// FileName is the lock file's fixed filename under the output root.
const FileName = "package-lock.json"

// Read loads the lock file from dir. A missing lock file is reported as
// ok=false, not an error — absence is a normal first-run condition, per
// spec.md §4.9 step 3.
func Read(dir string) (g graph.Graph, ok bool, err error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, errors.Wrapf(err, "failed to read %s", path)
	}
	var g2 graph.Graph
	if err := json.Unmarshal(data, &g2); err != nil {
		return nil, false, errors.Wrapf(err, "failed to parse %s", path)
	}
	return g2, true, nil
}

// Write serializes g as canonical, pretty-printed JSON to the lock file in
// dir: 2-space indent, UTF-8, per spec.md §3 invariant 5.
func Write(dir string, g graph.Graph) error {
	path := filepath.Join(dir, FileName)
	data, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal lock file")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return nil
}
