// Package snapshot stores golden copies of compiled CSS output.
//
// Snapshots live next to their suite in a __snapshots__ directory, one
// JSON file per suite, keyed by "test::assertion". An output assertion
// without an inline expectation is compared against its stored golden
// text; --update-snapshots rewrites the store instead of failing.
package snapshot

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// Dir is the directory name snapshots are stored under.
	Dir = "__snapshots__"
	// Ext is the snapshot file extension.
	Ext = ".snap.json"
)

// Manager reads and writes the snapshot stores for a run. It caches
// loaded files, so repeated assertions against one suite cost one read.
type Manager struct {
	updateMode bool
	cache      map[string]map[string]string
}

func NewManager(updateMode bool) *Manager {
	return &Manager{
		updateMode: updateMode,
		cache:      make(map[string]map[string]string),
	}
}

// Result is the outcome of one golden comparison.
type Result struct {
	Passed     bool
	Message    string
	Expected   string
	Actual     string
	IsNew      bool
	WasUpdated bool
}

// Compare checks actual CSS text against the golden copy for the given
// suite file, test and assertion description. Missing goldens fail
// unless update mode is on, in which case they are created.
func (m *Manager) Compare(suiteFile, testName, description, actual string) *Result {
	result := &Result{Actual: actual}

	path := m.storePath(suiteFile)
	key := m.key(testName, description, actual)

	snapshots, err := m.load(path)
	if err != nil {
		result.Message = fmt.Sprintf("failed to load snapshots: %v", err)
		return result
	}

	expected, exists := snapshots[key]
	if !exists {
		if !m.updateMode {
			result.Message = "snapshot does not exist (run with --update-snapshots to create)"
			return result
		}
		snapshots[key] = actual
		if err := m.save(path, snapshots); err != nil {
			result.Message = fmt.Sprintf("failed to save snapshot: %v", err)
			return result
		}
		result.Passed = true
		result.IsNew = true
		result.Expected = actual
		result.Message = "new snapshot created"
		return result
	}

	result.Expected = expected
	if expected == actual {
		result.Passed = true
		return result
	}

	if m.updateMode {
		snapshots[key] = actual
		if err := m.save(path, snapshots); err != nil {
			result.Message = fmt.Sprintf("failed to update snapshot: %v", err)
			return result
		}
		result.Passed = true
		result.WasUpdated = true
		result.Message = "snapshot updated"
		return result
	}

	result.Message = "snapshot mismatch: " + firstDifference(expected, actual)
	return result
}

// storePath maps a suite file to its snapshot store.
func (m *Manager) storePath(suiteFile string) string {
	dir := filepath.Dir(suiteFile)
	base := filepath.Base(suiteFile)
	for _, ext := range []string{".yaml", ".yml"} {
		base = strings.TrimSuffix(base, ext)
	}
	base = strings.TrimSuffix(base, ".sheet")
	return filepath.Join(dir, Dir, base+Ext)
}

func (m *Manager) key(testName, description, actual string) string {
	if description != "" {
		return testName + "::" + description
	}
	if testName != "" {
		return testName
	}
	hash := sha256.Sum256([]byte(actual))
	return "anon_" + hex.EncodeToString(hash[:8])
}

func (m *Manager) load(path string) (map[string]string, error) {
	if cached, ok := m.cache[path]; ok {
		return cached, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			empty := make(map[string]string)
			m.cache[path] = empty
			return empty, nil
		}
		return nil, err
	}
	var snapshots map[string]string
	if err := json.Unmarshal(data, &snapshots); err != nil {
		return nil, err
	}
	if snapshots == nil {
		snapshots = make(map[string]string)
	}
	m.cache[path] = snapshots
	return snapshots, nil
}

func (m *Manager) save(path string, snapshots map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(snapshots, "", "  ")
	if err != nil {
		return err
	}
	m.cache[path] = snapshots
	return os.WriteFile(path, data, 0o644)
}

// firstDifference points at the first line where two CSS texts diverge.
func firstDifference(expected, actual string) string {
	expLines := strings.Split(expected, "\n")
	actLines := strings.Split(actual, "\n")
	for i := 0; i < len(expLines) || i < len(actLines); i++ {
		var exp, act string
		if i < len(expLines) {
			exp = expLines[i]
		}
		if i < len(actLines) {
			act = actLines[i]
		}
		if exp != act {
			return fmt.Sprintf("line %d: got %q, want %q", i+1, act, exp)
		}
	}
	return "texts are equal"
}
