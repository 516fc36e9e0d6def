package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// UpdateGoldenEnv names the environment variable that makes CompareWithGolden
// rewrite golden files instead of comparing against them.
const UpdateGoldenEnv = "UPDATE_GOLDEN"

// LoadFixture loads test data from a fixture file.
// The path is relative to the test package directory.
func LoadFixture(t testing.TB, path string) []byte {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err, "failed to load fixture from %s", path)
	return data
}

// LoadFixtureYAML loads a YAML fixture and decodes it into dest.
func LoadFixtureYAML(t testing.TB, path string, dest any) {
	t.Helper()

	data := LoadFixture(t, path)
	require.NoError(t, yaml.Unmarshal(data, dest), "failed to decode YAML fixture from %s", path)
}

// WriteFixture writes content to name inside a per-test temporary directory
// and returns the full path. The directory is removed when the test ends.
func WriteFixture(t testing.TB, name string, content []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

// LoadGolden loads expected test output from a golden file.
func LoadGolden(t testing.TB, path string) []byte {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err, "failed to load golden file from %s", path)
	return data
}

// WriteGolden writes test output to a golden file, creating parent
// directories as needed.
func WriteGolden(t testing.TB, path string, data []byte) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644), "failed to write golden file to %s", path)
}

// CompareWithGolden fails the test when actual differs from the golden file
// at path. With UPDATE_GOLDEN set, the file is rewritten instead.
func CompareWithGolden(t testing.TB, path string, actual []byte) {
	t.Helper()

	if os.Getenv(UpdateGoldenEnv) != "" {
		WriteGolden(t, path, actual)
		return
	}

	expected := LoadGolden(t, path)
	require.Equal(t, string(expected), string(actual), "output mismatch for %s", path)
}

// FixturePath constructs a path to a fixture file relative to the testdata directory.
func FixturePath(filename string) string {
	return filepath.Join("testdata", filename)
}

// GoldenPath constructs a path to a golden file relative to the testdata directory.
func GoldenPath(filename string) string {
	return filepath.Join("testdata", "golden", filename)
}
