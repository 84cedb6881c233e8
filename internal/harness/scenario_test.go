package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenario(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadScenario(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/sin_maclaurin.yaml")
	require.NoError(t, err)

	assert.Equal(t, "sin_maclaurin", s.Name)
	assert.Equal(t, "sin(x)", s.Expression)
	assert.Equal(t, 0.5, s.X)
	assert.Equal(t, 5, s.Order)
	assert.Equal(t, 1e-12, s.tolerance())
	assert.Len(t, s.Expect.Coefficients, 6)
	require.NotNil(t, s.Expect.ExactDefined)
	assert.True(t, *s.Expect.ExactDefined)
	require.Len(t, s.Assertions, 3)
	assert.Equal(t, AssertConvergenceMonotone, s.Assertions[0].Type)
	assert.Equal(t, "testdata/scenarios/sin_maclaurin.yaml", s.Path)
}

func TestLoadScenario_DefaultTolerance(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/cubic_shifted.yaml")
	require.NoError(t, err)
	assert.Equal(t, DefaultTolerance, s.tolerance())
}

func TestLoadScenario_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"unknown field", "name: a\nexpression: x\nassertion: []\n", "field assertion not found"},
		{"missing name", "expression: x\n", "name is required"},
		{"missing expression", "name: a\n", "expression is required"},
		{"negative tolerance", "name: a\nexpression: x\ntolerance: -1\n", "tolerance must be non-negative"},
		{"error with checks", "name: a\nexpression: x\nexpect:\n  error: PARSE_ERROR\n  approx_value: 1\n", "cannot check results"},
		{"unknown assertion", "name: a\nexpression: x\nassertions:\n  - type: bogus\n", `unknown assertion type "bogus"`},
		{"missing type", "name: a\nexpression: x\nassertions:\n  - k: 1\n", "assertions[0]: type is required"},
		{"coefficient without value", "name: a\nexpression: x\nassertions:\n  - type: coefficient\n    k: 1\n", "value is required for coefficient"},
		{"negative k", "name: a\nexpression: x\nassertions:\n  - type: coefficient\n    k: -1\n    value: 0\n", "k must be non-negative"},
		{"step without text", "name: a\nexpression: x\nassertions:\n  - type: step_contains\n    stage: parse\n", "stage and text are required"},
		{"bound without value", "name: a\nexpression: x\nassertions:\n  - type: value_error_below\n", "value is required for value_error_below"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeScenario(t, t.TempDir(), "s.yaml", tt.content)
			_, err := LoadScenario(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario("testdata/scenarios/nope.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadDir_Sorted(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "b.yaml", "name: b\nexpression: x\n")
	writeScenario(t, dir, "a.yml", "name: a\nexpression: x\n")
	writeScenario(t, dir, "notes.txt", "ignored")

	scenarios, err := LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, scenarios, 2)
	assert.Equal(t, "a", scenarios[0].Name)
	assert.Equal(t, "b", scenarios[1].Name)
}

func TestLoadDir_DuplicateName(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "a.yaml", "name: same\nexpression: x\n")
	writeScenario(t, dir, "b.yaml", "name: same\nexpression: x\n")

	_, err := LoadDir(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `duplicate scenario name "same"`)
}

func TestLoadDir_Empty(t *testing.T) {
	_, err := LoadDir(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no scenario files found")

	_, err = LoadDir(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scenario directory")
}
