package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// DefaultTolerance is the relative tolerance for numeric expectations.
const DefaultTolerance = 1e-9

// Scenario defines one analysis and the outcome it must produce.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Expression is text or LaTeX, parsed like CLI input.
	Expression string `yaml:"expression"`

	Center float64 `yaml:"center"`
	X      float64 `yaml:"x"`
	Order  int     `yaml:"order"`

	// MaxOrder and MaxNodes override the analyzer limits when positive.
	MaxOrder int `yaml:"max_order,omitempty"`
	MaxNodes int `yaml:"max_nodes,omitempty"`

	// Tolerance is relative: |got - want| <= tol * max(1, |want|).
	// Zero selects DefaultTolerance.
	Tolerance float64 `yaml:"tolerance,omitempty"`

	Expect Expect `yaml:"expect"`

	Assertions []Assertion `yaml:"assertions,omitempty"`

	// Path is the file the scenario was loaded from.
	Path string `yaml:"-"`
}

// Expect lists the direct expectations on the analysis result. Unset
// fields are not checked.
type Expect struct {
	// Error is the expected failure code. Empty means success is expected.
	Error string `yaml:"error,omitempty"`

	Coefficients      []float64 `yaml:"coefficients,omitempty"`
	ApproxValue       *float64  `yaml:"approx_value,omitempty"`
	ExactDefined      *bool     `yaml:"exact_defined,omitempty"`
	DerivativeDefined *bool     `yaml:"derivative_defined,omitempty"`
	Polynomial        string    `yaml:"polynomial,omitempty"`
}

// Assertion is a property checked after the analysis succeeds.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// K is the coefficient index (coefficient).
	K int `yaml:"k,omitempty"`

	// Value is the expected coefficient or the error bound.
	Value *float64 `yaml:"value,omitempty"`

	// Stage and Text select a step (step_contains).
	Stage string `yaml:"stage,omitempty"`
	Text  string `yaml:"text,omitempty"`
}

// Assertion type constants.
const (
	AssertCoefficient         = "coefficient"
	AssertConvergenceMonotone = "convergence_monotone"
	AssertStepContains        = "step_contains"
	AssertValueErrorBelow     = "value_error_below"
)

func (s *Scenario) tolerance() float64 {
	if s.Tolerance > 0 {
		return s.Tolerance
	}
	return DefaultTolerance
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	scenario.Path = path

	return &scenario, nil
}

// LoadDir loads every .yaml and .yml file in dir, sorted by file name.
// Scenario names must be unique.
func LoadDir(dir string) ([]*Scenario, error) {
	var paths []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", dir, err)
		}
		paths = append(paths, matches...)
	}
	if len(paths) == 0 {
		if _, err := os.Stat(dir); err != nil {
			return nil, fmt.Errorf("scenario directory: %w", err)
		}
		return nil, fmt.Errorf("no scenario files found in %s", dir)
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	seen := make(map[string]string, len(paths))
	for _, path := range paths {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if prev, ok := seen[s.Name]; ok {
			return nil, fmt.Errorf("%s: duplicate scenario name %q (also in %s)", path, s.Name, prev)
		}
		seen[s.Name] = path
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks required fields and assertion shapes.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Expression == "" {
		return fmt.Errorf("expression is required")
	}
	if s.Tolerance < 0 {
		return fmt.Errorf("tolerance must be non-negative")
	}
	if s.Expect.Error != "" && (len(s.Assertions) > 0 || s.Expect.Coefficients != nil || s.Expect.ApproxValue != nil) {
		return fmt.Errorf("a scenario expecting error %s cannot check results", s.Expect.Error)
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(a, i); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion.
func validateAssertion(a Assertion, index int) error {
	switch a.Type {
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	case AssertCoefficient:
		if a.Value == nil {
			return fmt.Errorf("assertions[%d]: value is required for coefficient", index)
		}
		if a.K < 0 {
			return fmt.Errorf("assertions[%d]: k must be non-negative for coefficient", index)
		}
	case AssertConvergenceMonotone:
	case AssertStepContains:
		if a.Stage == "" || a.Text == "" {
			return fmt.Errorf("assertions[%d]: stage and text are required for step_contains", index)
		}
	case AssertValueErrorBelow:
		if a.Value == nil {
			return fmt.Errorf("assertions[%d]: value is required for value_error_below", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
