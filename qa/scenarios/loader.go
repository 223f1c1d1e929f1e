package scenarios

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/invsched/core/model"
)

// Expected is the outcome a scenario asserts. Exactly one of Makespan,
// Infeasible or Error is meaningful.
type Expected struct {
	Makespan   *int   `yaml:"makespan,omitempty"`
	Infeasible bool   `yaml:"infeasible,omitempty"`
	Error      string `yaml:"error,omitempty"`
}

// Scenario is a regression case: an instance and its expected outcome.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description,omitempty"`
	MaxStates   int            `yaml:"max_states,omitempty"`
	Instance    model.Instance `yaml:"instance"`
	Expected    Expected       `yaml:"expected"`
}

// Validate checks that the scenario asserts exactly one outcome.
func (s *Scenario) Validate() error {
	n := 0
	if s.Expected.Makespan != nil {
		n++
	}
	if s.Expected.Infeasible {
		n++
	}
	if s.Expected.Error != "" {
		n++
	}
	if n != 1 {
		return fmt.Errorf("scenario %s: expected must set exactly one of makespan, infeasible or error", s.Name)
	}
	return nil
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if sc.Name == "" {
		sc.Name = filepath.Base(path)
	}
	if sc.Instance.Name == "" {
		sc.Instance.Name = sc.Name
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// LoadDir loads every *.yaml scenario in dir, sorted by file name.
func LoadDir(dir string) ([]*Scenario, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	out := make([]*Scenario, 0, len(files))
	for _, f := range files {
		sc, err := Load(f)
		if err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, nil
}
