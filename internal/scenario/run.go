package scenario

import (
	"errors"
	"fmt"
	"io"
	"reflect"

	"github.com/vango-dev/reactor/pkg/reactor"
)

// GetterResult is one getter's value after a step.
type GetterResult struct {
	Name        string `json:"name"`
	Value       any    `json:"value,omitempty"`
	Error       string `json:"error,omitempty"`
	Evaluations uint64 `json:"evaluations"`
}

// StepResult records the state of every getter after a step. Step 0 is the
// initial state.
type StepResult struct {
	Step     int            `json:"step"`
	Mutation string         `json:"mutation,omitempty"`
	Getters  []GetterResult `json:"getters"`
}

// Report is the outcome of Run.
type Report struct {
	Name  string       `json:"name"`
	Steps []StepResult `json:"steps"`
}

// Run reads every getter, then commits each step in order and reads every
// getter again. Results are written to w as text when w is non-nil. Run
// stops at the first failing mutation or unmet expectation and returns the
// report so far with the error.
func (s *Scenario) Run(eng *reactor.Engine, w io.Writer) (*Report, error) {
	report := &Report{Name: s.Name}

	record := func(step int, mutation string) StepResult {
		res := StepResult{Step: step, Mutation: mutation, Getters: s.read(eng)}
		report.Steps = append(report.Steps, res)
		if w != nil {
			writeStep(w, res)
		}
		return res
	}

	record(0, "")
	for i, step := range s.Steps {
		n := i + 1
		if err := eng.Commit(step.Mutation, step.Payload); err != nil {
			return report, fmt.Errorf("scenario: step %d (%s): %w", n, step.Mutation, err)
		}
		res := record(n, step.Mutation)
		if err := checkExpect(step.Expect, res); err != nil {
			return report, fmt.Errorf("scenario: step %d (%s): %w", n, step.Mutation, err)
		}
	}
	return report, nil
}

func (s *Scenario) read(eng *reactor.Engine) []GetterResult {
	gs := eng.Getters()
	out := make([]GetterResult, 0, len(s.Getters))
	for _, name := range gs.Names() {
		res := GetterResult{Name: name}
		v, err := gs.Get(name)
		if err != nil {
			res.Error = err.Error()
		} else {
			res.Value = reactor.Snapshot(v)
		}
		res.Evaluations = gs.Evaluations(name)
		out = append(out, res)
	}
	return out
}

func writeStep(w io.Writer, res StepResult) {
	if res.Step == 0 {
		fmt.Fprintln(w, "initial")
	} else {
		fmt.Fprintf(w, "step %d: %s\n", res.Step, res.Mutation)
	}
	for _, g := range res.Getters {
		if g.Error != "" {
			fmt.Fprintf(w, "  %s: error: %s (evaluations: %d)\n", g.Name, g.Error, g.Evaluations)
			continue
		}
		fmt.Fprintf(w, "  %s = %v (evaluations: %d)\n", g.Name, g.Value, g.Evaluations)
	}
}

func checkExpect(expect map[string]any, res StepResult) error {
	var errs []error
	for _, g := range res.Getters {
		want, ok := expect[g.Name]
		if !ok {
			continue
		}
		if g.Error != "" {
			errs = append(errs, fmt.Errorf("%w: %s: %s", ErrExpectation, g.Name, g.Error))
			continue
		}
		if !equal(want, g.Value) {
			errs = append(errs, fmt.Errorf("%w: %s = %v, want %v", ErrExpectation, g.Name, g.Value, want))
		}
	}
	return errors.Join(errs...)
}

// equal compares an expected YAML value against a snapshot. Numbers compare
// by value regardless of type, and []string matches a list of strings.
func equal(want, got any) bool {
	if a, ok := number(want); ok {
		b, ok := number(got)
		return ok && a == b
	}
	if strs, ok := got.([]string); ok {
		items := make([]any, len(strs))
		for i, s := range strs {
			items[i] = s
		}
		got = items
	}
	switch w := want.(type) {
	case []any:
		g, ok := got.([]any)
		if !ok || len(g) != len(w) {
			return false
		}
		for i := range w {
			if !equal(w[i], g[i]) {
				return false
			}
		}
		return true
	case map[string]any:
		g, ok := got.(map[string]any)
		if !ok || len(g) != len(w) {
			return false
		}
		for k, v := range w {
			if !equal(v, g[k]) {
				return false
			}
		}
		return true
	case string:
		g, ok := got.(string)
		return ok && g == w
	}
	return reflect.DeepEqual(want, got)
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
