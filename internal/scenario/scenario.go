package scenario

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/reactor/pkg/reactor"
)

var (
	// ErrInvalid is wrapped by every validation error.
	ErrInvalid = errors.New("scenario: invalid scenario")

	// ErrExpectation is wrapped when a step's expected getter value differs.
	ErrExpectation = errors.New("scenario: expectation failed")
)

// Scenario is a parsed scenario file.
type Scenario struct {
	Name string `yaml:"name"`

	// Description explains what the scenario demonstrates.
	Description string `yaml:"description"`

	// KeySet selects the engine's key-set policy: "strict-root" (default)
	// or "permissive".
	KeySet string `yaml:"keySet"`

	State   map[string]any        `yaml:"state"`
	Getters map[string]GetterSpec `yaml:"getters"`
	Steps   []Step                `yaml:"steps"`

	path string
}

// GetterSpec declares one getter.
type GetterSpec struct {
	// Op is one of get, len, keys, sum, count, join, getter.
	Op string `yaml:"op"`

	// Path locates the node the op reads.
	Path string `yaml:"path"`

	// Field, when set, reads this key of each list element.
	Field string `yaml:"field"`

	// Sep separates joined strings. Default ",".
	Sep string `yaml:"sep"`

	// Of names the getter read by the getter op.
	Of string `yaml:"of"`
}

// Step commits one mutation.
type Step struct {
	Mutation string         `yaml:"mutation"`
	Payload  any            `yaml:"payload"`
	Expect   map[string]any `yaml:"expect"`
}

// Load reads and validates the scenario file at path.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scenario: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s.path = path
	return s, nil
}

// Parse decodes and validates a scenario document.
func Parse(data []byte) (*Scenario, error) {
	s := &Scenario{}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("scenario: parse: %w", err)
	}
	if s.State == nil {
		s.State = map[string]any{}
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the file the scenario was loaded from, if any.
func (s *Scenario) Path() string {
	return s.path
}

// Validate checks getter ops, getter references and step mutations.
func (s *Scenario) Validate() error {
	if _, err := s.keySetPolicy(); err != nil {
		return err
	}
	for _, name := range s.GetterNames() {
		g := s.Getters[name]
		if !slices.Contains(ops, g.Op) {
			return fmt.Errorf("%w: getter %q: unknown op %q", ErrInvalid, name, g.Op)
		}
		if g.Op == opGetter {
			if _, ok := s.Getters[g.Of]; !ok {
				return fmt.Errorf("%w: getter %q: reads unknown getter %q", ErrInvalid, name, g.Of)
			}
		}
	}
	for i, step := range s.Steps {
		if _, ok := builtins[step.Mutation]; !ok {
			return fmt.Errorf("%w: step %d: unknown mutation %q", ErrInvalid, i+1, step.Mutation)
		}
		for name := range step.Expect {
			if _, ok := s.Getters[name]; !ok {
				return fmt.Errorf("%w: step %d: expects unknown getter %q", ErrInvalid, i+1, name)
			}
		}
	}
	return nil
}

// GetterNames returns the declared getter names in sorted order.
func (s *Scenario) GetterNames() []string {
	names := make([]string, 0, len(s.Getters))
	for name := range s.Getters {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Engine builds an engine for the scenario. base supplies the ambient
// options (logger, metrics, tracer); its state, getters and mutations are
// replaced.
func (s *Scenario) Engine(base reactor.Options) (*reactor.Engine, error) {
	policy, err := s.keySetPolicy()
	if err != nil {
		return nil, err
	}

	getters := make(map[string]any, len(s.Getters))
	for name, spec := range s.Getters {
		getters[name] = spec.compile()
	}
	mutations := make(map[string]any, len(builtins))
	for name, fn := range builtins {
		mutations[name] = fn
	}

	base.State = s.State
	base.Getters = getters
	base.Mutations = mutations
	base.Config.MutationParamOrder = reactor.PayloadFirst
	base.Config.KeySetPolicy = policy
	return reactor.New(base)
}

func (s *Scenario) keySetPolicy() (reactor.KeySetPolicy, error) {
	switch s.KeySet {
	case "", reactor.KeySetStrictRoot.String():
		return reactor.KeySetStrictRoot, nil
	case reactor.KeySetPermissive.String():
		return reactor.KeySetPermissive, nil
	}
	return 0, fmt.Errorf("%w: unknown keySet %q", ErrInvalid, s.KeySet)
}
