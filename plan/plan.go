// Package plan loads query plans: named, ordered lists of builder calls
// stored in YAML, replayed onto a cyq.Builder.
//
// A plan file looks like:
//
//	models:
//	  - name: Movie
//	    properties:
//	      - name: embedding
//	        type: vector
//	        vector_index: {}
//	plans:
//	  - name: heat
//	    steps:
//	      - match: m:Movie
//	      - where: {m.title: Heat}
//	      - return: m
//	    expect:
//	      - count == 1
package plan

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rlch/cyq"
	"gopkg.in/yaml.v3"
)

// File is the parsed form of a plan file.
type File struct {
	Path   string          `yaml:"-"`
	Models []cyq.NodeModel `yaml:"models,omitempty"`
	Plans  []*Plan         `yaml:"plans"`
}

// Plan is a named sequence of builder steps with optional expectations over
// the execution result.
type Plan struct {
	Name string `yaml:"name"`

	// Mode is read or write. Defaults to read.
	Mode   string   `yaml:"mode,omitempty"`
	Steps  []Step   `yaml:"steps"`
	Expect []string `yaml:"expect,omitempty"`
}

// Step is one builder call: a mapping with a single verb key whose value is
// the call's argument.
type Step struct {
	Verb string
	Arg  yaml.Node
	Line int
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *Step) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode || len(value.Content) != 2 {
		return fmt.Errorf("%w: line %d: a step is a mapping with exactly one verb", ErrInvalidStep, value.Line)
	}

	s.Verb = value.Content[0].Value
	s.Arg = *value.Content[1]
	s.Line = value.Line

	return nil
}

// Load reads and parses a plan file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}

	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	f.Path = path

	return f, nil
}

// Parse parses plan file content. Unnamed plans are named "plan <n>". Verbs
// and modes are checked here; step arguments are checked on Apply.
func Parse(data []byte) (*File, error) {
	var f File

	err := yaml.Unmarshal(data, &f)
	if err != nil {
		return nil, err
	}

	for i, p := range f.Plans {
		if p.Name == "" {
			p.Name = fmt.Sprintf("plan %d", i+1)
		}

		if len(p.Steps) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrNoSteps, p.Name)
		}

		if _, err := p.ExecMode(); err != nil {
			return nil, fmt.Errorf("%s: %w", p.Name, err)
		}

		for j, step := range p.Steps {
			if _, ok := verbs[step.Verb]; !ok {
				return nil, fmt.Errorf("%s: step %d (line %d): %w: %q", p.Name, j+1, step.Line, ErrUnknownVerb, step.Verb)
			}
		}
	}

	return &f, nil
}

// ExecMode returns the plan's execution mode.
func (p *Plan) ExecMode() (cyq.Mode, error) {
	if p.Mode == "" {
		return cyq.ModeRead, nil
	}

	return cyq.ParseMode(p.Mode)
}

// Apply replays the plan's steps onto b. models resolves the model names
// used by steps. The first failing step stops the replay; its error names
// the step.
func (p *Plan) Apply(b *cyq.Builder, models []cyq.NodeModel) error {
	a := &applier{b: b, models: models}

	for i := range p.Steps {
		step := &p.Steps[i]

		fn, ok := verbs[step.Verb]
		if !ok {
			return fmt.Errorf("step %d (line %d): %w: %q", i+1, step.Line, ErrUnknownVerb, step.Verb)
		}

		err := fn(a, &step.Arg)
		if err == nil {
			err = b.Err()
		}

		if err != nil {
			return fmt.Errorf("step %d (line %d) %s: %w", i+1, step.Line, step.Verb, err)
		}
	}

	return nil
}

// Build replays the plan onto a new builder and builds it.
func (p *Plan) Build(models []cyq.NodeModel, opts ...cyq.Option) (*cyq.Builder, cyq.Query, error) {
	b := cyq.New(opts...)

	if err := p.Apply(b, models); err != nil {
		return nil, cyq.Query{}, err
	}

	q, err := b.Build()
	if err != nil {
		return nil, cyq.Query{}, err
	}

	return b, q, nil
}
