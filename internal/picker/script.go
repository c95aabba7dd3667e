// Package picker provides non-interactive pickers for the resolution engine:
// a scripted picker for tests and batch runs, and an automatic picker.
package picker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/kingrea/modselect/internal/catalog"
	"github.com/kingrea/modselect/internal/resolver"
)

// ErrScriptExhausted is returned when a script is asked for more picks than
// it declares.
var ErrScriptExhausted = errors.New("picker: script exhausted")

// Step is one scripted answer. Exactly one of Pick, Filter or Cancel should
// be set.
type Step struct {
	// Pick names a candidate by qualified name or, failing that, by a unique
	// display name (case-insensitive).
	Pick string `yaml:"pick,omitempty"`
	// Filter narrows the candidates with the text filter and chooses Index
	// from what remains.
	Filter string `yaml:"filter,omitempty"`
	Index  int    `yaml:"index,omitempty"`
	Cancel bool   `yaml:"cancel,omitempty"`
}

func (s Step) validate() error {
	set := 0
	if strings.TrimSpace(s.Pick) != "" {
		set++
	}
	if strings.TrimSpace(s.Filter) != "" {
		set++
	}
	if s.Cancel {
		set++
	}
	if set != 1 {
		return fmt.Errorf("exactly one of pick, filter or cancel is required")
	}
	if s.Index < 0 {
		return fmt.Errorf("index must be >= 0")
	}
	return nil
}

// ScriptFile models a YAML pick script.
type ScriptFile struct {
	Steps []Step `yaml:"steps"`
}

// Script replays steps in order and records every request it answers.
type Script struct {
	mu    sync.Mutex
	steps []Step
	seen  []resolver.Request
}

// NewScript validates steps and returns a picker.
func NewScript(steps ...Step) (*Script, error) {
	for idx, step := range steps {
		if err := step.validate(); err != nil {
			return nil, fmt.Errorf("picker: steps[%d]: %w", idx, err)
		}
	}
	return &Script{steps: append([]Step(nil), steps...)}, nil
}

// ParseScriptYAML decodes and validates a script payload.
func ParseScriptYAML(data []byte) (*Script, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("picker: script payload is empty")
	}
	var file ScriptFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("picker: decode script: %w", err)
	}
	return NewScript(file.Steps...)
}

// LoadScriptFile reads a YAML script from disk.
func LoadScriptFile(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("picker: read %s: %w", path, err)
	}
	script, err := ParseScriptYAML(data)
	if err != nil {
		return nil, fmt.Errorf("picker: %s: %w", path, err)
	}
	return script, nil
}

// Pick implements resolver.Picker.
func (s *Script) Pick(ctx context.Context, req resolver.Request) (catalog.Type, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen = append(s.seen, req)
	if err := ctx.Err(); err != nil {
		return catalog.Type{}, false, err
	}
	if len(s.steps) == 0 {
		return catalog.Type{}, false, fmt.Errorf("%w at %s", ErrScriptExhausted, req.Location())
	}
	step := s.steps[0]
	s.steps = s.steps[1:]
	switch {
	case step.Cancel:
		return catalog.Type{}, false, nil
	case strings.TrimSpace(step.Filter) != "":
		narrowed := req.Candidates.Filter(step.Filter)
		if step.Index >= narrowed.Len() {
			return catalog.Type{}, false, fmt.Errorf("picker: filter %q left %d candidates at %s, index %d out of range", step.Filter, narrowed.Len(), req.Location(), step.Index)
		}
		return narrowed.At(step.Index), true, nil
	default:
		return findByName(req.Candidates, strings.TrimSpace(step.Pick), req.Location())
	}
}

func findByName(candidates resolver.CandidateSet, name, location string) (catalog.Type, bool, error) {
	if t, ok := candidates.Lookup(name); ok {
		return t, true, nil
	}
	var matches []catalog.Type
	for _, t := range candidates.Types() {
		if strings.EqualFold(t.DisplayName(), name) {
			matches = append(matches, t)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], true, nil
	case 0:
		return catalog.Type{}, false, fmt.Errorf("picker: %s is not a candidate at %s", name, location)
	default:
		return catalog.Type{}, false, fmt.Errorf("picker: %s is ambiguous at %s (%d candidates)", name, location, len(matches))
	}
}

// Seen returns the requests answered so far.
func (s *Script) Seen() []resolver.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]resolver.Request(nil), s.seen...)
}

// Remaining reports how many steps have not been used.
func (s *Script) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.steps)
}
