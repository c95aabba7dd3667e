package picker

import (
	"context"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/kingrea/modselect/internal/catalog"
	"github.com/kingrea/modselect/internal/resolver"
)

// Recorder wraps another picker and keeps every answer as a script step, so
// an interactive session can be replayed later with Script.
type Recorder struct {
	next resolver.Picker

	mu    sync.Mutex
	steps []Step
}

// NewRecorder records the answers given by next.
func NewRecorder(next resolver.Picker) *Recorder {
	return &Recorder{next: next}
}

// Pick implements resolver.Picker. Faults are passed through unrecorded.
func (r *Recorder) Pick(ctx context.Context, req resolver.Request) (catalog.Type, bool, error) {
	picked, ok, err := r.next.Pick(ctx, req)
	if err != nil {
		return picked, ok, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if ok {
		r.steps = append(r.steps, Step{Pick: picked.QualifiedName})
	} else {
		r.steps = append(r.steps, Step{Cancel: true})
	}
	return picked, ok, nil
}

// Steps returns the recorded answers in order.
func (r *Recorder) Steps() []Step {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Step(nil), r.steps...)
}

// Script returns a picker that replays the recorded answers.
func (r *Recorder) Script() (*Script, error) {
	return NewScript(r.Steps()...)
}

// WriteFile saves the recorded answers as a YAML script.
func (r *Recorder) WriteFile(path string) error {
	data, err := yaml.Marshal(ScriptFile{Steps: r.Steps()})
	if err != nil {
		return fmt.Errorf("picker: encode script: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("picker: write %s: %w", path, err)
	}
	return nil
}
