package resolver

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingrea/modselect/internal/catalog"
)

func TestClosedPickResolvesDirectly(t *testing.T) {
	picker := newStubPicker(pick("Demo.Foo"))
	session := newTestSession(t, picker)

	result, err := session.Resolve(context.Background(), catalog.NewConstraints())
	require.NoError(t, err)
	require.True(t, result.Resolved())
	assert.Equal(t, "Demo.Foo", result.Type.QualifiedName())
	assert.Empty(t, result.Type.Arguments())
	assert.Len(t, picker.requests, 1)
}

func TestGenericPickResolvesFreeParameter(t *testing.T) {
	picker := newStubPicker(pick("Demo.Bar"), pick("Demo.IntBox"))
	session := newTestSession(t, picker)

	result, err := session.Resolve(context.Background(), catalog.NewConstraints())
	require.NoError(t, err)
	require.True(t, result.Resolved())
	assert.Equal(t, "Demo.Bar", result.Type.QualifiedName())
	args := result.Type.Arguments()
	require.Len(t, args, 1)
	assert.Equal(t, "Demo.IntBox", args[0].QualifiedName())
	assert.Equal(t, "Bar[IntBox]", result.Type.String())

	require.Len(t, picker.requests, 2)
	slot := picker.requests[1]
	assert.Equal(t, 1, slot.Depth)
	require.NotNil(t, slot.Owner)
	assert.Equal(t, "Demo.Bar", slot.Owner.QualifiedName)
	assert.Equal(t, "T", slot.Parameter.Name)
	assert.Equal(t, []string{"Bar.T"}, slot.Path)
	assert.Equal(t, "Select type for T of Bar<T>", slot.Title())
	assert.Equal(t, []string{"FloatBox", "IntBox", "SmallIntBox"}, names(slot.Candidates))
}

func TestCancelAtParameterCancelsEverything(t *testing.T) {
	picker := newStubPicker(pick("Demo.Bar"), cancelPick())
	session := newTestSession(t, picker)

	result, err := session.Resolve(context.Background(), catalog.NewConstraints())
	require.NoError(t, err)
	assert.True(t, result.Cancelled())
	assert.Equal(t, CancelByPicker, result.Reason)
	assert.True(t, result.Type.IsZero(), "no closed type may surface on cancellation")
	assert.Equal(t, []string{"Bar.T"}, result.Path)
}

func TestNoCandidatesCancelsWithoutAsking(t *testing.T) {
	picker := newStubPicker(pick("Demo.Baz"))
	session := newTestSession(t, picker)

	result, err := session.Resolve(context.Background(), catalog.NewConstraints())
	require.NoError(t, err)
	assert.True(t, result.Cancelled())
	assert.Equal(t, CancelNoCandidates, result.Reason)
	assert.Len(t, picker.requests, 1, "picker must not be asked for U")
}

func TestNestedGenericResolution(t *testing.T) {
	picker := newStubPicker(pick("Demo.Nest"), pick("Demo.Bar"), pick("Demo.FloatBox"))
	session := newTestSession(t, picker)

	result, err := session.Resolve(context.Background(), catalog.NewConstraints("Module"))
	require.NoError(t, err)
	require.True(t, result.Resolved())
	assert.Equal(t, "Demo.Nest[Demo.Bar[Demo.FloatBox]]", result.Type.QualifiedString())
	assert.Equal(t, 2, result.Type.Depth())

	require.Len(t, picker.requests, 3)
	assert.Equal(t, []int{0, 1, 2}, []int{picker.requests[0].Depth, picker.requests[1].Depth, picker.requests[2].Depth})
	assert.Equal(t, []string{"Nest.X", "Bar.T"}, picker.requests[2].Path)
}

func TestCancelDeepInsideNestedResolution(t *testing.T) {
	picker := newStubPicker(pick("Demo.Nest"), pick("Demo.Bar"), cancelPick())
	session := newTestSession(t, picker)

	result, err := session.Resolve(context.Background(), catalog.NewConstraints())
	require.NoError(t, err)
	assert.True(t, result.Cancelled())
	assert.Equal(t, []string{"Nest.X", "Bar.T"}, result.Path)
	assert.True(t, result.Type.IsZero())
}

func TestCancelAfterEarlierParametersResolved(t *testing.T) {
	picker := newStubPicker(pick("Demo.Pair"), pick("Demo.IntBox"), cancelPick())
	session := newTestSession(t, picker)

	result, err := session.Resolve(context.Background(), catalog.NewConstraints())
	require.NoError(t, err)
	assert.True(t, result.Cancelled())
	assert.True(t, result.Type.IsZero())
	assert.Equal(t, []string{"Pair.B"}, result.Path)
}

func TestDependentConstraintUsesEarlierChoice(t *testing.T) {
	picker := newStubPicker(pick("Demo.Pair"), pick("Demo.IntBox"), pick("Demo.SmallIntBox"))
	session := newTestSession(t, picker)

	result, err := session.Resolve(context.Background(), catalog.NewConstraints())
	require.NoError(t, err)
	require.True(t, result.Resolved())
	assert.Equal(t, "Demo.Pair[Demo.IntBox, Demo.SmallIntBox]", result.Type.QualifiedString())

	second := picker.requests[2]
	assert.True(t, second.Constraints.Equal(catalog.NewConstraints("Demo.IntBox")))
	assert.Equal(t, []string{"IntBox", "SmallIntBox"}, names(second.Candidates))
}

func TestResolveIsRepeatable(t *testing.T) {
	picker := newStubPicker(pick("Demo.Bar"), pick("Demo.IntBox"), pick("Demo.Bar"), pick("Demo.IntBox"))
	session := newTestSession(t, picker)

	first, err := session.Resolve(context.Background(), catalog.NewConstraints())
	require.NoError(t, err)
	second, err := session.Resolve(context.Background(), catalog.NewConstraints())
	require.NoError(t, err)
	assert.Equal(t, first.Type.QualifiedString(), second.Type.QualifiedString())
}

func TestContextCancellationDuringPickIsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	picker := newStubPicker(pick("Demo.Bar"), func(req Request) (string, bool, error) {
		cancel()
		return "Demo.IntBox", true, nil
	})
	session := newTestSession(t, picker)

	result, err := session.Resolve(ctx, catalog.NewConstraints())
	require.NoError(t, err)
	assert.True(t, result.Cancelled())
	assert.Equal(t, CancelByContext, result.Reason)
}

func TestDeadlineSurfacesAsCancellation(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	session := newTestSession(t, PickerFunc(func(ctx context.Context, req Request) (catalog.Type, bool, error) {
		<-ctx.Done()
		return catalog.Type{}, false, ctx.Err()
	}))

	result, err := session.Resolve(ctx, catalog.NewConstraints())
	require.NoError(t, err)
	assert.True(t, result.Cancelled())
	assert.Equal(t, CancelByContext, result.Reason)
}

func TestAlreadyCancelledContextNeverPicks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	picker := newStubPicker()
	session := newTestSession(t, picker)

	result, err := session.Resolve(ctx, catalog.NewConstraints())
	require.NoError(t, err)
	assert.True(t, result.Cancelled())
	assert.Empty(t, picker.requests)
}

func TestPickerFaultIsReturned(t *testing.T) {
	boom := errors.New("terminal gone")
	picker := newStubPicker(func(Request) (string, bool, error) { return "", false, boom })
	session := newTestSession(t, picker)

	_, err := session.Resolve(context.Background(), catalog.NewConstraints())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestPickOutsideCandidateSetIsFault(t *testing.T) {
	picker := newStubPicker(pick("Demo.Bar"), pick("Demo.Foo"))
	session := newTestSession(t, picker)

	_, err := session.Resolve(context.Background(), catalog.NewConstraints())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownPick)
}

func TestMalformedPickAbortsResolution(t *testing.T) {
	broken := &stubCatalog{types: []catalog.Type{{
		QualifiedName: "Demo.Gap",
		Name:          "Gap",
		Parameters: []catalog.Parameter{
			{Name: "A", Position: 0},
			{Name: "B", Position: 3},
		},
	}}}
	picker := newStubPicker(pick("Demo.Gap"))
	session, err := NewSession(broken, picker)
	require.NoError(t, err)

	_, err = session.Resolve(context.Background(), catalog.NewConstraints())
	require.Error(t, err)
	assert.ErrorIs(t, err, catalog.ErrMalformedType)
	assert.Len(t, picker.requests, 1)
}

func TestClosedTypeNeedsNoPicker(t *testing.T) {
	session := newTestSession(t, PickerFunc(func(context.Context, Request) (catalog.Type, bool, error) {
		t.Fatalf("picker must not be consulted for a closed type")
		return catalog.Type{}, false, nil
	}))
	foo, ok := fixtureCatalog(t).Lookup("Demo.Foo")
	require.True(t, ok)

	closed, cancelled, err := freeVariableResolver{session: session}.close(context.Background(), foo)
	require.NoError(t, err)
	assert.Nil(t, cancelled)
	assert.Equal(t, foo, closed.Definition())
	assert.Empty(t, closed.Arguments())
}

func TestEveryGenericResolvesToSatisfyingClosedType(t *testing.T) {
	cat := fixtureCatalog(t)
	matcher := NewMatcher(cat)
	first := PickerFunc(func(_ context.Context, req Request) (catalog.Type, bool, error) {
		// Prefer closed candidates so the walk terminates.
		for _, candidate := range req.Candidates.Types() {
			if !candidate.IsGeneric() {
				return candidate, true, nil
			}
		}
		return req.Candidates.At(0), true, nil
	})
	for _, typ := range cat.AllTypes() {
		if !typ.IsGeneric() || typ.QualifiedName == "Demo.Baz" {
			continue
		}
		t.Run(typ.QualifiedName, func(t *testing.T) {
			session, err := NewSession(cat, first)
			require.NoError(t, err)
			closed, cancelled, err := freeVariableResolver{session: session}.close(context.Background(), typ)
			require.NoError(t, err)
			require.Nil(t, cancelled)
			assertFullyClosed(t, matcher, closed)
		})
	}
}

func TestNewSessionRequiresCollaborators(t *testing.T) {
	_, err := NewSession(nil, newStubPicker())
	assert.Error(t, err)
	_, err = NewSession(fixtureCatalog(t), nil)
	assert.Error(t, err)
}

func TestSessionLogsOutcome(t *testing.T) {
	logger := &recordingLogger{}
	session, err := NewSession(fixtureCatalog(t), newStubPicker(pick("Demo.Bar"), pick("Demo.IntBox")), WithLogger(logger))
	require.NoError(t, err)

	_, err = session.Resolve(context.Background(), catalog.NewConstraints())
	require.NoError(t, err)
	require.NotEmpty(t, logger.lines)
	assert.Contains(t, logger.lines[len(logger.lines)-1], "resolved Demo.Bar[Demo.IntBox]")
}

// assertFullyClosed checks arity, recursive closure and constraint
// satisfaction of every argument.
func assertFullyClosed(t *testing.T, matcher *Matcher, closed catalog.Closed) {
	t.Helper()
	def := closed.Definition()
	args := closed.Arguments()
	require.Len(t, args, len(def.Parameters), "arity of %s", def.QualifiedName)
	bindings := map[string]string{}
	for i, param := range def.OrderedParameters() {
		arg := args[i]
		constraints := param.Constraints.Bind(bindings)
		assert.True(t, matcher.Satisfies(arg.Definition(), constraints), "%s does not satisfy %s", arg.QualifiedName(), constraints)
		assertFullyClosed(t, matcher, arg)
		bindings[param.Name] = arg.QualifiedName()
	}
}

func fixtureCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New(
		[]catalog.Type{
			{QualifiedName: "Demo.Foo", Implements: []string{"Module"}},
			{QualifiedName: "Demo.IntBox", Implements: []string{"Numeric"}},
			{QualifiedName: "Demo.SmallIntBox", Implements: []string{"Demo.IntBox"}},
			{QualifiedName: "Demo.FloatBox", Implements: []string{"Numeric"}},
			{QualifiedName: "Demo.Label", Implements: []string{"Text"}},
			{
				QualifiedName: "Demo.Bar",
				Implements:    []string{"Module"},
				Parameters: []catalog.Parameter{
					{Name: "T", Position: 0, Constraints: catalog.NewConstraints("Numeric")},
				},
			},
			{
				QualifiedName: "Demo.Baz",
				Implements:    []string{"Module"},
				Parameters: []catalog.Parameter{
					{Name: "U", Position: 0, Constraints: catalog.NewConstraints("Unobtainium")},
				},
			},
			{
				QualifiedName: "Demo.Pair",
				Implements:    []string{"Module"},
				Parameters: []catalog.Parameter{
					{Name: "A", Position: 0, Constraints: catalog.NewConstraints("Value")},
					{Name: "B", Position: 1, Constraints: catalog.NewConstraints("@A")},
				},
			},
			{
				QualifiedName: "Demo.Nest",
				Implements:    []string{"Module"},
				Parameters: []catalog.Parameter{
					{Name: "X", Position: 0, Constraints: catalog.NewConstraints("Module")},
				},
			},
		},
		[]catalog.Capability{
			{Name: "Module"},
			{Name: "Value"},
			{Name: "Numeric", Extends: []string{"Value"}},
			{Name: "Text", Extends: []string{"Value"}},
			{Name: "Unobtainium"},
		},
	)
	require.NoError(t, err)
	return c
}

func newTestSession(t *testing.T, picker Picker) *Session {
	t.Helper()
	session, err := NewSession(fixtureCatalog(t), picker, WithParallelism(2))
	require.NoError(t, err)
	return session
}

type pickStep func(Request) (string, bool, error)

func pick(name string) pickStep {
	return func(Request) (string, bool, error) { return name, true, nil }
}

func cancelPick() pickStep {
	return func(Request) (string, bool, error) { return "", false, nil }
}

// stubPicker replays scripted steps and records every request it sees.
type stubPicker struct {
	steps    []pickStep
	requests []Request
}

func newStubPicker(steps ...pickStep) *stubPicker {
	return &stubPicker{steps: steps}
}

func (p *stubPicker) Pick(_ context.Context, req Request) (catalog.Type, bool, error) {
	p.requests = append(p.requests, req)
	if len(p.steps) == 0 {
		return catalog.Type{}, false, nil
	}
	step := p.steps[0]
	p.steps = p.steps[1:]
	name, ok, err := step(req)
	if err != nil || !ok {
		return catalog.Type{}, ok, err
	}
	if found, inSet := req.Candidates.Lookup(name); inSet {
		return found, true, nil
	}
	return catalog.Type{QualifiedName: name}, true, nil
}

type stubCatalog struct {
	types []catalog.Type
}

func (c *stubCatalog) AllTypes() []catalog.Type { return append([]catalog.Type(nil), c.types...) }

func (c *stubCatalog) Known(name string) bool {
	_, ok := c.Bases(name)
	return ok
}

func (c *stubCatalog) Bases(name string) ([]string, bool) {
	for _, t := range c.types {
		if t.QualifiedName == name {
			return t.Implements, true
		}
	}
	return nil, false
}

type recordingLogger struct {
	lines []string
}

func (l *recordingLogger) Printf(format string, args ...any) {
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

func names(set CandidateSet) []string {
	out := make([]string, 0, set.Len())
	for _, t := range set.Types() {
		out = append(out, t.DisplayName())
	}
	return out
}
