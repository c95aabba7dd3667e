package resolver

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/kingrea/modselect/internal/catalog"
)

// ErrUnknownPick is returned when a picker chooses a type that was not in the
// candidate set it was shown.
var ErrUnknownPick = errors.New("resolver: pick is not a presented candidate")

// Outcome is the kind of result a resolution produced.
type Outcome int

const (
	OutcomeResolved Outcome = iota
	OutcomeCancelled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeResolved:
		return "resolved"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// CancelReason explains a cancelled result. It is diagnostic only; every
// reason is the same Cancelled outcome to callers.
type CancelReason string

const (
	CancelByPicker     CancelReason = "picker"
	CancelNoCandidates CancelReason = "no-candidates"
	CancelByContext    CancelReason = "context"
)

// Result is the single outcome of one Resolve call: either a closed type or a
// cancellation.
type Result struct {
	Outcome Outcome
	// Type is set only when Outcome is OutcomeResolved.
	Type catalog.Closed
	// Reason and Path describe where a cancellation happened.
	Reason CancelReason
	Path   []string
}

// Resolved reports whether a closed type was produced.
func (r Result) Resolved() bool {
	return r.Outcome == OutcomeResolved
}

// Cancelled reports whether the resolution was abandoned.
func (r Result) Cancelled() bool {
	return r.Outcome == OutcomeCancelled
}

type cancellation struct {
	reason CancelReason
	path   []string
}

// Logger receives diagnostic lines. *logging.Logger satisfies it.
type Logger interface {
	Printf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}

// Option customises a Session.
type Option func(*Session)

// WithLogger routes session diagnostics to l.
func WithLogger(l Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithBuilder overrides the candidate set builder.
func WithBuilder(b *Builder) Option {
	return func(s *Session) {
		if b != nil {
			s.builder = b
		}
	}
}

// WithParallelism bounds the goroutines used to filter the catalog.
func WithParallelism(n int) Option {
	return func(s *Session) {
		s.parallelism = n
	}
}

// Session drives one "pick a module" interaction: it presents candidates to
// the picker and, when the pick is open generic, opens a child session for
// every free parameter. Child sessions share the catalog, picker and builder
// of their root.
type Session struct {
	catalog     TypeCatalog
	picker      Picker
	builder     *Builder
	logger      Logger
	parallelism int

	id    string
	depth int
	owner *catalog.Type
	param *catalog.Parameter
	node  *node
}

// NewSession wires a session to its catalog and picker.
func NewSession(c TypeCatalog, picker Picker, opts ...Option) (*Session, error) {
	if c == nil {
		return nil, fmt.Errorf("resolver: type catalog is required")
	}
	if picker == nil {
		return nil, fmt.Errorf("resolver: picker is required")
	}
	s := &Session{catalog: c, picker: picker, logger: nopLogger{}}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.builder == nil {
		s.builder = NewBuilder(c, s.parallelism)
	}
	return s, nil
}

// Resolve runs a full resolution for rootConstraints. Exactly one of a
// resolved or a cancelled Result is returned unless a fault occurs (a
// malformed type, a failing picker, or a pick outside the candidate set), in
// which case the error is returned and nothing is committed.
func (s *Session) Resolve(ctx context.Context, rootConstraints catalog.Constraints) (Result, error) {
	root := &Session{
		catalog: s.catalog,
		picker:  s.picker,
		builder: s.builder,
		logger:  s.logger,
		id:      uuid.NewString(),
	}
	root.logf("resolve %s", rootConstraints)
	closed, cancelled, err := root.resolve(ctx, rootConstraints)
	if err != nil {
		root.logf("failed: %v", err)
		return Result{}, err
	}
	if cancelled != nil {
		root.logf("cancelled (%s) at %s", cancelled.reason, joinPath(cancelled.path))
		return Result{Outcome: OutcomeCancelled, Reason: cancelled.reason, Path: cancelled.path}, nil
	}
	root.logf("resolved %s", closed.QualifiedString())
	return Result{Outcome: OutcomeResolved, Type: closed}, nil
}

func (s *Session) resolve(ctx context.Context, constraints catalog.Constraints) (catalog.Closed, *cancellation, error) {
	req := s.request(constraints)
	if ctx.Err() != nil {
		return catalog.Closed{}, s.cancel(CancelByContext, req), nil
	}
	candidates, err := s.builder.Build(ctx, constraints)
	if err != nil {
		if ctx.Err() != nil {
			return catalog.Closed{}, s.cancel(CancelByContext, req), nil
		}
		return catalog.Closed{}, nil, err
	}
	if candidates.Len() == 0 {
		s.logf("no candidates for %s at %s", constraints, req.Location())
		return catalog.Closed{}, s.cancel(CancelNoCandidates, req), nil
	}
	req.Candidates = candidates
	picked, ok, err := s.picker.Pick(ctx, req)
	if ctx.Err() != nil {
		return catalog.Closed{}, s.cancel(CancelByContext, req), nil
	}
	if err != nil {
		return catalog.Closed{}, nil, fmt.Errorf("resolver: pick at %s: %w", req.Location(), err)
	}
	if !ok {
		return catalog.Closed{}, s.cancel(CancelByPicker, req), nil
	}
	chosen, found := candidates.Lookup(picked.QualifiedName)
	if !found {
		return catalog.Closed{}, nil, fmt.Errorf("%w: %s at %s", ErrUnknownPick, picked.QualifiedName, req.Location())
	}
	s.logf("picked %s at %s", chosen.Signature(), req.Location())
	return freeVariableResolver{session: s, parent: s.node}.close(ctx, chosen)
}

func (s *Session) request(constraints catalog.Constraints) Request {
	req := Request{Constraints: constraints, Depth: s.depth, Owner: s.owner, Parameter: s.param}
	if s.node != nil && s.param != nil {
		req.Path = s.node.path(s.param.Name)
	}
	return req
}

func (s *Session) cancel(reason CancelReason, req Request) *cancellation {
	return &cancellation{reason: reason, path: req.Path}
}

// child opens a session scoped to one free parameter of owner.
func (s *Session) child(n *node, owner catalog.Type, param catalog.Parameter) *Session {
	return &Session{
		catalog: s.catalog,
		picker:  s.picker,
		builder: s.builder,
		logger:  s.logger,
		id:      s.id,
		depth:   s.depth + 1,
		owner:   &owner,
		param:   &param,
		node:    n,
	}
}

func (s *Session) logf(format string, args ...any) {
	prefix := fmt.Sprintf("resolve %s depth=%d: ", shortID(s.id), s.depth)
	s.logger.Printf(prefix+format, args...)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func joinPath(path []string) string {
	return Request{Path: path}.Location()
}
