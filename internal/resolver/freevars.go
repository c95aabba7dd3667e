package resolver

import (
	"context"
	"fmt"

	"github.com/kingrea/modselect/internal/catalog"
)

// freeVariableResolver closes one picked type by resolving each of its free
// parameters through a child session. Parameters are resolved strictly in
// position order so dependent constraints see every earlier choice.
type freeVariableResolver struct {
	session *Session
	parent  *node
}

func (r freeVariableResolver) close(ctx context.Context, selected catalog.Type) (catalog.Closed, *cancellation, error) {
	if !selected.IsGeneric() {
		closed, err := catalog.Construct(selected, nil)
		return closed, nil, err
	}
	if err := catalog.CheckType(selected, r.session.catalog.Known); err != nil {
		return catalog.Closed{}, nil, fmt.Errorf("resolver: %w", err)
	}
	slot := ""
	if r.session.owner != nil && r.session.param != nil {
		slot = r.session.owner.DisplayName() + "." + r.session.param.Name
	}
	n := newNode(selected, r.parent, slot)
	defer n.abandon()

	for _, param := range n.params {
		constraints := param.Constraints.Bind(n.bindings())
		child := r.session.child(n, selected, param)
		arg, cancelled, err := child.resolve(ctx, constraints)
		if err != nil {
			return catalog.Closed{}, nil, err
		}
		if cancelled != nil {
			r.session.logf("abandon %s at parameter %s (%s)", selected.QualifiedName, param.Name, cancelled.reason)
			return catalog.Closed{}, cancelled, nil
		}
		n.record(param, arg)
		r.session.logf("bound %s.%s = %s", selected.QualifiedName, param.Name, arg.QualifiedString())
	}
	return closeNode(n)
}

func closeNode(n *node) (catalog.Closed, *cancellation, error) {
	closed, err := n.close()
	if err != nil {
		return catalog.Closed{}, nil, err
	}
	return closed, nil, nil
}
