// Package hierarchy decides whether a (node type, supplier) pair may be
// written and which level the node ends up on.
//
// Levels start at 0 for factories and grow by one per supplier hop. The
// network is capped at three levels (0, 1, 2); since a node's level is
// always its supplier's level plus one, the cap also rules out cycles,
// apart from a node naming itself, which is rejected explicitly.
package hierarchy

import (
	"errors"

	"tradenet/internal/model"

	"github.com/google/uuid"
)

// MaxLevel is the deepest level a node may occupy.
const MaxLevel = 2

var (
	ErrFactoryWithSupplier = &ValidationError{Reason: "factory must not have a supplier"}
	ErrMissingSupplier     = &ValidationError{Reason: "non-factory node requires a supplier"}
	ErrDepthExceeded       = &ValidationError{Reason: "hierarchy depth exceeds maximum (3 levels)"}
	ErrUnresolvedSupplier  = &ValidationError{Reason: "supplier not found"}
	ErrSelfSupplier        = &ValidationError{Reason: "node cannot be its own supplier"}
	ErrUnknownNodeType     = &ValidationError{Reason: "unknown node type"}
)

// ValidationError is a rejected write. Reason is safe to show to callers.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// Is matches on reason so wrapped copies compare equal to the sentinels.
func (e *ValidationError) Is(target error) bool {
	var t *ValidationError
	if !errors.As(target, &t) {
		return false
	}
	return t.Reason == e.Reason
}

// Reject builds a ValidationError for rules outside the hierarchy itself
// (bad product references, negative debt).
func Reject(reason string) error {
	return &ValidationError{Reason: reason}
}

// IsValidation reports whether err is, or wraps, a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// Validate returns the level a node of type nodeType gets when supplied by
// supplier. supplier is nil when the write carries no supplier, or when the
// reference could not be resolved.
func Validate(nodeType model.NodeType, supplier *model.NetworkNode) (int, error) {
	if !nodeType.Valid() {
		return 0, ErrUnknownNodeType
	}
	if nodeType == model.NodeTypeFactory {
		if supplier != nil {
			return 0, ErrFactoryWithSupplier
		}
		return 0, nil
	}
	if supplier == nil {
		return 0, ErrMissingSupplier
	}
	if supplier.Level >= MaxLevel {
		return 0, ErrDepthExceeded
	}
	return supplier.Level + 1, nil
}

// ValidateMove checks a re-validated update of an existing node. depth is
// how many levels of dependents hang below the node (0 when it supplies
// nobody). Every dependent shifts with the node, so the deepest one must
// still fit under MaxLevel.
func ValidateMove(nodeID uuid.UUID, nodeType model.NodeType, supplier *model.NetworkNode, depth int) (int, error) {
	if supplier != nil && supplier.ID == nodeID {
		return 0, ErrSelfSupplier
	}
	level, err := Validate(nodeType, supplier)
	if err != nil {
		return 0, err
	}
	if level+depth > MaxLevel {
		return 0, ErrDepthExceeded
	}
	return level, nil
}
