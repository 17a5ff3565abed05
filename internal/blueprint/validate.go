package blueprint

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalid marks a blueprint that violates the structural contract.
var ErrInvalid = errors.New("invalid blueprint")

// Validate checks the invariants every blueprint handed to a caller must hold.
func (b *Blueprint) Validate() error {
	if b == nil {
		return fmt.Errorf("%w: blueprint is nil", ErrInvalid)
	}
	if strings.TrimSpace(b.BehaviorTree.ID) == "" {
		return fmt.Errorf("%w: behavior_tree.id is required", ErrInvalid)
	}
	return validateNode(&b.BehaviorTree, map[string]bool{})
}

func validateNode(n *Node, path map[string]bool) error {
	if strings.TrimSpace(n.ID) == "" {
		return fmt.Errorf("%w: node id is required", ErrInvalid)
	}
	if !n.Status.Valid() {
		return fmt.Errorf("%w: node %s has invalid status %q", ErrInvalid, n.ID, n.Status)
	}
	if path[n.ID] {
		return fmt.Errorf("%w: node id %s repeats along a path", ErrInvalid, n.ID)
	}
	path[n.ID] = true
	defer delete(path, n.ID)
	for i := range n.Children {
		if err := validateNode(&n.Children[i], path); err != nil {
			return err
		}
	}
	return nil
}
