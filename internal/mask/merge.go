// internal/mask/merge.go
package mask

import "github.com/mwrona/maskfold/internal/types"

/*
 * Merge-with-include canonicalizer.
 *
 * mergeWithInclude folds "this subtree is now entirely included" into an
 * existing complex node. Explicit positive leaves and array ranges become
 * redundant once the wildcard says include, so they are pruned; a node that
 * reduces to exactly {$*: 1} collapses to the scalar include leaf in its
 * parent, keeping composed masks minimal.
 *
 * Callers that cloned an operation subtree use the collapse signal to avoid
 * re-inserting a now-redundant wrapper.
 */

// mergeWithInclude merges mask with the include leaf in place. parent and
// key name the slot holding mask; when the node reduces to a lone positive
// wildcard, the slot is replaced with the scalar include leaf and the
// function reports true.
func mergeWithInclude(mask, parent *Node, key string) bool {
	prunePositive(mask)

	wildcard := mask.Field(types.WildcardKey)
	switch {
	case wildcard == nil:
		wildcard = NewLeaf(types.IncludePolarity)
		mask.SetField(types.WildcardKey, wildcard)
	case wildcard.IsInclude():
		// nothing to do
	case wildcard.kind == KindComplex:
		// a previously-restricted wildcard becomes a restricted-then-opened
		// wildcard; reconcile recursively instead of overwriting
		mergeWithInclude(wildcard, mask, types.WildcardKey)
		wildcard = mask.Field(types.WildcardKey)
	default:
		// an excluding or malformed wildcard keeps the node restrictive;
		// leave it in place
	}

	if mask.Size() == 1 && wildcard.IsInclude() {
		parent.SetField(key, NewLeaf(types.IncludePolarity))
		return true
	}
	return false
}

// prunePositive removes everything an enclosing include makes redundant:
// array-range keys, simple positive leaves, and nested complex children that
// become empty after their own pruning.
func prunePositive(mask *Node) {
	mask.RemoveField(types.StartKey)
	mask.RemoveField(types.CountKey)

	var remove []string
	for name, child := range mask.fields {
		if child.IsInclude() {
			remove = append(remove, name)
			continue
		}
		if child.kind == KindComplex {
			prunePositive(child)
			if child.Size() == 0 {
				remove = append(remove, name)
			}
		}
	}
	for _, name := range remove {
		mask.RemoveField(name)
	}
}
