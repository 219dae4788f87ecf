// internal/mask/compose.go
package mask

import (
	"github.com/mwrona/maskfold/internal/types"
)

/*
 * Mask composition interpreter.
 *
 * Compose merges two projection masks into the mask equivalent to applying
 * both in sequence: the "data" mask is mutated in place to hold the result,
 * the "operation" mask is never modified. A caller seeds the queue with one
 * instruction (root data, root operation, empty path); the interpreter
 * drains the queue until empty.
 *
 * Per-instruction flow:
 *   1. Type gate: both sides must be complex; otherwise record a diagnostic
 *      and drop the instruction (siblings already queued still run).
 *   2. Negative-wildcard short-circuit: $*=0 on either side collapses the
 *      data node to exactly {$*: 0}.
 *   3. Array-range composition: union of [start, start+count) intervals with
 *      defaults (0, unlimited); defaults are never materialized.
 *   4. Per-field composition via the rule table in composeField. Fields are
 *      independent; one failure does not block the others.
 *
 * Ownership: any graft of operation content into data deep-clones first, so
 * a shared template mask can serve as the operation side of many concurrent
 * calls without synchronization.
 */

// Compose merges op into data in place and returns the ordered diagnostics
// accumulated while doing so. data must be exclusively owned by the caller;
// op is treated as read-only and may be shared.
func Compose(data, op *Node) []Diagnostic {
	ctx := &interpreterContext{}
	ctx.schedule(instruction{data: data, op: op})
	for {
		in, ok := ctx.next()
		if !ok {
			break
		}
		ctx.interpret(in)
	}
	return ctx.diags
}

// interpret performs one level of composition for a single instruction.
func (c *interpreterContext) interpret(in instruction) {
	c.enter(in)

	if in.data == nil || in.op == nil ||
		in.data.kind != KindComplex || in.op.kind != KindComplex {
		c.errorf("data and operation masks in a composition instruction must both be complex values")
		return
	}

	data, op := in.data, in.op

	// Composition with an all-excluding mask is always all-excluding,
	// regardless of the other side's content.
	if op.Field(types.WildcardKey).IsExclude() || data.Field(types.WildcardKey).IsExclude() {
		data.fields = map[string]*Node{types.WildcardKey: NewLeaf(types.ExcludePolarity)}
		return
	}

	c.composeRange(data, op)

	dataWildcard := data.Field(types.WildcardKey)
	for _, name := range op.FieldNames() {
		if name == types.StartKey || name == types.CountKey {
			continue
		}
		c.composeField(name, op.fields[name], data.fields[name], data, dataWildcard)
	}
}

// composeRange merges the array-range directives of both sides and stores
// the result on data. The composed interval is the union:
//
//	start = min(s1, s2)
//	count = max(s1+c1, s2+c2) - start
//
// with defaults start=0 and count=unlimited for absent keys. Values are
// stored only when they differ from the defaults; a default value removes
// the key. An invalid value on either side records a diagnostic and leaves
// data's own range keys untouched.
func (c *interpreterContext) composeRange(data, op *Node) {
	startData, okSD := c.rangeValue(data, types.StartKey, types.DefaultRangeStart)
	startOp, okSO := c.rangeValue(op, types.StartKey, types.DefaultRangeStart)
	countData, okCD := c.rangeValue(data, types.CountKey, types.MaxRangeCount)
	countOp, okCO := c.rangeValue(op, types.CountKey, types.MaxRangeCount)

	if !(okSD && okSO && okCD && okCO) {
		return
	}

	start := min64(startData, startOp)
	count := max64(startData+countData, startOp+countOp) - start
	if count >= types.MaxRangeCount {
		// interval extends past the unlimited sentinel
		count = types.MaxRangeCount
	}

	c.storeNonDefault(data, types.StartKey, types.DefaultRangeStart, start)
	c.storeNonDefault(data, types.CountKey, types.MaxRangeCount, count)
}

// rangeValue reads a range key with a default for absence. Reports validity:
// a non-integer, negative, or over-sentinel value records a diagnostic and
// invalidates the whole range composition for this instruction.
func (c *interpreterContext) rangeValue(n *Node, key string, def int64) (int64, bool) {
	entry := n.Field(key)
	if entry == nil {
		return def, true
	}
	c.setField(key)
	if entry.kind != KindLeaf {
		c.errorf("value of %s should be an integer, but is of type %s", key, entry.kind)
		c.setField("")
		return 0, false
	}
	if entry.leaf < 0 {
		c.errorf("value of %s must be non-negative, but is %d", key, entry.leaf)
		c.setField("")
		return 0, false
	}
	if entry.leaf > types.MaxRangeCount {
		c.errorf("value of %s must not exceed %d, but is %d", key, types.MaxRangeCount, entry.leaf)
		c.setField("")
		return 0, false
	}
	c.setField("")
	return entry.leaf, true
}

// storeNonDefault writes value under key, removing the key entirely when the
// value equals its default. Defaults are canonically omitted.
func (c *interpreterContext) storeNonDefault(data *Node, key string, def, value int64) {
	if value == def {
		data.RemoveField(key)
	} else {
		data.SetField(key, NewLeaf(value))
	}
}

// composeField applies the field rule table for one operation-side field.
//
//	dataMask  x opMask   -> action on data[name]
//	absent      any         copy op value (skipped for a redundant include
//	                        when data's wildcard already includes)
//	include     leaf v      min(1, v); exclude dominates
//	include     complex     clone op subtree, fold via mergeWithInclude
//	exclude     leaf        nothing; exclude already dominates
//	exclude     complex     diagnostic, data untouched (see note below)
//	complex     exclude     replace with the exclude leaf
//	complex     include     fold data subtree via mergeWithInclude
//	complex     complex     schedule a nested instruction
//	opaque      any         diagnostic, untouched
//	any         opaque      diagnostic, untouched
//
// The exclude-data/complex-op pairing is deliberately a diagnostic: the
// exclusion already dominates, and silently descending into the operation
// subtree would imply detail that can never be serialized.
func (c *interpreterContext) composeField(name string, opMask, dataMask, data, dataWildcard *Node) {
	c.setField(name)

	switch {
	case dataMask == nil:
		// avoid materializing an include the wildcard already implies
		if opMask.IsInclude() && dataWildcard.IsInclude() {
			return
		}
		copied, err := opMask.Clone()
		if err != nil {
			c.errorf("could not clone operation mask: %v", err)
			return
		}
		data.SetField(name, copied)

	case dataMask.kind == KindLeaf:
		c.composeLeafField(name, opMask, dataMask, data)

	case dataMask.kind == KindComplex:
		c.composeComplexField(name, opMask, dataMask, data)

	default:
		c.errorf("field mask value of unsupported type: %T", dataMask.raw)
	}
}

// composeLeafField handles a leaf on the data side.
func (c *interpreterContext) composeLeafField(name string, opMask, dataMask, data *Node) {
	if !validPolarity(dataMask.leaf) {
		c.errorf("mask value must be 0 or 1, but is %d", dataMask.leaf)
		return
	}

	if dataMask.leaf == types.ExcludePolarity {
		switch opMask.kind {
		case KindLeaf:
			// exclude dominates; nothing to merge
		case KindComplex:
			c.errorf("complex operation mask cannot be composed with an excluded field")
		default:
			c.errorf("field mask value of unsupported type: %T", opMask.raw)
		}
		return
	}

	// data side includes
	switch opMask.kind {
	case KindLeaf:
		if !validPolarity(opMask.leaf) {
			c.errorf("mask value must be 0 or 1, but is %d", opMask.leaf)
			return
		}
		data.SetField(name, NewLeaf(min64(dataMask.leaf, opMask.leaf)))
	case KindComplex:
		copied, err := opMask.Clone()
		if err != nil {
			c.errorf("could not clone operation mask: %v", err)
			return
		}
		if !mergeWithInclude(copied, data, name) {
			data.SetField(name, copied)
		}
	default:
		c.errorf("field mask value of unsupported type: %T", opMask.raw)
	}
}

// composeComplexField handles a complex node on the data side.
func (c *interpreterContext) composeComplexField(name string, opMask, dataMask, data *Node) {
	switch opMask.kind {
	case KindLeaf:
		if !validPolarity(opMask.leaf) {
			c.errorf("mask value must be 0 or 1, but is %d", opMask.leaf)
			return
		}
		if opMask.leaf == types.ExcludePolarity {
			data.SetField(name, NewLeaf(types.ExcludePolarity))
		} else {
			mergeWithInclude(dataMask, data, name)
		}
	case KindComplex:
		// deferred recursive composition; runs after this instruction's
		// remaining siblings
		c.schedule(instruction{data: dataMask, op: opMask, path: c.path.With(name)})
	default:
		c.errorf("field mask value of unsupported type: %T", opMask.raw)
	}
}

func validPolarity(v int64) bool {
	return v == types.ExcludePolarity || v == types.IncludePolarity
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
