// internal/mask/context.go
package mask

import "fmt"

/*
 * Interpreter context: work queue and diagnostics sink.
 *
 * One context is owned by a single top-level Compose call and destroyed when
 * it returns; nothing here is shared across calls. The queue is FIFO:
 * nested compositions scheduled while processing a node run only after its
 * queued siblings, so one pass has recursion depth proportional to queue
 * dequeues rather than tree depth. This matters for masks whose nesting
 * depth is caller-controlled.
 *
 * Error accumulation is non-fatal at the engine level: a malformed subtree
 * records a diagnostic and aborts only the instruction that found it. The
 * caller inspects the diagnostics list and decides what is fatal.
 */

// Diagnostic is one recorded composition error: a human-readable message and
// the field path at which it occurred.
type Diagnostic struct {
	Path    string
	Message string
}

// instruction is one pending composition task: a mutable data subtree, a
// read-only operation subtree, and the path that reached them. Instructions
// are consumed exactly once and never re-enqueued.
type instruction struct {
	data *Node
	op   *Node
	path Path
}

// interpreterContext drives one composition call.
type interpreterContext struct {
	queue []instruction
	diags []Diagnostic

	// current position, used only when recording diagnostics
	path  Path
	field string
}

// schedule appends an instruction to the queue.
func (c *interpreterContext) schedule(in instruction) {
	c.queue = append(c.queue, in)
}

// next pops the oldest pending instruction. FIFO order; see package comment.
func (c *interpreterContext) next() (instruction, bool) {
	if len(c.queue) == 0 {
		return instruction{}, false
	}
	in := c.queue[0]
	c.queue = c.queue[1:]
	return in, true
}

// enter positions the context at an instruction for diagnostics.
func (c *interpreterContext) enter(in instruction) {
	c.path = in.path
	c.field = ""
}

// setField records the field currently being composed; diagnostics raised
// until the next setField or enter are attributed to it.
func (c *interpreterContext) setField(name string) {
	c.field = name
}

// errorf records a diagnostic at the current path and field.
func (c *interpreterContext) errorf(format string, args ...any) {
	p := c.path
	if c.field != "" {
		p = c.path.With(c.field)
	}
	c.diags = append(c.diags, Diagnostic{
		Path:    p.String(),
		Message: fmt.Sprintf(format, args...),
	})
}
