// internal/mask/fieldpath.go
package mask

import "strings"

// Path is the dotted field path of the node an instruction is composing.
// Purely diagnostic: it names where an error occurred and has no effect on
// composition results.
type Path []string

// With returns a new path extended by one field. The receiver is never
// mutated; queued instructions share path prefixes safely.
func (p Path) With(field string) Path {
	out := make(Path, len(p)+1)
	copy(out, p)
	out[len(p)] = field
	return out
}

// String renders the path in dotted form ("a.b.c"). The root path renders
// empty.
func (p Path) String() string {
	return strings.Join(p, ".")
}
