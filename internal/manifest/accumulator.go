// Package manifest tracks the files a node's top-level configuration must
// reference.
package manifest

// Accumulator records generated file paths in first-registration order.
// It belongs to one generation pass and is not safe for concurrent use.
type Accumulator struct {
	paths []string
	seen  map[string]struct{}
}

// NewAccumulator creates an empty accumulator
func NewAccumulator() *Accumulator {
	return &Accumulator{seen: make(map[string]struct{})}
}

// AddPath records path unless it was already recorded
func (a *Accumulator) AddPath(path string) {
	if _, ok := a.seen[path]; ok {
		return
	}
	a.seen[path] = struct{}{}
	a.paths = append(a.paths, path)
}

// Paths returns the recorded paths in first-registration order
func (a *Accumulator) Paths() []string {
	out := make([]string, len(a.paths))
	copy(out, a.paths)
	return out
}

// Len returns the number of distinct paths
func (a *Accumulator) Len() int {
	return len(a.paths)
}

// Reset forgets every path
func (a *Accumulator) Reset() {
	a.paths = nil
	a.seen = make(map[string]struct{})
}
