package errors

import (
	"fmt"
	"sync"
)

// Collector is an append-only sink for diagnostics. A nil *Collector
// discards everything, which lets optional sinks be passed around freely.
type Collector struct {
	mu   sync.Mutex
	errs []error
}

// Add appends err. Nil errors are ignored.
func (c *Collector) Add(err error) {
	if c == nil || err == nil {
		return
	}
	c.mu.Lock()
	c.errs = append(c.errs, err)
	c.mu.Unlock()
}

// Addf appends a plain formatted diagnostic.
func (c *Collector) Addf(format string, args ...any) {
	c.Add(fmt.Errorf(format, args...))
}

// Merge appends every diagnostic held by other.
func (c *Collector) Merge(other *Collector) {
	for _, err := range other.Errors() {
		c.Add(err)
	}
}

// MergeArtifact appends every diagnostic held by other, attributing parse
// errors that do not yet name an artifact to the given artifact name.
func (c *Collector) MergeArtifact(other *Collector, artifact string) {
	for _, err := range other.Errors() {
		var pe *ParseError
		if As(err, &pe) && pe.Path == "" {
			cp := *pe
			cp.Path = artifact
			err = &cp
		}
		c.Add(err)
	}
}

// Errors returns a copy of the collected diagnostics in insertion order.
func (c *Collector) Errors() []error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]error, len(c.errs))
	copy(out, c.errs)
	return out
}

// Len returns the number of collected diagnostics.
func (c *Collector) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.errs)
}

// Strings renders the collected diagnostics.
func (c *Collector) Strings() []string {
	errs := c.Errors()
	out := make([]string, len(errs))
	for i, err := range errs {
		out[i] = err.Error()
	}
	return out
}
