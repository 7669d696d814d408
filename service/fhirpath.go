package service

import (
	"fmt"
	"sync"

	"github.com/gofhir/fhirpath"
)

// InvariantChecker compile-checks the FHIRPath expressions carried by
// element constraints. The exporter never evaluates invariants, but an
// expression that does not compile will fail downstream compilation of the
// generated FSH, so it is worth a warning at extraction time.
type InvariantChecker struct {
	mu    sync.Mutex
	cache map[string]error
}

// NewInvariantChecker creates a new checker with an empty compile cache.
func NewInvariantChecker() *InvariantChecker {
	return &InvariantChecker{
		cache: make(map[string]error),
	}
}

// Check compiles the expression and returns the compile error, if any.
// Results are cached per expression string.
func (c *InvariantChecker) Check(expression string) error {
	if expression == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err, ok := c.cache[expression]; ok {
		return err
	}

	var checkErr error
	if _, err := fhirpath.Compile(expression); err != nil {
		checkErr = fmt.Errorf("invalid FHIRPath expression %q: %w", expression, err)
	}
	c.cache[expression] = checkErr
	return checkErr
}

// CacheSize returns the number of cached expressions.
func (c *InvariantChecker) CacheSize() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.cache)
}
