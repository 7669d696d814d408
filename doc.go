// Package gofsh converts fully-resolved FHIR resource definitions into FHIR
// Shorthand (FSH).
//
// The hard problem is the reverse of compilation: given a resource and,
// where one exists, its inherited baseline, find the minimal set of explicit
// caret-value statements that makes the FSH compiler reproduce the original
// resource exactly, without re-triggering the compiler's own default,
// inheritance and clearing behaviors.
//
// # Quick Start
//
//	import (
//	    "github.com/kodality/GoFSH/engine"
//	    gofsh "github.com/kodality/GoFSH"
//	)
//
//	exp, err := engine.New(gofsh.WithCanonical("https://example.org/fhir"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, data := range resourceJSON {
//	    exp.Load(data)
//	}
//	files, err := exp.Export()
//
// # Architecture
//
//   - extract: per-element and whole-resource diffing with snapshot index
//     reconciliation and array heuristics
//   - engine: the pipeline driver that owns the shared statement aggregate
//   - output: strategy-driven group packaging with a generated index
//   - loader: in-memory resource lookup ("fishing") with an LRU cache
//
// Extraction is fully synchronous and deterministic for a fixed input.
// Degraded conditions (unresolvable parent, unreconcilable snapshot index,
// empty resolved value) are logged and recovered per statement; they never
// abort sibling resources.
package gofsh
