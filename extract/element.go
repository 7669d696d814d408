package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/kodality/GoFSH/pkg/flatten"
	"github.com/kodality/GoFSH/pkg/fsh"
	"github.com/kodality/GoFSH/pkg/logger"
	"github.com/kodality/GoFSH/pkg/structural"
	"github.com/kodality/GoFSH/service"
)

// ClaimedPaths records the leaf paths of one element already emitted by a
// typed-rule extractor. A claimed path is never re-emitted as a caret rule.
type ClaimedPaths map[string]bool

// Claim marks paths as processed.
func (c ClaimedPaths) Claim(paths ...string) {
	for _, p := range paths {
		c[p] = true
	}
}

var (
	constraintIndexRe = regexp.MustCompile(`^constraint\[(\d+)\]`)
	mappingIndexRe    = regexp.MustCompile(`^mapping\[(\d+)\]`)
)

// ElementExtractor produces caret-value rules for a single differential
// element, reconciling constraint and mapping indices against the snapshot.
type ElementExtractor struct {
	log      *logger.Logger
	resolver service.ValueResolver
	checker  *service.InvariantChecker
}

// NewElementExtractor creates an element extractor.
func NewElementExtractor(log *logger.Logger, resolver service.ValueResolver, checker *service.InvariantChecker) *ElementExtractor {
	if log == nil {
		log = logger.Nop()
	}
	return &ElementExtractor{log: log, resolver: resolver, checker: checker}
}

// Process extracts caret rules for element, owned by sd. claimed may carry
// paths already emitted by typed-rule extractors; the element's own id and
// path leaves are claimed unconditionally. Rules are returned in document
// order. Per-entry resolution failures are soft; a resolver fault aborts the
// element.
func (x *ElementExtractor) Process(element, sd *structural.Value, claimed ClaimedPaths, fisher service.Fisher) ([]*fsh.CaretValueRule, error) {
	if claimed == nil {
		claimed = ClaimedPaths{}
	}
	claimed.Claim("id", "path")

	all := flatten.Flatten(element)
	entries := make([]flatten.Entry, 0, len(all))
	for _, e := range all {
		if !claimed[e.Path] {
			entries = append(entries, e)
		}
	}

	elementPath := ElementFSHPath(element.GetString("id"))
	checkedConstraints := map[int]bool{}

	var rules []*fsh.CaretValueRule
	for i, entry := range entries {
		lit, err := x.resolver.Resolve(i, entries, "ElementDefinition", fisher)
		if err != nil {
			return nil, fmt.Errorf("resolve value at %s of %s: %w", entry.Path, element.GetString("id"), err)
		}
		if lit.Merged {
			claimed[entry.Path] = true
			continue
		}
		if lit.IsEmpty() {
			x.log.Error("value at %s of element %s in %s resolved to nothing, rule not generated",
				entry.Path, element.GetString("id"), describeResource(sd))
			continue
		}

		rule := &fsh.CaretValueRule{Path: elementPath, CaretPath: entry.Path, Value: lit.Text}
		if m := constraintIndexRe.FindStringSubmatch(entry.Path); m != nil {
			idx, _ := strconv.Atoi(m[1])
			x.reconcileIndex(rule, element, sd, "constraint", idx)
			x.checkConstraintExpression(element, idx, checkedConstraints)
		} else if m := mappingIndexRe.FindStringSubmatch(entry.Path); m != nil {
			idx, _ := strconv.Atoi(m[1])
			x.reconcileIndex(rule, element, sd, "mapping", idx)
		}

		claimed[entry.Path] = true
		rules = append(rules, rule)
	}
	return rules, nil
}

// reconcileIndex rewrites the differential-relative array index in the
// rule's caret path to the snapshot-relative index. Constraints correspond
// by key; mappings have no identity key and correspond by whole-entry
// structural equality. An unreconcilable index is left as-is with an inline
// warning comment.
func (x *ElementExtractor) reconcileIndex(rule *fsh.CaretValueRule, element, sd *structural.Value, prop string, diffIdx int) {
	warn := func(format string, args ...any) {
		rule.Comment = "WARNING: The " + prop + " index in this rule may be incorrect. It could not be verified against the snapshot."
		x.log.Warn(format, args...)
	}

	diffEntry := element.Get(prop).Item(diffIdx)
	if diffEntry == nil {
		warn("%s[%d] of element %s in %s has no entry in the differential", prop, diffIdx, element.GetString("id"), describeResource(sd))
		return
	}

	snapEl := findSnapshotElement(sd, element.GetString("id"))
	if snapEl == nil {
		warn("no snapshot element matching %s in %s, %s index left as-is", element.GetString("id"), describeResource(sd), prop)
		return
	}

	for j, snapEntry := range snapEl.Get(prop).Items() {
		var match bool
		if prop == "constraint" {
			key := diffEntry.GetString("key")
			match = key != "" && snapEntry.GetString("key") == key
		} else {
			match = structural.Equal(snapEntry, diffEntry)
		}
		if match {
			if j != diffIdx {
				rule.CaretPath = strings.Replace(rule.CaretPath,
					prop+"["+strconv.Itoa(diffIdx)+"]",
					prop+"["+strconv.Itoa(j)+"]", 1)
			}
			return
		}
	}
	warn("no snapshot %s matching %s[%d] of element %s in %s, index left as-is", prop, prop, diffIdx, element.GetString("id"), describeResource(sd))
}

// checkConstraintExpression compile-checks a constraint's FHIRPath
// expression once per constraint index. A failed compile only warns: the
// rule is still produced, but the generated FSH will not compile until the
// expression is fixed.
func (x *ElementExtractor) checkConstraintExpression(element *structural.Value, idx int, checked map[int]bool) {
	if x.checker == nil || checked[idx] {
		return
	}
	checked[idx] = true
	constraint := element.Get("constraint").Item(idx)
	expr := constraint.GetString("expression")
	if expr == "" {
		return
	}
	if err := x.checker.Check(expr); err != nil {
		x.log.Warn("constraint %s on element %s: %v", constraint.GetString("key"), element.GetString("id"), err)
	}
}
