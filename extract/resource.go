package extract

import (
	"fmt"

	"github.com/kodality/GoFSH/pkg/flatten"
	"github.com/kodality/GoFSH/pkg/fsh"
	"github.com/kodality/GoFSH/pkg/logger"
	"github.com/kodality/GoFSH/pkg/structural"
	"github.com/kodality/GoFSH/service"
)

// Properties of a StructureDefinition owned by other extractors or covered
// by FSH entity keywords. Removed from both diff copies so they never
// produce caret rules.
var sdKeywordProperties = []string{
	"resourceType", "id", "name", "title", "description",
	"baseDefinition", "type", "differential", "snapshot", "mapping",
}

// Properties the compiler clears when deriving one definition from another.
// Removed from the parent copy only, so equality with the parent never
// suppresses them.
var compilerClearedProperties = []string{
	"version", "identifier", "experimental", "date", "publisher",
	"contact", "useContext", "jurisdiction", "purpose", "copyright", "keyword",
}

// Arrays the compiler mutates independently before applying rules. Partial
// index correction against the parent would be unsafe, so any new item
// forces the whole array to be re-emitted.
var extensionCarrierArrays = map[string]bool{
	"extension":         true,
	"modifierExtension": true,
}

// Flat ignore lists for non-derivable resource kinds. Keys match exactly or
// with an array index suffix.
var (
	valueSetIgnoredProperties = []string{
		"resourceType", "id", "name", "title", "description",
		"compose.include", "compose.exclude",
	}
	// count is recomputed by the compiler, so a stale value must not leak
	// into the generated FSH.
	codeSystemIgnoredProperties = []string{
		"resourceType", "id", "name", "title", "description",
		"concept", "count",
	}
	conceptIgnoredProperties = []string{
		"code", "display", "definition", "concept",
	}
)

const defaultStatus = "active"

var parentKinds = []service.Kind{
	service.KindResource, service.KindType, service.KindProfile,
	service.KindExtension, service.KindLogical,
}

// ResourceExtractor produces caret-value rules for whole resources: derived
// definitions diffed against their inherited baseline, flat resources
// filtered by a per-kind ignore list, and concept nodes of code systems.
type ResourceExtractor struct {
	log       *logger.Logger
	resolver  service.ValueResolver
	canonical string
}

// NewResourceExtractor creates a resource extractor. canonical is the
// configured canonical URL base used for url suppression.
func NewResourceExtractor(log *logger.Logger, resolver service.ValueResolver, canonical string) *ResourceExtractor {
	if log == nil {
		log = logger.Nop()
	}
	return &ResourceExtractor{log: log, resolver: resolver, canonical: canonical}
}

// ProcessWithInheritance diffs a derived definition (profile, extension,
// logical) against its resolved parent and returns caret rules for every
// property the compiler would not reproduce on its own.
func (x *ResourceExtractor) ProcessWithInheritance(resource *structural.Value, fisher service.Fisher) ([]*fsh.CaretValueRule, error) {
	resourceType := resource.GetString("resourceType")
	resourceID := resource.GetString("id")

	res := resource.Clone()
	var parent *structural.Value
	parentURL := resource.GetString("baseDefinition")
	if fished := fisher.Fish(parentURL, parentKinds...); fished != nil {
		parent = fished.Clone()
	} else {
		// Diffing against itself still emits the compiler-cleared
		// properties, which is the minimum correct output.
		parent = resource.Clone()
		x.log.Warn("parent %s of %s not found, falling back to self-comparison", parentURL, describeResource(resource))
	}

	for _, prop := range sdKeywordProperties {
		res.Delete(prop)
		parent.Delete(prop)
	}
	if status := res.Get("text").GetString("status"); status == "generated" || status == "extensions" {
		res.Delete("text")
		parent.Delete("text")
	}
	for _, prop := range compilerClearedProperties {
		parent.Delete(prop)
	}

	x.reconcileArrays(res, parent)

	parentPaths := make(map[string]*structural.Value)
	for _, e := range flatten.Flatten(parent) {
		parentPaths[e.Path] = e.Value
	}

	entries := flatten.Flatten(res)
	var rules []*fsh.CaretValueRule
	for i, entry := range entries {
		parentVal, inParent := parentPaths[entry.Path]
		changed := !inParent || !structural.Equal(entry.Value, parentVal)
		// status must be explicit whenever it is not the compiler default,
		// even when it matches the parent: the compiler does not inherit it.
		if entry.Path == "status" && entry.Value.StringVal() != defaultStatus {
			changed = true
		}
		if !changed {
			continue
		}
		if x.suppressURL(entry, resourceType, resourceID) {
			continue
		}
		rule, err := x.resolveRule(i, entries, entry, resourceType, resource, fisher)
		if err != nil {
			return nil, err
		}
		if rule != nil {
			rules = append(rules, rule)
		}
	}
	return rules, nil
}

// reconcileArrays applies the top-level array heuristics: a pure subset of
// the parent array is suppressed entirely, new items in an extension-carrier
// array force the whole array out, and anything else is left for the
// leaf-level diff.
func (x *ResourceExtractor) reconcileArrays(res, parent *structural.Value) {
	members := res.Members()
	keys := make([]string, 0, len(members))
	for _, m := range members {
		keys = append(keys, m.Key)
	}
	for _, key := range keys {
		arr := res.Get(key)
		if arr.Kind() != structural.KindArray || arr.Len() == 0 {
			continue
		}
		parentArr := parent.Get(key)
		switch {
		case structural.Contains(parentArr, arr):
			res.Delete(key)
		case extensionCarrierArrays[key]:
			parent.Delete(key)
		}
	}
}

// ProcessValueSet extracts caret rules for a ValueSet, excluding properties
// owned by typed-rule extractors.
func (x *ResourceExtractor) ProcessValueSet(resource *structural.Value, fisher service.Fisher) ([]*fsh.CaretValueRule, error) {
	return x.processFlat(resource, valueSetIgnoredProperties, fisher)
}

// ProcessCodeSystem extracts caret rules for a CodeSystem, excluding
// properties owned by typed-rule extractors and the concept hierarchy.
func (x *ResourceExtractor) ProcessCodeSystem(resource *structural.Value, fisher service.Fisher) ([]*fsh.CaretValueRule, error) {
	return x.processFlat(resource, codeSystemIgnoredProperties, fisher)
}

func (x *ResourceExtractor) processFlat(resource *structural.Value, ignored []string, fisher service.Fisher) ([]*fsh.CaretValueRule, error) {
	resourceType := resource.GetString("resourceType")
	resourceID := resource.GetString("id")

	entries := flatten.Flatten(resource)
	var rules []*fsh.CaretValueRule
	for i, entry := range entries {
		if matchesAny(entry.Path, ignored) {
			continue
		}
		if x.suppressURL(entry, resourceType, resourceID) {
			continue
		}
		rule, err := x.resolveRule(i, entries, entry, resourceType, resource, fisher)
		if err != nil {
			return nil, err
		}
		if rule != nil {
			rules = append(rules, rule)
		}
	}
	return rules, nil
}

// ProcessConcept extracts caret rules for a single concept node of a code
// system. ancestry lists the codes from the root concept down to and
// including this concept; rules are tagged code-scoped so the renderer can
// nest them.
func (x *ResourceExtractor) ProcessConcept(concept *structural.Value, ancestry []string, codeSystem *structural.Value, fisher service.Fisher) ([]*fsh.CaretValueRule, error) {
	entries := flatten.Flatten(concept)
	filtered := make([]flatten.Entry, 0, len(entries))
	for _, e := range entries {
		if !matchesAny(e.Path, conceptIgnoredProperties) {
			filtered = append(filtered, e)
		}
	}

	var rules []*fsh.CaretValueRule
	for i, entry := range filtered {
		lit, err := x.resolver.Resolve(i, filtered, "CodeSystem", fisher)
		if err != nil {
			return nil, fmt.Errorf("resolve value at %s: %w", entry.Path, err)
		}
		if lit.Merged {
			continue
		}
		if lit.IsEmpty() {
			x.log.Error("value at %s of concept %s in %s resolved to nothing, rule not generated",
				entry.Path, joinConceptPath(ancestry), describeResource(codeSystem))
			continue
		}
		rules = append(rules, &fsh.CaretValueRule{
			CaretPath:       entry.Path,
			Value:           lit.Text,
			IsCodeCaretRule: true,
			PathArray:       append([]string(nil), ancestry...),
		})
	}
	return rules, nil
}

// resolveRule builds a root-level caret rule for one leaf, applying the
// empty-value skip policy.
func (x *ResourceExtractor) resolveRule(i int, entries []flatten.Entry, entry flatten.Entry, resourceType string, resource *structural.Value, fisher service.Fisher) (*fsh.CaretValueRule, error) {
	lit, err := x.resolver.Resolve(i, entries, resourceType, fisher)
	if err != nil {
		return nil, fmt.Errorf("resolve value at %s: %w", entry.Path, err)
	}
	if lit.Merged {
		return nil, nil
	}
	if lit.IsEmpty() {
		x.log.Error("value at %s of %s resolved to nothing, rule not generated", entry.Path, describeResource(resource))
		return nil, nil
	}
	return &fsh.CaretValueRule{CaretPath: entry.Path, Value: lit.Text}, nil
}

// suppressURL drops the url leaf when it matches the conventional canonical
// pattern <canonical>/<ResourceType>/<id>.
func (x *ResourceExtractor) suppressURL(entry flatten.Entry, resourceType, resourceID string) bool {
	if entry.Path != "url" || x.canonical == "" {
		return false
	}
	return entry.Value.StringVal() == x.canonical+"/"+resourceType+"/"+resourceID
}

func matchesAny(path string, keys []string) bool {
	for _, k := range keys {
		if pathMatchesKey(path, k) {
			return true
		}
	}
	return false
}

func joinConceptPath(ancestry []string) string {
	out := ""
	for i, code := range ancestry {
		if i > 0 {
			out += "."
		}
		out += code
	}
	return out
}
