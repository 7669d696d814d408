package engine

import (
	"fmt"
	"strings"

	"github.com/kodality/GoFSH/extract"
	"github.com/kodality/GoFSH/pkg/flatten"
	"github.com/kodality/GoFSH/pkg/fsh"
	"github.com/kodality/GoFSH/pkg/structural"
	"github.com/kodality/GoFSH/service"
)

const baseExtensionURL = "http://hl7.org/fhir/StructureDefinition/Extension"

// processStructureDefinition exports a profile or extension: root-level
// caret rules from the inheritance diff, invariants and obeys rules from
// differential constraints, mappings from the mapping array, and per-element
// caret rules with snapshot index reconciliation.
func (e *Exporter) processStructureDefinition(sd *structural.Value, pkg *fsh.Package, seenInvariants map[string]bool) error {
	// Base resource and datatype definitions are fishing context, not
	// convertible artifacts.
	if sd.GetString("derivation") != "constraint" && sd.GetString("kind") != "logical" {
		e.log.Debug("skipping support definition %s", resourceName(sd))
		return nil
	}

	rootRules, err := e.resources.ProcessWithInheritance(sd, e.fisher)
	if err != nil {
		return err
	}
	rules := make([]fsh.Rule, 0, len(rootRules))
	for _, r := range rootRules {
		rules = append(rules, r)
	}
	e.metrics.RecordRules(len(rootRules))

	e.extractMappings(sd, pkg)

	for _, el := range sd.Get("differential").Get("element").Items() {
		claimed := extract.ClaimedPaths{}
		rules = append(rules, e.extractInvariants(el, claimed, pkg, seenInvariants)...)

		elRules, err := e.elements.Process(el, sd, claimed, e.fisher)
		if err != nil {
			return err
		}
		for _, r := range elRules {
			rules = append(rules, r)
		}
		e.metrics.RecordRules(len(elRules))
	}

	name := resourceName(sd)
	id := sd.GetString("id")
	title := sd.GetString("title")
	description := sd.GetString("description")
	parent := e.parentName(sd)

	if sd.GetString("type") == "Extension" && sd.GetString("derivation") == "constraint" {
		pkg.Add(&fsh.Extension{
			EntityName: name, Id: id, Parent: parent,
			Title: title, Description: description, Rules: rules,
		})
	} else {
		pkg.Add(&fsh.Profile{
			EntityName: name, Id: id, Parent: parent,
			Title: title, Description: description, Rules: rules,
		})
	}
	return nil
}

// parentName renders the Parent keyword: the parent's FSH name when it is
// loaded, its canonical URL otherwise. Extensions derived straight from the
// base Extension type omit the keyword.
func (e *Exporter) parentName(sd *structural.Value) string {
	base := sd.GetString("baseDefinition")
	if base == "" || base == baseExtensionURL {
		return ""
	}
	if fished := e.fisher.Fish(base, service.KindResource, service.KindType, service.KindProfile, service.KindExtension, service.KindLogical); fished != nil {
		if name := fished.GetString("name"); name != "" {
			return name
		}
	}
	return base
}

// extractInvariants turns the local constraints of a differential element
// into Invariant entities plus one obeys rule, claiming the constraint
// leaves those entities own so the caret extractor does not re-emit them.
func (e *Exporter) extractInvariants(el *structural.Value, claimed extract.ClaimedPaths, pkg *fsh.Package, seen map[string]bool) []fsh.Rule {
	constraints := el.Get("constraint")
	if constraints.Kind() != structural.KindArray {
		return nil
	}

	var keys []string
	for i, c := range constraints.Items() {
		key := c.GetString("key")
		if key == "" {
			continue
		}
		if !seen[key] {
			seen[key] = true
			inv := &fsh.Invariant{
				EntityName:  key,
				Description: c.GetString("human"),
				Severity:    c.GetString("severity"),
				Expression:  c.GetString("expression"),
				XPath:       c.GetString("xpath"),
			}
			if e.checker != nil {
				if err := e.checker.Check(inv.Expression); err != nil {
					e.log.Warn("invariant %s on element %s: %v", key, el.GetString("id"), err)
					e.metrics.RecordWarning()
				}
			}
			pkg.Add(inv)
		}
		for _, leaf := range []string{"key", "severity", "human", "expression", "xpath", "source"} {
			claimed.Claim(fmt.Sprintf("constraint[%d].%s", i, leaf))
		}
		keys = append(keys, key)
	}
	if len(keys) == 0 {
		return nil
	}
	return []fsh.Rule{&fsh.ObeysRule{
		Path: extract.ElementFSHPath(el.GetString("id")),
		Keys: keys,
	}}
}

// extractMappings turns the resource-level mapping array into Mapping
// entities. Element-level mapping entries stay with the caret extractor,
// which reconciles their indices against the snapshot.
func (e *Exporter) extractMappings(sd *structural.Value, pkg *fsh.Package) {
	for _, m := range sd.Get("mapping").Items() {
		identity := m.GetString("identity")
		if identity == "" {
			continue
		}
		name := m.GetString("name")
		if name == "" {
			name = identity
		}
		if hasMapping(pkg, name) {
			e.log.Debug("mapping %s already exported, skipping duplicate", name)
			continue
		}
		pkg.Add(&fsh.Mapping{
			EntityName:  name,
			Id:          identity,
			Source:      resourceName(sd),
			Target:      m.GetString("uri"),
			Description: m.GetString("comment"),
		})
	}
}

func hasMapping(pkg *fsh.Package, name string) bool {
	for _, m := range pkg.Mappings {
		if m.EntityName == name {
			return true
		}
	}
	return false
}

// processValueSet exports a value set's non-typed-rule properties as caret
// rules.
func (e *Exporter) processValueSet(vs *structural.Value, pkg *fsh.Package) error {
	rules, err := e.resources.ProcessValueSet(vs, e.fisher)
	if err != nil {
		return err
	}
	entity := &fsh.ValueSet{
		EntityName:  resourceName(vs),
		Id:          vs.GetString("id"),
		Title:       vs.GetString("title"),
		Description: vs.GetString("description"),
	}
	for _, r := range rules {
		entity.Rules = append(entity.Rules, r)
	}
	e.metrics.RecordRules(len(rules))
	pkg.Add(entity)
	return nil
}

// processCodeSystem exports a code system's caret rules plus code-scoped
// rules for every node of the concept hierarchy.
func (e *Exporter) processCodeSystem(cs *structural.Value, pkg *fsh.Package) error {
	rules, err := e.resources.ProcessCodeSystem(cs, e.fisher)
	if err != nil {
		return err
	}
	entity := &fsh.CodeSystem{
		EntityName:  resourceName(cs),
		Id:          cs.GetString("id"),
		Title:       cs.GetString("title"),
		Description: cs.GetString("description"),
	}
	for _, r := range rules {
		entity.Rules = append(entity.Rules, r)
	}
	e.metrics.RecordRules(len(rules))

	var walk func(concepts *structural.Value, ancestry []string) error
	walk = func(concepts *structural.Value, ancestry []string) error {
		for _, concept := range concepts.Items() {
			code := concept.GetString("code")
			if code == "" {
				continue
			}
			chain := append(append([]string(nil), ancestry...), code)
			conceptRules, err := e.resources.ProcessConcept(concept, chain, cs, e.fisher)
			if err != nil {
				return err
			}
			for _, r := range conceptRules {
				entity.Rules = append(entity.Rules, r)
			}
			e.metrics.RecordRules(len(conceptRules))
			if err := walk(concept.Get("concept"), chain); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(cs.Get("concept"), nil); err != nil {
		return err
	}

	pkg.Add(entity)
	return nil
}

// Instance leaves owned by the instance keywords.
var instanceIgnoredProperties = []string{"resourceType", "id", "meta.profile"}

// processInstance exports any other resource as an example instance with
// plain assignment rules.
func (e *Exporter) processInstance(resource *structural.Value, pkg *fsh.Package) error {
	resourceType := resource.GetString("resourceType")
	instanceOf := resourceType
	if profile := resource.Get("meta").Get("profile").Item(0); profile != nil {
		instanceOf = profile.StringVal()
		if fished := e.fisher.Fish(instanceOf, service.KindProfile, service.KindExtension); fished != nil {
			if name := fished.GetString("name"); name != "" {
				instanceOf = name
			}
		}
	}

	inst := &fsh.Instance{
		EntityName: resourceName(resource),
		InstanceOf: instanceOf,
		Usage:      fsh.UsageExample,
	}

	entries := flatten.Flatten(resource)
	for i, entry := range entries {
		if ignoredInstancePath(entry.Path) {
			continue
		}
		lit, err := e.resolver.Resolve(i, entries, resourceType, e.fisher)
		if err != nil {
			return fmt.Errorf("resolve value at %s: %w", entry.Path, err)
		}
		if lit.Merged {
			continue
		}
		if lit.IsEmpty() {
			e.log.Error("value at %s of %s resolved to nothing, rule not generated", entry.Path, resourceName(resource))
			e.metrics.RecordSkipped()
			continue
		}
		inst.Rules = append(inst.Rules, &fsh.AssignmentRule{Path: entry.Path, Value: lit.Text})
	}
	e.metrics.RecordRules(len(inst.Rules))
	pkg.Add(inst)
	return nil
}

func ignoredInstancePath(path string) bool {
	for _, key := range instanceIgnoredProperties {
		if path == key || strings.HasPrefix(path, key+".") || strings.HasPrefix(path, key+"[") {
			return true
		}
	}
	return false
}
