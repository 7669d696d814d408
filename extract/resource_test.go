package extract

import (
	"testing"

	"github.com/kodality/GoFSH/pkg/logger"
	"github.com/kodality/GoFSH/pkg/structural"
)

const parentPatientURL = "http://hl7.org/fhir/StructureDefinition/Patient"

func parentPatient() *structural.Value {
	return structural.MustDecode(`{
		"resourceType": "StructureDefinition",
		"id": "Patient",
		"url": "http://hl7.org/fhir/StructureDefinition/Patient",
		"name": "Patient",
		"status": "active",
		"fhirVersion": "4.0.1",
		"experimental": false,
		"publisher": "HL7",
		"abstract": false
	}`)
}

func newResourceExtractor(canonical string) *ResourceExtractor {
	return NewResourceExtractor(logger.Nop(), FSHValueResolver{}, canonical)
}

func TestProcessWithInheritance_DiffAgainstParent(t *testing.T) {
	resource := structural.MustDecode(`{
		"resourceType": "StructureDefinition",
		"id": "my-patient",
		"url": "http://example.org/fhir/StructureDefinition/my-patient",
		"name": "MyPatient",
		"baseDefinition": "http://hl7.org/fhir/StructureDefinition/Patient",
		"status": "draft",
		"fhirVersion": "4.0.1",
		"experimental": true,
		"abstract": false
	}`)
	fisher := stubFisher{parentPatientURL: parentPatient()}

	rules, err := newResourceExtractor("http://example.org/fhir").ProcessWithInheritance(resource, fisher)
	if err != nil {
		t.Fatalf("ProcessWithInheritance: %v", err)
	}

	got := map[string]string{}
	for _, r := range rules {
		got[r.CaretPath] = r.Value
	}

	// status differs and is non-default; experimental is compiler-cleared so
	// it must appear even though it has a value on the parent too.
	if got["status"] != "#draft" {
		t.Errorf("status = %q; want #draft", got["status"])
	}
	if got["experimental"] != "true" {
		t.Errorf("experimental = %q; want true", got["experimental"])
	}
	// fhirVersion and abstract match the parent.
	if _, ok := got["fhirVersion"]; ok {
		t.Error("fhirVersion matches parent and should be suppressed")
	}
	if _, ok := got["abstract"]; ok {
		t.Error("abstract matches parent and should be suppressed")
	}
	// url follows the canonical pattern and is derivable.
	if _, ok := got["url"]; ok {
		t.Error("derivable url should be suppressed")
	}
	// keyword-owned properties never produce caret rules.
	for _, path := range []string{"id", "name", "baseDefinition", "resourceType"} {
		if _, ok := got[path]; ok {
			t.Errorf("%s is keyword-owned and should not appear", path)
		}
	}
}

func TestProcessWithInheritance_NonDefaultStatusAlwaysExplicit(t *testing.T) {
	resource := structural.MustDecode(`{
		"resourceType": "StructureDefinition",
		"id": "my-patient",
		"name": "MyPatient",
		"baseDefinition": "http://hl7.org/fhir/StructureDefinition/Patient",
		"status": "retired"
	}`)
	parent := parentPatient()
	parent.Set("status", structural.String("retired"))
	fisher := stubFisher{parentPatientURL: parent}

	rules, err := newResourceExtractor("").ProcessWithInheritance(resource, fisher)
	if err != nil {
		t.Fatalf("ProcessWithInheritance: %v", err)
	}
	found := false
	for _, r := range rules {
		if r.CaretPath == "status" && r.Value == "#retired" {
			found = true
		}
	}
	if !found {
		t.Error("non-default status equal to parent must still be emitted")
	}
}

func TestProcessWithInheritance_MissingParentFallsBackToSelf(t *testing.T) {
	resource := structural.MustDecode(`{
		"resourceType": "StructureDefinition",
		"id": "my-patient",
		"name": "MyPatient",
		"baseDefinition": "http://nowhere/StructureDefinition/Gone",
		"status": "active",
		"publisher": "Acme",
		"abstract": false
	}`)

	log := logger.Nop()
	x := NewResourceExtractor(log, FSHValueResolver{}, "")
	rules, err := x.ProcessWithInheritance(resource, stubFisher{})
	if err != nil {
		t.Fatalf("ProcessWithInheritance: %v", err)
	}
	if log.Count(logger.LevelWarn) == 0 {
		t.Error("missing parent should be warned about")
	}

	got := map[string]string{}
	for _, r := range rules {
		got[r.CaretPath] = r.Value
	}
	// Self-comparison still surfaces compiler-cleared properties...
	if got["publisher"] != `"Acme"` {
		t.Errorf("publisher = %q; want \"Acme\"", got["publisher"])
	}
	// ...but suppresses everything that equals itself.
	if _, ok := got["abstract"]; ok {
		t.Error("abstract should be suppressed under self-comparison")
	}
	// active status equal to the default stays quiet.
	if _, ok := got["status"]; ok {
		t.Error("default status should be suppressed under self-comparison")
	}
}

func TestReconcileArrays_SubsetSuppressed(t *testing.T) {
	resource := structural.MustDecode(`{
		"resourceType": "StructureDefinition",
		"id": "my-patient",
		"name": "MyPatient",
		"baseDefinition": "http://hl7.org/fhir/StructureDefinition/Patient",
		"status": "active",
		"contact": [{"name": "a"}]
	}`)
	parent := parentPatient()
	parent.Set("contact", structural.MustDecode(`[{"name": "a"}, {"name": "b"}]`))
	fisher := stubFisher{parentPatientURL: parent}

	rules, err := newResourceExtractor("").ProcessWithInheritance(resource, fisher)
	if err != nil {
		t.Fatalf("ProcessWithInheritance: %v", err)
	}
	for _, r := range rules {
		if r.CaretPath == "contact[0].name" {
			t.Error("subset array should be suppressed entirely")
		}
	}
}

func TestReconcileArrays_ExtensionCarrierReemitted(t *testing.T) {
	resource := structural.MustDecode(`{
		"resourceType": "StructureDefinition",
		"id": "my-patient",
		"name": "MyPatient",
		"baseDefinition": "http://hl7.org/fhir/StructureDefinition/Patient",
		"status": "active",
		"extension": [
			{"url": "http://example.org/ext-a", "valueBoolean": true},
			{"url": "http://example.org/ext-b", "valueBoolean": false}
		]
	}`)
	parent := parentPatient()
	parent.Set("extension", structural.MustDecode(`[{"url": "http://example.org/ext-a", "valueBoolean": true}]`))
	fisher := stubFisher{parentPatientURL: parent}

	rules, err := newResourceExtractor("").ProcessWithInheritance(resource, fisher)
	if err != nil {
		t.Fatalf("ProcessWithInheritance: %v", err)
	}
	paths := map[string]bool{}
	for _, r := range rules {
		paths[r.CaretPath] = true
	}
	// A new entry forces the whole carrier array out, inherited entry
	// included, so index correction is never partial.
	for _, want := range []string{
		"extension[0].url", "extension[0].valueBoolean",
		"extension[1].url", "extension[1].valueBoolean",
	} {
		if !paths[want] {
			t.Errorf("missing re-emitted path %s", want)
		}
	}
}

func TestReconcileArrays_ChangedItemEmitsOnlyChangedLeaves(t *testing.T) {
	resource := structural.MustDecode(`{
		"resourceType": "StructureDefinition",
		"id": "my-ext",
		"baseDefinition": "http://hl7.org/fhir/StructureDefinition/Patient",
		"status": "active",
		"context": [
			{"type": "element", "expression": "Patient"},
			{"type": "element", "expression": "Person"},
			{"type": "element", "expression": "Practitioner"}
		]
	}`)
	parent := parentPatient()
	parent.Set("context", structural.MustDecode(`[
		{"type": "element", "expression": "Patient"},
		{"type": "element", "expression": "Person"},
		{"type": "element", "expression": "RelatedPerson"}
	]`))
	fisher := stubFisher{parentPatientURL: parent}

	rules, err := newResourceExtractor("").ProcessWithInheritance(resource, fisher)
	if err != nil {
		t.Fatalf("ProcessWithInheritance: %v", err)
	}
	got := map[string]string{}
	for _, r := range rules {
		got[r.CaretPath] = r.Value
	}
	if got["context[2].expression"] != `"Practitioner"` {
		t.Errorf("context[2].expression = %q; want the changed leaf emitted", got["context[2].expression"])
	}
	// Unchanged items and the unchanged leaf of the changed item stay out.
	for _, path := range []string{
		"context[0].type", "context[0].expression",
		"context[1].type", "context[1].expression",
		"context[2].type",
	} {
		if _, ok := got[path]; ok {
			t.Errorf("%s matches the parent and should be suppressed", path)
		}
	}
}

func TestProcessValueSet(t *testing.T) {
	vs := structural.MustDecode(`{
		"resourceType": "ValueSet",
		"id": "my-vs",
		"url": "http://example.org/fhir/ValueSet/my-vs",
		"name": "MyVS",
		"title": "My VS",
		"status": "draft",
		"immutable": true,
		"compose": {
			"include": [{"system": "http://example.org/cs"}],
			"lockedDate": "2020-01-01"
		}
	}`)

	rules, err := newResourceExtractor("http://example.org/fhir").ProcessValueSet(vs, nil)
	if err != nil {
		t.Fatalf("ProcessValueSet: %v", err)
	}
	got := map[string]string{}
	for _, r := range rules {
		got[r.CaretPath] = r.Value
	}
	if got["status"] != "#draft" {
		t.Errorf("status = %q; want #draft", got["status"])
	}
	if got["immutable"] != "true" {
		t.Errorf("immutable = %q; want true", got["immutable"])
	}
	// compose.include is owned by typed rules, but other compose children
	// remain caret-expressible.
	if _, ok := got["compose.include[0].system"]; ok {
		t.Error("compose.include should be excluded")
	}
	if got["compose.lockedDate"] != "2020-01-01" {
		t.Errorf("compose.lockedDate = %q; want bare date", got["compose.lockedDate"])
	}
	if _, ok := got["url"]; ok {
		t.Error("derivable url should be suppressed")
	}
}

func TestProcessValueSet_NonDerivableURLEmitted(t *testing.T) {
	vs := structural.MustDecode(`{
		"resourceType": "ValueSet",
		"id": "my-vs",
		"url": "http://somewhere-else.org/custom/vs-url",
		"status": "draft"
	}`)

	rules, err := newResourceExtractor("http://example.org/fhir").ProcessValueSet(vs, nil)
	if err != nil {
		t.Fatalf("ProcessValueSet: %v", err)
	}
	got := map[string]string{}
	for _, r := range rules {
		got[r.CaretPath] = r.Value
	}
	if got["url"] != `"http://somewhere-else.org/custom/vs-url"` {
		t.Errorf("url = %q; want the non-derivable url emitted verbatim", got["url"])
	}
}

func TestProcessCodeSystem_ExcludesConceptsAndCount(t *testing.T) {
	cs := structural.MustDecode(`{
		"resourceType": "CodeSystem",
		"id": "my-cs",
		"name": "MyCS",
		"status": "active",
		"content": "complete",
		"count": 2,
		"caseSensitive": true,
		"concept": [{"code": "a"}, {"code": "b"}]
	}`)

	rules, err := newResourceExtractor("").ProcessCodeSystem(cs, nil)
	if err != nil {
		t.Fatalf("ProcessCodeSystem: %v", err)
	}
	got := map[string]string{}
	for _, r := range rules {
		got[r.CaretPath] = r.Value
	}
	if got["content"] != "#complete" {
		t.Errorf("content = %q; want #complete", got["content"])
	}
	if got["caseSensitive"] != "true" {
		t.Errorf("caseSensitive = %q; want true", got["caseSensitive"])
	}
	if _, ok := got["count"]; ok {
		t.Error("count is recomputed downstream and should be excluded")
	}
	if _, ok := got["concept[0].code"]; ok {
		t.Error("concepts are owned by code-scoped extraction")
	}
}

func TestProcessConcept(t *testing.T) {
	concept := structural.MustDecode(`{
		"code": "child",
		"display": "Child",
		"definition": "The child concept.",
		"designation": [{"language": "fi", "value": "Lapsi"}]
	}`)
	cs := structural.MustDecode(`{"resourceType": "CodeSystem", "name": "MyCS"}`)

	rules, err := newResourceExtractor("").ProcessConcept(concept, []string{"root", "child"}, cs, nil)
	if err != nil {
		t.Fatalf("ProcessConcept: %v", err)
	}
	if len(rules) != 2 {
		t.Fatalf("got %d rules; want 2", len(rules))
	}
	for _, r := range rules {
		if !r.IsCodeCaretRule {
			t.Error("concept rules must be code-scoped")
		}
		if len(r.PathArray) != 2 || r.PathArray[0] != "root" || r.PathArray[1] != "child" {
			t.Errorf("PathArray = %v; want [root child]", r.PathArray)
		}
	}
	if got := rules[0].ToFSH(); got != `* #root #child ^designation[0].language = #fi` {
		t.Errorf("rules[0] = %q", got)
	}
	if got := rules[1].ToFSH(); got != `* #root #child ^designation[0].value = "Lapsi"` {
		t.Errorf("rules[1] = %q", got)
	}
}
