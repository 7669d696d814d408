package fsh

// Package is the shared aggregate of every artifact produced for one export
// run. The pipeline driver owns it: extractors append, the output organizer
// only reads. Insertion order within a category is preserved and significant.
type Package struct {
	Aliases     []*Alias
	Profiles    []*Profile
	Extensions  []*Extension
	CodeSystems []*CodeSystem
	ValueSets   []*ValueSet
	Instances   []*Instance
	Invariants  []*Invariant
	Mappings    []*Mapping
}

// NewPackage returns an empty aggregate.
func NewPackage() *Package {
	return &Package{}
}

// Add appends an exportable to its category slice.
func (p *Package) Add(e Exportable) {
	switch v := e.(type) {
	case *Alias:
		p.Aliases = append(p.Aliases, v)
	case *Profile:
		p.Profiles = append(p.Profiles, v)
	case *Extension:
		p.Extensions = append(p.Extensions, v)
	case *CodeSystem:
		p.CodeSystems = append(p.CodeSystems, v)
	case *ValueSet:
		p.ValueSets = append(p.ValueSets, v)
	case *Instance:
		p.Instances = append(p.Instances, v)
	case *Invariant:
		p.Invariants = append(p.Invariants, v)
	case *Mapping:
		p.Mappings = append(p.Mappings, v)
	}
}

// All returns every artifact in the fixed category order: aliases, profiles,
// extensions, code systems, value sets, instances, invariants, mappings.
func (p *Package) All() []Exportable {
	out := make([]Exportable, 0, p.Len())
	for _, a := range p.Aliases {
		out = append(out, a)
	}
	for _, e := range p.Profiles {
		out = append(out, e)
	}
	for _, e := range p.Extensions {
		out = append(out, e)
	}
	for _, e := range p.CodeSystems {
		out = append(out, e)
	}
	for _, e := range p.ValueSets {
		out = append(out, e)
	}
	for _, e := range p.Instances {
		out = append(out, e)
	}
	for _, e := range p.Invariants {
		out = append(out, e)
	}
	for _, e := range p.Mappings {
		out = append(out, e)
	}
	return out
}

// Len returns the total artifact count.
func (p *Package) Len() int {
	return len(p.Aliases) + len(p.Profiles) + len(p.Extensions) +
		len(p.CodeSystems) + len(p.ValueSets) + len(p.Instances) +
		len(p.Invariants) + len(p.Mappings)
}
