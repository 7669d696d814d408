// Package output partitions a finished export package into named output
// groups and renders each group to FSH text.
//
// The organizer runs once, after every extraction and optimization pass has
// appended to the aggregate; it only reads and classifies statements, never
// mutates them.
package output

import (
	"strings"

	"github.com/kodality/GoFSH/pkg/fsh"
	"github.com/kodality/GoFSH/pkg/logger"
)

// Output strategies.
const (
	StrategySingleGroup  = "single-group"
	StrategyByCategory   = "by-category"
	StrategyByDefinition = "by-definition"
	StrategyByProfile    = "by-profile"
)

// DefaultStrategy is used when no strategy is configured and as the
// fallback for unrecognized names.
const DefaultStrategy = StrategyByCategory

// IndexGroup is the reserved group name of the generated index. It is
// present whenever any other group produced output.
const IndexGroup = "index"

// Shared group names.
const (
	groupResources   = "resources"
	groupAliases     = "aliases"
	groupProfiles    = "profiles"
	groupExtensions  = "extensions"
	groupCodeSystems = "code-systems"
	groupValueSets   = "value-sets"
	groupInstances   = "instances"
	groupInvariants  = "invariants"
	groupMappings    = "mappings"
)

// Organizer assembles output groups from an export package.
type Organizer struct {
	log *logger.Logger
}

// New creates an organizer.
func New(log *logger.Logger) *Organizer {
	if log == nil {
		log = logger.Nop()
	}
	return &Organizer{log: log}
}

// group accumulates the statements destined for one rendered text block.
// Aliases render as single lines; everything else as blank-line-separated
// blocks.
type group struct {
	name    string
	aliases []*fsh.Alias
	members []fsh.Exportable
}

// Assemble partitions the package under the named strategy and renders each
// group. Groups that render to nothing are dropped. The returned mapping
// includes the index under IndexGroup whenever any group is non-empty.
func (o *Organizer) Assemble(pkg *fsh.Package, strategy string) map[string]string {
	switch strategy {
	case StrategySingleGroup, StrategyByCategory, StrategyByDefinition, StrategyByProfile:
	case "":
		strategy = DefaultStrategy
	default:
		o.log.Warn("unrecognized output strategy %q, falling back to %s", strategy, DefaultStrategy)
		strategy = DefaultStrategy
	}

	var groups []*group
	switch strategy {
	case StrategySingleGroup:
		groups = o.singleGroup(pkg)
	case StrategyByCategory:
		groups = o.byCategory(pkg)
	case StrategyByDefinition:
		groups = o.byDefinition(pkg)
	case StrategyByProfile:
		groups = o.byProfile(pkg)
	}

	out := make(map[string]string, len(groups)+1)
	var retained []*group
	for _, g := range groups {
		content := renderGroup(g)
		if content == "" {
			continue
		}
		out[g.name] = content
		retained = append(retained, g)
	}
	if len(retained) > 0 {
		out[IndexGroup] = renderIndex(retained)
	}
	return out
}

func (o *Organizer) singleGroup(pkg *fsh.Package) []*group {
	g := &group{name: groupResources, aliases: pkg.Aliases}
	for _, e := range pkg.All() {
		if e.Kind() != fsh.KindAlias {
			g.members = append(g.members, e)
		}
	}
	return []*group{g}
}

func (o *Organizer) byCategory(pkg *fsh.Package) []*group {
	groups := []*group{
		{name: groupAliases, aliases: pkg.Aliases},
		{name: groupProfiles},
		{name: groupExtensions},
		{name: groupCodeSystems},
		{name: groupValueSets},
		{name: groupInstances},
		{name: groupInvariants},
		{name: groupMappings},
	}
	byKind := map[fsh.Kind]*group{
		fsh.KindProfile:    groups[1],
		fsh.KindExtension:  groups[2],
		fsh.KindCodeSystem: groups[3],
		fsh.KindValueSet:   groups[4],
		fsh.KindInstance:   groups[5],
		fsh.KindInvariant:  groups[6],
		fsh.KindMapping:    groups[7],
	}
	for _, e := range pkg.All() {
		if g, ok := byKind[e.Kind()]; ok {
			g.members = append(g.members, e)
		}
	}
	return groups
}

func (o *Organizer) byDefinition(pkg *fsh.Package) []*group {
	groups := []*group{{name: groupAliases, aliases: pkg.Aliases}}
	for _, e := range pkg.All() {
		if e.Kind() == fsh.KindAlias {
			continue
		}
		groups = append(groups, &group{name: e.Name(), members: []fsh.Exportable{e}})
	}
	return groups
}

// byProfile gives every profile its own group and pulls referenced
// instances and invariants in next to their single referencing profile.
func (o *Organizer) byProfile(pkg *fsh.Package) []*group {
	var groups []*group
	byName := map[string]*group{}
	add := func(name string) *group {
		if g, ok := byName[name]; ok {
			return g
		}
		g := &group{name: name}
		byName[name] = g
		groups = append(groups, g)
		return g
	}

	// entityGroup records where each profile, extension and instance landed,
	// for cross-reference scans below.
	entityGroup := map[fsh.Exportable]string{}

	for _, p := range pkg.Profiles {
		g := add(p.Name())
		g.members = append(g.members, p)
		entityGroup[p] = g.name
	}
	for _, e := range pkg.Extensions {
		g := add(groupExtensions)
		g.members = append(g.members, e)
		entityGroup[e] = g.name
	}
	for _, c := range pkg.CodeSystems {
		g := add(groupCodeSystems)
		g.members = append(g.members, c)
	}
	for _, v := range pkg.ValueSets {
		g := add(groupValueSets)
		g.members = append(g.members, v)
	}

	// Non-inline instances first: example instances sit with their profile
	// when that profile has a group.
	var inline []*fsh.Instance
	for _, inst := range pkg.Instances {
		if inst.IsInline() {
			inline = append(inline, inst)
			continue
		}
		target := groupInstances
		if inst.Usage == fsh.UsageExample {
			if _, ok := byName[inst.InstanceOf]; ok {
				target = inst.InstanceOf
			}
		}
		g := add(target)
		g.members = append(g.members, inst)
		entityGroup[inst] = g.name
	}

	// Inline instances follow the single definition that references them.
	for _, inst := range inline {
		referers := map[string]bool{}
		scan := func(e fsh.Exportable, rules []fsh.Rule) {
			gname, placed := entityGroup[e]
			if !placed {
				return
			}
			for _, r := range rules {
				if referencesInstance(r, inst.Name()) {
					referers[gname] = true
				}
			}
		}
		for _, p := range pkg.Profiles {
			scan(p, p.Rules)
		}
		for _, e := range pkg.Extensions {
			scan(e, e.Rules)
		}
		for _, other := range pkg.Instances {
			if other != inst {
				scan(other, other.Rules)
			}
		}
		target := groupInstances
		if len(referers) == 1 {
			for gname := range referers {
				target = gname
			}
		}
		g := add(target)
		g.members = append(g.members, inst)
		entityGroup[inst] = g.name
	}

	// Invariants follow the single profile group whose obeys rules name them.
	for _, inv := range pkg.Invariants {
		referers := map[string]bool{}
		for _, p := range pkg.Profiles {
			for _, r := range p.Rules {
				obeys, ok := r.(*fsh.ObeysRule)
				if !ok {
					continue
				}
				for _, key := range obeys.Keys {
					if key == inv.Name() {
						referers[entityGroup[p]] = true
					}
				}
			}
		}
		target := groupInvariants
		if len(referers) == 1 {
			for gname := range referers {
				target = gname
			}
		}
		g := add(target)
		g.members = append(g.members, inv)
	}

	for _, m := range pkg.Mappings {
		g := add(groupMappings)
		g.members = append(g.members, m)
	}
	if len(pkg.Aliases) > 0 {
		add(groupAliases).aliases = pkg.Aliases
	}
	return groups
}

// referencesInstance reports whether a rule is an assignment or caret rule
// referencing the named instance.
func referencesInstance(r fsh.Rule, name string) bool {
	switch rule := r.(type) {
	case *fsh.AssignmentRule:
		return rule.IsInstance && rule.Value == name
	case *fsh.CaretValueRule:
		return rule.IsInstance && rule.Value == name
	default:
		return false
	}
}

// renderGroup renders aliases joined by single line breaks, named
// statements joined by blank lines, and the two blocks joined by a blank
// line, trimmed of surrounding whitespace.
func renderGroup(g *group) string {
	aliasLines := make([]string, 0, len(g.aliases))
	for _, a := range g.aliases {
		aliasLines = append(aliasLines, a.ToFSH())
	}
	blocks := make([]string, 0, len(g.members))
	for _, m := range g.members {
		blocks = append(blocks, m.ToFSH())
	}
	content := strings.Join(aliasLines, "\n") + "\n\n" + strings.Join(blocks, "\n\n")
	return strings.TrimSpace(content)
}
