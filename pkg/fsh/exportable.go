package fsh

import (
	"strings"
)

// Exportable is a named FSH artifact that renders to a text block.
type Exportable interface {
	Kind() Kind
	Name() string
	ToFSH() string
}

// Alias maps a shorthand name to a URL. Aliases are unnamed entities in FSH
// terms but still carry a stable name for indexing.
type Alias struct {
	Alias string
	URL   string
}

// Kind returns KindAlias.
func (a *Alias) Kind() Kind { return KindAlias }

// Name returns the alias token.
func (a *Alias) Name() string { return a.Alias }

// ToFSH renders the alias line.
func (a *Alias) ToFSH() string { return "Alias: " + a.Alias + " = " + a.URL }

// Profile is an exportable FSH Profile definition.
type Profile struct {
	EntityName  string
	Id          string
	Parent      string
	Title       string
	Description string
	Rules       []Rule
}

// Kind returns KindProfile.
func (p *Profile) Kind() Kind { return KindProfile }

// Name returns the profile name.
func (p *Profile) Name() string { return p.EntityName }

// ToFSH renders the profile header keywords followed by its rules.
func (p *Profile) ToFSH() string {
	var sb strings.Builder
	sb.WriteString("Profile: ")
	sb.WriteString(p.EntityName)
	writeKeyword(&sb, "Parent", p.Parent)
	writeKeyword(&sb, "Id", p.Id)
	writeQuotedKeyword(&sb, "Title", p.Title)
	writeQuotedKeyword(&sb, "Description", p.Description)
	writeRules(&sb, p.Rules)
	return sb.String()
}

// Extension is an exportable FSH Extension definition.
type Extension struct {
	EntityName  string
	Id          string
	Parent      string
	Title       string
	Description string
	Rules       []Rule
}

// Kind returns KindExtension.
func (e *Extension) Kind() Kind { return KindExtension }

// Name returns the extension name.
func (e *Extension) Name() string { return e.EntityName }

// ToFSH renders the extension header keywords followed by its rules.
func (e *Extension) ToFSH() string {
	var sb strings.Builder
	sb.WriteString("Extension: ")
	sb.WriteString(e.EntityName)
	writeKeyword(&sb, "Parent", e.Parent)
	writeKeyword(&sb, "Id", e.Id)
	writeQuotedKeyword(&sb, "Title", e.Title)
	writeQuotedKeyword(&sb, "Description", e.Description)
	writeRules(&sb, e.Rules)
	return sb.String()
}

// CodeSystem is an exportable FSH CodeSystem definition. Concept rules are
// produced by the concept extractor as code-scoped caret rules.
type CodeSystem struct {
	EntityName  string
	Id          string
	Title       string
	Description string
	Rules       []Rule
}

// Kind returns KindCodeSystem.
func (c *CodeSystem) Kind() Kind { return KindCodeSystem }

// Name returns the code system name.
func (c *CodeSystem) Name() string { return c.EntityName }

// ToFSH renders the code system.
func (c *CodeSystem) ToFSH() string {
	var sb strings.Builder
	sb.WriteString("CodeSystem: ")
	sb.WriteString(c.EntityName)
	writeKeyword(&sb, "Id", c.Id)
	writeQuotedKeyword(&sb, "Title", c.Title)
	writeQuotedKeyword(&sb, "Description", c.Description)
	writeRules(&sb, c.Rules)
	return sb.String()
}

// ValueSet is an exportable FSH ValueSet definition.
type ValueSet struct {
	EntityName  string
	Id          string
	Title       string
	Description string
	Rules       []Rule
}

// Kind returns KindValueSet.
func (v *ValueSet) Kind() Kind { return KindValueSet }

// Name returns the value set name.
func (v *ValueSet) Name() string { return v.EntityName }

// ToFSH renders the value set.
func (v *ValueSet) ToFSH() string {
	var sb strings.Builder
	sb.WriteString("ValueSet: ")
	sb.WriteString(v.EntityName)
	writeKeyword(&sb, "Id", v.Id)
	writeQuotedKeyword(&sb, "Title", v.Title)
	writeQuotedKeyword(&sb, "Description", v.Description)
	writeRules(&sb, v.Rules)
	return sb.String()
}

// Instance usage codes.
const (
	UsageExample    = "Example"
	UsageDefinition = "Definition"
	UsageInline     = "Inline"
)

// Instance is an exportable FSH Instance definition.
type Instance struct {
	EntityName  string
	InstanceOf  string
	Usage       string
	Title       string
	Description string
	Rules       []Rule
}

// Kind returns KindInstance.
func (i *Instance) Kind() Kind { return KindInstance }

// Name returns the instance name.
func (i *Instance) Name() string { return i.EntityName }

// IsInline reports whether this instance only exists embedded in another
// definition.
func (i *Instance) IsInline() bool { return i.Usage == UsageInline }

// ToFSH renders the instance.
func (i *Instance) ToFSH() string {
	var sb strings.Builder
	sb.WriteString("Instance: ")
	sb.WriteString(i.EntityName)
	writeKeyword(&sb, "InstanceOf", i.InstanceOf)
	if i.Usage != "" {
		sb.WriteString("\nUsage: #")
		sb.WriteString(strings.ToLower(i.Usage))
	}
	writeQuotedKeyword(&sb, "Title", i.Title)
	writeQuotedKeyword(&sb, "Description", i.Description)
	writeRules(&sb, i.Rules)
	return sb.String()
}

// Invariant is an exportable FSH Invariant definition.
type Invariant struct {
	EntityName  string // the invariant key, e.g. "us-core-1"
	Description string // human description
	Severity    string // error | warning
	Expression  string // FHIRPath expression
	XPath       string
	Rules       []Rule
}

// Kind returns KindInvariant.
func (i *Invariant) Kind() Kind { return KindInvariant }

// Name returns the invariant key.
func (i *Invariant) Name() string { return i.EntityName }

// ToFSH renders the invariant.
func (i *Invariant) ToFSH() string {
	var sb strings.Builder
	sb.WriteString("Invariant: ")
	sb.WriteString(i.EntityName)
	writeQuotedKeyword(&sb, "Description", i.Description)
	if i.Severity != "" {
		sb.WriteString("\nSeverity: #")
		sb.WriteString(i.Severity)
	}
	writeQuotedKeyword(&sb, "Expression", i.Expression)
	writeQuotedKeyword(&sb, "XPath", i.XPath)
	writeRules(&sb, i.Rules)
	return sb.String()
}

// Mapping is an exportable FSH Mapping definition.
type Mapping struct {
	EntityName  string
	Id          string
	Source      string
	Target      string
	Title       string
	Description string
	Rules       []Rule
}

// Kind returns KindMapping.
func (m *Mapping) Kind() Kind { return KindMapping }

// Name returns the mapping name.
func (m *Mapping) Name() string { return m.EntityName }

// ToFSH renders the mapping.
func (m *Mapping) ToFSH() string {
	var sb strings.Builder
	sb.WriteString("Mapping: ")
	sb.WriteString(m.EntityName)
	writeKeyword(&sb, "Id", m.Id)
	writeKeyword(&sb, "Source", m.Source)
	writeQuotedKeyword(&sb, "Target", m.Target)
	writeQuotedKeyword(&sb, "Title", m.Title)
	writeQuotedKeyword(&sb, "Description", m.Description)
	writeRules(&sb, m.Rules)
	return sb.String()
}

func writeKeyword(sb *strings.Builder, keyword, value string) {
	if value == "" {
		return
	}
	sb.WriteString("\n")
	sb.WriteString(keyword)
	sb.WriteString(": ")
	sb.WriteString(value)
}

func writeQuotedKeyword(sb *strings.Builder, keyword, value string) {
	if value == "" {
		return
	}
	sb.WriteString("\n")
	sb.WriteString(keyword)
	sb.WriteString(": ")
	sb.WriteString(EscapeString(value))
}

func writeRules(sb *strings.Builder, rules []Rule) {
	for _, r := range rules {
		sb.WriteString("\n")
		sb.WriteString(r.ToFSH())
	}
}
