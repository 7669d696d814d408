// Package fsh defines the FSH statement model produced by extraction and
// consumed by output packaging.
//
// Every producible artifact is an Exportable tagged with a Kind; placement
// and classification logic switches on the tag. Rules attached to an
// Exportable are a closed set as well: assignment, caret-value and obeys
// rules are all this core needs to produce or classify.
package fsh

import (
	"strings"
)

// Kind tags every producible FSH artifact.
type Kind int

// Artifact kinds, in fixed output order.
const (
	KindAlias Kind = iota
	KindProfile
	KindExtension
	KindCodeSystem
	KindValueSet
	KindInstance
	KindInvariant
	KindMapping
)

// String returns the FSH entity label for the kind.
func (k Kind) String() string {
	switch k {
	case KindAlias:
		return "Alias"
	case KindProfile:
		return "Profile"
	case KindExtension:
		return "Extension"
	case KindCodeSystem:
		return "CodeSystem"
	case KindValueSet:
		return "ValueSet"
	case KindInstance:
		return "Instance"
	case KindInvariant:
		return "Invariant"
	case KindMapping:
		return "Mapping"
	default:
		return "Unknown"
	}
}

// Rule is a single FSH rule line attached to an entity.
type Rule interface {
	ToFSH() string
}

// CaretValueRule assigns an arbitrary property via the caret syntax.
// An empty Path targets the resource root. Code-scoped rules carry the
// concept ancestry in PathArray and render the code chain before the caret.
// IsInstance marks the value as a reference to another instance by name.
type CaretValueRule struct {
	Path            string
	CaretPath       string
	Value           string
	Comment         string
	IsCodeCaretRule bool
	IsInstance      bool
	PathArray       []string
}

// ToFSH renders the rule, prefixing any comment as // lines.
func (r *CaretValueRule) ToFSH() string {
	var sb strings.Builder
	writeComment(&sb, r.Comment)
	sb.WriteString("* ")
	if r.IsCodeCaretRule {
		for _, code := range r.PathArray {
			sb.WriteString("#")
			sb.WriteString(code)
			sb.WriteString(" ")
		}
	} else if r.Path != "" {
		sb.WriteString(r.Path)
		sb.WriteString(" ")
	}
	sb.WriteString("^")
	sb.WriteString(r.CaretPath)
	sb.WriteString(" = ")
	sb.WriteString(r.Value)
	return sb.String()
}

// AssignmentRule assigns a value to an element path. IsInstance marks the
// value as a reference to another instance by name.
type AssignmentRule struct {
	Path       string
	Value      string
	IsInstance bool
}

// ToFSH renders the rule.
func (r *AssignmentRule) ToFSH() string {
	return "* " + r.Path + " = " + r.Value
}

// ObeysRule attaches invariants to an element path (or the entity root when
// Path is empty).
type ObeysRule struct {
	Path string
	Keys []string
}

// ToFSH renders the rule.
func (r *ObeysRule) ToFSH() string {
	var sb strings.Builder
	sb.WriteString("* ")
	if r.Path != "" {
		sb.WriteString(r.Path)
		sb.WriteString(" ")
	}
	sb.WriteString("obeys ")
	sb.WriteString(strings.Join(r.Keys, " and "))
	return sb.String()
}

func writeComment(sb *strings.Builder, comment string) {
	if comment == "" {
		return
	}
	for _, line := range strings.Split(comment, "\n") {
		sb.WriteString("// ")
		sb.WriteString(line)
		sb.WriteString("\n")
	}
}

// EscapeString renders a FSH string literal.
func EscapeString(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		case '\r':
			sb.WriteString(`\r`)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}
