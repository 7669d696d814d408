package extract

import (
	"strconv"
	"strings"

	"github.com/kodality/GoFSH/pkg/flatten"
	"github.com/kodality/GoFSH/pkg/fsh"
	"github.com/kodality/GoFSH/pkg/structural"
	"github.com/kodality/GoFSH/service"
)

// FSHValueResolver is the default service.ValueResolver. It renders leaf
// values as FSH literals, using the owning resource kind's definition (via
// the fisher) to recognize code-typed and datetime-typed elements, and
// assembling Coding members into a single composite code literal.
type FSHValueResolver struct{}

// Fallback element types for common metadata paths, used when the resource
// kind's own definition has not been loaded into the fisher. Without this
// the resolver degrades to quoted strings for well-known code elements.
var wellKnownElementTypes = map[string]map[string]string{
	"StructureDefinition": {
		"status":      "code",
		"kind":        "code",
		"derivation":  "code",
		"fhirVersion": "code",
		"date":        "dateTime",

		"contact.telecom.system": "code",
		"contact.telecom.use":    "code",
	},
	"ValueSet": {
		"status": "code",
		"date":   "dateTime",

		"compose.lockedDate": "date",
	},
	"CodeSystem": {
		"status":  "code",
		"content": "code",
		"date":    "dateTime",

		"hierarchyMeaning":     "code",
		"property.type":        "code",
		"designation.language": "code",
	},
	"ElementDefinition": {
		"constraint.severity": "code",
		"binding.strength":    "code",
		"representation":      "code",
		"mapping.language":    "code",
	},
}

// Resolve implements service.ValueResolver.
func (r FSHValueResolver) Resolve(idx int, entries []flatten.Entry, resourceKind string, fisher service.Fisher) (service.Literal, error) {
	entry := entries[idx]
	v := entry.Value
	if structural.IsEmpty(v) {
		return service.Literal{}, nil
	}

	switch v.Kind() {
	case structural.KindBool:
		return service.Literal{Text: strconv.FormatBool(v.BoolVal())}, nil
	case structural.KindNumber:
		return service.Literal{Text: v.NumberVal().String()}, nil
	case structural.KindString:
		// handled below
	default:
		return service.Literal{}, nil
	}

	s := v.StringVal()
	parent := flatten.ParentPath(entry.Path)
	last := flatten.LastSegment(entry.Path)

	// Coding members collapse into one composite literal on the code leaf.
	if isCodingPath(parent) {
		switch last {
		case "code":
			return service.Literal{Text: codingLiteral(entries, parent, s)}, nil
		case "system", "display":
			if findSibling(entries, parent+".code") != nil {
				return service.Literal{Merged: true}, nil
			}
		}
	}

	switch r.elementType(entry.Path, resourceKind, fisher) {
	case "code":
		return service.Literal{Text: codeLiteral(s)}, nil
	case "date", "dateTime", "instant", "time":
		return service.Literal{Text: s}, nil
	}
	return service.Literal{Text: fsh.EscapeString(s)}, nil
}

// elementType resolves the FHIR type of the element addressed by path
// within the resource kind's own definition.
func (r FSHValueResolver) elementType(path, resourceKind string, fisher service.Fisher) string {
	bare := stripIndexes(path)
	if fisher != nil {
		sd := fisher.Fish(resourceKind, service.KindResource, service.KindType, service.KindLogical)
		if elements := sd.Get("snapshot").Get("element"); elements.Kind() == structural.KindArray {
			want := resourceKind + "." + bare
			for _, el := range elements.Items() {
				if el.GetString("path") == want {
					return el.Get("type").Item(0).GetString("code")
				}
			}
		}
	}
	return wellKnownElementTypes[resourceKind][bare]
}

// codingLiteral assembles system, code and display siblings into a single
// FSH code literal: system#code "display".
func codingLiteral(entries []flatten.Entry, parent, code string) string {
	var sb strings.Builder
	if system := findSibling(entries, parent+".system"); system != nil {
		sb.WriteString(system.StringVal())
	}
	sb.WriteString(codeLiteral(code))
	if display := findSibling(entries, parent+".display"); display != nil {
		sb.WriteString(" ")
		sb.WriteString(fsh.EscapeString(display.StringVal()))
	}
	return sb.String()
}

// codeLiteral renders a bare code, quoting when the code itself needs it.
func codeLiteral(code string) string {
	if strings.ContainsAny(code, " \t\"#") {
		return "#" + fsh.EscapeString(code)
	}
	return "#" + code
}

func findSibling(entries []flatten.Entry, path string) *structural.Value {
	for _, e := range entries {
		if e.Path == path {
			return e.Value
		}
	}
	return nil
}

// isCodingPath reports whether a parent path addresses a Coding: either an
// entry of a coding array or a choice-type Coding element.
func isCodingPath(parent string) bool {
	if parent == "" {
		return false
	}
	last := flatten.LastSegment(parent)
	return last == "coding" || strings.HasSuffix(last, "Coding")
}

// stripIndexes removes array indices from a leaf path:
// "contact[0].telecom[1].system" -> "contact.telecom.system".
func stripIndexes(path string) string {
	var sb strings.Builder
	skip := false
	for i := 0; i < len(path); i++ {
		switch path[i] {
		case '[':
			skip = true
		case ']':
			skip = false
		default:
			if !skip {
				sb.WriteByte(path[i])
			}
		}
	}
	return sb.String()
}

var _ service.ValueResolver = FSHValueResolver{}
