// Package service defines the small boundary interfaces the extraction core
// consumes: resource lookup ("fishing"), value resolution and invariant
// expression checking. Each interface has one or two methods so tests can
// substitute fakes trivially.
package service

import (
	"github.com/kodality/GoFSH/pkg/flatten"
	"github.com/kodality/GoFSH/pkg/structural"
)

// Kind identifies the candidate categories a fisher searches.
type Kind string

// Fishable kinds.
const (
	KindResource   Kind = "Resource"
	KindType       Kind = "Type"
	KindPrimitive  Kind = "Primitive"
	KindProfile    Kind = "Profile"
	KindExtension  Kind = "Extension"
	KindLogical    Kind = "Logical"
	KindValueSet   Kind = "ValueSet"
	KindCodeSystem Kind = "CodeSystem"
	KindInstance   Kind = "Instance"
)

// AllKinds lists every fishable kind.
var AllKinds = []Kind{
	KindResource, KindType, KindPrimitive, KindProfile,
	KindExtension, KindLogical, KindValueSet, KindCodeSystem, KindInstance,
}

// Fisher resolves a name, id or canonical URL to a full resource definition
// across candidate kinds. It is a synchronous, side-effect-free query:
// repeated calls with the same arguments return equivalent results, so
// implementations may cache. A miss returns nil.
type Fisher interface {
	Fish(identifier string, kinds ...Kind) *structural.Value
}

// Literal is a resolved FSH value literal. Merged marks an entry whose
// content was absorbed into a sibling's composite literal; it produces no
// statement of its own and is skipped silently.
type Literal struct {
	Text   string
	Merged bool
}

// IsEmpty reports whether the literal carries no renderable value.
func (l Literal) IsEmpty() bool {
	return !l.Merged && l.Text == ""
}

// ValueResolver turns the leaf at entries[idx] into a FSH literal. It may
// inspect neighboring entries to reconstruct composite or coded values, and
// may fish for the owning resource kind's definition to learn element types.
type ValueResolver interface {
	Resolve(idx int, entries []flatten.Entry, resourceKind string, fisher Fisher) (Literal, error)
}
