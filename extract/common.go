// Package extract implements the caret-value extraction core: per-element
// diffing with snapshot index reconciliation, whole-resource diffing against
// an inherited baseline, and concept-scoped extraction for code systems.
package extract

import (
	"strings"

	"github.com/kodality/GoFSH/pkg/structural"
)

// describeResource names a resource for log messages, preferring name over id.
func describeResource(resource *structural.Value) string {
	resourceType := resource.GetString("resourceType")
	name := resource.GetString("name")
	if name == "" {
		name = resource.GetString("id")
	}
	if name == "" {
		return resourceType
	}
	if resourceType == "" {
		return name
	}
	return resourceType + " " + name
}

// ElementFSHPath converts an ElementDefinition id to the FSH path used on
// rules: the resource-type segment is dropped, named slices become bracket
// access, and choice-type slices collapse to the sliced type name
// ("value[x]:valueString" -> "valueString").
func ElementFSHPath(id string) string {
	segments := strings.Split(id, ".")
	if len(segments) <= 1 {
		return ""
	}
	out := make([]string, 0, len(segments)-1)
	for _, seg := range segments[1:] {
		base, slice, found := strings.Cut(seg, ":")
		if !found {
			out = append(out, seg)
			continue
		}
		if choiceBase, ok := strings.CutSuffix(base, "[x]"); ok && strings.HasPrefix(slice, choiceBase) {
			out = append(out, slice)
			continue
		}
		out = append(out, base+"["+slice+"]")
	}
	return strings.Join(out, ".")
}

// alternateElementID rewrites an element id so that every choice-type slice
// segment ("value[x]:valueString") is replaced by the slice name alone
// ("valueString"). Some definitions name snapshot elements this way.
// Exactly one slice marker per segment is assumed.
func alternateElementID(id string) string {
	segments := strings.Split(id, ".")
	changed := false
	for i, seg := range segments {
		base, slice, found := strings.Cut(seg, ":")
		if !found {
			continue
		}
		if choiceBase, ok := strings.CutSuffix(base, "[x]"); ok && strings.HasPrefix(slice, choiceBase) {
			segments[i] = slice
			changed = true
		}
	}
	if !changed {
		return id
	}
	return strings.Join(segments, ".")
}

// findSnapshotElement locates the snapshot view of the element with the
// given id, retrying with the alternate choice-slice id syntax.
func findSnapshotElement(sd *structural.Value, elementID string) *structural.Value {
	snapshot := sd.Get("snapshot")
	elements := snapshot.Get("element")
	if elements.Kind() != structural.KindArray {
		return nil
	}
	for _, el := range elements.Items() {
		if el.GetString("id") == elementID {
			return el
		}
	}
	if alt := alternateElementID(elementID); alt != elementID {
		for _, el := range elements.Items() {
			if el.GetString("id") == alt {
				return el
			}
		}
	}
	return nil
}

// pathMatchesKey reports whether a leaf path falls under an ignore-list key:
// the key itself, a child of it, or an array entry of it.
func pathMatchesKey(path, key string) bool {
	if !strings.HasPrefix(path, key) {
		return false
	}
	rest := path[len(key):]
	return rest == "" || rest[0] == '.' || rest[0] == '['
}
