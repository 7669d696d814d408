// Package flatten turns a nested resource value into its ordered sequence of
// leaf path/value pairs.
//
// Document order is preserved exactly: downstream value resolution relies on
// the numeric position of an entry to reconstruct composite values from its
// neighbors. Array entries are addressed as name[n].
package flatten

import (
	"strings"

	"github.com/kodality/GoFSH/pkg/structural"
)

// Entry is a single leaf of a flattened resource.
type Entry struct {
	Path  string
	Value *structural.Value
}

// Flatten returns the ordered leaf entries of v. Only primitive leaves
// (null, boolean, number, string) produce entries; empty arrays and objects
// produce none.
func Flatten(v *structural.Value) []Entry {
	pb := acquirePathBuilder()
	defer pb.release()

	var entries []Entry
	walk(v, pb, &entries)
	return entries
}

func walk(v *structural.Value, pb *pathBuilder, entries *[]Entry) {
	switch v.Kind() {
	case structural.KindObject:
		for _, m := range v.Members() {
			mark := pb.length()
			pb.appendKey(m.Key)
			walk(m.Value, pb, entries)
			pb.truncate(mark)
		}
	case structural.KindArray:
		for i, item := range v.Items() {
			mark := pb.length()
			pb.appendIndex(i)
			walk(item, pb, entries)
			pb.truncate(mark)
		}
	default:
		*entries = append(*entries, Entry{Path: pb.path(), Value: v})
	}
}

// ParentPath returns the path with its final segment removed:
// "a.b[0].c" -> "a.b[0]", "a.b[0]" -> "a.b", "a" -> "".
func ParentPath(path string) string {
	if strings.HasSuffix(path, "]") {
		if i := strings.LastIndex(path, "["); i >= 0 {
			return path[:i]
		}
	}
	if i := strings.LastIndex(path, "."); i >= 0 {
		return path[:i]
	}
	return ""
}

// LastSegment returns the final property segment of a path, with any array
// index stripped: "a.b[0]" -> "b", "code" -> "code".
func LastSegment(path string) string {
	if i := strings.LastIndex(path, "."); i >= 0 {
		path = path[i+1:]
	}
	if i := strings.Index(path, "["); i >= 0 {
		path = path[:i]
	}
	return path
}
