// Package loader provides the in-memory resource store behind the fisher
// interface.
//
// Resources are indexed by canonical URL, id and name across fishable kinds.
// Fish results are memoized in an LRU because extraction fishes for the same
// parents and type definitions over and over within one batch.
package loader

import (
	"fmt"
	"strings"
	"sync"

	"github.com/kodality/GoFSH/cache"
	"github.com/kodality/GoFSH/pkg/logger"
	"github.com/kodality/GoFSH/pkg/structural"
	"github.com/kodality/GoFSH/service"
)

// InMemoryFisher implements service.Fisher over loaded resource definitions.
type InMemoryFisher struct {
	mu      sync.RWMutex
	log     *logger.Logger
	entries []*indexed
	results *cache.Cache[string, *structural.Value]
}

type indexed struct {
	kind  service.Kind
	url   string
	id    string
	name  string
	value *structural.Value
}

// NewInMemoryFisher creates an empty fisher. cacheSize bounds the fish
// result cache; zero or negative selects the default.
func NewInMemoryFisher(log *logger.Logger, cacheSize int) *InMemoryFisher {
	if log == nil {
		log = logger.Nop()
	}
	return &InMemoryFisher{
		log:     log,
		results: cache.New[string, *structural.Value](cacheSize),
	}
}

// Load decodes a resource JSON document and indexes it.
func (f *InMemoryFisher) Load(data []byte) error {
	v, err := structural.Decode(data)
	if err != nil {
		return fmt.Errorf("load resource: %w", err)
	}
	return f.LoadValue(v)
}

// LoadValue indexes an already-decoded resource. The fisher keeps the value
// as-is; callers that mutate fished resources must clone first.
func (f *InMemoryFisher) LoadValue(v *structural.Value) error {
	resourceType := v.GetString("resourceType")
	if resourceType == "" {
		return fmt.Errorf("load resource: missing resourceType")
	}

	e := &indexed{
		kind:  classify(v, resourceType),
		url:   v.GetString("url"),
		id:    v.GetString("id"),
		name:  v.GetString("name"),
		value: v,
	}

	f.mu.Lock()
	f.entries = append(f.entries, e)
	f.mu.Unlock()
	f.results.Clear()

	f.log.Debug("loaded %s %s as %s", resourceType, e.id, e.kind)
	return nil
}

// classify maps a resource to its fishable kind.
func classify(v *structural.Value, resourceType string) service.Kind {
	switch resourceType {
	case "StructureDefinition":
		sdType := v.GetString("type")
		sdKind := v.GetString("kind")
		derivation := v.GetString("derivation")
		switch {
		case sdType == "Extension" && derivation == "constraint":
			return service.KindExtension
		case sdKind == "logical":
			return service.KindLogical
		case derivation == "constraint":
			return service.KindProfile
		case sdKind == "resource":
			return service.KindResource
		case sdKind == "primitive-type":
			return service.KindPrimitive
		default:
			return service.KindType
		}
	case "ValueSet":
		return service.KindValueSet
	case "CodeSystem":
		return service.KindCodeSystem
	default:
		return service.KindInstance
	}
}

// Fish resolves an identifier (name, id or canonical URL, optionally with a
// |version suffix) to a loaded resource across the candidate kinds. When no
// kinds are given, all kinds are searched. A miss returns nil.
func (f *InMemoryFisher) Fish(identifier string, kinds ...service.Kind) *structural.Value {
	if identifier == "" {
		return nil
	}
	if len(kinds) == 0 {
		kinds = service.AllKinds
	}

	key := cacheKey(identifier, kinds)
	if v, ok := f.results.Get(key); ok {
		return v
	}

	// Canonical URLs may carry a version suffix.
	base := identifier
	if i := strings.Index(base, "|"); i >= 0 {
		base = base[:i]
	}

	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, k := range kinds {
		for _, e := range f.entries {
			if e.kind != k {
				continue
			}
			if e.url == base || e.id == base || e.name == base {
				f.results.Set(key, e.value)
				return e.value
			}
		}
	}
	return nil
}

// Resources returns every loaded resource in load order.
func (f *InMemoryFisher) Resources() []*structural.Value {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]*structural.Value, len(f.entries))
	for i, e := range f.entries {
		out[i] = e.value
	}
	return out
}

// Len returns the number of loaded resources.
func (f *InMemoryFisher) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.entries)
}

// CacheCounters exposes the fish cache hit/miss counts.
func (f *InMemoryFisher) CacheCounters() (hits, misses uint64) {
	return f.results.Counters()
}

func cacheKey(identifier string, kinds []service.Kind) string {
	var sb strings.Builder
	sb.WriteString(identifier)
	for _, k := range kinds {
		sb.WriteByte('|')
		sb.WriteString(string(k))
	}
	return sb.String()
}

var _ service.Fisher = (*InMemoryFisher)(nil)
