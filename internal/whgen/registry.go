package whgen

import (
	"slices"
	"sort"
)

// StoreSource says why a name is in the registry.
type StoreSource int

const (
	// ExplicitStore is a class declaring at least one var property.
	ExplicitStore StoreSource = iota
	// PromotedComponent is a component whose local state was promoted to a
	// generated ViewModel.
	PromotedComponent
	// Singleton is an @store object.
	Singleton
)

func (s StoreSource) String() string {
	switch s {
	case PromotedComponent:
		return "promoted"
	case Singleton:
		return "singleton"
	default:
		return "store"
	}
}

// StoreInfo describes one stateful container.
type StoreInfo struct {
	ClassName       string
	NeedsInjection  bool
	HasMutableState bool
	Source          StoreSource
	Package         string
	RouteParams     []string // promoted screens only, sorted
}

func (s StoreInfo) clone() StoreInfo {
	s.RouteParams = slices.Clone(s.RouteParams)
	return s
}

// Registry maps declared names to store metadata. A Registry never changes
// after it is built; lookups return copies.
type Registry struct {
	stores map[string]StoreInfo
}

// NewRegistry builds a registry from the given entries. Later entries with
// the same class name replace earlier ones.
func NewRegistry(entries ...StoreInfo) *Registry {
	r := &Registry{stores: make(map[string]StoreInfo, len(entries))}
	for _, e := range entries {
		r.stores[e.ClassName] = e.clone()
	}
	return r
}

// Lookup returns the entry for name.
func (r *Registry) Lookup(name string) (StoreInfo, bool) {
	if r == nil {
		return StoreInfo{}, false
	}
	info, ok := r.stores[name]
	if !ok {
		return StoreInfo{}, false
	}
	return info.clone(), true
}

// Contains reports whether name is registered.
func (r *Registry) Contains(name string) bool {
	if r == nil {
		return false
	}
	_, ok := r.stores[name]
	return ok
}

// Len returns the number of entries.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.stores)
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.stores))
	for name := range r.stores {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Entries returns copies of all entries sorted by name.
func (r *Registry) Entries() []StoreInfo {
	names := r.Names()
	out := make([]StoreInfo, 0, len(names))
	for _, name := range names {
		out = append(out, r.stores[name].clone())
	}
	return out
}

// Merge returns a new registry holding every entry of global overlaid with
// every entry of local. Either argument may be nil.
func Merge(local, global *Registry) *Registry {
	out := &Registry{stores: make(map[string]StoreInfo, local.Len()+global.Len())}
	if global != nil {
		for name, info := range global.stores {
			out.stores[name] = info.clone()
		}
	}
	if local != nil {
		for name, info := range local.stores {
			out.stores[name] = info.clone()
		}
	}
	return out
}
