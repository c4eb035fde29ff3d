package gate

import "sync"

// Visibility is the route exemption table. Each route and each group may carry
// a marker; a route marker overrides its group marker, and an unmarked route
// in an unmarked group is protected.
type Visibility struct {
	mu     sync.RWMutex
	routes map[string]bool
	groups map[string]bool
}

func NewVisibility() *Visibility {
	return &Visibility{
		routes: make(map[string]bool),
		groups: make(map[string]bool),
	}
}

// MarkRoute sets the marker for a single route.
func (v *Visibility) MarkRoute(route string, public bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.routes[route] = public
}

// MarkGroup sets the marker for every route in group that has no marker of its own.
func (v *Visibility) MarkGroup(group string, public bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.groups[group] = public
}

// IsPublic resolves the marker for route inside group.
func (v *Visibility) IsPublic(route, group string) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if public, ok := v.routes[route]; ok {
		return public
	}
	if public, ok := v.groups[group]; ok {
		return public
	}
	return false
}
