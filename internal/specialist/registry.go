package specialist

import (
	"sort"

	rferrors "github.com/campaignops/routeflow/internal/errors"
)

// Registry maps specialist identifiers to their capability handles. It is
// built once at startup and is read-only afterwards, so lookups need no
// synchronization.
type Registry struct {
	specialists map[ID]Specialist
}

// NewRegistry builds a registry from the given specialists. Later entries
// with a duplicate ID replace earlier ones.
func NewRegistry(specialists ...Specialist) *Registry {
	m := make(map[ID]Specialist, len(specialists))
	for _, s := range specialists {
		m[s.ID()] = s
	}
	return &Registry{specialists: m}
}

// Get returns the specialist registered under id.
func (r *Registry) Get(id ID) (Specialist, error) {
	s, ok := r.specialists[id]
	if !ok {
		return nil, rferrors.NewNotFoundError("specialist", string(id))
	}
	return s, nil
}

// Has reports whether a specialist is registered under id.
func (r *Registry) Has(id ID) bool {
	_, ok := r.specialists[id]
	return ok
}

// IDs returns the registered identifiers in sorted order.
func (r *Registry) IDs() []ID {
	ids := make([]ID, 0, len(r.specialists))
	for id := range r.specialists {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Len returns the number of registered specialists.
func (r *Registry) Len() int {
	return len(r.specialists)
}
