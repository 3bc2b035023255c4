package view

import (
	"fmt"
	"sort"

	"github.com/iw2rmb/loom/buffer"
)

// ViewID names one split in a Registry.
type ViewID uint64

// Registry holds the views open on a host's documents. Views of the same
// Store share its content but keep their own layout, transform, viewport
// and cursor.
type Registry struct {
	next  ViewID
	views map[ViewID]*View
}

func NewRegistry() *Registry {
	return &Registry{views: make(map[ViewID]*View)}
}

// Open creates a view of store and returns its id.
func (r *Registry) Open(store *buffer.Store, cfg Config) (ViewID, *View) {
	r.next++
	v := New(store, cfg)
	r.views[r.next] = v
	return r.next, v
}

func (r *Registry) Get(id ViewID) (*View, error) {
	v, ok := r.views[id]
	if !ok {
		return nil, fmt.Errorf("view %d: %w", id, ErrUnknownView)
	}
	return v, nil
}

// Close forgets the view. The Store is not closed; it may back other views.
func (r *Registry) Close(id ViewID) error {
	if _, ok := r.views[id]; !ok {
		return fmt.Errorf("view %d: %w", id, ErrUnknownView)
	}
	delete(r.views, id)
	return nil
}

// IDs returns the open view ids in opening order.
func (r *Registry) IDs() []ViewID {
	ids := make([]ViewID, 0, len(r.views))
	for id := range r.views {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// ViewsOf returns the open views backed by store.
func (r *Registry) ViewsOf(store *buffer.Store) []*View {
	var out []*View
	for _, id := range r.IDs() {
		if v := r.views[id]; v.store == store {
			out = append(out, v)
		}
	}
	return out
}

// ViewportContent returns the visible display lines of view id.
func (r *Registry) ViewportContent(id ViewID) ([]DisplayLine, error) {
	v, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	return v.ViewportContent(), nil
}
