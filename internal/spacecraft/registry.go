package spacecraft

import (
	"fmt"

	"github.com/san-kum/astroprop/internal/dynamo"
)

// Registry owns spacecraft by ID and keeps insertion order.
type Registry struct {
	order []string
	byID  map[string]*Spacecraft
}

func NewRegistry(craft ...*Spacecraft) (*Registry, error) {
	r := &Registry{byID: make(map[string]*Spacecraft)}
	for _, sc := range craft {
		if err := r.Add(sc); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) Add(sc *Spacecraft) error {
	if _, ok := r.byID[sc.ID()]; ok {
		return fmt.Errorf("%s: %w", sc.ID(), ErrDuplicateID)
	}
	r.byID[sc.ID()] = sc
	r.order = append(r.order, sc.ID())
	return nil
}

func (r *Registry) Get(id string) (*Spacecraft, error) {
	sc, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, dynamo.ErrUnknownSpacecraft)
	}
	return sc, nil
}

func (r *Registry) IDs() []string {
	return append([]string(nil), r.order...)
}

func (r *Registry) Len() int { return len(r.order) }
