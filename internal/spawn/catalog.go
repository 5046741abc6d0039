package spawn

import (
	"errors"
	"fmt"
	"sort"

	"backend-arquest/internal/shared/geo"
)

var ErrNotFound = errors.New("spawn not found")

// Catalog is an ordered, read-only set of spawns.
type Catalog struct {
	objects []Object
	byID    map[string]int
}

func NewCatalog(objects []Object) (*Catalog, error) {
	c := &Catalog{
		objects: make([]Object, 0, len(objects)),
		byID:    make(map[string]int, len(objects)),
	}
	for _, obj := range objects {
		if obj.ID == "" {
			return nil, errors.New("spawn id required")
		}
		if _, err := ParseCategory(string(obj.Category)); err != nil {
			return nil, fmt.Errorf("spawn %s: %w", obj.ID, err)
		}
		if _, dup := c.byID[obj.ID]; dup {
			return nil, fmt.Errorf("duplicate spawn id %s", obj.ID)
		}
		c.byID[obj.ID] = len(c.objects)
		c.objects = append(c.objects, obj)
	}
	return c, nil
}

// All returns a copy of the catalog in catalog order.
func (c *Catalog) All() []Object {
	out := make([]Object, len(c.objects))
	copy(out, c.objects)
	return out
}

func (c *Catalog) Len() int {
	return len(c.objects)
}

func (c *Catalog) Get(id string) (Object, error) {
	i, ok := c.byID[id]
	if !ok {
		return Object{}, ErrNotFound
	}
	return c.objects[i], nil
}

// Within returns spawns inside radiusM of p, nearest first.
func (c *Catalog) Within(p geo.Point, radiusM float64) []Object {
	type hit struct {
		obj  Object
		dist float64
	}
	var hits []hit
	for _, obj := range c.objects {
		d := geo.Distance(p, obj.Location)
		if d <= radiusM {
			hits = append(hits, hit{obj: obj, dist: d})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].dist < hits[j].dist })

	out := make([]Object, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.obj)
	}
	return out
}
