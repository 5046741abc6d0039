package spawn

import (
	"errors"
	"testing"

	"backend-arquest/internal/shared/geo"
)

func testObjects() []Object {
	return []Object{
		{ID: "c1", Location: geo.Point{Lat: 0, Lng: 0.001}, Category: CategoryCoin, Subtype: "gold", RewardValue: 10},
		{ID: "m1", Location: geo.Point{Lat: 0.0005, Lng: 0}, Category: CategoryMonster, Subtype: "slime", RewardValue: 25},
		{ID: "c2", Location: geo.Point{Lat: 1, Lng: 1}, Category: CategoryCoin},
	}
}

func TestNewCatalogOrderAndLookup(t *testing.T) {
	c, err := NewCatalog(testObjects())
	if err != nil {
		t.Fatalf("new catalog: %v", err)
	}
	if c.Len() != 3 {
		t.Fatalf("unexpected len %d", c.Len())
	}
	all := c.All()
	if all[0].ID != "c1" || all[1].ID != "m1" || all[2].ID != "c2" {
		t.Fatalf("catalog order not preserved: %+v", all)
	}
	all[0].ID = "mutated"
	if obj, _ := c.Get("c1"); obj.ID != "c1" {
		t.Fatalf("All must return a copy")
	}
	if _, err := c.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestNewCatalogRejectsInvalid(t *testing.T) {
	dup := append(testObjects(), Object{ID: "c1", Category: CategoryCoin})
	if _, err := NewCatalog(dup); err == nil {
		t.Fatalf("expected duplicate id error")
	}
	if _, err := NewCatalog([]Object{{ID: "x", Category: "dragon"}}); err == nil {
		t.Fatalf("expected category error")
	}
	if _, err := NewCatalog([]Object{{Category: CategoryCoin}}); err == nil {
		t.Fatalf("expected missing id error")
	}
}

func TestCatalogWithinNearestFirst(t *testing.T) {
	c, _ := NewCatalog(testObjects())
	near := c.Within(geo.Point{}, 500)
	if len(near) != 2 {
		t.Fatalf("expected two nearby spawns, got %d", len(near))
	}
	if near[0].ID != "m1" || near[1].ID != "c1" {
		t.Fatalf("expected nearest first, got %s, %s", near[0].ID, near[1].ID)
	}
}
