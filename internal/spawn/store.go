package spawn

import (
	"context"

	"backend-arquest/internal/db"
)

// Store reads the catalog from the spawns table.
type Store struct {
	db db.Querier
}

func NewStore(db db.Querier) *Store {
	return &Store{db: db}
}

func (s *Store) List(ctx context.Context) ([]Object, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, lat, lng, category, subtype, reward_value
		FROM spawns
		ORDER BY ordinal
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var objects []Object
	for rows.Next() {
		var (
			obj      Object
			category string
		)
		if err := rows.Scan(&obj.ID, &obj.Location.Lat, &obj.Location.Lng, &category, &obj.Subtype, &obj.RewardValue); err != nil {
			return nil, err
		}
		obj.Category = Category(category)
		objects = append(objects, obj)
	}
	return objects, rows.Err()
}

func (s *Store) Insert(ctx context.Context, obj Object) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO spawns (id, lat, lng, category, subtype, reward_value)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, obj.ID, obj.Location.Lat, obj.Location.Lng, string(obj.Category), obj.Subtype, obj.RewardValue)
	return err
}

// Load builds a catalog from the table contents.
func (s *Store) Load(ctx context.Context) (*Catalog, error) {
	objects, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return NewCatalog(objects)
}

