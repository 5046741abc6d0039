package spawn

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"backend-arquest/internal/shared/geo"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"gopkg.in/yaml.v3"
)

// LoadFile reads a catalog from a GeoJSON (.geojson, .json) or YAML (.yaml, .yml) file.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog %s: %w", path, err)
	}
	return Parse(filepath.Base(path), data)
}

// Parse decodes catalog bytes, choosing the format from the name's extension.
func Parse(name string, data []byte) (*Catalog, error) {
	var (
		objects []Object
		err     error
	)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".geojson", ".json":
		objects, err = ParseGeoJSON(data)
	case ".yaml", ".yml":
		objects, err = ParseYAML(data)
	default:
		return nil, fmt.Errorf("unsupported catalog format %q", name)
	}
	if err != nil {
		return nil, err
	}
	return NewCatalog(objects)
}

// ParseGeoJSON reads spawns from a FeatureCollection of Point features. The
// feature id (or an "id" property) becomes the spawn id.
func ParseGeoJSON(data []byte) ([]Object, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("decoding geojson catalog: %w", err)
	}

	objects := make([]Object, 0, len(fc.Features))
	for i, f := range fc.Features {
		pt, ok := f.Geometry.(orb.Point)
		if !ok {
			return nil, fmt.Errorf("feature %d: geometry must be a Point", i)
		}
		if err := validateProperties(f.Properties); err != nil {
			return nil, fmt.Errorf("feature %d: %w", i, err)
		}

		id := f.Properties.MustString("id", "")
		if id == "" && f.ID != nil {
			id = fmt.Sprint(f.ID)
		}
		category, err := ParseCategory(f.Properties.MustString("category", ""))
		if err != nil {
			return nil, fmt.Errorf("feature %d: %w", i, err)
		}
		objects = append(objects, Object{
			ID:          id,
			Location:    geo.FromOrb(pt),
			Category:    category,
			Subtype:     f.Properties.MustString("subtype", ""),
			RewardValue: f.Properties.MustFloat64("reward_value", 0),
		})
	}
	return objects, nil
}

type yamlCatalog struct {
	Spawns []yamlSpawn `yaml:"spawns"`
}

type yamlSpawn struct {
	ID          string  `yaml:"id"`
	Lat         float64 `yaml:"lat"`
	Lng         float64 `yaml:"lng"`
	Category    string  `yaml:"category"`
	Subtype     string  `yaml:"subtype"`
	RewardValue float64 `yaml:"reward_value"`
}

// ParseYAML reads spawns from a document of the form `spawns: [{id, lat, lng, category, ...}]`.
func ParseYAML(data []byte) ([]Object, error) {
	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding yaml catalog: %w", err)
	}
	if err := validateDocument(raw); err != nil {
		return nil, err
	}

	var doc yamlCatalog
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding yaml catalog: %w", err)
	}
	objects := make([]Object, 0, len(doc.Spawns))
	for _, s := range doc.Spawns {
		objects = append(objects, Object{
			ID:          s.ID,
			Location:    geo.Point{Lat: s.Lat, Lng: s.Lng},
			Category:    Category(s.Category),
			Subtype:     s.Subtype,
			RewardValue: s.RewardValue,
		})
	}
	return objects, nil
}
