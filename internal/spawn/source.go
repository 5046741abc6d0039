package spawn

import (
	"context"
	"fmt"

	"backend-arquest/internal/config"
	"backend-arquest/internal/db"
)

// Source is anything a catalog can be loaded from.
type Source interface {
	Load(ctx context.Context) (*Catalog, error)
}

type fileSource string

func (f fileSource) Load(context.Context) (*Catalog, error) {
	return LoadFile(string(f))
}

// NewSource picks the catalog source named by CATALOG_SOURCE.
func NewSource(cfg config.Config, pg db.Querier) (Source, error) {
	switch cfg.CatalogSource {
	case "", "file":
		return fileSource(cfg.CatalogPath), nil
	case "postgres":
		if pg == nil {
			return nil, fmt.Errorf("postgres catalog source requires a database connection")
		}
		return NewStore(pg), nil
	case "minio":
		src, err := NewObjectSource(ObjectStoreConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			UseSSL:    cfg.MinioUseSSL,
			Bucket:    cfg.MinioBucket,
			Object:    cfg.MinioObject,
		})
		if err != nil {
			return nil, err
		}
		return src, nil
	}
	return nil, fmt.Errorf("unknown catalog source %q", cfg.CatalogSource)
}
