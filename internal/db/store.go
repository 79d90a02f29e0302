package db

import (
	"context"
	"fmt"

	"github.com/arzan03/DevCamper/internal/repository"
)

// OpenStore returns the repositories for driver "mongo" or "memory".
func OpenStore(ctx context.Context, driver, uri, dbName string) (*repository.Store, error) {
	switch driver {
	case "memory":
		return repository.NewMemoryStore(), nil
	case "mongo":
		database, err := ConnectMongoDB(ctx, uri, dbName)
		if err != nil {
			return nil, err
		}
		if err := EnsureIndexes(ctx, database); err != nil {
			database.Client().Disconnect(context.Background())
			return nil, err
		}
		return repository.NewMongoStore(database), nil
	}
	return nil, fmt.Errorf("unknown store driver %q", driver)
}
