package store

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/jarodlopez/homemartshop/internal/config"
)

// FromConfig builds the configured document store backend. The returned
// func releases backend resources; it is safe to call on a nil-op backend.
func FromConfig(ctx context.Context, cfg config.StoreConfig) (DocumentStore, func(), error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return NewMemoryStore(), func() {}, nil

	case config.BackendPostgres:
		db, err := ConnectPostgres(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		return NewPostgresStore(db), func() { db.Close() }, nil

	case config.BackendDynamo:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("load aws config: %w", err)
		}
		client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
			if cfg.DynamoEndpoint != "" {
				o.BaseEndpoint = &cfg.DynamoEndpoint
			}
		})
		return NewDynamoStore(client, cfg.DynamoProductsTable, cfg.DynamoOrdersTable), func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
