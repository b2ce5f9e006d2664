package repository

import (
	"context"
	"fmt"
	"strings"
)

// Settings selects and configures a persistence backend.
type Settings struct {
	Backend          string
	SQLiteDSN        string
	DynamoDBEndpoint string
	DynamoDBRegion   string
	QuotationsTable  string
	CountersTable    string
}

// Open builds the Store named by s.Backend. An empty backend means memory.
func Open(ctx context.Context, s Settings, opts ...Option) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(s.Backend)) {
	case "", BackendMemory:
		return NewMemoryStore(ctx, opts...), nil
	case BackendSQLite:
		return NewSQLStore(ctx, s.SQLiteDSN)
	case BackendDynamoDB:
		cfg, err := NewDynamoDBConfig(ctx, s.DynamoDBRegion, s.DynamoDBEndpoint)
		if err != nil {
			return nil, fmt.Errorf("aws config: %w", err)
		}
		return NewDynamoStore(NewDynamoDBClient(cfg, s.DynamoDBEndpoint), s.QuotationsTable, s.CountersTable), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, s.Backend)
	}
}
