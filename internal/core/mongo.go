// AngelaMos | 2026
// mongo.go

package core

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/carterperez-dev/nexus/internal/config"
)

type Mongo struct {
	Client *mongo.Client
	DB     *mongo.Database
}

func NewMongo(ctx context.Context, cfg config.MongoConfig) (*Mongo, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URL))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}

	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background()) //nolint:errcheck // cleanup on connection failure
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	return &Mongo{
		Client: client,
		DB:     client.Database(cfg.Database),
	}, nil
}

func (m *Mongo) Close(ctx context.Context) error {
	if m.Client == nil {
		return nil
	}
	return m.Client.Disconnect(ctx)
}

func (m *Mongo) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := m.Client.Ping(pingCtx, readpref.Primary()); err != nil {
		return fmt.Errorf("mongo ping failed: %w", err)
	}

	return nil
}
