package ioc

import (
	"context"
	"log/slog"
	"os"
	"time"

	// env
	"github.com/joho/godotenv"

	// mongodb
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	// container
	container "github.com/golobby/container/v3"

	// ports
	"github.com/gameday/aggregation-api/pkg/domain/common"
	"github.com/gameday/aggregation-api/pkg/domain/ports/in"
	"github.com/gameday/aggregation-api/pkg/domain/ports/out"

	// usecases
	"github.com/gameday/aggregation-api/pkg/domain/aggregation/usecases"
	"github.com/gameday/aggregation-api/pkg/domain/traversal"

	// store
	db "github.com/gameday/aggregation-api/pkg/infra/db/mongodb"
)

type ContainerBuilder struct {
	Container container.Container
}

func NewContainerBuilder() *ContainerBuilder {
	c := container.New()

	b := &ContainerBuilder{
		c,
	}

	err := c.Singleton(func() container.Container {
		return b.Container
	})

	if err != nil {
		slog.Error("Failed to register *container.Container  in NewContainerBuilder.")
		panic(err)
	}

	err = c.Singleton(func() *ContainerBuilder {
		return b
	})

	if err != nil {
		slog.Error("Failed to register *ContainerBuilder in NewContainerBuilder.")
		panic(err)
	}

	return b
}

func (b *ContainerBuilder) Build() container.Container {
	return b.Container
}

func (b *ContainerBuilder) WithEnvFile() *ContainerBuilder {
	if os.Getenv("DEV_ENV") == "true" {
		err := godotenv.Load()
		if err != nil {
			slog.Error("Failed to load .env file")
			panic(err)
		}
	}

	err := b.Container.Singleton(func() (common.Config, error) {
		return EnvironmentConfig()
	})

	if err != nil {
		slog.Error("Failed to load EnvironmentConfig.")
		panic(err)
	}

	return b
}

// WithInboundPorts registers the core use cases (C4 processor, C6/C7
// traversal planner and query executor) against whatever out.Store was
// registered by InjectMongoDB.
func (b *ContainerBuilder) WithInboundPorts() *ContainerBuilder {
	c := b.Container

	err := c.Singleton(func() (in.BuildAPI, error) {
		var store out.Store
		err := c.Resolve(&store)
		if err != nil {
			slog.Error("Failed to resolve out.Store for in.BuildAPI.", "err", err)
			return nil, err
		}

		return usecases.NewBuildAggregationUseCase(store), nil
	})

	if err != nil {
		slog.Error("Failed to load in.BuildAPI.")
		panic(err)
	}

	err = c.Singleton(func() (in.QueryAPI, error) {
		var store out.Store
		err := c.Resolve(&store)
		if err != nil {
			slog.Error("Failed to resolve out.Store for in.QueryAPI.", "err", err)
			return nil, err
		}

		return traversal.NewExecutor(store), nil
	})

	if err != nil {
		slog.Error("Failed to load in.QueryAPI.")
		panic(err)
	}

	return b
}

// InjectMongoDB wires the single MongoDB dependency this service has: one
// client, against which the materialised sink and every source collection
// are addressed via out.Store/in.SingleFetchAPI (§4.8, C8).
func InjectMongoDB(c container.Container) error {
	err := c.Singleton(func() (*mongo.Client, error) {
		var config common.Config

		err := c.Resolve(&config)
		if err != nil {
			slog.Error("Failed to resolve config for mongo.Client.", "err", err)
			return nil, err
		}

		mongoOptions := options.Client().ApplyURI(config.MongoDB.URI)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		client, err := mongo.Connect(ctx, mongoOptions)

		if err != nil {
			slog.Error("Failed to connect to MongoDB.", "err", err)
			return nil, err
		}

		return client, nil
	})

	if err != nil {
		slog.Error("Failed to load mongo.Client.")
		return err
	}

	err = c.Singleton(func() (*db.MongoStore, error) {
		var client *mongo.Client
		err := c.Resolve(&client)
		if err != nil {
			slog.Error("Failed to resolve mongo.Client for db.MongoStore.", "err", err)
			return nil, err
		}

		var config common.Config
		err = c.Resolve(&config)
		if err != nil {
			slog.Error("Failed to resolve config for db.MongoStore.", "err", err)
			return nil, err
		}

		return db.NewMongoStore(client, config.MongoDB.DBName, config.MongoDB.SinkCollection), nil
	})

	if err != nil {
		slog.Error("Failed to load db.MongoStore.", "err", err)
		panic(err)
	}

	err = c.Singleton(func() (out.Store, error) {
		var store *db.MongoStore
		err := c.Resolve(&store)
		if err != nil {
			slog.Error("Failed to resolve db.MongoStore for out.Store.", "err", err)
			return nil, err
		}

		return store, nil
	})

	if err != nil {
		slog.Error("Failed to load out.Store.", "err", err)
		panic(err)
	}

	err = c.Singleton(func() (in.SingleFetchAPI, error) {
		var store *db.MongoStore
		err := c.Resolve(&store)
		if err != nil {
			slog.Error("Failed to resolve db.MongoStore for in.SingleFetchAPI.", "err", err)
			return nil, err
		}

		return store, nil
	})

	if err != nil {
		slog.Error("Failed to load in.SingleFetchAPI.", "err", err)
		panic(err)
	}

	return nil
}

func (b *ContainerBuilder) With(resolver interface{}) *ContainerBuilder {
	c := b.Container

	err := c.Singleton(resolver)

	if err != nil {
		slog.Error("Failed to register resolver.", "err", err)
		panic(err)
	}

	return b
}
