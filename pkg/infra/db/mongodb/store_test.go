package db_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/gameday/aggregation-api/pkg/domain/materialised"
	"github.com/gameday/aggregation-api/pkg/domain/ports/out"
	db "github.com/gameday/aggregation-api/pkg/infra/db/mongodb"
)

var (
	clientInstance *mongo.Client
	clientOnce     sync.Once
)

func getClient() (*mongo.Client, error) {
	var err error
	clientOnce.Do(func() {
		opt := options.Client().ApplyURI("mongodb://127.0.0.1:37019/aggregation")
		clientInstance, err = mongo.Connect(context.Background(), opt)
	})
	return clientInstance, err
}

func TestMongoStore_UpsertAndFindMaterialised(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	client, err := getClient()
	require.NoError(t, err, "failed to connect to MongoDB")

	store := db.NewMongoStore(client, "aggregation", "materialisedAggregations_test")

	doc := &materialised.Document{
		ResourceType: "competition",
		ExternalKey:  "comp-1|scopeA",
		GamedayID:    uuid.New(),
		LastUpdated:  time.Now().UTC(),
		Neighbours: map[string]materialised.Projection{
			"stage": {IDs: []uuid.UUID{uuid.New()}},
		},
	}

	require.NoError(t, store.UpsertMaterialised(context.Background(), doc))

	found, ok, err := store.FindMaterialised(context.Background(), "competition", "comp-1|scopeA")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, doc.GamedayID, found.GamedayID)
	assert.Len(t, found.Neighbour("stage").IDs, 1)
}

func TestMongoStore_FindManyMaterialisedByIDs(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	client, err := getClient()
	require.NoError(t, err, "failed to connect to MongoDB")

	store := db.NewMongoStore(client, "aggregation", "materialisedAggregations_test")

	a := &materialised.Document{ResourceType: "team", ExternalKey: "team-a|scope", GamedayID: uuid.New(), LastUpdated: time.Now().UTC()}
	b := &materialised.Document{ResourceType: "team", ExternalKey: "team-b|scope", GamedayID: uuid.New(), LastUpdated: time.Now().UTC()}
	require.NoError(t, store.UpsertMaterialised(context.Background(), a))
	require.NoError(t, store.UpsertMaterialised(context.Background(), b))

	docs, err := store.FindManyMaterialisedByIDs(context.Background(), "team", []uuid.UUID{a.GamedayID, b.GamedayID})
	require.NoError(t, err)
	assert.Len(t, docs, 2)
}

func TestMongoStore_BulkWriteMaterialised_AddThenRemove(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	client, err := getClient()
	require.NoError(t, err, "failed to connect to MongoDB")

	store := db.NewMongoStore(client, "aggregation", "materialisedAggregations_test")

	peer := &materialised.Document{ResourceType: "stage", ExternalKey: "stage-1|scope", GamedayID: uuid.New(), LastUpdated: time.Now().UTC()}
	require.NoError(t, store.UpsertMaterialised(context.Background(), peer))

	source := materialised.Ref{ResourceType: "competition", GamedayID: uuid.New(), ExternalKey: "comp-1|scope"}

	addOps := []materialised.BulkOp{
		{Kind: materialised.BulkOpAdd, PeerResourceType: peer.ResourceType, PeerExternalKey: peer.ExternalKey, Tag: "competition", Source: source},
	}
	applied, failed, err := store.BulkWriteMaterialised(context.Background(), addOps, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, 1, applied)
	assert.Equal(t, 0, failed)

	updated, ok, err := store.FindMaterialised(context.Background(), "stage", "stage-1|scope")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Contains(t, updated.Neighbour("competition").IDs, source.GamedayID)

	removeOps := []materialised.BulkOp{
		{Kind: materialised.BulkOpRemove, PeerResourceType: peer.ResourceType, PeerExternalKey: peer.ExternalKey, Tag: "competition", Source: source},
	}
	applied, failed, err = store.BulkWriteMaterialised(context.Background(), removeOps, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, 1, applied)
	assert.Equal(t, 0, failed)

	updated, ok, err = store.FindMaterialised(context.Background(), "stage", "stage-1|scope")
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotContains(t, updated.Neighbour("competition").IDs, source.GamedayID)
}

func TestMongoStore_CreateAndCheckIndex(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	client, err := getClient()
	require.NoError(t, err, "failed to connect to MongoDB")

	store := db.NewMongoStore(client, "aggregation", "materialisedAggregations_test")

	err = store.CreateIndex(context.Background(), "materialisedAggregations_test", "idx_resourceType_externalKey",
		[]out.IndexKey{{Field: "resourceType"}, {Field: "externalKey"}}, true)
	require.NoError(t, err)

	exists, err := store.IndexExists(context.Background(), "materialisedAggregations_test", "idx_resourceType_externalKey")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestMongoStore_CollectionExists(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	client, err := getClient()
	require.NoError(t, err, "failed to connect to MongoDB")

	store := db.NewMongoStore(client, "aggregation", "materialisedAggregations_test")
	require.NoError(t, store.UpsertMaterialised(context.Background(), &materialised.Document{
		ResourceType: "venue", ExternalKey: "venue-1|scope", GamedayID: uuid.New(), LastUpdated: time.Now().UTC(),
	}))

	exists, err := store.CollectionExists(context.Background(), "materialisedAggregations_test")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestMongoStore_SingleFetch(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	client, err := getClient()
	require.NoError(t, err, "failed to connect to MongoDB")

	store := db.NewMongoStore(client, "aggregation", "materialisedAggregations_test")

	_, found, err := store.FetchByExternalKey(context.Background(), "competition", "scopeA", "does-not-exist")
	require.NoError(t, err)
	assert.False(t, found)

	_, _, err = store.FetchByGamedayID(context.Background(), "competition", "not-a-uuid")
	assert.Error(t, err)
}
