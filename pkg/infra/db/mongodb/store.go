// Package db implements the document-store port (out.Store, §4.8) against a
// real MongoDB deployment, and the single-fetch port (in.SingleFetchAPI)
// used by the legacy GET route.
package db

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/gameday/aggregation-api/pkg/domain/common"
	"github.com/gameday/aggregation-api/pkg/domain/materialised"
	"github.com/gameday/aggregation-api/pkg/domain/ports/in"
	"github.com/gameday/aggregation-api/pkg/domain/ports/out"
	"github.com/gameday/aggregation-api/pkg/domain/source/entities"
	"github.com/gameday/aggregation-api/pkg/infra/metrics"
)

// MongoStore implements out.Store (and in.SingleFetchAPI) against a single
// mongo.Database: the source collections named by entities.ResourceType and
// one materialised sink collection.
type MongoStore struct {
	client         *mongo.Client
	db             *mongo.Database
	sinkCollection string
}

// NewMongoStore wires a MongoStore against an already-connected client.
func NewMongoStore(client *mongo.Client, dbName, sinkCollection string) *MongoStore {
	return &MongoStore{
		client:         client,
		db:             client.Database(dbName),
		sinkCollection: sinkCollection,
	}
}

var (
	_ out.Store         = (*MongoStore)(nil)
	_ in.SingleFetchAPI = (*MongoStore)(nil)
)

func (s *MongoStore) FindOne(ctx context.Context, collection string, filter map[string]any, out any) (bool, error) {
	defer recordDBOp("findOne", collection, time.Now())
	err := s.db.Collection(collection).FindOne(ctx, bson.M(filter)).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "find one failed", "collection", collection, "error", err)
		return false, err
	}
	return true, nil
}

func (s *MongoStore) FindMany(ctx context.Context, collection string, filter map[string]any, out any) error {
	defer recordDBOp("findMany", collection, time.Now())
	cursor, err := s.db.Collection(collection).Find(ctx, bson.M(filter))
	if err != nil {
		slog.ErrorContext(ctx, "find many failed", "collection", collection, "error", err)
		return err
	}
	defer cursor.Close(ctx)

	if err := cursor.All(ctx, out); err != nil {
		slog.ErrorContext(ctx, "find many decode failed", "collection", collection, "error", err)
		return err
	}
	return nil
}

func (s *MongoStore) CountMatching(ctx context.Context, collection string, filter map[string]any) (int64, error) {
	defer recordDBOp("countMatching", collection, time.Now())
	count, err := s.db.Collection(collection).CountDocuments(ctx, bson.M(filter))
	if err != nil {
		slog.ErrorContext(ctx, "count matching failed", "collection", collection, "error", err)
		return 0, err
	}
	return count, nil
}

func recordDBOp(operation, collection string, started time.Time) {
	metrics.RecordDBOperation(operation, collection, time.Since(started))
}

func (s *MongoStore) FindMaterialised(ctx context.Context, resourceType, externalKey string) (*materialised.Document, bool, error) {
	var doc materialised.Document
	filter := bson.M{"resourceType": resourceType, "externalKey": externalKey}
	found, err := s.FindOne(ctx, s.sinkCollection, filter, &doc)
	if err != nil || !found {
		return nil, found, err
	}
	return &doc, true, nil
}

func (s *MongoStore) FindManyMaterialisedByIDs(ctx context.Context, resourceType string, ids []uuid.UUID) ([]*materialised.Document, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	filter := bson.M{"resourceType": resourceType, "gamedayId": bson.M{"$in": ids}}
	cursor, err := s.db.Collection(s.sinkCollection).Find(ctx, filter)
	if err != nil {
		slog.ErrorContext(ctx, "find many materialised by ids failed", "resourceType", resourceType, "error", err)
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []*materialised.Document
	if err := cursor.All(ctx, &docs); err != nil {
		slog.ErrorContext(ctx, "find many materialised by ids decode failed", "resourceType", resourceType, "error", err)
		return nil, err
	}
	return docs, nil
}

func (s *MongoStore) UpsertMaterialised(ctx context.Context, doc *materialised.Document) error {
	defer recordDBOp("upsertMaterialised", s.sinkCollection, time.Now())
	filter := bson.M{"resourceType": doc.ResourceType, "externalKey": doc.ExternalKey}
	opts := options.Replace().SetUpsert(true)
	_, err := s.db.Collection(s.sinkCollection).ReplaceOne(ctx, filter, doc, opts)
	if err != nil {
		slog.ErrorContext(ctx, "upsert materialised failed", "resourceType", doc.ResourceType, "externalKey", doc.ExternalKey, "error", err)
		return err
	}
	return nil
}

// BulkWriteMaterialised submits ops as a single ordered bulk write.
// Removals and additions against the same peer arrive pre-ordered by the
// reconciler (§4.5 Ordering), and the ordered write honours that sequence.
// An ordered write stops at its first failing operation: that operation and
// every later one are counted as failed.
func (s *MongoStore) BulkWriteMaterialised(ctx context.Context, ops []materialised.BulkOp, now time.Time) (applied, failed int, err error) {
	if len(ops) == 0 {
		return 0, 0, nil
	}
	defer recordDBOp("bulkWriteMaterialised", s.sinkCollection, time.Now())
	for _, op := range ops {
		metrics.RecordReconcileOp(op.PeerResourceType, op.Kind.String())
	}

	collection := s.db.Collection(s.sinkCollection)
	models := make([]mongo.WriteModel, 0, len(ops))
	for _, op := range ops {
		filter := bson.M{"resourceType": op.PeerResourceType, "externalKey": op.PeerExternalKey}
		field := "neighbours." + op.Tag

		switch op.Kind {
		case materialised.BulkOpRemove:
			update := bson.M{
				"$pull": bson.M{
					field + ".ids":  op.Source.GamedayID,
					field + ".keys": bson.M{"externalKey": op.Source.ExternalKey},
				},
				"$set": bson.M{"lastUpdated": now},
			}
			models = append(models, mongo.NewUpdateOneModel().SetFilter(filter).SetUpdate(update))

		case materialised.BulkOpAdd:
			update := bson.M{
				"$addToSet": bson.M{
					field + ".ids":  op.Source.GamedayID,
					field + ".keys": bson.M{"externalKey": op.Source.ExternalKey, "gamedayId": op.Source.GamedayID},
				},
				"$set":         bson.M{"lastUpdated": now},
				"$setOnInsert": bson.M{"resourceType": op.PeerResourceType, "externalKey": op.PeerExternalKey},
			}
			models = append(models, mongo.NewUpdateOneModel().SetFilter(filter).SetUpdate(update).SetUpsert(true))
		}
	}

	bwOpts := options.BulkWrite().SetOrdered(true)
	_, bwErr := collection.BulkWrite(ctx, models, bwOpts)
	if bwErr == nil {
		return len(ops), 0, nil
	}

	var bulkErr mongo.BulkWriteException
	if errors.As(bwErr, &bulkErr) {
		applied = len(ops)
		if len(bulkErr.WriteErrors) > 0 {
			applied = bulkErr.WriteErrors[0].Index
		}
		failed = len(ops) - applied
		slog.ErrorContext(ctx, "bulk write materialised partial failure", "applied", applied, "failed", failed, "error", bwErr)
		return applied, failed, nil
	}

	slog.ErrorContext(ctx, "bulk write materialised failed", "error", bwErr)
	return 0, len(ops), common.NewErrStoreUnavailable(bwErr)
}

func (s *MongoStore) CreateIndex(ctx context.Context, collection, name string, keys []out.IndexKey, unique bool) error {
	exists, err := s.IndexExists(ctx, collection, name)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	keyDoc := bson.D{}
	for _, k := range keys {
		dir := 1
		if k.Desc {
			dir = -1
		}
		keyDoc = append(keyDoc, bson.E{Key: k.Field, Value: dir})
	}

	model := mongo.IndexModel{
		Keys:    keyDoc,
		Options: options.Index().SetName(name).SetUnique(unique),
	}

	_, err = s.db.Collection(collection).Indexes().CreateOne(ctx, model)
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		slog.ErrorContext(ctx, "create index failed", "collection", collection, "index", name, "error", err)
		return err
	}
	return nil
}

func (s *MongoStore) IndexExists(ctx context.Context, collection, name string) (bool, error) {
	cursor, err := s.db.Collection(collection).Indexes().List(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "list indexes failed", "collection", collection, "error", err)
		return false, err
	}
	defer cursor.Close(ctx)

	var indexes []bson.M
	if err := cursor.All(ctx, &indexes); err != nil {
		return false, err
	}
	for _, idx := range indexes {
		if idxName, ok := idx["name"].(string); ok && idxName == name {
			return true, nil
		}
	}
	return false, nil
}

func (s *MongoStore) CollectionExists(ctx context.Context, collection string) (bool, error) {
	names, err := s.db.ListCollectionNames(ctx, bson.M{"name": collection})
	if err != nil {
		slog.ErrorContext(ctx, "list collection names failed", "collection", collection, "error", err)
		return false, err
	}
	return len(names) > 0, nil
}

// FetchByExternalKey implements in.SingleFetchAPI for the simple (id, scope)
// identity §6's GET route needs.
func (s *MongoStore) FetchByExternalKey(ctx context.Context, entityType, scope, id string) (map[string]any, bool, error) {
	rt := entities.Normalise(entityType)
	collection := rt.Collection()
	if collection == "" {
		return nil, false, common.NewErrInvalidInput("single fetch: unknown entity type " + entityType)
	}

	var doc bson.M
	found, err := s.FindOne(ctx, collection, map[string]any{"externalIdScope": scope, "externalId": id}, &doc)
	if err != nil || !found {
		return nil, found, err
	}
	return map[string]any(doc), true, nil
}

// FetchByGamedayID implements in.SingleFetchAPI's local-identity lookup.
func (s *MongoStore) FetchByGamedayID(ctx context.Context, entityType, gamedayID string) (map[string]any, bool, error) {
	rt := entities.Normalise(entityType)
	collection := rt.Collection()
	if collection == "" {
		return nil, false, common.NewErrInvalidInput("single fetch: unknown entity type " + entityType)
	}

	id, err := uuid.Parse(gamedayID)
	if err != nil {
		return nil, false, common.NewErrMalformedKey(gamedayID, "not a valid gamedayId")
	}

	var doc bson.M
	found, err := s.FindOne(ctx, collection, map[string]any{"gamedayId": id}, &doc)
	if err != nil || !found {
		return nil, found, err
	}
	return map[string]any(doc), true, nil
}
