package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/hrops-platform/scheduling-service/internal/domain"
	sharedmongo "github.com/hrops-platform/scheduling-service/pkg/mongodb"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type StoreRepository struct {
	collection *sharedmongo.InstrumentedCollection
}

func NewStoreRepository(client *sharedmongo.InstrumentedClient) *StoreRepository {
	repo := &StoreRepository{collection: client.Collection("stores")}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *StoreRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "storeId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "isDefault", Value: 1}}},
		{Keys: bson.D{{Key: "isActive", Value: 1}}},
	}
	r.collection.Underlying().Indexes().CreateMany(ctx, indexes)
}

func (r *StoreRepository) Save(ctx context.Context, store *domain.Store) error {
	store.UpdatedAt = time.Now()

	opts := options.Update().SetUpsert(true)
	filter := bson.M{"storeId": store.StoreID}
	update := bson.M{"$set": store}

	if _, err := r.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to save store: %w", err)
	}
	return nil
}

func (r *StoreRepository) FindByID(ctx context.Context, storeID string) (*domain.Store, error) {
	var store domain.Store
	err := r.collection.FindOne(ctx, bson.M{"storeId": storeID}).Decode(&store)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &store, err
}

func (r *StoreRepository) FindDefault(ctx context.Context) (*domain.Store, error) {
	var store domain.Store
	err := r.collection.FindOne(ctx, bson.M{"isDefault": true}).Decode(&store)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &store, err
}

func (r *StoreRepository) FindActive(ctx context.Context) ([]*domain.Store, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"isActive": true})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var stores []*domain.Store
	err = cursor.All(ctx, &stores)
	return stores, err
}

func (r *StoreRepository) FindAll(ctx context.Context, limit, offset int) ([]*domain.Store, error) {
	opts := options.Find().SetLimit(int64(limit)).SetSkip(int64(offset)).SetSort(sharedmongo.SortAscending("name"))
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var stores []*domain.Store
	err = cursor.All(ctx, &stores)
	return stores, err
}

func (r *StoreRepository) Delete(ctx context.Context, storeID string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"storeId": storeID})
	return err
}
