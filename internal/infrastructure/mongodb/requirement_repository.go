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

type RequirementRepository struct {
	requirements *sharedmongo.InstrumentedCollection
	events       *sharedmongo.InstrumentedCollection
	client       *sharedmongo.InstrumentedClient
}

func NewRequirementRepository(client *sharedmongo.InstrumentedClient) *RequirementRepository {
	repo := &RequirementRepository{
		requirements: client.Collection("staff_requirements"),
		events:       client.Collection("weighting_events"),
		client:       client,
	}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *RequirementRepository) ensureIndexes(ctx context.Context) {
	reqIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "requirementId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "storeId", Value: 1}, {Key: "dayOfWeek", Value: 1}}},
	}
	r.requirements.Underlying().Indexes().CreateMany(ctx, reqIndexes)

	eventIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "eventId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "startDate", Value: 1}, {Key: "endDate", Value: 1}}},
	}
	r.events.Underlying().Indexes().CreateMany(ctx, eventIndexes)
}

func (r *RequirementRepository) SaveRequirement(ctx context.Context, req *domain.StaffRequirement) error {
	req.UpdatedAt = time.Now()

	opts := options.Update().SetUpsert(true)
	filter := bson.M{"requirementId": req.RequirementID}
	update := bson.M{"$set": req}

	if _, err := r.requirements.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to save requirement: %w", err)
	}
	return nil
}

// ReplaceStoreRequirements swaps a store's full requirement set in one
// transaction so readers never observe a partially duplicated week.
func (r *RequirementRepository) ReplaceStoreRequirements(ctx context.Context, storeID string, reqs []*domain.StaffRequirement) error {
	err := r.client.WithTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if _, err := r.requirements.DeleteMany(sessCtx, bson.M{"storeId": storeID}); err != nil {
			return fmt.Errorf("failed to clear requirements: %w", err)
		}
		if len(reqs) == 0 {
			return nil
		}

		docs := make([]interface{}, 0, len(reqs))
		for _, req := range reqs {
			req.UpdatedAt = time.Now()
			docs = append(docs, req)
		}
		if _, err := r.requirements.InsertMany(sessCtx, docs); err != nil {
			return fmt.Errorf("failed to insert requirements: %w", err)
		}
		return nil
	})

	if err != nil {
		return fmt.Errorf("transaction failed: %w", err)
	}
	return nil
}

func (r *RequirementRepository) FindRequirementsByStore(ctx context.Context, storeID string) ([]*domain.StaffRequirement, error) {
	cursor, err := r.requirements.Find(ctx, bson.M{"storeId": storeID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var reqs []*domain.StaffRequirement
	err = cursor.All(ctx, &reqs)
	return reqs, err
}

func (r *RequirementRepository) DeleteRequirement(ctx context.Context, requirementID string) error {
	_, err := r.requirements.DeleteOne(ctx, bson.M{"requirementId": requirementID})
	return err
}

func (r *RequirementRepository) SaveWeightingEvent(ctx context.Context, event *domain.WeightingEvent) error {
	event.UpdatedAt = time.Now()

	opts := options.Update().SetUpsert(true)
	filter := bson.M{"eventId": event.EventID}
	update := bson.M{"$set": event}

	if _, err := r.events.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to save weighting event: %w", err)
	}
	return nil
}

// FindWeightingEvents returns events whose date range overlaps [from, to].
// Store filtering happens in the domain because an empty storeIds list
// means the event applies everywhere.
func (r *RequirementRepository) FindWeightingEvents(ctx context.Context, storeID string, from, to time.Time) ([]*domain.WeightingEvent, error) {
	filter := bson.M{
		"startDate": bson.M{"$lte": to},
		"endDate":   bson.M{"$gte": from},
	}
	if storeID != "" {
		filter["$or"] = []bson.M{
			{"storeIds": storeID},
			{"storeIds": bson.M{"$size": 0}},
			{"storeIds": bson.M{"$exists": false}},
		}
	}
	cursor, err := r.events.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var events []*domain.WeightingEvent
	err = cursor.All(ctx, &events)
	return events, err
}

func (r *RequirementRepository) DeleteWeightingEvent(ctx context.Context, eventID string) error {
	_, err := r.events.DeleteOne(ctx, bson.M{"eventId": eventID})
	return err
}
