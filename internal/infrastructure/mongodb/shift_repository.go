package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/hrops-platform/scheduling-service/internal/domain"
	sharedmongo "github.com/hrops-platform/scheduling-service/pkg/mongodb"
	"github.com/hrops-platform/scheduling-service/pkg/cloudevents"
	"github.com/hrops-platform/scheduling-service/pkg/kafka"
	"github.com/hrops-platform/scheduling-service/pkg/outbox"
	outboxMongo "github.com/hrops-platform/scheduling-service/pkg/outbox/mongodb"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ShiftRepository struct {
	collection   *sharedmongo.InstrumentedCollection
	client       *sharedmongo.InstrumentedClient
	outboxRepo   *outboxMongo.OutboxRepository
	eventFactory *cloudevents.EventFactory
}

func NewShiftRepository(client *sharedmongo.InstrumentedClient, eventFactory *cloudevents.EventFactory) *ShiftRepository {
	collection := client.Collection("shifts")
	outboxRepo := outboxMongo.NewOutboxRepository(client.Database())

	repo := &ShiftRepository{
		collection:   collection,
		client:       client,
		outboxRepo:   outboxRepo,
		eventFactory: eventFactory,
	}
	repo.ensureIndexes(context.Background())

	// Create outbox indexes
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = outboxRepo.EnsureIndexes(ctx)

	return repo
}

func (r *ShiftRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "shiftId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "storeId", Value: 1}, {Key: "date", Value: 1}}},
		{Keys: bson.D{{Key: "employeeId", Value: 1}, {Key: "date", Value: 1}}},
		{Keys: bson.D{{Key: "validationStatus", Value: 1}}},
	}
	r.collection.Underlying().Indexes().CreateMany(ctx, indexes)
}

func (r *ShiftRepository) Save(ctx context.Context, shift *domain.Shift) error {
	shift.UpdatedAt = time.Now()

	err := r.client.WithTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := r.upsert(sessCtx, shift); err != nil {
			return err
		}

		outboxEvents, err := r.outboxEventsFor(sessCtx, shift)
		if err != nil {
			return err
		}
		if len(outboxEvents) > 0 {
			if err := r.outboxRepo.SaveAll(sessCtx, outboxEvents); err != nil {
				return fmt.Errorf("failed to save outbox events: %w", err)
			}
		}

		shift.ClearDomainEvents()
		return nil
	})

	if err != nil {
		return fmt.Errorf("transaction failed: %w", err)
	}
	return nil
}

// SaveAll persists a batch of shifts and their pending domain events in a
// single transaction. Either every shift is written or none is.
func (r *ShiftRepository) SaveAll(ctx context.Context, shifts []*domain.Shift) error {
	if len(shifts) == 0 {
		return nil
	}

	err := r.client.WithTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		outboxEvents := make([]*outbox.OutboxEvent, 0, len(shifts))
		for _, shift := range shifts {
			shift.UpdatedAt = time.Now()
			if err := r.upsert(sessCtx, shift); err != nil {
				return err
			}
			events, err := r.outboxEventsFor(sessCtx, shift)
			if err != nil {
				return err
			}
			outboxEvents = append(outboxEvents, events...)
		}

		if len(outboxEvents) > 0 {
			if err := r.outboxRepo.SaveAll(sessCtx, outboxEvents); err != nil {
				return fmt.Errorf("failed to save outbox events: %w", err)
			}
		}

		for _, shift := range shifts {
			shift.ClearDomainEvents()
		}
		return nil
	})

	if err != nil {
		return fmt.Errorf("transaction failed: %w", err)
	}
	return nil
}

func (r *ShiftRepository) upsert(ctx context.Context, shift *domain.Shift) error {
	opts := options.Update().SetUpsert(true)
	filter := bson.M{"shiftId": shift.ShiftID}
	update := bson.M{"$set": shift}

	if _, err := r.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to save shift: %w", err)
	}
	return nil
}

func (r *ShiftRepository) outboxEventsFor(ctx context.Context, shift *domain.Shift) ([]*outbox.OutboxEvent, error) {
	if len(shift.DomainEvents) == 0 {
		return nil, nil
	}

	outboxEvents := make([]*outbox.OutboxEvent, 0, len(shift.DomainEvents))
	for _, event := range shift.DomainEvents {
		var cloudEvent *cloudevents.CloudEvent
		switch e := event.(type) {
		case *domain.ShiftCreatedEvent:
			cloudEvent = r.eventFactory.CreateEvent(ctx, e.EventType(), "shift/"+e.ShiftID, e)
		case *domain.ShiftUpdatedEvent:
			cloudEvent = r.eventFactory.CreateEvent(ctx, e.EventType(), "shift/"+e.ShiftID, e)
		case *domain.ShiftTransitionedEvent:
			cloudEvent = r.eventFactory.CreateEvent(ctx, e.EventType(), "shift/"+e.ShiftID, e)
		default:
			continue
		}

		outboxEvent, err := outbox.NewOutboxEventFromCloudEvent(
			shift.ShiftID,
			"Shift",
			kafka.Topics.SchedulingEvents,
			cloudEvent,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create outbox event: %w", err)
		}
		outboxEvents = append(outboxEvents, outboxEvent)
	}
	return outboxEvents, nil
}

func (r *ShiftRepository) FindByID(ctx context.Context, shiftID string) (*domain.Shift, error) {
	var shift domain.Shift
	err := r.collection.FindOne(ctx, bson.M{"shiftId": shiftID}).Decode(&shift)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &shift, err
}

func (r *ShiftRepository) FindByStoreWeek(ctx context.Context, storeID string, weekStart time.Time) ([]*domain.Shift, error) {
	filter := bson.M{
		"storeId": storeID,
		"date": bson.M{
			"$gte": weekStart,
			"$lt":  weekStart.AddDate(0, 0, 7),
		},
	}
	opts := options.Find().SetSort(sharedmongo.SortMultiple(sharedmongo.SortField{Field: "date"}, sharedmongo.SortField{Field: "startTime"}))
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var shifts []*domain.Shift
	err = cursor.All(ctx, &shifts)
	return shifts, err
}

func (r *ShiftRepository) FindByEmployeeRange(ctx context.Context, employeeID string, from, to time.Time) ([]*domain.Shift, error) {
	filter := bson.M{
		"employeeId": employeeID,
		"date": bson.M{
			"$gte": from,
			"$lt":  to,
		},
	}
	opts := options.Find().SetSort(sharedmongo.SortMultiple(sharedmongo.SortField{Field: "date"}, sharedmongo.SortField{Field: "startTime"}))
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var shifts []*domain.Shift
	err = cursor.All(ctx, &shifts)
	return shifts, err
}

func (r *ShiftRepository) FindByEmployeeStore(ctx context.Context, employeeID, storeID string, from, to time.Time) ([]*domain.Shift, error) {
	filter := bson.M{
		"employeeId": employeeID,
		"storeId":    storeID,
		"date": bson.M{
			"$gte": from,
			"$lt":  to,
		},
	}
	opts := options.Find().SetSort(sharedmongo.SortMultiple(sharedmongo.SortField{Field: "date"}, sharedmongo.SortField{Field: "startTime"}))
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var shifts []*domain.Shift
	err = cursor.All(ctx, &shifts)
	return shifts, err
}

// FindEarliestDate returns the date of the oldest stored shift, scoped
// to one store when storeID is non-empty. A zero time means no shifts
// exist for the scope.
func (r *ShiftRepository) FindEarliestDate(ctx context.Context, storeID string) (time.Time, error) {
	filter := bson.M{}
	if storeID != "" {
		filter["storeId"] = storeID
	}
	opts := options.FindOne().
		SetSort(sharedmongo.SortMultiple(sharedmongo.SortField{Field: "date"})).
		SetProjection(bson.M{"date": 1})

	var doc struct {
		Date time.Time `bson:"date"`
	}
	err := r.collection.FindOne(ctx, filter, opts).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return time.Time{}, nil
	}
	return doc.Date, err
}

func (r *ShiftRepository) Delete(ctx context.Context, shiftID string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"shiftId": shiftID})
	return err
}

// GetOutboxRepository returns the outbox repository for this service
func (r *ShiftRepository) GetOutboxRepository() outbox.Repository {
	return r.outboxRepo
}
