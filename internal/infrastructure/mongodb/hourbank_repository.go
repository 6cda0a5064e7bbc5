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

type HourBankRepository struct {
	accounts     *sharedmongo.InstrumentedCollection
	entries      *sharedmongo.InstrumentedCollection
	requests     *sharedmongo.InstrumentedCollection
	client       *sharedmongo.InstrumentedClient
	outboxRepo   *outboxMongo.OutboxRepository
	eventFactory *cloudevents.EventFactory
}

func NewHourBankRepository(client *sharedmongo.InstrumentedClient, eventFactory *cloudevents.EventFactory) *HourBankRepository {
	outboxRepo := outboxMongo.NewOutboxRepository(client.Database())

	repo := &HourBankRepository{
		accounts:     client.Collection("hour_bank_accounts"),
		entries:      client.Collection("hour_bank_entries"),
		requests:     client.Collection("hour_recovery_requests"),
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

func (r *HourBankRepository) ensureIndexes(ctx context.Context) {
	accountIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "accountId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "employeeId", Value: 1}, {Key: "storeId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "storeId", Value: 1}}},
	}
	r.accounts.Underlying().Indexes().CreateMany(ctx, accountIndexes)

	entryIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "entryId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "accountId", Value: 1}, {Key: "weekStart", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "storeId", Value: 1}}},
	}
	r.entries.Underlying().Indexes().CreateMany(ctx, entryIndexes)

	requestIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "requestId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "employeeId", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "storeId", Value: 1}}},
	}
	r.requests.Underlying().Indexes().CreateMany(ctx, requestIndexes)
}

func (r *HourBankRepository) SaveAccount(ctx context.Context, account *domain.HourBankAccount) error {
	account.UpdatedAt = time.Now()

	err := r.client.WithTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		opts := options.Update().SetUpsert(true)
		filter := bson.M{"accountId": account.AccountID}
		update := bson.M{"$set": account}

		if _, err := r.accounts.UpdateOne(sessCtx, filter, update, opts); err != nil {
			return fmt.Errorf("failed to save account: %w", err)
		}

		if len(account.DomainEvents) > 0 {
			outboxEvents := make([]*outbox.OutboxEvent, 0, len(account.DomainEvents))
			for _, event := range account.DomainEvents {
				var cloudEvent *cloudevents.CloudEvent
				switch e := event.(type) {
				case *domain.HourBankEntryPostedEvent:
					cloudEvent = r.eventFactory.CreateEvent(sessCtx, e.EventType(), "account/"+e.AccountID, e)
				case *domain.RecoveryRequestEvent:
					cloudEvent = r.eventFactory.CreateEvent(sessCtx, e.EventType(), "account/"+e.AccountID, e)
				default:
					continue
				}

				outboxEvent, err := outbox.NewOutboxEventFromCloudEvent(
					account.AccountID,
					"HourBankAccount",
					kafka.Topics.HourBankEvents,
					cloudEvent,
				)
				if err != nil {
					return fmt.Errorf("failed to create outbox event: %w", err)
				}
				outboxEvents = append(outboxEvents, outboxEvent)
			}

			if len(outboxEvents) > 0 {
				if err := r.outboxRepo.SaveAll(sessCtx, outboxEvents); err != nil {
					return fmt.Errorf("failed to save outbox events: %w", err)
				}
			}
		}

		account.ClearDomainEvents()
		return nil
	})

	if err != nil {
		return fmt.Errorf("transaction failed: %w", err)
	}
	return nil
}

func (r *HourBankRepository) FindAccount(ctx context.Context, employeeID, storeID string) (*domain.HourBankAccount, error) {
	var account domain.HourBankAccount
	err := r.accounts.FindOne(ctx, bson.M{"employeeId": employeeID, "storeId": storeID}).Decode(&account)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &account, err
}

func (r *HourBankRepository) FindAccountsByStore(ctx context.Context, storeID string) ([]*domain.HourBankAccount, error) {
	cursor, err := r.accounts.Find(ctx, bson.M{"storeId": storeID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var accounts []*domain.HourBankAccount
	err = cursor.All(ctx, &accounts)
	return accounts, err
}

func (r *HourBankRepository) FindAllAccounts(ctx context.Context) ([]*domain.HourBankAccount, error) {
	cursor, err := r.accounts.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var accounts []*domain.HourBankAccount
	err = cursor.All(ctx, &accounts)
	return accounts, err
}

func (r *HourBankRepository) SaveEntry(ctx context.Context, entry *domain.HourBankEntry) error {
	opts := options.Update().SetUpsert(true)
	filter := bson.M{"accountId": entry.AccountID, "weekStart": entry.WeekStart}
	update := bson.M{"$set": entry}

	if _, err := r.entries.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to save entry: %w", err)
	}
	return nil
}

func (r *HourBankRepository) FindEntries(ctx context.Context, accountID string) ([]*domain.HourBankEntry, error) {
	opts := options.Find().SetSort(sharedmongo.SortAscending("weekStart"))
	cursor, err := r.entries.Find(ctx, bson.M{"accountId": accountID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var entries []*domain.HourBankEntry
	err = cursor.All(ctx, &entries)
	return entries, err
}

func (r *HourBankRepository) FindEntryForWeek(ctx context.Context, accountID string, weekStart time.Time) (*domain.HourBankEntry, error) {
	var entry domain.HourBankEntry
	err := r.entries.FindOne(ctx, bson.M{"accountId": accountID, "weekStart": weekStart}).Decode(&entry)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &entry, err
}

func (r *HourBankRepository) SaveRequest(ctx context.Context, request *domain.HourRecoveryRequest) error {
	request.UpdatedAt = time.Now()

	opts := options.Update().SetUpsert(true)
	filter := bson.M{"requestId": request.RequestID}
	update := bson.M{"$set": request}

	if _, err := r.requests.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to save request: %w", err)
	}
	return nil
}

func (r *HourBankRepository) FindRequest(ctx context.Context, requestID string) (*domain.HourRecoveryRequest, error) {
	var request domain.HourRecoveryRequest
	err := r.requests.FindOne(ctx, bson.M{"requestId": requestID}).Decode(&request)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &request, err
}

func (r *HourBankRepository) FindRequestsByEmployee(ctx context.Context, employeeID string) ([]*domain.HourRecoveryRequest, error) {
	opts := options.Find().SetSort(sharedmongo.SortDescending("createdAt"))
	cursor, err := r.requests.Find(ctx, bson.M{"employeeId": employeeID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var requests []*domain.HourRecoveryRequest
	err = cursor.All(ctx, &requests)
	return requests, err
}

func (r *HourBankRepository) FindRequestsByStatus(ctx context.Context, status domain.RecoveryStatus) ([]*domain.HourRecoveryRequest, error) {
	opts := options.Find().SetSort(sharedmongo.SortDescending("createdAt"))
	cursor, err := r.requests.Find(ctx, bson.M{"status": status}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var requests []*domain.HourRecoveryRequest
	err = cursor.All(ctx, &requests)
	return requests, err
}

// DeleteByStore removes a store's accounts, entries and requests and
// returns the deletion counts.
func (r *HourBankRepository) DeleteByStore(ctx context.Context, storeID string) (int64, int64, int64, error) {
	filter := bson.M{"storeId": storeID}

	accounts, err := r.accounts.DeleteMany(ctx, filter)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("failed to delete accounts: %w", err)
	}
	entries, err := r.entries.DeleteMany(ctx, filter)
	if err != nil {
		return accounts.DeletedCount, 0, 0, fmt.Errorf("failed to delete entries: %w", err)
	}
	requests, err := r.requests.DeleteMany(ctx, filter)
	if err != nil {
		return accounts.DeletedCount, entries.DeletedCount, 0, fmt.Errorf("failed to delete requests: %w", err)
	}
	return accounts.DeletedCount, entries.DeletedCount, requests.DeletedCount, nil
}

// DeleteAll removes every hour-bank document and returns the counts.
func (r *HourBankRepository) DeleteAll(ctx context.Context) (int64, int64, int64, error) {
	accounts, err := r.accounts.DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, 0, 0, fmt.Errorf("failed to delete accounts: %w", err)
	}
	entries, err := r.entries.DeleteMany(ctx, bson.M{})
	if err != nil {
		return accounts.DeletedCount, 0, 0, fmt.Errorf("failed to delete entries: %w", err)
	}
	requests, err := r.requests.DeleteMany(ctx, bson.M{})
	if err != nil {
		return accounts.DeletedCount, entries.DeletedCount, 0, fmt.Errorf("failed to delete requests: %w", err)
	}
	return accounts.DeletedCount, entries.DeletedCount, requests.DeletedCount, nil
}

// GetOutboxRepository returns the outbox repository for this service
func (r *HourBankRepository) GetOutboxRepository() outbox.Repository {
	return r.outboxRepo
}
