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

type EmployeeRepository struct {
	collection *sharedmongo.InstrumentedCollection
}

func NewEmployeeRepository(client *sharedmongo.InstrumentedClient) *EmployeeRepository {
	repo := &EmployeeRepository{collection: client.Collection("employees")}
	repo.ensureIndexes(context.Background())
	return repo
}

func (r *EmployeeRepository) ensureIndexes(ctx context.Context) {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "employeeId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "externalRef", Value: 1}}, Options: options.Index().SetSparse(true)},
		{Keys: bson.D{{Key: "storeId", Value: 1}}},
		{Keys: bson.D{{Key: "isActive", Value: 1}}},
	}
	r.collection.Underlying().Indexes().CreateMany(ctx, indexes)
}

func (r *EmployeeRepository) Save(ctx context.Context, employee *domain.Employee) error {
	employee.UpdatedAt = time.Now()

	opts := options.Update().SetUpsert(true)
	filter := bson.M{"employeeId": employee.EmployeeID}
	update := bson.M{"$set": employee}

	if _, err := r.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("failed to save employee: %w", err)
	}
	return nil
}

func (r *EmployeeRepository) FindByID(ctx context.Context, employeeID string) (*domain.Employee, error) {
	var employee domain.Employee
	err := r.collection.FindOne(ctx, bson.M{"employeeId": employeeID}).Decode(&employee)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &employee, err
}

func (r *EmployeeRepository) FindByExternalRef(ctx context.Context, ref string) (*domain.Employee, error) {
	var employee domain.Employee
	err := r.collection.FindOne(ctx, bson.M{"externalRef": ref}).Decode(&employee)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	return &employee, err
}

func (r *EmployeeRepository) FindByStore(ctx context.Context, storeID string) ([]*domain.Employee, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"storeId": storeID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var employees []*domain.Employee
	err = cursor.All(ctx, &employees)
	return employees, err
}

func (r *EmployeeRepository) FindActive(ctx context.Context) ([]*domain.Employee, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"isActive": true})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var employees []*domain.Employee
	err = cursor.All(ctx, &employees)
	return employees, err
}

func (r *EmployeeRepository) FindAll(ctx context.Context, limit, offset int) ([]*domain.Employee, error) {
	opts := options.Find().SetLimit(int64(limit)).SetSkip(int64(offset)).SetSort(sharedmongo.SortAscending("name"))
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var employees []*domain.Employee
	err = cursor.All(ctx, &employees)
	return employees, err
}

func (r *EmployeeRepository) Delete(ctx context.Context, employeeID string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"employeeId": employeeID})
	return err
}
