package mongodb

import (
	"go.mongodb.org/mongo-driver/bson"
)

// SortAscending builds an ascending sort document for one field
func SortAscending(field string) bson.D {
	return bson.D{{Key: field, Value: 1}}
}

// SortDescending builds a descending sort document for one field
func SortDescending(field string) bson.D {
	return bson.D{{Key: field, Value: -1}}
}

// SortField names a field to sort by
type SortField struct {
	Field      string
	Descending bool
}

// SortMultiple builds a compound sort document in the order given
func SortMultiple(fields ...SortField) bson.D {
	sort := bson.D{}
	for _, f := range fields {
		if f.Descending {
			sort = append(sort, bson.E{Key: f.Field, Value: -1})
		} else {
			sort = append(sort, bson.E{Key: f.Field, Value: 1})
		}
	}
	return sort
}
