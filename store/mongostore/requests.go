// store/mongostore/requests.go
package mongostore

import (
	"context"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sabbirsolid/asset-management-system-server/models"
	"github.com/sabbirsolid/asset-management-system-server/store"
)

type Requests struct {
	col *mongo.Collection
}

func NewRequests(db *mongo.Database) *Requests {
	return &Requests{col: db.Collection("requests")}
}

func (s *Requests) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Request, error) {
	var r models.Request
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&r)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Requests) Insert(ctx context.Context, r *models.Request) (primitive.ObjectID, error) {
	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	_, err := s.col.InsertOne(ctx, r)
	return r.ID, err
}

func (s *Requests) List(ctx context.Context, f store.RequestFilter) ([]models.Request, error) {
	filter := bson.M{}
	if f.Tenant != "" {
		filter["hrEmail"] = f.Tenant
	}
	if f.RequesterEmail != "" {
		filter["requesterEmail"] = f.RequesterEmail
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.AssetType != "" {
		filter["assetType"] = f.AssetType
	}
	if f.Search != "" {
		pattern := regexp.QuoteMeta(f.Search)
		filter["$or"] = []bson.M{
			{"assetName": bson.M{"$regex": pattern, "$options": "i"}},
			{"requesterEmail": bson.M{"$regex": pattern, "$options": "i"}},
			{"requesterName": bson.M{"$regex": pattern, "$options": "i"}},
		}
	}

	opts := options.Find().SetSort(bson.D{{Key: "requestDate", Value: -1}})
	cursor, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var requests []models.Request
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, err
	}
	if requests == nil {
		requests = []models.Request{}
	}
	return requests, nil
}

// Transition flips the status only while the stored value still equals
// from; MatchedCount tells us whether we won or lost the race.
func (s *Requests) Transition(ctx context.Context, id primitive.ObjectID, from, to, dateField string, at time.Time) (bool, error) {
	filter := bson.M{"_id": id, "status": from}
	update := bson.M{"$set": bson.M{"status": to, dateField: at}}

	res, err := s.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (s *Requests) CountOpenByAsset(ctx context.Context, tenant string, assetID primitive.ObjectID) (int64, error) {
	filter := bson.M{
		"hrEmail": tenant,
		"assetId": assetID,
		"status":  bson.M{"$in": []string{models.StatusPending, models.StatusApproved}},
	}
	return s.col.CountDocuments(ctx, filter)
}

func (s *Requests) TopRequested(ctx context.Context, tenant string, limit int64) ([]store.RequestCount, error) {
	pipeline := []bson.M{
		{"$match": bson.M{"hrEmail": tenant}},
		{"$group": bson.M{
			"_id":   "$assetName",
			"count": bson.M{"$sum": 1},
		}},
		// Name ascending as the tie break keeps the order stable.
		{"$sort": bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}},
		{"$limit": limit},
	}

	cursor, err := s.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var counts []store.RequestCount
	if err := cursor.All(ctx, &counts); err != nil {
		return nil, err
	}
	if counts == nil {
		counts = []store.RequestCount{}
	}
	return counts, nil
}

func (s *Requests) StatusCounts(ctx context.Context, tenant string) (store.StatusCounts, error) {
	pipeline := []bson.M{
		{"$match": bson.M{"hrEmail": tenant}},
		{"$group": bson.M{
			"_id":   "$status",
			"count": bson.M{"$sum": 1},
		}},
	}

	var out store.StatusCounts
	cursor, err := s.col.Aggregate(ctx, pipeline)
	if err != nil {
		return out, err
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var row struct {
			Status string `bson:"_id"`
			Count  int64  `bson:"count"`
		}
		if err := cursor.Decode(&row); err != nil {
			return out, err
		}
		switch row.Status {
		case models.StatusPending:
			out.Pending = row.Count
		case models.StatusApproved:
			out.Approved = row.Count
		case models.StatusRejected:
			out.Rejected = row.Count
		case models.StatusReturned:
			out.Returned = row.Count
		}
	}
	return out, cursor.Err()
}
