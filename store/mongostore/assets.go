// store/mongostore/assets.go
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

type Assets struct {
	col *mongo.Collection
}

func NewAssets(db *mongo.Database) *Assets {
	return &Assets{col: db.Collection("assets")}
}

func (s *Assets) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Asset, error) {
	var a models.Asset
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&a)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Assets) FindByName(ctx context.Context, tenant, name string) (*models.Asset, error) {
	filter := bson.M{"hrEmail": tenant, "nameLower": models.FoldAssetName(name)}
	var a models.Asset
	err := s.col.FindOne(ctx, filter).Decode(&a)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Assets) List(ctx context.Context, f store.AssetFilter, sort store.AssetSort) ([]models.Asset, error) {
	filter := bson.M{"hrEmail": f.Tenant}

	if f.Search != "" {
		filter["name"] = bson.M{"$regex": regexp.QuoteMeta(f.Search), "$options": "i"}
	}
	if f.Type != "" {
		filter["type"] = f.Type
	}
	switch f.StockStatus {
	case store.StockAvailable:
		filter["quantity"] = bson.M{"$gt": 0}
	case store.StockOut:
		filter["quantity"] = 0
	}

	field := "addedDate"
	order := -1
	switch sort.Field {
	case "name":
		field = "nameLower"
	case "quantity":
		field = "quantity"
	case "addedDate":
		field = "addedDate"
	}
	if sort.Field != "" {
		order = 1
		if sort.Descending {
			order = -1
		}
	}

	opts := options.Find().SetSort(bson.D{{Key: field, Value: order}})
	cursor, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var assets []models.Asset
	if err := cursor.All(ctx, &assets); err != nil {
		return nil, err
	}
	if assets == nil {
		assets = []models.Asset{}
	}
	return assets, nil
}

func (s *Assets) LowStock(ctx context.Context, tenant string, threshold, limit int64) ([]models.Asset, error) {
	filter := bson.M{"hrEmail": tenant, "quantity": bson.M{"$lt": threshold}}
	// Ascending by quantity so the most depleted assets come first.
	opts := options.Find().
		SetSort(bson.D{{Key: "quantity", Value: 1}, {Key: "nameLower", Value: 1}}).
		SetLimit(limit)

	cursor, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var assets []models.Asset
	if err := cursor.All(ctx, &assets); err != nil {
		return nil, err
	}
	if assets == nil {
		assets = []models.Asset{}
	}
	return assets, nil
}

func (s *Assets) Insert(ctx context.Context, a *models.Asset) (primitive.ObjectID, error) {
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	a.NameLower = models.FoldAssetName(a.Name)
	_, err := s.col.InsertOne(ctx, a)
	return a.ID, err
}

func (s *Assets) AddQuantity(ctx context.Context, id primitive.ObjectID, delta int64, assetType string, addedDate time.Time) error {
	update := bson.M{
		"$inc": bson.M{"quantity": delta},
		"$set": bson.M{"type": assetType, "addedDate": addedDate},
	}
	res, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// DecrementQuantity is the compare-and-set that keeps quantity
// non-negative: the filter demands enough stock, so two concurrent
// decrements can never both match once stock runs out.
func (s *Assets) DecrementQuantity(ctx context.Context, id primitive.ObjectID, qty int64) (bool, error) {
	filter := bson.M{"_id": id, "quantity": bson.M{"$gte": qty}}
	res, err := s.col.UpdateOne(ctx, filter, bson.M{"$inc": bson.M{"quantity": -qty}})
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (s *Assets) IncrementQuantity(ctx context.Context, id primitive.ObjectID, qty int64) error {
	res, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"quantity": qty}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (s *Assets) Update(ctx context.Context, id primitive.ObjectID, tenant string, name, assetType string, quantity int64) (bool, error) {
	update := bson.M{"$set": bson.M{
		"name":      name,
		"nameLower": models.FoldAssetName(name),
		"type":      assetType,
		"quantity":  quantity,
	}}
	res, err := s.col.UpdateOne(ctx, bson.M{"_id": id, "hrEmail": tenant}, update)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (s *Assets) Delete(ctx context.Context, id primitive.ObjectID, tenant string) (bool, error) {
	res, err := s.col.DeleteOne(ctx, bson.M{"_id": id, "hrEmail": tenant})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

// EnsureAssetIndexes creates the per-tenant unique name index backing
// the case-insensitive upsert.
func EnsureAssetIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := db.Collection("assets").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "hrEmail", Value: 1}, {Key: "nameLower", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
