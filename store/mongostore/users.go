// store/mongostore/users.go
package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sabbirsolid/asset-management-system-server/models"
)

type Users struct {
	col *mongo.Collection
}

func NewUsers(db *mongo.Database) *Users {
	return &Users{col: db.Collection("users")}
}

func (s *Users) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.col.FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Users) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Users) Insert(ctx context.Context, u *models.User) (primitive.ObjectID, error) {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	_, err := s.col.InsertOne(ctx, u)
	return u.ID, err
}

func (s *Users) ListUnassigned(ctx context.Context) ([]models.User, error) {
	filter := bson.M{"role": models.RoleEmployee, "hrEmail": nil}
	return s.list(ctx, filter)
}

func (s *Users) ListMembers(ctx context.Context, tenant string) ([]models.User, error) {
	return s.list(ctx, bson.M{"hrEmail": tenant, "role": models.RoleEmployee})
}

func (s *Users) list(ctx context.Context, filter bson.M) ([]models.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

func (s *Users) SetTenant(ctx context.Context, id primitive.ObjectID, hrEmail *string, company, logo string) error {
	update := bson.M{"$set": bson.M{
		"hrEmail":     hrEmail,
		"company":     company,
		"companyLogo": logo,
	}}
	res, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (s *Users) UpdateName(ctx context.Context, email, name string) error {
	res, err := s.col.UpdateOne(ctx, bson.M{"email": email}, bson.M{"$set": bson.M{"name": name}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// AdjustEmployeeCount applies the delta with a guard in the filter so a
// concurrent over-decrement can never drive the seat count negative.
func (s *Users) AdjustEmployeeCount(ctx context.Context, email string, delta int64) (bool, error) {
	filter := bson.M{"email": email, "role": models.RoleHRManager}
	if delta < 0 {
		filter["employeeCount"] = bson.M{"$gte": -delta}
	}
	res, err := s.col.UpdateOne(ctx, filter, bson.M{"$inc": bson.M{"employeeCount": delta}})
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

// EnsureUserIndexes creates the unique email lookup index.
func EnsureUserIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := db.Collection("users").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
