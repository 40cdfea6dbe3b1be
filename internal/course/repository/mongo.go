package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/coursepub/coursepub/internal/course"
)

// MongoRepo implements the course record index on a MongoDB collection.
// (courseId, format) carries a unique compound index so the identity key
// behaves like a primary key.
type MongoRepo struct {
	col *mongo.Collection
}

func NewMongoRepo(col *mongo.Collection) *MongoRepo {
	idx := mongo.IndexModel{
		Keys:    bson.D{{Key: "courseId", Value: 1}, {Key: "format", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	col.Indexes().CreateOne(context.Background(), idx)
	return &MongoRepo{col: col}
}

// Upsert writes the record under its identity key. createdAt is stamped only
// on first insert; overwrites keep the original value.
func (m *MongoRepo) Upsert(ctx context.Context, rec *course.CourseRecord) (*course.CourseRecord, error) {
	filter := bson.M{"courseId": rec.CourseID, "format": rec.Format}
	update := bson.M{
		"$set": bson.M{
			"title":       rec.Title,
			"blobRef":     rec.BlobRef,
			"lastUpdated": rec.LastUpdated,
		},
		"$setOnInsert": bson.M{"createdAt": time.Now().UTC()},
	}
	opts := options.Update().SetUpsert(true)
	if _, err := m.col.UpdateOne(ctx, filter, update, opts); err != nil {
		return nil, err
	}
	return m.Get(ctx, rec.CourseID, rec.Format)
}

func (m *MongoRepo) Get(ctx context.Context, courseID, format string) (*course.CourseRecord, error) {
	var rec course.CourseRecord
	err := m.col.FindOne(ctx, bson.M{"courseId": courseID, "format": format}).Decode(&rec)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

func (m *MongoRepo) List(ctx context.Context) ([]*course.CourseRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "courseId", Value: 1}, {Key: "format", Value: 1}})
	cur, err := m.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*course.CourseRecord{}
	for cur.Next(ctx) {
		var rec course.CourseRecord
		if err := cur.Decode(&rec); err != nil {
			return nil, err
		}
		out = append(out, &rec)
	}
	return out, cur.Err()
}
