package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/arzan03/DevCamper/internal/query"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// mongoCollection is the typed CRUD layer shared by every Mongo repository.
type mongoCollection[T any] struct {
	coll *mongo.Collection
}

func newMongoCollection[T any](db *mongo.Database, name string) *mongoCollection[T] {
	return &mongoCollection[T]{coll: db.Collection(name)}
}

func mapError(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%s: %w: %v", op, ErrDuplicate, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (c *mongoCollection[T]) FindOne(ctx context.Context, filter bson.M, populate ...query.Populate) (*T, error) {
	if len(populate) == 0 {
		var doc T
		err := c.coll.FindOne(ctx, filter).Decode(&doc)
		if err != nil {
			return nil, mapError(c.coll.Name()+".FindOne", err)
		}
		return &doc, nil
	}

	docs, err := c.Find(ctx, query.Query{Filter: filter, Page: 1, Limit: 1, Populate: populate})
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, ErrNotFound
	}
	return &docs[0], nil
}

func (c *mongoCollection[T]) FindByID(ctx context.Context, id primitive.ObjectID, populate ...query.Populate) (*T, error) {
	return c.FindOne(ctx, bson.M{"_id": id}, populate...)
}

// Find runs q as an aggregation so projection and population share one round trip.
func (c *mongoCollection[T]) Find(ctx context.Context, q query.Query) ([]T, error) {
	cursor, err := c.coll.Aggregate(ctx, findPipeline(q))
	if err != nil {
		return nil, mapError(c.coll.Name()+".Find", err)
	}
	defer cursor.Close(ctx)

	docs := []T{}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, mapError(c.coll.Name()+".Find", err)
	}
	return docs, nil
}

func (c *mongoCollection[T]) FindAll(ctx context.Context, filter bson.M) ([]T, error) {
	return c.Find(ctx, query.Query{Filter: filter})
}

func (c *mongoCollection[T]) Count(ctx context.Context, filter bson.M) (int64, error) {
	if filter == nil {
		filter = bson.M{}
	}
	n, err := c.coll.CountDocuments(ctx, filter)
	return n, mapError(c.coll.Name()+".Count", err)
}

func (c *mongoCollection[T]) Insert(ctx context.Context, doc *T) error {
	_, err := c.coll.InsertOne(ctx, doc)
	return mapError(c.coll.Name()+".Insert", err)
}

func (c *mongoCollection[T]) Replace(ctx context.Context, id primitive.ObjectID, doc *T) error {
	res, err := c.coll.ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if err != nil {
		return mapError(c.coll.Name()+".Replace", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Update applies $set/$unset and returns the updated document.
func (c *mongoCollection[T]) Update(ctx context.Context, id primitive.ObjectID, set bson.M, unset ...string) (*T, error) {
	update := bson.M{}
	if len(set) > 0 {
		update["$set"] = set
	}
	if len(unset) > 0 {
		fields := bson.M{}
		for _, f := range unset {
			fields[f] = ""
		}
		update["$unset"] = fields
	}
	if len(update) == 0 {
		return c.FindByID(ctx, id)
	}

	var doc T
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := c.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&doc)
	if err != nil {
		return nil, mapError(c.coll.Name()+".Update", err)
	}
	return &doc, nil
}

func (c *mongoCollection[T]) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := c.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return mapError(c.coll.Name()+".Delete", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *mongoCollection[T]) DeleteMany(ctx context.Context, filter bson.M) error {
	_, err := c.coll.DeleteMany(ctx, filter)
	return mapError(c.coll.Name()+".DeleteMany", err)
}

// Average groups the matching documents and averages field.
func (c *mongoCollection[T]) Average(ctx context.Context, match bson.M, field string) (float64, bool, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "avg", Value: bson.D{{Key: "$avg", Value: "$" + field}}},
		}}},
	}
	cursor, err := c.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, false, mapError(c.coll.Name()+".Average", err)
	}
	defer cursor.Close(ctx)

	var out []struct {
		Avg float64 `bson:"avg"`
	}
	if err := cursor.All(ctx, &out); err != nil {
		return 0, false, mapError(c.coll.Name()+".Average", err)
	}
	if len(out) == 0 {
		return 0, false, nil
	}
	return out[0].Avg, true, nil
}

// findPipeline orders the stages $match, $sort, $skip, $limit, $project and
// then one $lookup (plus $unwind) per populated path.
func findPipeline(q query.Query) mongo.Pipeline {
	filter := q.Filter
	if filter == nil {
		filter = bson.M{}
	}
	sort := q.Sort
	if len(sort) == 0 {
		sort = query.DefaultSort
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$sort", Value: sort}},
	}
	if q.Limit > 0 {
		pipeline = append(pipeline,
			bson.D{{Key: "$skip", Value: q.Skip()}},
			bson.D{{Key: "$limit", Value: int64(q.Limit)}},
		)
	}
	if len(q.Select) > 0 {
		fields := append([]string{}, q.Select...)
		for _, p := range q.Populate {
			fields = append(fields, p.LocalField)
		}
		pipeline = append(pipeline, bson.D{{Key: "$project", Value: projection(fields)}})
	}
	for _, p := range q.Populate {
		pipeline = append(pipeline, lookup(p)...)
	}
	return pipeline
}

func projection(fields []string) bson.D {
	p := bson.D{}
	seen := map[string]bool{}
	for _, f := range fields {
		if seen[f] {
			continue
		}
		seen[f] = true
		p = append(p, bson.E{Key: f, Value: 1})
	}
	return p
}

func lookup(p query.Populate) []bson.D {
	inner := bson.A{
		bson.D{{Key: "$match", Value: bson.D{{Key: "$expr", Value: bson.D{
			{Key: "$eq", Value: bson.A{"$" + p.ForeignField, "$$local"}},
		}}}}},
	}
	if len(p.Select) > 0 {
		inner = append(inner, bson.D{{Key: "$project", Value: projection(p.Select)}})
	}

	stages := []bson.D{{{Key: "$lookup", Value: bson.D{
		{Key: "from", Value: p.From},
		{Key: "let", Value: bson.D{{Key: "local", Value: "$" + p.LocalField}}},
		{Key: "pipeline", Value: inner},
		{Key: "as", Value: p.Path},
	}}}}
	if p.One {
		stages = append(stages, bson.D{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$" + p.Path},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}})
	}
	return stages
}
