package docstore

import (
	"context"
	"errors"
	"fmt"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/x/mongo/driver/topology"
)

// Mongo implements Store on a MongoDB database. Document ids are stored as
// string _id values.
type Mongo struct {
	db *mongo.Database
}

// NewMongo wraps db.
func NewMongo(db *mongo.Database) *Mongo {
	return &Mongo{db: db}
}

func (s *Mongo) Get(ctx context.Context, coll, id string, out any) error {
	err := s.db.Collection(coll).FindOne(ctx, bson.M{"_id": id}).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return translate(err)
}

func (s *Mongo) Insert(ctx context.Context, coll, id string, doc any) error {
	_, err := s.db.Collection(coll).InsertOne(ctx, doc)
	if err != nil && wafflemongo.IsDup(err) {
		return fmt.Errorf("%w: %s/%s", ErrDuplicate, coll, id)
	}
	return translate(err)
}

func (s *Mongo) Update(ctx context.Context, coll, id string, version int64, u Update) error {
	c := s.db.Collection(coll)
	filter := bson.M{"_id": id, VersionField: version}
	if u.Elem != nil {
		filter[u.Elem.Array+"."+u.Elem.Key] = u.Elem.Value
	}
	res, err := c.UpdateOne(ctx, filter, updateDoc(u))
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return s.missOrStale(ctx, c, id)
	}
	return nil
}

func (s *Mongo) Delete(ctx context.Context, coll, id string, version int64) error {
	c := s.db.Collection(coll)
	res, err := c.DeleteOne(ctx, bson.M{"_id": id, VersionField: version})
	if err != nil {
		return translate(err)
	}
	if res.DeletedCount == 0 {
		return s.missOrStale(ctx, c, id)
	}
	return nil
}

func (s *Mongo) FindContains(ctx context.Context, coll, field string, value any, out any, opts ...FindOption) error {
	o := findOptions(opts)
	fo := options.Find()
	if o.SortField != "" {
		dir := 1
		if o.SortDesc {
			dir = -1
		}
		// _id breaks ties so equal sort keys come back in a stable order.
		fo.SetSort(bson.D{{Key: o.SortField, Value: dir}, {Key: "_id", Value: dir}})
	}
	cur, err := s.db.Collection(coll).Find(ctx, bson.M{field: value}, fo)
	if err != nil {
		return translate(err)
	}
	defer cur.Close(ctx)
	return translate(cur.All(ctx, out))
}

// missOrStale distinguishes "document gone" from "document changed" after a
// conditional write matched nothing.
func (s *Mongo) missOrStale(ctx context.Context, c *mongo.Collection, id string) error {
	n, err := c.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return translate(err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return ErrVersionMismatch
}

func updateDoc(u Update) bson.M {
	doc := bson.M{"$inc": bson.M{VersionField: 1}}
	add := func(op string, fields []Field) {
		if len(fields) == 0 {
			return
		}
		m := bson.M{}
		for _, f := range fields {
			m[f.Path] = f.Value
		}
		doc[op] = m
	}
	add("$set", u.Set)
	add("$addToSet", u.AddToSet)
	add("$pull", u.Pull)
	add("$push", u.Push)
	return doc
}

// translate maps driver errors onto the package's error values. Timeouts,
// cancellations and connectivity problems become ErrUnavailable; everything
// else passes through.
func translate(err error) error {
	if err == nil {
		return nil
	}
	var sel topology.ServerSelectionError
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) ||
		mongo.IsTimeout(err) || mongo.IsNetworkError(err) || errors.As(err, &sel) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return err
}
