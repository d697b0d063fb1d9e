package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// MongoStore keeps one MongoDB collection per store collection. Documents
// are converted between JSON and BSON through relaxed extended JSON, with
// the id stored as _id.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
	logger *zap.Logger
}

func NewMongoStore(ctx context.Context, uri, database string, logger *zap.Logger) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &MongoStore{client: client, db: client.Database(database), logger: logger}, nil
}

func (s *MongoStore) Get(ctx context.Context, collection, id string) ([]byte, error) {
	var raw bson.Raw
	err := s.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(&raw)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find %s/%s: %w", collection, id, err)
	}
	return bsonToJSON(raw)
}

func (s *MongoStore) Put(ctx context.Context, collection, id string, doc []byte) error {
	bdoc, err := jsonToBSON(id, doc)
	if err != nil {
		return err
	}
	_, err = s.db.Collection(collection).ReplaceOne(ctx, bson.M{"_id": id}, bdoc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("replace %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, collection, id string) error {
	res, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) Scan(ctx context.Context, collection string, fn func(id string, doc []byte) error) error {
	cur, err := s.db.Collection(collection).Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return fmt.Errorf("scan %s: %w", collection, err)
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		id, ok := cur.Current.Lookup("_id").StringValueOK()
		if !ok {
			continue
		}
		doc, err := bsonToJSON(cur.Current)
		if err != nil {
			return err
		}
		if err := fn(id, doc); err != nil {
			return err
		}
	}
	return cur.Err()
}

// Update is a find followed by an upsert. Concurrent writers race and the
// last write wins.
func (s *MongoStore) Update(ctx context.Context, collection, id string, fn UpdateFunc) error {
	current, err := s.Get(ctx, collection, id)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	next, err := fn(current)
	if err != nil {
		return err
	}
	return s.Put(ctx, collection, id, next)
}

// Maintain checks the connection is still healthy.
func (s *MongoStore) Maintain(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *MongoStore) Close() error {
	return s.client.Disconnect(context.Background())
}

func jsonToBSON(id string, doc []byte) (bson.D, error) {
	var body bson.D
	if err := bson.UnmarshalExtJSON(doc, false, &body); err != nil {
		return nil, fmt.Errorf("convert document %s: %w", id, err)
	}
	out := make(bson.D, 0, len(body)+1)
	out = append(out, bson.E{Key: "_id", Value: id})
	for _, e := range body {
		if e.Key != "_id" {
			out = append(out, e)
		}
	}
	return out, nil
}

func bsonToJSON(raw bson.Raw) ([]byte, error) {
	doc, err := bson.MarshalExtJSON(raw, false, false)
	if err != nil {
		return nil, fmt.Errorf("convert document: %w", err)
	}
	return doc, nil
}
