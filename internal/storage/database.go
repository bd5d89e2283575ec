package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoPreferences keeps preferences in a MongoDB collection, one document per key.
type MongoPreferences struct {
	client     *mongo.Client
	collection *mongo.Collection
	logger     *slog.Logger
}

type preferenceDoc struct {
	Key       string    `bson:"_id"`
	Value     string    `bson:"value"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// NewMongoPreferences connects to uri and uses database.collection.
func NewMongoPreferences(uri, database, collection string, logger *slog.Logger) (*MongoPreferences, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongodb connect: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongodb ping: %w", err)
	}

	return &MongoPreferences{
		client:     client,
		collection: client.Database(database).Collection(collection),
		logger:     logger.With("component", "mongo_preferences"),
	}, nil
}

func (p *MongoPreferences) Name() string { return "mongodb" }

func (p *MongoPreferences) Get(ctx context.Context, key string) (string, bool, error) {
	var doc preferenceDoc
	err := p.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("mongodb find %q: %w", key, err)
	}
	return doc.Value, true, nil
}

func (p *MongoPreferences) Set(ctx context.Context, key, value string) error {
	update := bson.M{"$set": bson.M{"value": value, "updated_at": time.Now().UTC()}}
	_, err := p.collection.UpdateOne(ctx, bson.M{"_id": key}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("mongodb upsert %q: %w", key, err)
	}
	p.logger.Debug("preference stored", "key", key)
	return nil
}

func (p *MongoPreferences) Delete(ctx context.Context, key string) error {
	if _, err := p.collection.DeleteOne(ctx, bson.M{"_id": key}); err != nil {
		return fmt.Errorf("mongodb delete %q: %w", key, err)
	}
	return nil
}

func (p *MongoPreferences) All(ctx context.Context) (map[string]string, error) {
	cur, err := p.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("mongodb find: %w", err)
	}

	var docs []preferenceDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongodb decode: %w", err)
	}

	out := make(map[string]string, len(docs))
	for _, d := range docs {
		out[d.Key] = d.Value
	}
	return out, nil
}

func (p *MongoPreferences) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return p.client.Disconnect(ctx)
}
