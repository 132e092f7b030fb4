package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// ConnectDB initializes and returns a MongoDB client and database instance.
func ConnectDB(uri, dbName string) (*mongo.Client, *mongo.Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	// Ping the primary node
	ctxPing, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelPing()
	if err := client.Ping(ctxPing, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	db := client.Database(dbName)
	fmt.Println("Successfully connected to MongoDB!")

	return client, db, nil
}

// DisconnectDB closes the MongoDB client connection.
func DisconnectDB(client *mongo.Client) error {
	if client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect MongoDB: %w", err)
	}
	fmt.Println("MongoDB connection closed.")
	return nil
}

// EnsureIndexes creates the unique indexes the application relies on:
// slug uniqueness per listing collection and waitlist email uniqueness.
// Concurrent slug collisions surface as duplicate-key errors handled by Try.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	unique := options.Index().SetUnique(true)

	specs := map[string]mongo.IndexModel{
		"servers":    {Keys: bson.D{{Key: "slug", Value: 1}}, Options: unique},
		"jobs":       {Keys: bson.D{{Key: "slug", Value: 1}}, Options: unique},
		"categories": {Keys: bson.D{{Key: "slug", Value: 1}}, Options: unique},
		"waitlist":   {Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
	}
	for coll, model := range specs {
		if _, err := db.Collection(coll).Indexes().CreateOne(ctx, model); err != nil {
			return fmt.Errorf("failed to create index on %s: %w", coll, err)
		}
	}

	// Non-unique indexes backing the ranking sort chains.
	rankIdx := mongo.IndexModel{Keys: bson.D{
		{Key: "featured", Value: -1},
		{Key: "tier_rank", Value: -1},
		{Key: "published_at", Value: -1},
	}}
	for _, coll := range []string{"servers", "jobs"} {
		if _, err := db.Collection(coll).Indexes().CreateOne(ctx, rankIdx); err != nil {
			return fmt.Errorf("failed to create ranking index on %s: %w", coll, err)
		}
	}
	return nil
}
