package repository

import (
	"context"
	"log"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the repositories query by. Failures are
// logged and do not stop startup.
func EnsureIndexes(ctx context.Context, client *mongo.Client) {
	db := client.Database(DatabaseName)
	turns := db.Collection("turns")
	sessions := db.Collection("sessions")

	// turns are always read per session, oldest first
	createIndex(ctx, turns, bson.D{
		{Key: "sessionId", Value: 1},
		{Key: "createdAt", Value: 1},
	}, false)
	createIndex(ctx, turns, bson.D{
		{Key: "sessionId", Value: 1},
		{Key: "playerId", Value: 1},
		{Key: "status", Value: 1},
	}, false)

	createIndex(ctx, sessions, bson.D{
		{Key: "status", Value: 1},
		{Key: "updatedAt", Value: -1},
	}, false)

	log.Println("Mongo indexes ensured")
}

func createIndex(ctx context.Context, coll *mongo.Collection, keys bson.D, unique bool) {
	opts := options.Index().SetUnique(unique)
	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: keys, Options: opts})
	if err != nil {
		log.Printf("Warning: failed to create index on %s: %v", coll.Name(), err)
	}
}
