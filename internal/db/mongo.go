package db

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mymileages/my-mileages/internal/models"
)

// ConnectMongo connects to MongoDB using the MONGO_URI environment variable.
func ConnectMongo() (*mongo.Client, error) {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo.Connect error: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	// Ping to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongo.Ping error: %w", err)
	}
	return client, nil
}

// DatabaseName returns the configured database name, defaulting to
// "mymileages".
func DatabaseName() string {
	if name := os.Getenv("MONGO_DB"); name != "" {
		return name
	}
	return "mymileages"
}

// MongoVehicleCollection implements VehicleCollection for MongoDB.
type MongoVehicleCollection struct {
	Collection *mongo.Collection
}

// ListVehicles returns all vehicles owned by the given user.
func (c *MongoVehicleCollection) ListVehicles(ctx context.Context, userID string) ([]models.Vehicle, error) {
	if c.Collection == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}

	cursor, err := c.Collection.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var vehicles []models.Vehicle
	if err := cursor.All(ctx, &vehicles); err != nil {
		return nil, err
	}
	return vehicles, nil
}

// SaveVehicle inserts the vehicle or replaces an existing record with the
// same id (upsert semantics, last write wins on a document id).
func (c *MongoVehicleCollection) SaveVehicle(ctx context.Context, vehicle models.Vehicle) error {
	if c.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}

	opts := options.Replace().SetUpsert(true)
	filter := bson.M{"_id": vehicle.ID, "user_id": vehicle.UserID}
	_, err := c.Collection.ReplaceOne(ctx, filter, vehicle, opts)
	return err
}

// DeleteVehicle removes a vehicle by id. Trips referencing the vehicle are
// left untouched; deletion never cascades.
func (c *MongoVehicleCollection) DeleteVehicle(ctx context.Context, userID, id string) error {
	if c.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}

	result, err := c.Collection.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("vehicle not found")
	}
	return nil
}

// MongoTripCollection implements TripCollection for MongoDB.
type MongoTripCollection struct {
	Collection *mongo.Collection
}

// tripSort orders by date descending. The store only guarantees ordering
// on the date field; callers re-sort for same-day tie-breaking.
var tripSort = bson.D{{Key: "date", Value: -1}}

// ListTrips returns all trips owned by the given user, newest date first.
func (c *MongoTripCollection) ListTrips(ctx context.Context, userID string) ([]models.Trip, error) {
	return c.findTrips(ctx, bson.M{"user_id": userID})
}

// ListTripsByVehicle returns the user's trips for one vehicle, newest
// date first.
func (c *MongoTripCollection) ListTripsByVehicle(ctx context.Context, userID, vehicleID string) ([]models.Trip, error) {
	return c.findTrips(ctx, bson.M{"user_id": userID, "vehicle_id": vehicleID})
}

func (c *MongoTripCollection) findTrips(ctx context.Context, filter bson.M) ([]models.Trip, error) {
	if c.Collection == nil {
		return nil, fmt.Errorf("mongo collection is nil")
	}

	cursor, err := c.Collection.Find(ctx, filter, options.Find().SetSort(tripSort))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var trips []models.Trip
	if err := cursor.All(ctx, &trips); err != nil {
		return nil, err
	}
	return trips, nil
}

// SaveTrip inserts the trip or replaces an existing record with the same
// id (upsert semantics).
func (c *MongoTripCollection) SaveTrip(ctx context.Context, trip models.Trip) error {
	if c.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}

	opts := options.Replace().SetUpsert(true)
	filter := bson.M{"_id": trip.ID, "user_id": trip.UserID}
	_, err := c.Collection.ReplaceOne(ctx, filter, trip, opts)
	return err
}

// SaveTrips persists a batch as N independent upserts. There is no
// multi-record transaction; a failure mid-batch leaves earlier trips
// saved and is reported to the caller.
func (c *MongoTripCollection) SaveTrips(ctx context.Context, trips []models.Trip) error {
	for i := range trips {
		if err := c.SaveTrip(ctx, trips[i]); err != nil {
			return fmt.Errorf("save trip %d of %d: %w", i+1, len(trips), err)
		}
	}
	return nil
}

// DeleteTrip removes a trip by id.
func (c *MongoTripCollection) DeleteTrip(ctx context.Context, userID, id string) error {
	if c.Collection == nil {
		return fmt.Errorf("mongo collection is nil")
	}

	result, err := c.Collection.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("trip not found")
	}
	return nil
}
