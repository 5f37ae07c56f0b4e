// Command seed populates the database with a demo account, a couple of
// vehicles, and three months of plausible trip history.
package main

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mymileages/my-mileages/internal/auth"
	"github.com/mymileages/my-mileages/internal/db"
	"github.com/mymileages/my-mileages/internal/models"
)

const (
	demoUsername = "demo"
	demoPassword = "demodrive123"
	demoEmail    = "demo@example.com"

	historyDays = 90
)

var destinations = []string{
	"Client Office", "Airport", "Downtown", "Warehouse",
	"Job Site", "Supplier Visit", "Conference Center",
}

var companies = []string{
	"Acme Corp", "Globex", "Initech", "Umbrella LLC", "Personal",
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file found")
	}

	client, err := db.ConnectMongo()
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	ctx := context.Background()
	defer client.Disconnect(ctx)

	database := client.Database(db.DatabaseName())
	userCollection := &db.MongoUserCollection{Collection: database.Collection("users")}
	vehicleCollection := &db.MongoVehicleCollection{Collection: database.Collection("vehicles")}
	tripCollection := &db.MongoTripCollection{Collection: database.Collection("trips")}

	authService, err := auth.NewService()
	if err != nil {
		log.WithError(err).Fatal("Failed to create auth service")
	}

	// Re-running the seeder replaces the previous demo account.
	user, err := userCollection.FindUserByUsername(ctx, demoUsername)
	if err == nil {
		log.WithField("user_id", user.ID.Hex()).Info("Removing existing demo data")
		database.Collection("trips").DeleteMany(ctx, bson.M{"user_id": user.ID.Hex()})
		database.Collection("vehicles").DeleteMany(ctx, bson.M{"user_id": user.ID.Hex()})
		userCollection.DeleteUser(ctx, user.ID.Hex())
	}

	passwordHash, err := authService.HashPassword(demoPassword)
	if err != nil {
		log.WithError(err).Fatal("Failed to hash demo password")
	}

	demoUser := models.User{
		ID:           primitive.NewObjectID(),
		Username:     demoUsername,
		Email:        demoEmail,
		PasswordHash: passwordHash,
		DisplayName:  "Demo Driver",
		IsGuest:      true,
	}
	if err := userCollection.InsertUser(ctx, demoUser); err != nil {
		log.WithError(err).Fatal("Failed to insert demo user")
	}
	userID := demoUser.ID.Hex()

	vehicles := demoVehicles(userID)
	for _, v := range vehicles {
		if err := vehicleCollection.SaveVehicle(ctx, v); err != nil {
			log.WithError(err).WithField("vehicle", v.DisplayName()).Fatal("Failed to save vehicle")
		}
		log.WithField("vehicle", v.DisplayName()).Info("Seeded vehicle")
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	total := 0
	for i, v := range vehicles {
		startOdometer := 10000.0 + float64(i)*25000
		trips := generateTrips(rng, userID, v.ID, startOdometer, historyDays, time.Now())
		if err := tripCollection.SaveTrips(ctx, trips); err != nil {
			log.WithError(err).Fatal("Failed to save trips")
		}
		total += len(trips)
	}

	log.WithFields(log.Fields{
		"username": demoUsername,
		"vehicles": len(vehicles),
		"trips":    total,
	}).Info("Seed complete")
}

func demoVehicles(userID string) []models.Vehicle {
	return []models.Vehicle{
		{
			ID:           uuid.NewString(),
			UserID:       userID,
			Make:         "Toyota",
			Model:        "Camry",
			Year:         "2023",
			Nickname:     "Daily Driver",
			LicensePlate: "DMO-1234",
			CreatedAt:    time.Now(),
		},
		{
			ID:        uuid.NewString(),
			UserID:    userID,
			Make:      "Ford",
			Model:     "F-150",
			Year:      "2021",
			CreatedAt: time.Now(),
		},
	}
}

// generateTrips produces a continuous trip history for one vehicle: each
// trip starts where the previous one ended, so the odometer only ever
// moves forward. Not every day gets a trip.
func generateTrips(rng *rand.Rand, userID, vehicleID string, startOdometer float64, days int, now time.Time) []models.Trip {
	trips := []models.Trip{}
	odometer := startOdometer

	for d := days; d >= 0; d-- {
		if rng.Float64() < 0.35 {
			continue
		}

		day := now.AddDate(0, 0, -d)
		tripsToday := 1 + rng.Intn(2)
		for n := 0; n < tripsToday; n++ {
			distance := 5 + rng.Float64()*70
			trip := models.Trip{
				UserID:        userID,
				VehicleID:     vehicleID,
				Date:          day.Format("2006-01-02"),
				StartTime:     randomStartTime(rng, n),
				StartOdometer: round1(odometer),
				EndOdometer:   round1(odometer + distance),
				Destination:   destinations[rng.Intn(len(destinations))],
				Company:       companies[rng.Intn(len(companies))],
				Timestamp:     day.UnixMilli() + int64(n),
			}
			if err := trip.NormalizeDefaults(false); err != nil {
				continue
			}
			trips = append(trips, trip)
			odometer = trip.EndOdometer
		}
	}

	return trips
}

func randomStartTime(rng *rand.Rand, tripOfDay int) string {
	hour := 7 + tripOfDay*5 + rng.Intn(4)
	minute := rng.Intn(60)
	return time.Date(2000, 1, 1, hour, minute, 0, 0, time.UTC).Format("15:04")
}

func round1(f float64) float64 {
	return float64(int(f*10+0.5)) / 10
}
