package main

import (
	"net/http"
	"os"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/mymileages/my-mileages/internal/auth"
	"github.com/mymileages/my-mileages/internal/db"
	"github.com/mymileages/my-mileages/internal/handlers"
	"github.com/mymileages/my-mileages/internal/insight"
	"github.com/mymileages/my-mileages/internal/middleware"
)

func main() {
	// Load environment from .env when present; real deployments set
	// variables directly.
	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file found")
	}

	client, err := db.ConnectMongo()
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	log.Info("Connected to MongoDB")

	database := client.Database(db.DatabaseName())
	userCollection := &db.MongoUserCollection{Collection: database.Collection("users")}
	vehicleCollection := &db.MongoVehicleCollection{Collection: database.Collection("vehicles")}
	tripCollection := &db.MongoTripCollection{Collection: database.Collection("trips")}

	authService, err := auth.NewService()
	if err != nil {
		log.WithError(err).Fatal("Failed to create auth service")
	}

	handler := newRouter(authService, userCollection, vehicleCollection, tripCollection, insight.NewService())

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.WithField("port", port).Info("HTTP server listening")
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.WithError(err).Fatal("HTTP server stopped")
	}
}

// newRouter wires every handler behind the rate limit and auth
// middleware chain.
func newRouter(
	authService *auth.Service,
	userCollection db.UserCollection,
	vehicleCollection db.VehicleCollection,
	tripCollection db.TripCollection,
	insights handlers.InsightGenerator,
) http.Handler {
	authHandler := handlers.NewAuthHandler(authService, userCollection)
	vehicleHandler := handlers.NewVehicleHandler(vehicleCollection)
	tripHandler := handlers.NewTripHandler(tripCollection)
	importHandler := handlers.NewImportHandler(tripCollection)
	reportHandler := handlers.NewReportHandler(tripCollection, vehicleCollection, insights)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", handlers.Health)

	mux.HandleFunc("/api/auth/login", authHandler.Login)
	mux.HandleFunc("/api/auth/register", authHandler.Register)
	mux.HandleFunc("/api/auth/profile", authHandler.Profile)
	mux.HandleFunc("/api/auth/password", authHandler.ChangePassword)

	mux.HandleFunc("/api/vehicles", vehicleHandler.Vehicles)
	mux.HandleFunc("/api/vehicles/", vehicleHandler.Vehicles)

	mux.HandleFunc("/api/trips", tripHandler.Trips)
	mux.HandleFunc("/api/trips/", tripHandler.Trips)
	mux.HandleFunc("/api/trips/destinations", tripHandler.Destinations)
	mux.HandleFunc("/api/trips/companies", tripHandler.Companies)
	mux.HandleFunc("/api/trips/last-odometer", tripHandler.LastOdometer)
	mux.HandleFunc("/api/trips/import", importHandler.Preview)
	mux.HandleFunc("/api/trips/import/commit", importHandler.Commit)

	mux.HandleFunc("/api/reports", reportHandler.Report)
	mux.HandleFunc("/api/reports/share", reportHandler.Share)
	mux.HandleFunc("/api/reports/insight", reportHandler.Insight)

	authMiddleware := middleware.NewAuthMiddleware(authService)
	rateLimiter := middleware.NewRateLimitMiddleware()

	return rateLimiter.RateLimit(300, 60)(authMiddleware.Authenticate(mux))
}
