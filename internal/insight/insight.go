// Package insight generates a short natural-language summary of a
// user's mileage data via the Gemini API. From the caller's point of
// view generation always succeeds: configuration and request failures
// produce fixed fallback strings, never errors.
package insight

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/google/generative-ai-go/genai"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/option"

	"github.com/mymileages/my-mileages/internal/models"
)

const (
	// MissingKeyMessage is returned when no API key is configured.
	MissingKeyMessage = "API Key is missing. Please configure the application with a valid API Key to receive AI insights."

	// UnavailableMessage is returned on any request failure.
	UnavailableMessage = "Could not generate insights at this time. Please try again later."

	defaultModel = "gemini-1.5-flash"

	// maxTrips caps how many trips are summarized into the prompt.
	maxTrips = 50
)

// Generator produces a mileage insight for a set of trips and vehicles.
type Generator interface {
	Generate(ctx context.Context, trips []models.Trip, vehicles []models.Vehicle) string
}

// Service is the Gemini-backed Generator.
type Service struct {
	apiKey string
	model  string
}

// NewService reads GEMINI_API_KEY from the environment. An empty key is
// not an error; Generate degrades to the missing-key message.
func NewService() *Service {
	return &Service{
		apiKey: os.Getenv("GEMINI_API_KEY"),
		model:  defaultModel,
	}
}

// Generate returns a short insight string for the given trips and
// vehicles. It never returns an error.
func (s *Service) Generate(ctx context.Context, trips []models.Trip, vehicles []models.Vehicle) string {
	if s.apiKey == "" {
		log.Warn("insight: GEMINI_API_KEY not configured")
		return MissingKeyMessage
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(s.apiKey))
	if err != nil {
		log.WithError(err).Error("insight: failed to create Gemini client")
		return UnavailableMessage
	}
	defer client.Close()

	model := client.GenerativeModel(s.model)
	resp, err := model.GenerateContent(ctx, genai.Text(buildPrompt(trips, vehicles)))
	if err != nil {
		log.WithError(err).Error("insight: Gemini request failed")
		return UnavailableMessage
	}

	text := extractText(resp)
	if text == "" {
		return UnavailableMessage
	}
	return text
}

// promptData is the JSON summary embedded in the prompt. Only the most
// recent trips are included to keep the prompt small.
type promptData struct {
	VehicleCount int          `json:"vehicleCount"`
	Vehicles     string       `json:"vehicles"`
	TripCount    int          `json:"tripCount"`
	SampleTrips  []promptTrip `json:"sampleTrips"`
}

type promptTrip struct {
	Date     string  `json:"date"`
	Distance float64 `json:"distance"`
	Purpose  string  `json:"purpose"`
}

func buildPrompt(trips []models.Trip, vehicles []models.Vehicle) string {
	recent := trips
	if len(recent) > maxTrips {
		recent = recent[:maxTrips]
	}

	names := make([]string, 0, len(vehicles))
	for _, v := range vehicles {
		names = append(names, fmt.Sprintf("%s %s %s", v.Year, v.Make, v.Model))
	}

	data := promptData{
		VehicleCount: len(vehicles),
		Vehicles:     strings.Join(names, ", "),
		TripCount:    len(recent),
		SampleTrips:  make([]promptTrip, 0, len(recent)),
	}
	for _, t := range recent {
		data.SampleTrips = append(data.SampleTrips, promptTrip{
			Date:     t.Date,
			Distance: t.Distance,
			Purpose:  t.Destination,
		})
	}

	summary, _ := json.Marshal(data)
	return fmt.Sprintf(`You are an intelligent assistant for a Mileage Tracker App called "My MileAges".
Analyze the following mileage data summary and provide a brief, helpful insight or observation for the user.
Focus on efficiency, patterns, or a friendly summary.
Keep it under 3 sentences.

Data: %s`, summary)
}

func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return strings.TrimSpace(b.String())
}
