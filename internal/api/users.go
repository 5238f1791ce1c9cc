package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/TimurManjosov/flagdemo/internal/features"
	"github.com/TimurManjosov/flagdemo/internal/targeting"
)

// Flag keys consulted by the user profile endpoint (user-management project).
const (
	flagDarkMode     = "darkMode"
	flagUIVersion    = "uiVersion"
	flagBetaFeatures = "betaFeatures"
)

const defaultUIVersion = "v1"

type userFeatures struct {
	DarkMode     bool   `json:"darkMode"`
	UIVersion    string `json:"uiVersion"`
	BetaFeatures bool   `json:"betaFeatures"`
}

type userResponse struct {
	UserID       string           `json:"userId"`
	Email        string           `json:"email"`
	Country      string           `json:"country,omitempty"`
	Subscription string           `json:"subscription,omitempty"`
	Features     userFeatures     `json:"features"`
	Metadata     responseMetadata `json:"metadata"`
}

// handleGetUser handles GET /api/users/{id}. Identity fields are demo data
// keyed off the path id; the interesting part is the flag-driven features
// block and the evaluation metadata.
func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	country := r.Header.Get("X-Country")
	subscription := r.Header.Get("X-Subscription")

	ctx, rec := features.WithRecorder(r.Context())

	email := userID + "@example.com"
	tc := targeting.NewContext(userID, email, map[string]string{
		targeting.AttrCountry:      country,
		targeting.AttrSubscription: subscription,
	})

	resp := userResponse{
		UserID:       userID,
		Email:        email,
		Country:      strings.TrimSpace(country),
		Subscription: strings.TrimSpace(subscription),
		Features: userFeatures{
			DarkMode:     s.features.EvaluateBool(ctx, features.ProjectUserManagement, flagDarkMode, tc),
			UIVersion:    s.features.EvaluateString(ctx, features.ProjectUserManagement, flagUIVersion, defaultUIVersion, tc),
			BetaFeatures: s.features.EvaluateBool(ctx, features.ProjectUserManagement, flagBetaFeatures, tc),
		},
		Metadata: metadataFrom(r, rec),
	}

	writeJSON(w, http.StatusOK, resp)
}
