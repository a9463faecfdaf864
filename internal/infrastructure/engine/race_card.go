package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/low-k3YLTD/equine-oracle-backend/internal/domain/entities"
)

// CardSource yields the entrant feature vectors for a race. The watcher
// scores every entrant it returns and records the best one.
type CardSource interface {
	RaceCard(ctx context.Context, raceExternalID string) ([]*entities.PredictionInput, error)
}

type raceCardResponse struct {
	Entrants []struct {
		HorseID  string             `json:"horse_id"`
		Features map[string]float64 `json:"features"`
	} `json:"entrants"`
}

// RaceCard fetches the entrant list for one race from the scoring service.
func (e *HTTPEngine) RaceCard(ctx context.Context, raceExternalID string) ([]*entities.PredictionInput, error) {
	u := e.baseURL + "/racecard/" + url.PathEscape(raceExternalID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build race card request: %w", err)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch race card: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("race card service returned status %d", resp.StatusCode)
	}

	var out raceCardResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode race card: %w", err)
	}

	inputs := make([]*entities.PredictionInput, 0, len(out.Entrants))
	for _, ent := range out.Entrants {
		inputs = append(inputs, &entities.PredictionInput{
			RaceID:   raceExternalID,
			HorseID:  ent.HorseID,
			Features: ent.Features,
		})
	}
	return inputs, nil
}
