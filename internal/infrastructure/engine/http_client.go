package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/low-k3YLTD/equine-oracle-backend/internal/domain/entities"
)

const defaultTimeout = 10 * time.Second

// HTTPEngine calls the ensemble scoring service over HTTP.
type HTTPEngine struct {
	baseURL string
	client  *http.Client
}

// NewHTTPEngine creates an engine client against the scorer base URL.
func NewHTTPEngine(baseURL string, timeout time.Duration) *HTTPEngine {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTTPEngine{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type scoreRequest struct {
	RaceID   string             `json:"race_id"`
	HorseID  string             `json:"horse_id"`
	Features map[string]float64 `json:"features"`
}

type scoreResponse struct {
	WinProbability float64 `json:"win_probability"`
	Confidence     float64 `json:"confidence"`
	ModelVersion   string  `json:"model_version"`
}

// Predict implements Engine.
func (e *HTTPEngine) Predict(ctx context.Context, input *entities.PredictionInput) (*entities.Prediction, error) {
	body, err := json.Marshal(scoreRequest{
		RaceID:   input.RaceID,
		HorseID:  input.HorseID,
		Features: input.Features,
	})
	if err != nil {
		return nil, fmt.Errorf("encode score request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/score", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build score request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call scorer: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scorer returned status %d", resp.StatusCode)
	}

	var out scoreResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode score response: %w", err)
	}

	return &entities.Prediction{
		RaceID:         input.RaceID,
		HorseID:        input.HorseID,
		WinProbability: clamp01(out.WinProbability),
		Confidence:     clamp01(out.Confidence),
		ModelVersion:   out.ModelVersion,
		EvaluatedAt:    time.Now(),
	}, nil
}
