package entities

import "time"

// PredictionInput carries one race/horse feature vector.
type PredictionInput struct {
	RaceID   string             `json:"raceId" binding:"required"`
	HorseID  string             `json:"horseId" binding:"required"`
	Features map[string]float64 `json:"features" binding:"required"`
}

// Prediction is the calibrated output of the ensemble for one feature
// vector. Probability and Confidence are both in [0,1].
type Prediction struct {
	RaceID         string    `json:"raceId"`
	HorseID        string    `json:"horseId"`
	WinProbability float64   `json:"winProbability"`
	Confidence     float64   `json:"confidence"`
	ModelVersion   string    `json:"modelVersion,omitempty"`
	EvaluatedAt    time.Time `json:"evaluatedAt"`
}
