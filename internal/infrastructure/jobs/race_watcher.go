package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/low-k3YLTD/equine-oracle-backend/internal/domain/entities"
	"github.com/low-k3YLTD/equine-oracle-backend/internal/infrastructure/engine"
	"github.com/low-k3YLTD/equine-oracle-backend/pkg/logger"
	"github.com/low-k3YLTD/equine-oracle-backend/pkg/metrics"
)

const (
	defaultWatchInterval = 30 * time.Second
	defaultLookahead     = 15 * time.Minute
	watchBatchSize       = 100
)

type raceStore interface {
	GetUnevaluatedBefore(ctx context.Context, cutoff time.Time, limit int) ([]*entities.Race, error)
	MarkEvaluated(ctx context.Context, race *entities.Race) error
}

// RaceWatcher periodically scores races approaching post time and records
// the model's top pick for each.
type RaceWatcher struct {
	races     raceStore
	engine    engine.Engine
	cards     engine.CardSource
	interval  time.Duration
	lookahead time.Duration
	stop      chan struct{}
}

func NewRaceWatcher(races raceStore, eng engine.Engine, cards engine.CardSource) *RaceWatcher {
	return &RaceWatcher{
		races:     races,
		engine:    eng,
		cards:     cards,
		interval:  defaultWatchInterval,
		lookahead: defaultLookahead,
		stop:      make(chan struct{}),
	}
}

func (w *RaceWatcher) Start(ctx context.Context) {
	logger.Info(ctx, "race watcher started",
		zap.Duration("interval", w.interval),
		zap.Duration("lookahead", w.lookahead))

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "race watcher stopped (context cancelled)")
			return
		case <-w.stop:
			logger.Info(ctx, "race watcher stopped")
			return
		case <-ticker.C:
			w.evaluateDueRaces(ctx)
		}
	}
}

func (w *RaceWatcher) Stop() {
	close(w.stop)
}

func (w *RaceWatcher) evaluateDueRaces(ctx context.Context) {
	cutoff := time.Now().Add(w.lookahead)
	due, err := w.races.GetUnevaluatedBefore(ctx, cutoff, watchBatchSize)
	if err != nil {
		logger.Error(ctx, "race watcher: fetching due races failed", zap.Error(err))
		return
	}
	if len(due) == 0 {
		return
	}

	logger.Info(ctx, "race watcher: evaluating races", zap.Int("count", len(due)))
	for _, race := range due {
		w.evaluateRace(ctx, race)
	}
}

func (w *RaceWatcher) evaluateRace(ctx context.Context, race *entities.Race) {
	entrants, err := w.cards.RaceCard(ctx, race.ExternalID)
	if err != nil {
		logger.Error(ctx, "race watcher: race card fetch failed",
			zap.String("race", race.ExternalID), zap.Error(err))
		return
	}
	if len(entrants) == 0 {
		logger.Warn(ctx, "race watcher: empty race card, skipping",
			zap.String("race", race.ExternalID))
		return
	}

	var best *entities.Prediction
	for _, input := range entrants {
		pred, err := w.engine.Predict(ctx, input)
		if err != nil {
			logger.Error(ctx, "race watcher: scoring entrant failed",
				zap.String("race", race.ExternalID),
				zap.String("horse", input.HorseID),
				zap.Error(err))
			return
		}
		if best == nil || pred.WinProbability > best.WinProbability {
			best = pred
		}
	}

	race.TopPick = best.HorseID
	race.TopPickProbability = best.WinProbability
	if err := w.races.MarkEvaluated(ctx, race); err != nil {
		logger.Error(ctx, "race watcher: recording evaluation failed",
			zap.String("race", race.ExternalID), zap.Error(err))
		return
	}
	metrics.RacesEvaluated.Inc()

	logger.Info(ctx, "race watcher: race evaluated",
		zap.String("race", race.ExternalID),
		zap.String("topPick", best.HorseID),
		zap.Float64("probability", best.WinProbability))
}
