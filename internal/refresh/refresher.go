// Package refresh keeps rankings current when initiative attributes change
// outside the scoring endpoints. Each tick re-scores every initiative that
// already holds a snapshot under the active model, then runs one ranking
// pass. Initiatives nobody has scored stay out of the ranking; inclusion is
// a deliberate act, not a side effect of the refresher.
package refresh

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/MikeSquared-Agency/Compass/internal/config"
	"github.com/MikeSquared-Agency/Compass/internal/hermes"
	"github.com/MikeSquared-Agency/Compass/internal/metrics"
	"github.com/MikeSquared-Agency/Compass/internal/scoring"
	"github.com/MikeSquared-Agency/Compass/internal/store"
)

type Refresher struct {
	store  store.Store
	hermes hermes.Client
	scorer *scoring.Scorer
	cfg    *config.Config
	logger *slog.Logger

	stopOnce sync.Once
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

func New(s store.Store, h hermes.Client, cfg *config.Config, logger *slog.Logger) *Refresher {
	return &Refresher{
		store:  s,
		hermes: h,
		scorer: scoring.NewScorer(logger),
		cfg:    cfg,
		logger: logger,
		stopCh: make(chan struct{}),
	}
}

func (r *Refresher) Start(ctx context.Context) {
	r.wg.Add(1)
	go r.loop(ctx)
}

func (r *Refresher) Stop() {
	r.stopOnce.Do(func() { close(r.stopCh) })
	r.wg.Wait()
}

func (r *Refresher) loop(ctx context.Context) {
	defer r.wg.Done()
	ticker := time.NewTicker(r.cfg.RefreshInterval())
	defer ticker.Stop()

	for {
		select {
		case <-r.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := r.RunOnce(ctx)
			if err != nil {
				r.logger.Error("refresh pass failed", "error", err)
				continue
			}
			if n > 0 {
				r.logger.Info("refreshed rankings", "initiatives", n)
			}
			r.publishStats(ctx)
		}
	}
}

// publishStats broadcasts the portfolio counters each tick so dashboards
// can follow the portfolio without polling the admin endpoint.
func (r *Refresher) publishStats(ctx context.Context) {
	if r.hermes == nil {
		return
	}
	stats, err := r.store.GetStats(ctx)
	if err != nil {
		r.logger.Error("refresh: load stats", "error", err)
		return
	}
	_ = r.hermes.Publish(hermes.SubjectPortfolioStats, hermes.StatsEvent{
		Initiatives:     stats.TotalInitiatives,
		Models:          stats.TotalModels,
		Snapshots:       stats.TotalSnapshots,
		Edges:           stats.TotalEdges,
		UnresolvedEdges: stats.UnresolvedEdges,
		Assessments:     stats.TotalAssessments,
		Timestamp:       time.Now().UTC(),
	})
}

// RunOnce re-scores the active model's snapshot population from current
// initiative attributes and reranks. Returns how many snapshots were
// refreshed. No active model, or no snapshots, is a quiet no-op.
func (r *Refresher) RunOnce(ctx context.Context) (int, error) {
	model, err := r.store.GetActiveScoringModel(ctx)
	if err != nil {
		return 0, fmt.Errorf("load active model: %w", err)
	}
	if model == nil {
		return 0, nil
	}

	snaps, err := r.store.ListScoreSnapshots(ctx, model.ID)
	if err != nil {
		return 0, fmt.Errorf("list snapshots: %w", err)
	}
	if len(snaps) == 0 {
		return 0, nil
	}

	refreshed := 0
	for _, snap := range snaps {
		init, err := r.store.GetInitiative(ctx, snap.InitiativeID)
		if err != nil {
			r.logger.Error("refresh: load initiative", "initiative_id", snap.InitiativeID, "error", err)
			continue
		}
		if init == nil {
			continue
		}

		// Numbers come from the current attribute bag; the narrative parts
		// of the previous snapshot ride along unchanged.
		result, err := r.scorer.Score(scoring.ScoreInput{
			Initiative:    init,
			Model:         model,
			Method:        snap.Method,
			ScoredBy:      "refresh",
			Justification: snap.Justification,
			Strengths:     snap.Strengths,
			Weaknesses:    snap.Weaknesses,
			Confidence:    snap.Confidence,
		})
		if err != nil {
			r.logger.Error("refresh: score initiative", "initiative_id", init.ID, "error", err)
			continue
		}
		if err := r.store.UpsertScoreSnapshot(ctx, result.Snapshot); err != nil {
			r.logger.Error("refresh: persist snapshot", "initiative_id", init.ID, "error", err)
			continue
		}
		metrics.RecordScoreComputed(string(result.Snapshot.Method))
		refreshed++
	}

	ranked, err := r.store.RerankModel(ctx, model.ID, scoring.Rank)
	if err != nil {
		return refreshed, fmt.Errorf("rerank: %w", err)
	}
	metrics.RecordRankPass(ranked)

	if r.hermes != nil {
		_ = r.hermes.Publish(hermes.SubjectRankRecomputed(model.ID.String()), hermes.RankRecomputedEvent{
			ModelID: model.ID.String(),
			Ranked:  ranked,
			Trigger: "refresh",
		})
	}
	return refreshed, nil
}
