package matching

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/reclaimhq/reclaim-backend/pkg/config"
	"github.com/reclaimhq/reclaim-backend/pkg/db/models"
	"github.com/reclaimhq/reclaim-backend/pkg/enums"
	pkgerrors "github.com/reclaimhq/reclaim-backend/pkg/errors"
	"github.com/reclaimhq/reclaim-backend/pkg/logger"
	"github.com/reclaimhq/reclaim-backend/pkg/metrics"
)

// CandidateQuery selects the corpus scored against a probe item: approved,
// live reports of the opposite status created since the window opened,
// excluding the probe itself.
type CandidateQuery struct {
	Status    enums.ItemStatus
	Since     time.Time
	ExcludeID uuid.UUID
}

type candidateSource interface {
	FindCandidates(ctx context.Context, query CandidateQuery) ([]models.Item, error)
}

// MatchOutcome reports what happened to one qualifying candidate. Recording
// and delivery errors are carried per candidate so batch callers can tell a
// quiet run from a failing one.
type MatchOutcome struct {
	Candidate models.Item
	Score     float64
	Match     *models.Match
	Created   bool
	Contended bool
	RecordErr error
	NotifyErr error
}

// RunResult is the outcome of one orchestrator pass over a probe item.
type RunResult struct {
	Outcomes     []MatchOutcome
	RetrievalErr error
}

// Matched returns the qualifying candidates in scoring order.
func (r RunResult) Matched() []models.Item {
	items := make([]models.Item, 0, len(r.Outcomes))
	for _, outcome := range r.Outcomes {
		items = append(items, outcome.Candidate)
	}
	return items
}

// Service runs the matching pass for a newly visible item.
type Service interface {
	MatchItem(ctx context.Context, item *models.Item) RunResult
}

type service struct {
	candidates candidateSource
	matches    Repository
	notifier   Notifier
	lock       *PairLock
	cfg        config.MatchingConfig
	logg       *logger.Logger
	metrics    *metrics.MatchingMetrics
	now        func() time.Time
}

// ServiceParams bundles the orchestrator's dependencies. PairLock and
// Metrics are optional.
type ServiceParams struct {
	Candidates candidateSource
	Matches    Repository
	Notifier   Notifier
	PairLock   *PairLock
	Matching   config.MatchingConfig
	Logger     *logger.Logger
	Metrics    *metrics.MatchingMetrics
}

// NewService constructs the matching orchestrator.
func NewService(params ServiceParams) (Service, error) {
	if params.Candidates == nil {
		return nil, fmt.Errorf("candidate source is required")
	}
	if params.Matches == nil {
		return nil, fmt.Errorf("match repository is required")
	}
	if params.Notifier == nil {
		return nil, fmt.Errorf("notifier is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{
		candidates: params.Candidates,
		matches:    params.Matches,
		notifier:   params.Notifier,
		lock:       params.PairLock,
		cfg:        params.Matching,
		logg:       params.Logger,
		metrics:    params.Metrics,
		now:        time.Now,
	}, nil
}

// MatchItem retrieves the candidate corpus, scores it, and records plus
// fans out every pair at or above the threshold. Candidates are processed
// sequentially; a failure on one never aborts the rest. A retrieval failure
// is logged and surfaced on the result, leaving Outcomes empty, so the
// item-creation flow that triggered the run is never blocked.
func (s *service) MatchItem(ctx context.Context, item *models.Item) RunResult {
	if item == nil || item.IsDeleted {
		return RunResult{}
	}
	opposite, ok := item.Status.Opposite()
	if !ok {
		// Claimed and returned items no longer probe the corpus.
		return RunResult{}
	}

	ctx = s.logg.WithItemID(ctx, item.ID.String())
	start := s.now()
	status := "ok"
	defer func() {
		s.metrics.ObserveRun(status, s.now().Sub(start))
	}()

	since := s.now().UTC().Add(-s.cfg.Window())
	candidates, err := s.candidates.FindCandidates(ctx, CandidateQuery{
		Status:    opposite,
		Since:     since,
		ExcludeID: item.ID,
	})
	if err != nil {
		status = "retrieval_error"
		s.logg.Error(ctx, "retrieve match candidates", err)
		return RunResult{RetrievalErr: pkgerrors.Wrap(pkgerrors.CodeDependency, err, "retrieve candidates")}
	}
	s.metrics.AddCandidates(string(item.Status), len(candidates))

	var outcomes []MatchOutcome
	for i := range candidates {
		candidate := candidates[i]
		lost, found := orient(item, &candidate)
		scored := Score(s.cfg, lost, found)
		if scored < s.cfg.Threshold {
			continue
		}

		outcome := MatchOutcome{Candidate: candidate, Score: scored}
		s.processPair(ctx, lost, found, scored, &outcome)
		outcomes = append(outcomes, outcome)
	}
	return RunResult{Outcomes: outcomes}
}

func (s *service) processPair(ctx context.Context, lost, found *models.Item, score float64, outcome *MatchOutcome) {
	if s.lock != nil {
		lease, err := s.lock.Acquire(ctx, lost.ID, found.ID)
		if err != nil {
			// Lock trouble degrades to unguarded recording; the unique
			// index still absorbs the duplicate insert.
			s.logg.Warn(ctx, fmt.Sprintf("pair lock unavailable: %v", err))
		} else if lease == nil {
			outcome.Contended = true
			return
		} else {
			defer func() {
				if err := lease.Release(ctx); err != nil {
					s.logg.Warn(ctx, fmt.Sprintf("release pair lock: %v", err))
				}
			}()
		}
	}

	match := &models.Match{
		LostItemID:  lost.ID,
		FoundItemID: found.ID,
		Score:       score,
		Status:      enums.MatchStatusPending,
	}
	created, err := s.matches.Record(ctx, match)
	if err != nil {
		s.logg.Error(ctx, "record match", err)
		outcome.RecordErr = pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record match")
		return
	}
	outcome.Match = match
	outcome.Created = created
	if created {
		s.metrics.IncRecorded("inserted")
	} else {
		s.metrics.IncRecorded("existing")
	}

	if err := s.notifier.NotifyParties(ctx, NotifyInput{
		Match: match,
		Lost:  lost,
		Found: found,
		Score: score,
	}); err != nil {
		// Already logged per recipient inside the fan-out.
		outcome.NotifyErr = err
	}
}

// orient returns the pair as (lost, found) regardless of which side the
// probe is.
func orient(probe, candidate *models.Item) (*models.Item, *models.Item) {
	if probe.Status == enums.ItemStatusLost {
		return probe, candidate
	}
	return candidate, probe
}
