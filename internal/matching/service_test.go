package matching

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/reclaimhq/reclaim-backend/pkg/config"
	"github.com/reclaimhq/reclaim-backend/pkg/db/models"
	"github.com/reclaimhq/reclaim-backend/pkg/enums"
)

type stubCandidates struct {
	items     []models.Item
	err       error
	lastQuery CandidateQuery
}

func (s *stubCandidates) FindCandidates(ctx context.Context, query CandidateQuery) ([]models.Item, error) {
	s.lastQuery = query
	if s.err != nil {
		return nil, s.err
	}
	return s.items, nil
}

type recordingMatchRepo struct {
	recorded []*models.Match
}

func (r *recordingMatchRepo) FindByPair(ctx context.Context, lostID, foundID uuid.UUID) (*models.Match, error) {
	for _, match := range r.recorded {
		if match.LostItemID == lostID && match.FoundItemID == foundID {
			return match, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *recordingMatchRepo) Record(ctx context.Context, match *models.Match) (bool, error) {
	if existing, err := r.FindByPair(ctx, match.LostItemID, match.FoundItemID); err == nil {
		*match = *existing
		return false, nil
	}
	match.ID = uuid.New()
	stored := *match
	r.recorded = append(r.recorded, &stored)
	return true, nil
}

func (r *recordingMatchRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.MatchStatus) error {
	return nil
}

type stubNotifier struct {
	inputs []NotifyInput
	err    error
}

func (s *stubNotifier) NotifyParties(ctx context.Context, in NotifyInput) error {
	s.inputs = append(s.inputs, in)
	return s.err
}

func descriptionOnlyConfig() config.MatchingConfig {
	return config.MatchingConfig{
		Threshold:         0.70,
		WindowDays:        7,
		DescriptionWeight: 1.0,
	}
}

func buildMatchingService(t *testing.T, candidates *stubCandidates, repo Repository, notif *stubNotifier, cfg config.MatchingConfig) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Candidates: candidates,
		Matches:    repo,
		Notifier:   notif,
		Matching:   cfg,
		Logger:     testLogger(),
	})
	require.NoError(t, err)
	return svc
}

func lostProbe(description string) *models.Item {
	return &models.Item{
		ID:          uuid.New(),
		ReporterID:  uuid.New(),
		Status:      enums.ItemStatusLost,
		Title:       "Lost thing",
		Description: &description,
		IsApproved:  true,
	}
}

func foundCandidate(description string) models.Item {
	return models.Item{
		ID:          uuid.New(),
		ReporterID:  uuid.New(),
		Status:      enums.ItemStatusFound,
		Title:       "Found thing",
		Description: &description,
		IsApproved:  true,
	}
}

func TestMatchItemAppliesThresholdEdge(t *testing.T) {
	// Against the probe description, the first candidate's Dice is 18/26
	// (rounds to 0.69) and the second's is exactly 14/20 = 0.70.
	below := foundCandidate("abcdefghijwxyzuvt")
	atEdge := foundCandidate("abcdefghwxy")
	candidates := &stubCandidates{items: []models.Item{below, atEdge}}
	repo := &recordingMatchRepo{}
	notif := &stubNotifier{}

	probe := lostProbe("abcdefghijk")
	svc := buildMatchingService(t, candidates, repo, notif, descriptionOnlyConfig())

	result := svc.MatchItem(context.Background(), probe)
	require.NoError(t, result.RetrievalErr)

	require.Len(t, result.Outcomes, 1)
	assert.Equal(t, atEdge.ID, result.Outcomes[0].Candidate.ID)
	assert.Equal(t, 0.70, result.Outcomes[0].Score)
	require.Len(t, repo.recorded, 1)
	assert.Equal(t, probe.ID, repo.recorded[0].LostItemID)
	assert.Equal(t, atEdge.ID, repo.recorded[0].FoundItemID)
}

func TestMatchItemOrientsFoundProbe(t *testing.T) {
	lostSide := models.Item{
		ID:          uuid.New(),
		ReporterID:  uuid.New(),
		Status:      enums.ItemStatusLost,
		Description: strPtr("silver macbook pro"),
		IsApproved:  true,
	}
	candidates := &stubCandidates{items: []models.Item{lostSide}}
	repo := &recordingMatchRepo{}
	notif := &stubNotifier{}

	probe := &models.Item{
		ID:          uuid.New(),
		ReporterID:  uuid.New(),
		Status:      enums.ItemStatusFound,
		Description: strPtr("silver macbook pro"),
		IsApproved:  true,
	}
	svc := buildMatchingService(t, candidates, repo, notif, descriptionOnlyConfig())

	result := svc.MatchItem(context.Background(), probe)
	require.Len(t, result.Outcomes, 1)

	assert.Equal(t, enums.ItemStatusLost, candidates.lastQuery.Status)
	require.Len(t, repo.recorded, 1)
	assert.Equal(t, lostSide.ID, repo.recorded[0].LostItemID)
	assert.Equal(t, probe.ID, repo.recorded[0].FoundItemID)

	require.Len(t, notif.inputs, 1)
	assert.Equal(t, lostSide.ID, notif.inputs[0].Lost.ID)
	assert.Equal(t, probe.ID, notif.inputs[0].Found.ID)
}

func TestMatchItemRetrievalFailureReturnsEmpty(t *testing.T) {
	candidates := &stubCandidates{err: errors.New("store unreachable")}
	repo := &recordingMatchRepo{}
	notif := &stubNotifier{}

	svc := buildMatchingService(t, candidates, repo, notif, descriptionOnlyConfig())
	result := svc.MatchItem(context.Background(), lostProbe("anything at all"))

	assert.Empty(t, result.Outcomes)
	assert.Empty(t, result.Matched())
	require.Error(t, result.RetrievalErr)
	assert.Empty(t, repo.recorded)
	assert.Empty(t, notif.inputs)
}

func TestMatchItemIsolatesRecorderFailures(t *testing.T) {
	good := foundCandidate("silver macbook pro")
	alsoGood := foundCandidate("silver macbook pro")
	candidates := &stubCandidates{items: []models.Item{good, alsoGood}}

	probe := lostProbe("silver macbook pro")
	repo := &recordingMatchRepo{}
	notif := &stubNotifier{}

	calls := 0
	flaky := &flakyMatchRepo{inner: repo, failOn: func() bool {
		calls++
		return calls == 1
	}}
	svc := buildMatchingService(t, candidates, flaky, notif, descriptionOnlyConfig())

	result := svc.MatchItem(context.Background(), probe)
	require.Len(t, result.Outcomes, 2)
	assert.Error(t, result.Outcomes[0].RecordErr)
	assert.NoError(t, result.Outcomes[1].RecordErr)
	assert.Len(t, repo.recorded, 1)
	// Only the successfully recorded pair fans out.
	assert.Len(t, notif.inputs, 1)
}

func TestMatchItemSkipsClaimedProbe(t *testing.T) {
	candidates := &stubCandidates{items: []models.Item{foundCandidate("silver macbook pro")}}
	repo := &recordingMatchRepo{}
	notif := &stubNotifier{}
	svc := buildMatchingService(t, candidates, repo, notif, descriptionOnlyConfig())

	probe := lostProbe("silver macbook pro")
	probe.Status = enums.ItemStatusClaimed
	result := svc.MatchItem(context.Background(), probe)

	assert.Empty(t, result.Outcomes)
	assert.Empty(t, repo.recorded)
}

func TestMatchItemNotifierFailureDoesNotAbortRun(t *testing.T) {
	first := foundCandidate("silver macbook pro")
	second := foundCandidate("silver macbook pro")
	candidates := &stubCandidates{items: []models.Item{first, second}}
	repo := &recordingMatchRepo{}
	notif := &stubNotifier{err: errors.New("notification store down")}

	svc := buildMatchingService(t, candidates, repo, notif, descriptionOnlyConfig())
	result := svc.MatchItem(context.Background(), lostProbe("silver macbook pro"))

	require.Len(t, result.Outcomes, 2)
	assert.Error(t, result.Outcomes[0].NotifyErr)
	assert.Error(t, result.Outcomes[1].NotifyErr)
	// Matches are still recorded despite the failed fan-out.
	assert.Len(t, repo.recorded, 2)
}

type flakyMatchRepo struct {
	inner  Repository
	failOn func() bool
}

func (f *flakyMatchRepo) FindByPair(ctx context.Context, lostID, foundID uuid.UUID) (*models.Match, error) {
	return f.inner.FindByPair(ctx, lostID, foundID)
}

func (f *flakyMatchRepo) Record(ctx context.Context, match *models.Match) (bool, error) {
	if f.failOn() {
		return false, errors.New("write failed")
	}
	return f.inner.Record(ctx, match)
}

func (f *flakyMatchRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.MatchStatus) error {
	return f.inner.UpdateStatus(ctx, id, status)
}

func strPtr(value string) *string {
	return &value
}
