package items

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/reclaimhq/reclaim-backend/internal/matching"
	"github.com/reclaimhq/reclaim-backend/pkg/db/models"
	"github.com/reclaimhq/reclaim-backend/pkg/enums"
	pkgerrors "github.com/reclaimhq/reclaim-backend/pkg/errors"
	"github.com/reclaimhq/reclaim-backend/pkg/logger"
	"github.com/reclaimhq/reclaim-backend/pkg/pagination"
)

// Service defines the behavior needed by the items controller.
type Service interface {
	Report(ctx context.Context, reporterID uuid.UUID, req ReportItemRequest) (*ReportItemResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*ItemDTO, error)
	List(ctx context.Context, query ListItemsQuery) (*ListItemsResponse, error)
	Approve(ctx context.Context, id uuid.UUID) (*ItemDTO, error)
	Claim(ctx context.Context, actorID uuid.UUID, role enums.UserRole, id uuid.UUID) (*ItemDTO, error)
	Delete(ctx context.Context, actorID uuid.UUID, role enums.UserRole, id uuid.UUID) error
}

// matcher is the synchronous matching pass run after a report becomes
// visible. Failures surface on the result, never as an error.
type matcher interface {
	MatchItem(ctx context.Context, item *models.Item) matching.RunResult
}

type service struct {
	repo    Repository
	matcher matcher
	logg    *logger.Logger
}

// ServiceParams bundles the dependencies required to build an items service.
type ServiceParams struct {
	Repo    Repository
	Matcher matcher
	Logger  *logger.Logger
}

// NewService constructs an items service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("items repository is required")
	}
	if params.Matcher == nil {
		return nil, fmt.Errorf("matcher is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{
		repo:    params.Repo,
		matcher: params.Matcher,
		logg:    params.Logger,
	}, nil
}

// Report stores a new lost or found report. Lost reports are approved
// immediately; found reports wait for an admin. The matching pass runs
// synchronously but best effort: whatever it returns, the report itself
// has already been accepted.
func (s *service) Report(ctx context.Context, reporterID uuid.UUID, req ReportItemRequest) (*ReportItemResponse, error) {
	status, err := enums.ParseItemStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	if err != nil || !status.IsReportable() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "status must be lost or found")
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}

	item := &models.Item{
		ReporterID:  reporterID,
		Status:      status,
		Title:       title,
		Category:    normalizeField(req.Category),
		Subcategory: normalizeField(req.Subcategory),
		Location:    normalizeField(req.Location),
		Description: normalizeField(req.Description),
		IsApproved:  status == enums.ItemStatusLost,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create item")
	}

	return &ReportItemResponse{
		Item:    FromModel(item),
		Matches: s.runMatching(ctx, item),
	}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*ItemDTO, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup item")
	}
	return FromModel(item), nil
}

func (s *service) List(ctx context.Context, query ListItemsQuery) (*ListItemsResponse, error) {
	var cursor *pagination.Cursor
	if query.Cursor != "" {
		parsed, err := pagination.ParseCursor(query.Cursor)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
		}
		cursor = parsed
	}

	items, next, err := s.repo.List(ctx, ListItemsParams{
		Status:     query.Status,
		ReporterID: query.ReporterID,
		Limit:      query.Limit,
		Cursor:     cursor,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list items")
	}

	resp := &ListItemsResponse{Items: make([]ItemDTO, 0, len(items))}
	for i := range items {
		resp.Items = append(resp.Items, *FromModel(&items[i]))
	}
	if next != nil {
		encoded := pagination.EncodeCursor(*next)
		resp.NextCursor = &encoded
	}
	return resp, nil
}

// Approve flips a found report into the candidate corpus and immediately
// probes it against open lost reports.
func (s *service) Approve(ctx context.Context, id uuid.UUID) (*ItemDTO, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup item")
	}
	if item.IsApproved {
		return FromModel(item), nil
	}

	updated, err := s.repo.Approve(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "approve item")
	}
	if !updated {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
	}
	item.IsApproved = true

	s.runMatching(ctx, item)
	return FromModel(item), nil
}

// Claim marks an open report as claimed. Only the reporter or an admin may
// do so.
func (s *service) Claim(ctx context.Context, actorID uuid.UUID, role enums.UserRole, id uuid.UUID) (*ItemDTO, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup item")
	}
	if item.ReporterID != actorID && role != enums.UserRoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the reporter may claim this item")
	}
	if !item.Status.IsReportable() {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "item is no longer open")
	}

	updated, err := s.repo.UpdateStatus(ctx, id, enums.ItemStatusClaimed)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "claim item")
	}
	if !updated {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
	}
	item.Status = enums.ItemStatusClaimed
	return FromModel(item), nil
}

func (s *service) Delete(ctx context.Context, actorID uuid.UUID, role enums.UserRole, id uuid.UUID) error {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup item")
	}
	if item.ReporterID != actorID && role != enums.UserRoleAdmin {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only the reporter may delete this item")
	}

	deleted, err := s.repo.SoftDelete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete item")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
	}
	return nil
}

// runMatching executes the synchronous matching pass. It only ever
// contributes extra response data; errors were already logged downstream.
func (s *service) runMatching(ctx context.Context, item *models.Item) []MatchSummary {
	if !item.IsApproved {
		return nil
	}
	result := s.matcher.MatchItem(ctx, item)
	if result.RetrievalErr != nil {
		return nil
	}

	summaries := make([]MatchSummary, 0, len(result.Outcomes))
	for i := range result.Outcomes {
		outcome := result.Outcomes[i]
		summaries = append(summaries, MatchSummary{
			Item:  FromModel(&outcome.Candidate),
			Score: outcome.Score,
		})
	}
	return summaries
}

func normalizeField(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
