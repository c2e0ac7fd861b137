package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/reclaimhq/reclaim-backend/internal/auth"
	"github.com/reclaimhq/reclaim-backend/internal/items"
	"github.com/reclaimhq/reclaim-backend/internal/notifications"
	pkgAuth "github.com/reclaimhq/reclaim-backend/pkg/auth"
	"github.com/reclaimhq/reclaim-backend/pkg/config"
	"github.com/reclaimhq/reclaim-backend/pkg/enums"
	"github.com/reclaimhq/reclaim-backend/pkg/logger"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubAuthService struct {
	login func(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error)
}

func (s stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
	if s.login != nil {
		return s.login(ctx, req)
	}
	return &auth.LoginResponse{AccessToken: "stub-token"}, nil
}

func (stubAuthService) Register(ctx context.Context, req auth.RegisterRequest) (*auth.RegisterResponse, error) {
	return &auth.RegisterResponse{}, nil
}

type stubItemsService struct {
	report func(ctx context.Context, reporterID uuid.UUID, req items.ReportItemRequest) (*items.ReportItemResponse, error)
	list   func(ctx context.Context, query items.ListItemsQuery) (*items.ListItemsResponse, error)
}

func (s stubItemsService) Report(ctx context.Context, reporterID uuid.UUID, req items.ReportItemRequest) (*items.ReportItemResponse, error) {
	if s.report != nil {
		return s.report(ctx, reporterID, req)
	}
	return &items.ReportItemResponse{}, nil
}

func (stubItemsService) Get(ctx context.Context, id uuid.UUID) (*items.ItemDTO, error) {
	return &items.ItemDTO{ID: id}, nil
}

func (s stubItemsService) List(ctx context.Context, query items.ListItemsQuery) (*items.ListItemsResponse, error) {
	if s.list != nil {
		return s.list(ctx, query)
	}
	return &items.ListItemsResponse{}, nil
}

func (stubItemsService) Approve(ctx context.Context, id uuid.UUID) (*items.ItemDTO, error) {
	return &items.ItemDTO{ID: id}, nil
}

func (stubItemsService) Claim(ctx context.Context, actorID uuid.UUID, role enums.UserRole, id uuid.UUID) (*items.ItemDTO, error) {
	return &items.ItemDTO{ID: id}, nil
}

func (stubItemsService) Delete(ctx context.Context, actorID uuid.UUID, role enums.UserRole, id uuid.UUID) error {
	return nil
}

type stubNotificationsService struct {
	listParams *notifications.ListParams
}

func (s *stubNotificationsService) List(ctx context.Context, params notifications.ListParams) (*notifications.ListResult, error) {
	s.listParams = &params
	return &notifications.ListResult{}, nil
}

func (*stubNotificationsService) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	return nil
}

func (*stubNotificationsService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return 0, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "secret",
			Issuer:            "issuer",
			ExpirationMinutes: 60,
		},
	}
}

func newTestRouter(cfg *config.Config, notificationsService notifications.Service) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(
		cfg,
		logg,
		stubPinger{},
		nil, // redis
		nil, // metrics gatherer
		stubAuthService{},
		stubItemsService{},
		notificationsService,
	)
}

func buildToken(t *testing.T, cfg *config.Config, role enums.UserRole) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   role,
		JTI:    uuid.NewString(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLive(t *testing.T) {
	router := newTestRouter(testConfig(), &stubNotificationsService{})
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for live probe got %d", resp.Code)
	}
}

func TestHealthReady(t *testing.T) {
	router := newTestRouter(testConfig(), &stubNotificationsService{})
	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for ready probe got %d", resp.Code)
	}
}

func TestItemsGroupRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig(), &stubNotificationsService{})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/items", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestItemsGroupSucceedsWithJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg, &stubNotificationsService{})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/items", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleMember))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for items list got %d", resp.Code)
	}
}

func TestReportItemReturnsCreated(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg, &stubNotificationsService{})
	body := `{"status":"lost","title":"Black backpack"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/items", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleMember))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 for report got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestApproveRequiresAdminRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg, &stubNotificationsService{})
	target := "/api/v1/items/" + uuid.NewString() + "/approve"

	member := httptest.NewRequest(http.MethodPost, target, nil)
	member.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleMember))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, member)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for member approve got %d", resp.Code)
	}

	admin := httptest.NewRequest(http.MethodPost, target, nil)
	admin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleAdmin))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin approve got %d", resp.Code)
	}
}

func TestLoginReachableWithoutRedis(t *testing.T) {
	router := newTestRouter(testConfig(), &stubNotificationsService{})
	body := `{"email":"member@example.com","password":"hunter2222"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for login got %d: %s", resp.Code, resp.Body.String())
	}
	if got := resp.Header().Get("X-Reclaim-Token"); got != "stub-token" {
		t.Fatalf("expected token header got %q", got)
	}
}

func TestNotificationsQueryParamsForwarded(t *testing.T) {
	cfg := testConfig()
	svc := &stubNotificationsService{}
	router := newTestRouter(cfg, svc)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications?limit=5&unread_only=true", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleMember))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for notifications got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.listParams == nil {
		t.Fatal("expected list params recorded")
	}
	if svc.listParams.Limit != 5 || !svc.listParams.UnreadOnly {
		t.Fatalf("unexpected list params %+v", svc.listParams)
	}
}

func TestMarkNotificationReadValidatesID(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg, &stubNotificationsService{})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/notifications/not-a-uuid/read", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleMember))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad notification id got %d", resp.Code)
	}
}
