package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/radieske/group-bet-platform-poc/internal/settlement-service/repo"
	"github.com/radieske/group-bet-platform-poc/internal/settlement-service/service"
	ev "github.com/radieske/group-bet-platform-poc/pkg/contracts/events"
)

// fakes mínimos pros colaboradores do serviço

type stubStore struct {
	event    *repo.Event
	wagers   []repo.EventWager
	placeErr error
}

func (s *stubStore) CreateEvent(_ context.Context, _ *repo.Event) (string, error) {
	return "evt-new", nil
}

func (s *stubStore) GetEvent(_ context.Context, _ string) (*repo.Event, error) {
	if s.event == nil {
		return nil, repo.ErrNotFound
	}
	return s.event, nil
}

func (s *stubStore) UpdateEvent(_ context.Context, _ *repo.Event) error { return nil }
func (s *stubStore) DeleteEvent(_ context.Context, _ string) error      { return nil }

func (s *stubStore) ListWagersByEvent(_ context.Context, _ string) ([]repo.EventWager, error) {
	return s.wagers, nil
}

func (s *stubStore) PlaceWager(_ context.Context, _ *repo.Wager) (string, error) {
	if s.placeErr != nil {
		return "", s.placeErr
	}
	return "wgr-new", nil
}

func (s *stubStore) ApplySettlement(_ context.Context, _ string, _ repo.Side, _ []repo.SettlementCredit) error {
	return nil
}

func (s *stubStore) GetBalance(_ context.Context, _ string) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

type stubPublisher struct{}

func (stubPublisher) PublishEventSettled(_ context.Context, _ ev.EventSettled) error { return nil }
func (stubPublisher) PublishWagerPlaced(_ context.Context, _ ev.WagerPlaced) error   { return nil }

type stubCache struct{}

func (stubCache) Get(_ context.Context, _ string, _ any) (bool, error) { return false, nil }
func (stubCache) Set(_ context.Context, _ string, _ any) error         { return nil }
func (stubCache) Invalidate(_ context.Context, _ string) error         { return nil }

func newTestServer(store *stubStore) http.Handler {
	svc := service.New(zap.NewNop(), store, stubCache{}, stubPublisher{})
	return NewServer(zap.NewNop(), svc).Router()
}

func stubEvent(organizer string, completed bool) *repo.Event {
	start := time.Now().Add(time.Hour)
	return &repo.Event{
		ID:          "evt-1",
		GroupID:     "grp-1",
		SideA:       "Hawks",
		SideB:       "Wolves",
		StartTime:   start,
		EndTime:     start.Add(2 * time.Hour),
		Completed:   completed,
		OrganizerID: &organizer,
	}
}

func stubWager(id, userID string, side repo.Side, amount string) repo.EventWager {
	a, _ := decimal.NewFromString(amount)
	return repo.EventWager{
		Wager:    repo.Wager{ID: id, EventID: "evt-1", UserID: userID, SideChoice: side, Amount: a, Status: repo.WagerPending},
		Username: userID,
	}
}

func doSettle(t *testing.T, h http.Handler, userID, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/events/evt-1/settle", strings.NewReader(body))
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestSettleEndpoint_MissingIdentity(t *testing.T) {
	h := newTestServer(&stubStore{event: stubEvent("org-1", false)})

	rec := doSettle(t, h, "", `{"winningSide":"Hawks"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestSettleEndpoint_NonOrganizerForbidden(t *testing.T) {
	h := newTestServer(&stubStore{event: stubEvent("org-1", false)})

	rec := doSettle(t, h, "intruder", `{"winningSide":"Hawks"}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestSettleEndpoint_AlreadySettledIsOK(t *testing.T) {
	h := newTestServer(&stubStore{event: stubEvent("org-1", true)})

	rec := doSettle(t, h, "org-1", `{"winningSide":"Hawks"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for re-settlement, got %d", rec.Code)
	}
	var body struct {
		AlreadySettled bool `json:"alreadySettled"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if !body.AlreadySettled {
		t.Fatal("response must flag alreadySettled")
	}
}

func TestSettleEndpoint_EmptyPoolNotFound(t *testing.T) {
	h := newTestServer(&stubStore{event: stubEvent("org-1", false)})

	rec := doSettle(t, h, "org-1", `{"winningSide":"Hawks"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for empty pool, got %d", rec.Code)
	}
}

func TestSettleEndpoint_InvalidWinnerBadRequest(t *testing.T) {
	store := &stubStore{
		event:  stubEvent("org-1", false),
		wagers: []repo.EventWager{stubWager("w1", "u1", repo.SideA, "10.00")},
	}
	h := newTestServer(store)

	rec := doSettle(t, h, "org-1", `{"winningSide":"Pelicans"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestSettleEndpoint_Success(t *testing.T) {
	store := &stubStore{
		event: stubEvent("org-1", false),
		wagers: []repo.EventWager{
			stubWager("w1", "u1", repo.SideA, "100.00"),
			stubWager("w2", "u2", repo.SideB, "300.00"),
		},
	}
	h := newTestServer(store)

	rec := doSettle(t, h, "org-1", `{"winningSide":"Hawks"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		WinningSide string `json:"winningSide"`
		Credits     []struct {
			UserID string          `json:"userId"`
			Credit decimal.Decimal `json:"credit"`
		} `json:"credits"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.WinningSide != "Hawks" {
		t.Errorf("expected winning side Hawks, got %s", body.WinningSide)
	}
	if len(body.Credits) != 1 || body.Credits[0].UserID != "u1" {
		t.Fatalf("expected a single credit for u1, got %+v", body.Credits)
	}
	want, _ := decimal.NewFromString("300.00")
	if !body.Credits[0].Credit.Equal(want) {
		t.Errorf("expected credit 300.00, got %s", body.Credits[0].Credit)
	}
}

func TestPlaceWagerEndpoint_ConflictStatuses(t *testing.T) {
	tests := []struct {
		name     string
		storeErr error
		want     int
	}{
		{"duplicate wager", repo.ErrWagerExists, http.StatusConflict},
		{"insufficient funds", repo.ErrInsufficientFunds, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &stubStore{event: stubEvent("org-1", false), placeErr: tt.storeErr}
			h := newTestServer(store)

			req := httptest.NewRequest(http.MethodPost, "/wagers",
				strings.NewReader(`{"eventId":"evt-1","sideChoice":"Hawks","amount":"10.00"}`))
			req.Header.Set("X-User-ID", "u1")
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, rec.Code)
			}
		})
	}
}

func TestEventDetailEndpoint_NotFound(t *testing.T) {
	h := newTestServer(&stubStore{})

	req := httptest.NewRequest(http.MethodGet, "/events/missing", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
