package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/radieske/group-bet-platform-poc/internal/settlement-service/repo"
	ev "github.com/radieske/group-bet-platform-poc/pkg/contracts/events"
)

// fakes dos colaboradores do orquestrador

type fakeStore struct {
	event   *repo.Event
	getErr  error
	wagers  []repo.EventWager
	listErr error

	applyErr       error
	applied        bool
	appliedWinner  repo.Side
	appliedCredits []repo.SettlementCredit

	placeErr error
	placedID string
	placed   *repo.Wager

	createdID string
	updated   *repo.Event
	deletedID string

	balance decimal.Decimal
}

func (f *fakeStore) CreateEvent(_ context.Context, e *repo.Event) (string, error) {
	f.updated = e
	if f.createdID == "" {
		f.createdID = "evt-new"
	}
	return f.createdID, nil
}

func (f *fakeStore) GetEvent(_ context.Context, _ string) (*repo.Event, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.event == nil {
		return nil, repo.ErrNotFound
	}
	return f.event, nil
}

func (f *fakeStore) UpdateEvent(_ context.Context, e *repo.Event) error {
	f.updated = e
	return nil
}

func (f *fakeStore) DeleteEvent(_ context.Context, id string) error {
	f.deletedID = id
	return nil
}

func (f *fakeStore) ListWagersByEvent(_ context.Context, _ string) ([]repo.EventWager, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.wagers, nil
}

func (f *fakeStore) PlaceWager(_ context.Context, w *repo.Wager) (string, error) {
	if f.placeErr != nil {
		return "", f.placeErr
	}
	f.placed = w
	if f.placedID == "" {
		f.placedID = "wgr-new"
	}
	return f.placedID, nil
}

func (f *fakeStore) ApplySettlement(_ context.Context, _ string, winner repo.Side, credits []repo.SettlementCredit) error {
	if f.applyErr != nil {
		return f.applyErr
	}
	f.applied = true
	f.appliedWinner = winner
	f.appliedCredits = credits
	return nil
}

func (f *fakeStore) GetBalance(_ context.Context, _ string) (decimal.Decimal, error) {
	return f.balance, nil
}

type fakePublisher struct {
	settled []ev.EventSettled
	placed  []ev.WagerPlaced
	err     error
}

func (f *fakePublisher) PublishEventSettled(_ context.Context, e ev.EventSettled) error {
	if f.err != nil {
		return f.err
	}
	f.settled = append(f.settled, e)
	return nil
}

func (f *fakePublisher) PublishWagerPlaced(_ context.Context, e ev.WagerPlaced) error {
	if f.err != nil {
		return f.err
	}
	f.placed = append(f.placed, e)
	return nil
}

type fakeCache struct {
	data        map[string][]byte
	invalidated []string
}

func newFakeCache() *fakeCache { return &fakeCache{data: map[string][]byte{}} }

func (f *fakeCache) Get(_ context.Context, eventID string, dst any) (bool, error) {
	b, ok := f.data[eventID]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (f *fakeCache) Set(_ context.Context, eventID string, v any) error {
	b, _ := json.Marshal(v)
	f.data[eventID] = b
	return nil
}

func (f *fakeCache) Invalidate(_ context.Context, eventID string) error {
	f.invalidated = append(f.invalidated, eventID)
	delete(f.data, eventID)
	return nil
}

// helpers

func mustDec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}

func openEvent(organizer string) *repo.Event {
	start := time.Now().Add(time.Hour)
	return &repo.Event{
		ID:          "evt-1",
		GroupID:     "grp-1",
		SideA:       "Hawks",
		SideB:       "Wolves",
		StartTime:   start,
		EndTime:     start.Add(2 * time.Hour),
		OrganizerID: &organizer,
	}
}

func eventWager(t *testing.T, id, userID, username string, side repo.Side, amount string) repo.EventWager {
	t.Helper()
	return repo.EventWager{
		Wager: repo.Wager{
			ID:         id,
			EventID:    "evt-1",
			UserID:     userID,
			SideChoice: side,
			Amount:     mustDec(t, amount),
			Status:     repo.WagerPending,
		},
		Username: username,
	}
}

func newTestService(store *fakeStore, cache *fakeCache, publ *fakePublisher) *Service {
	return New(zap.NewNop(), store, cache, publ)
}
