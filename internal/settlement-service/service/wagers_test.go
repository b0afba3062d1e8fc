package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/radieske/group-bet-platform-poc/internal/settlement-service/dto"
	"github.com/radieske/group-bet-platform-poc/internal/settlement-service/repo"
)

func placeReq(t *testing.T, side, amount string) dto.PlaceWagerRequest {
	t.Helper()
	return dto.PlaceWagerRequest{
		EventID:    "evt-1",
		SideChoice: side,
		Amount:     mustDec(t, amount),
	}
}

func TestPlaceWager_InvalidAmount(t *testing.T) {
	svc := newTestService(&fakeStore{event: openEvent("org-1")}, newFakeCache(), &fakePublisher{})

	if _, err := svc.PlaceWager(context.Background(), placeReq(t, "Hawks", "0"), "u1"); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if _, err := svc.PlaceWager(context.Background(), placeReq(t, "Hawks", "-5.00"), "u1"); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestPlaceWager_EventNotFound(t *testing.T) {
	svc := newTestService(&fakeStore{}, newFakeCache(), &fakePublisher{})

	if _, err := svc.PlaceWager(context.Background(), placeReq(t, "Hawks", "10.00"), "u1"); !errors.Is(err, ErrEventNotFound) {
		t.Fatalf("expected ErrEventNotFound, got %v", err)
	}
}

func TestPlaceWager_CompletedEvent(t *testing.T) {
	e := openEvent("org-1")
	e.Completed = true
	svc := newTestService(&fakeStore{event: e}, newFakeCache(), &fakePublisher{})

	if _, err := svc.PlaceWager(context.Background(), placeReq(t, "Hawks", "10.00"), "u1"); !errors.Is(err, ErrAlreadySettled) {
		t.Fatalf("expected ErrAlreadySettled, got %v", err)
	}
}

func TestPlaceWager_AfterStart(t *testing.T) {
	e := openEvent("org-1")
	e.StartTime = time.Now().Add(-time.Minute)
	svc := newTestService(&fakeStore{event: e}, newFakeCache(), &fakePublisher{})

	if _, err := svc.PlaceWager(context.Background(), placeReq(t, "Hawks", "10.00"), "u1"); !errors.Is(err, ErrInvalidTimeWindow) {
		t.Fatalf("expected ErrInvalidTimeWindow, got %v", err)
	}
}

func TestPlaceWager_InvalidSide(t *testing.T) {
	svc := newTestService(&fakeStore{event: openEvent("org-1")}, newFakeCache(), &fakePublisher{})

	if _, err := svc.PlaceWager(context.Background(), placeReq(t, "Pelicans", "10.00"), "u1"); !errors.Is(err, ErrInvalidSide) {
		t.Fatalf("expected ErrInvalidSide, got %v", err)
	}
}

func TestPlaceWager_Success(t *testing.T) {
	store := &fakeStore{event: openEvent("org-1"), placedID: "wgr-1"}
	cache := newFakeCache()
	publ := &fakePublisher{}
	svc := newTestService(store, cache, publ)

	id, err := svc.PlaceWager(context.Background(), placeReq(t, "Wolves", "25.50"), "u7")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "wgr-1" {
		t.Fatalf("expected wager id wgr-1, got %s", id)
	}

	if store.placed == nil || store.placed.SideChoice != repo.SideB {
		t.Fatalf("side name must be mapped to SIDE_B, got %+v", store.placed)
	}
	if store.placed.UserID != "u7" {
		t.Errorf("wager must belong to the requester, got %s", store.placed.UserID)
	}
	if len(publ.placed) != 1 || publ.placed[0].WagerID != "wgr-1" {
		t.Fatalf("expected one wager_placed publication, got %v", publ.placed)
	}
	if len(cache.invalidated) != 1 {
		t.Fatalf("expected pool cache invalidation, got %v", cache.invalidated)
	}
}

func TestPlaceWager_StoreErrorsMapped(t *testing.T) {
	tests := []struct {
		name     string
		storeErr error
		want     error
	}{
		{"duplicate wager", repo.ErrWagerExists, ErrWagerExists},
		{"insufficient funds", repo.ErrInsufficientFunds, ErrInsufficientFunds},
		{"storage down", errors.New("broken pipe"), ErrStorageFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{event: openEvent("org-1"), placeErr: tt.storeErr}
			publ := &fakePublisher{}
			svc := newTestService(store, newFakeCache(), publ)

			_, err := svc.PlaceWager(context.Background(), placeReq(t, "Hawks", "10.00"), "u1")
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if len(publ.placed) != 0 {
				t.Fatal("no publication on failed placement")
			}
		})
	}
}

func TestGetBalance(t *testing.T) {
	store := &fakeStore{balance: mustDec(t, "123.45")}
	svc := newTestService(store, newFakeCache(), &fakePublisher{})

	bal, err := svc.GetBalance(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bal.Equal(mustDec(t, "123.45")) {
		t.Fatalf("expected 123.45, got %s", bal)
	}
}
