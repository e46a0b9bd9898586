package deadline

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"tshirt-orders/internal/domain"
)

type stubScheduleRepo struct {
	entries map[string]domain.DeadlineEntry
	err     error
}

func (s *stubScheduleRepo) GetByTitle(_ context.Context, title string) (*domain.DeadlineEntry, error) {
	if s.err != nil {
		return nil, s.err
	}
	entry, ok := s.entries[title]
	if !ok {
		return nil, domain.ErrScheduleNotFound
	}
	return &entry, nil
}

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestModificationOpenBeforeCutoff(t *testing.T) {
	repo := &stubScheduleRepo{entries: map[string]domain.DeadlineEntry{
		domain.ScheduleOrderDeadline: {Title: domain.ScheduleOrderDeadline, EndTime: "20260301"},
	}}
	svc := New(repo, testLogger())

	now := time.Date(2026, 2, 27, 12, 0, 0, 0, time.UTC)
	if !svc.IsModificationOpen(context.Background(), now) {
		t.Fatalf("expected gate open before cutoff")
	}
}

func TestModificationClosedOnCutoffDay(t *testing.T) {
	repo := &stubScheduleRepo{entries: map[string]domain.DeadlineEntry{
		domain.ScheduleOrderDeadline: {Title: domain.ScheduleOrderDeadline, EndTime: "20260301"},
	}}
	svc := New(repo, testLogger())

	now := time.Date(2026, 3, 1, 0, 0, 1, 0, time.UTC)
	if svc.IsModificationOpen(context.Background(), now) {
		t.Fatalf("expected gate closed on cutoff day")
	}
}

func TestMissingEntryTreatedAsClosed(t *testing.T) {
	svc := New(&stubScheduleRepo{entries: map[string]domain.DeadlineEntry{}}, testLogger())
	if svc.IsModificationOpen(context.Background(), time.Now()) {
		t.Fatalf("expected missing entry to close the gate")
	}
}

func TestStorageErrorTreatedAsClosed(t *testing.T) {
	svc := New(&stubScheduleRepo{err: errors.New("connection refused")}, testLogger())
	if svc.IsRedemptionWindowOpen(context.Background(), time.Now()) {
		t.Fatalf("expected fetch error to close the gate")
	}
}

func TestMalformedEndTimeTreatedAsClosed(t *testing.T) {
	repo := &stubScheduleRepo{entries: map[string]domain.DeadlineEntry{
		domain.SchedulePickupWindow: {Title: domain.SchedulePickupWindow, EndTime: "soon"},
	}}
	svc := New(repo, testLogger())
	if svc.IsRedemptionWindowOpen(context.Background(), time.Now()) {
		t.Fatalf("expected malformed end_time to close the gate")
	}
}

func TestWindowsReportsBothGates(t *testing.T) {
	repo := &stubScheduleRepo{entries: map[string]domain.DeadlineEntry{
		domain.ScheduleOrderDeadline: {Title: domain.ScheduleOrderDeadline, Day: "Day 1", EndTime: "20260301"},
	}}
	svc := New(repo, testLogger())

	windows := svc.Windows(context.Background(), time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	if len(windows) != 2 {
		t.Fatalf("expected 2 windows, got %d", len(windows))
	}
	if !windows[0].Open || windows[0].Day != "Day 1" {
		t.Fatalf("unexpected modification window: %+v", windows[0])
	}
	if windows[1].Open {
		t.Fatalf("expected missing pickup window to be closed")
	}
}
