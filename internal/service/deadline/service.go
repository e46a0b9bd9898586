package deadline

import (
	"context"
	"log"
	"time"

	"tshirt-orders/internal/domain"
	schedulerepo "tshirt-orders/internal/repository/schedule"
)

// Service resolves whether time-bounded actions are still permitted. A
// missing or unreadable schedule entry counts as closed: failing safe beats
// accepting an order after the cutoff.
type Service struct {
	repo   schedulerepo.Repository
	logger *log.Logger
}

func New(repo schedulerepo.Repository, logger *log.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// IsModificationOpen reports whether orders may still be placed or edited.
func (s *Service) IsModificationOpen(ctx context.Context, now time.Time) bool {
	return s.isOpen(ctx, domain.ScheduleOrderDeadline, now)
}

// IsRedemptionWindowOpen reports whether confirmed orders may still be
// redeemed at pickup.
func (s *Service) IsRedemptionWindowOpen(ctx context.Context, now time.Time) bool {
	return s.isOpen(ctx, domain.SchedulePickupWindow, now)
}

// Window describes one gate for read-only consumers (the buyer UI shows the
// day label next to the countdown).
type Window struct {
	Title string `json:"title"`
	Day   string `json:"day"`
	Open  bool   `json:"open"`
}

// Windows returns the state of both gates.
func (s *Service) Windows(ctx context.Context, now time.Time) []Window {
	out := make([]Window, 0, 2)
	for _, title := range []string{domain.ScheduleOrderDeadline, domain.SchedulePickupWindow} {
		w := Window{Title: title}
		if entry, err := s.repo.GetByTitle(ctx, title); err == nil {
			w.Day = entry.Day
			w.Open = s.entryOpen(*entry, now)
		}
		out = append(out, w)
	}
	return out
}

func (s *Service) isOpen(ctx context.Context, title string, now time.Time) bool {
	entry, err := s.repo.GetByTitle(ctx, title)
	if err != nil {
		if err != domain.ErrScheduleNotFound {
			s.logger.Printf("deadline gate %q: %v", title, err)
		}
		return false
	}
	return s.entryOpen(*entry, now)
}

func (s *Service) entryOpen(entry domain.DeadlineEntry, now time.Time) bool {
	cutoff, err := ParseCutoff(entry.EndTime)
	if err != nil {
		s.logger.Printf("deadline gate %q: bad end_time %q", entry.Title, entry.EndTime)
		return false
	}
	return now.Before(cutoff)
}

// ParseCutoff converts a YYYYMMDD schedule date into the cutoff instant:
// midnight UTC of that day, so the named day itself is already closed.
func ParseCutoff(endTime string) (time.Time, error) {
	return time.Parse("20060102", endTime)
}
