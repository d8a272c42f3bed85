package slot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sparklewash/carwash-backend/internal/storage"
	"github.com/sparklewash/carwash-backend/utils"
)

var (
	ErrSlotNotFound    = errors.New("time slot not found")
	ErrSlotUnavailable = errors.New("time slot has no remaining capacity")
	ErrSlotMismatch    = errors.New("time slot does not belong to the requested van and date")
	ErrInvalidWindow   = errors.New("invalid slot time window")
)

type Service interface {
	// Allocation
	Reserve(ctx context.Context, vanID uint, date string, slotID uint, units int) (*Reservation, error)
	Release(ctx context.Context, token string) error
	ListAvailable(ctx context.Context, vanID uint, date string) ([]TimeSlot, error)

	// Scheduling (operator)
	CreateSlot(ctx context.Context, s *TimeSlot) error
	GenerateDay(ctx context.Context, vanID uint, date, openTime, closeTime string, slotMinutes, capacity int) ([]TimeSlot, error)
	GetSlot(ctx context.Context, id uint) (*TimeSlot, error)
	ArchiveSlot(ctx context.Context, id uint) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// Reserve holds units of capacity on a slot. The capacity check, the van
// status check and the counter increment happen atomically in the
// repository, so the allocator never oversells a slot no matter how many
// callers race on it. A reservation that cannot be fulfilled fails
// immediately; there is no waitlist.
func (s *service) Reserve(ctx context.Context, vanID uint, date string, slotID uint, units int) (*Reservation, error) {
	if units <= 0 {
		units = 1
	}

	ts, err := s.repo.GetSlotByID(ctx, slotID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("slot lookup failed: %w: %w", storage.ErrUnavailable, err)
	}
	if ts.VanID != vanID || ts.Date != date {
		return nil, ErrSlotMismatch
	}

	token := uuid.New().String()
	ok, err := s.repo.Reserve(ctx, slotID, units, token)
	if err != nil {
		return nil, fmt.Errorf("reserve failed: %w: %w", storage.ErrUnavailable, err)
	}
	if !ok {
		return nil, ErrSlotUnavailable
	}

	utils.GetLogger().Debug("slot reserved",
		zap.Uint("slot_id", slotID),
		zap.Int("units", units),
		zap.String("token", token),
	)

	return &Reservation{Token: token, TimeSlotID: slotID, Units: units}, nil
}

// Release returns a reservation's units to the slot. Safe to retry:
// releasing an already-released or unknown token is a no-op.
func (s *service) Release(ctx context.Context, token string) error {
	released, err := s.repo.Release(ctx, token)
	if err != nil {
		return fmt.Errorf("release failed: %w: %w", storage.ErrUnavailable, err)
	}
	if released {
		utils.GetLogger().Debug("slot reservation released", zap.String("token", token))
	}
	return nil
}

func (s *service) ListAvailable(ctx context.Context, vanID uint, date string) ([]TimeSlot, error) {
	return s.repo.ListByVanAndDate(ctx, vanID, date, true)
}

func (s *service) CreateSlot(ctx context.Context, ts *TimeSlot) error {
	if err := validateWindow(ts.StartTime, ts.EndTime); err != nil {
		return err
	}
	if _, err := time.Parse("2006-01-02", ts.Date); err != nil {
		return fmt.Errorf("invalid date %q: %w", ts.Date, err)
	}
	if ts.Capacity <= 0 {
		ts.Capacity = 1
	}
	ts.Booked = 0
	return s.repo.CreateSlot(ctx, ts)
}

// GenerateDay carves a working day into back-to-back slots of slotMinutes
// each, from openTime up to closeTime. Slots that would cross closeTime
// are not created.
func (s *service) GenerateDay(ctx context.Context, vanID uint, date, openTime, closeTime string, slotMinutes, capacity int) ([]TimeSlot, error) {
	if slotMinutes <= 0 {
		return nil, fmt.Errorf("slot duration must be positive")
	}
	if err := validateWindow(openTime, closeTime); err != nil {
		return nil, err
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", date, err)
	}
	if capacity <= 0 {
		capacity = 1
	}

	open, _ := time.Parse("15:04", openTime)
	close, _ := time.Parse("15:04", closeTime)

	var created []TimeSlot
	for cursor := open; !cursor.Add(time.Duration(slotMinutes) * time.Minute).After(close); cursor = cursor.Add(time.Duration(slotMinutes) * time.Minute) {
		ts := TimeSlot{
			VanID:     vanID,
			Date:      date,
			StartTime: cursor.Format("15:04"),
			EndTime:   cursor.Add(time.Duration(slotMinutes) * time.Minute).Format("15:04"),
			Capacity:  capacity,
		}
		if err := s.repo.CreateSlot(ctx, &ts); err != nil {
			return created, fmt.Errorf("failed to create slot %s: %w", ts.StartTime, err)
		}
		created = append(created, ts)
	}

	return created, nil
}

func (s *service) GetSlot(ctx context.Context, id uint) (*TimeSlot, error) {
	ts, err := s.repo.GetSlotByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("slot lookup failed: %w: %w", storage.ErrUnavailable, err)
	}
	return ts, nil
}

// ArchiveSlot retires a slot from listings. Slots with bookings attached
// are never deleted, only archived.
func (s *service) ArchiveSlot(ctx context.Context, id uint) error {
	if _, err := s.GetSlot(ctx, id); err != nil {
		return err
	}
	return s.repo.ArchiveSlot(ctx, id)
}

func validateWindow(start, end string) error {
	st, err := time.Parse("15:04", start)
	if err != nil {
		return ErrInvalidWindow
	}
	en, err := time.Parse("15:04", end)
	if err != nil {
		return ErrInvalidWindow
	}
	if !st.Before(en) {
		return ErrInvalidWindow
	}
	return nil
}
