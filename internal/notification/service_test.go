package notification

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeRepository struct {
	items  map[uint]*InAppNotification
	nextID uint
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{items: make(map[uint]*InAppNotification)}
}

func (f *fakeRepository) CreateInApp(ctx context.Context, n *InAppNotification) error {
	f.nextID++
	n.ID = f.nextID
	copied := *n
	f.items[n.ID] = &copied
	return nil
}

func (f *fakeRepository) ListInAppByUser(ctx context.Context, userID uint, unreadOnly bool, limit int) ([]InAppNotification, error) {
	var out []InAppNotification
	for _, n := range f.items {
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		out = append(out, *n)
	}
	return out, nil
}

func (f *fakeRepository) MarkInAppAsRead(ctx context.Context, id uint, userID uint) error {
	n, ok := f.items[id]
	if !ok || n.UserID != userID {
		return gorm.ErrRecordNotFound
	}
	n.IsRead = true
	return nil
}

func (f *fakeRepository) MarkAllAsRead(ctx context.Context, userID uint) (int64, error) {
	var updated int64
	for _, n := range f.items {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			updated++
		}
	}
	return updated, nil
}

func (f *fakeRepository) CountUnread(ctx context.Context, userID uint) (int64, error) {
	var count int64
	for _, n := range f.items {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func TestCreateAndListNotifications(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo)
	ctx := context.Background()

	bookingID := uint(12)
	require.NoError(t, svc.CreateInApp(ctx, 7, &bookingID, "Booking confirmed", "Payment received.", "booking"))
	require.NoError(t, svc.CreateInApp(ctx, 7, nil, "Welcome", "Thanks for joining!", "system"))
	require.NoError(t, svc.CreateInApp(ctx, 8, nil, "Other user", "not yours", "system"))

	items, err := svc.ListForUser(ctx, 7, false, 50)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	unread, err := svc.UnreadCount(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(2), unread)
}

func TestMarkAsReadScopedToOwner(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo)
	ctx := context.Background()

	require.NoError(t, svc.CreateInApp(ctx, 7, nil, "Hello", "msg", "system"))

	// another user cannot flip someone else's notification
	assert.Error(t, svc.MarkAsRead(ctx, 1, 8))
	require.NoError(t, svc.MarkAsRead(ctx, 1, 7))

	unread, err := svc.UnreadCount(ctx, 7)
	require.NoError(t, err)
	assert.Zero(t, unread)
}

func TestMarkAllAsRead(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo)
	ctx := context.Background()

	require.NoError(t, svc.CreateInApp(ctx, 7, nil, "a", "m", "system"))
	require.NoError(t, svc.CreateInApp(ctx, 7, nil, "b", "m", "system"))

	updated, err := svc.MarkAllAsRead(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated)

	unreadOnly, err := svc.ListForUser(ctx, 7, true, 50)
	require.NoError(t, err)
	assert.Empty(t, unreadOnly)
}

func TestBookingMessageForLifecycleEvents(t *testing.T) {
	title, msg := bookingMessage("booking.confirmed", 12, "2026-09-01")
	assert.Equal(t, "Booking confirmed", title)
	assert.Contains(t, msg, "#12")

	title, _ = bookingMessage("booking.unknown", 12, "2026-09-01")
	assert.Empty(t, title)
}
