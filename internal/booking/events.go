package booking

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/sparklewash/carwash-backend/utils"
)

// Lifecycle event types published to the booking events topic.
const (
	EventCreated   = "booking.created"
	EventConfirmed = "booking.confirmed"
	EventStarted   = "booking.started"
	EventCompleted = "booking.completed"
	EventCancelled = "booking.cancelled"
)

// Event is the payload consumed by the notification worker and any other
// downstream subscriber.
type Event struct {
	Type          string    `json:"type"`
	BookingID     uint      `json:"booking_id"`
	UserID        uint      `json:"user_id"`
	VanID         uint      `json:"van_id"`
	Date          string    `json:"date"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"payment_status"`
	Amount        float64   `json:"amount"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// publishEvent fans a lifecycle event out to Kafka (durable consumers) and
// to the customer's Redis channel (realtime UI). Both are best-effort;
// delivery failures never fail the booking operation itself.
func publishEvent(eventType string, b *Booking) {
	evt := Event{
		Type:          eventType,
		BookingID:     b.ID,
		UserID:        b.UserID,
		VanID:         b.VanID,
		Date:          b.Date,
		Status:        b.Status,
		PaymentStatus: b.PaymentStatus,
		Amount:        b.PayableAmount(),
		OccurredAt:    time.Now(),
	}

	payload, err := json.Marshal(evt)
	if err != nil {
		return
	}

	utils.PublishBookingEvent(strconv.FormatUint(uint64(b.ID), 10), payload)
	utils.PublishUserEvent(b.UserID, string(payload))
}
