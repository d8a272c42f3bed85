package notification

import (
	"context"
	"encoding/json"
	"log"

	"go.uber.org/zap"

	"github.com/sparklewash/carwash-backend/config"
	"github.com/sparklewash/carwash-backend/utils"
)

// bookingEvent mirrors the payload published by the booking package.
// Decoded loosely so new fields on the producer side do not break us.
type bookingEvent struct {
	Type      string `json:"type"`
	BookingID uint   `json:"booking_id"`
	UserID    uint   `json:"user_id"`
	Date      string `json:"date"`
}

// StartKafkaConsumer runs a background loop that turns booking lifecycle
// events into in-app notifications. It returns immediately when Kafka is
// not configured.
func StartKafkaConsumer(cfg *config.Config, svc Service) {
	reader := utils.NewBookingReader(cfg, "notification-worker")
	if reader == nil {
		log.Println("Kafka not configured, booking notification consumer disabled")
		return
	}

	go func() {
		defer reader.Close()
		for {
			msg, err := reader.ReadMessage(context.Background())
			if err != nil {
				utils.GetLogger().Error("booking consumer stopped", zap.Error(err))
				return
			}

			var evt bookingEvent
			if err := json.Unmarshal(msg.Value, &evt); err != nil {
				utils.GetLogger().Warn("skipping malformed booking event", zap.Error(err))
				continue
			}

			title, message := bookingMessage(evt.Type, evt.BookingID, evt.Date)
			if title == "" {
				continue
			}

			bookingID := evt.BookingID
			if err := svc.CreateInApp(context.Background(), evt.UserID, &bookingID, title, message, "booking"); err != nil {
				utils.GetLogger().Error("failed to store booking notification",
					zap.Uint("booking_id", evt.BookingID),
					zap.Error(err))
			}
		}
	}()
}
