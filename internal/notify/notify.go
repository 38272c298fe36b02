package notify

import (
	"context"

	"github.com/Domenick1991/faresearch/internal/kafka"
	"github.com/sirupsen/logrus"
)

// Sender delivers journey-discovered notifications. Delivery is a structured
// log line for now; the worker owns the transport so swapping in email or
// push later touches nothing else.
type Sender struct {
	log *logrus.Logger
}

func NewSender(log *logrus.Logger) *Sender {
	return &Sender{log: log}
}

func (s *Sender) Send(ctx context.Context, event kafka.JourneyEvent) error {
	s.log.WithFields(logrus.Fields{
		"journey_id":     event.JourneyID,
		"airports":       event.Airports,
		"total_price":    event.TotalPrice,
		"total_duration": event.TotalDuration,
		"persons":        event.Persons,
	}).Info("journey discovered")
	return nil
}
