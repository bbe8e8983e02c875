package notifier

import (
	"github.com/sirupsen/logrus"

	"presensi/domain"
)

type logPublisher struct {
	log *logrus.Logger
}

// NewLogPublisher is the shipped EventPublisher: it writes every event
// to the structured log where dashboard relays can tail it. Publish
// never propagates a failure into the caller.
func NewLogPublisher(log *logrus.Logger) domain.EventPublisher {
	return &logPublisher{
		log: log,
	}
}

func (lp *logPublisher) Publish(event domain.Event) {
	defer func() {
		if r := recover(); r != nil {
			lp.log.Errorf("event publish panicked: %v", r)
		}
	}()

	lp.log.WithFields(logrus.Fields{
		"event":      string(event.Type),
		"session_id": event.SessionID,
		"teacher_id": event.TeacherID,
		"timestamp":  event.Timestamp,
		"data":       event.Data,
	}).Info("event")
}
