package metrics

import (
	"strconv"

	"github.com/laporpak/report-service/internal/core/domain"
)

// EventRecorder feeds the event dispatcher's observations into the event
// metrics above.
type EventRecorder struct{}

func (EventRecorder) Queued(worker int) {
	EventsQueueDepth.WithLabelValues(strconv.Itoa(worker)).Inc()
}

func (EventRecorder) Dequeued(worker int) {
	EventsQueueDepth.WithLabelValues(strconv.Itoa(worker)).Dec()
}

func (EventRecorder) Dropped() {
	EventsDroppedTotal.Inc()
}

func (EventRecorder) Published(kind domain.ChangeKind, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	EventsPublishedTotal.WithLabelValues(string(kind), result).Inc()
}
