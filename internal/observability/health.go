package observability

import (
	"time"

	"github.com/leslieo2/hotel-booking-mock/internal/constants"
)

// TimestampLayout renders UTC instants with millisecond precision, e.g.
// 2024-05-01T10:20:30.123Z
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// HealthStatus is the liveness record. It carries exactly these four fields.
type HealthStatus struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Service   string `json:"service"`
	Version   string `json:"version"`
}

// NewHealthStatus builds a fresh liveness record for now
func NewHealthStatus(now time.Time) HealthStatus {
	return HealthStatus{
		Status:    constants.HealthStatusOK,
		Timestamp: FormatTimestamp(now),
		Service:   constants.ServiceName,
		Version:   constants.ServiceVersion,
	}
}

// ReadinessStatus reports whether the collaborators can serve traffic
type ReadinessStatus struct {
	Status    string          `json:"status"`
	Timestamp string          `json:"timestamp"`
	Uptime    string          `json:"uptime"`
	Checks    map[string]bool `json:"checks"`
}

// FormatTimestamp renders t in UTC using TimestampLayout
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
