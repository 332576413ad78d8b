package track

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sneakshop-lab/sneakshop/internal/identity"
)

// Event is a relayed analytics event as accepted by the ingestion endpoint,
// plus the attributes stamped server-side during ingestion.
type Event struct {
	ID         string         `json:"id"`
	FPID       string         `json:"fpid"`
	EventName  string         `json:"event_name"`
	Parameters map[string]any `json:"parameters"`
	PageURL    string         `json:"page_url"`
	PageTitle  string         `json:"page_title"`
	Timestamp  string         `json:"timestamp"`
	UserAgent  string         `json:"user_agent"`
	ClientIP   string         `json:"client_ip"`
	ReceivedAt time.Time      `json:"received_at"`
}

// Forwarder hands accepted events to a real collector. The endpoint
// acknowledges regardless of what the forwarder does, so a production
// pipeline can be injected without changing the ingestion contract.
type Forwarder interface {
	Forward(ctx context.Context, evt *Event) error
}

// LogForwarder is the default no-op forwarder: it logs what it would send.
type LogForwarder struct{}

func (LogForwarder) Forward(ctx context.Context, evt *Event) error {
	slog.Info("Would forward event to collector",
		"event_id", evt.ID,
		"event_name", evt.EventName,
		"fpid", identity.Preview(evt.FPID),
		"page_url", evt.PageURL)
	return nil
}

// Service is the relay ingestion endpoint. It owns provisioning of the
// durable first-party identifier for the relay arm.
type Service struct {
	ids          *identity.Store
	forwarder    Forwarder
	maxBodyBytes int64
}

// NewService wires the ingestion endpoint. A nil forwarder falls back to
// LogForwarder.
func NewService(ids *identity.Store, fw Forwarder, maxBodySizeMB int) *Service {
	if ids == nil {
		panic("track: identity store must not be nil")
	}
	if fw == nil {
		fw = LogForwarder{}
	}
	if maxBodySizeMB <= 0 {
		maxBodySizeMB = 1 // default to 1MB
	}
	return &Service{
		ids:          ids,
		forwarder:    fw,
		maxBodyBytes: int64(maxBodySizeMB) * 1024 * 1024,
	}
}

// RegisterRoutes registers the ingestion endpoints.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.POST("/api/track", s.IngestHandler)
	r.GET("/api/track", s.StatusHandler)
}
