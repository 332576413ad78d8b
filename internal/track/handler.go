package track

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sneakshop-lab/sneakshop/internal/identity"
)

const (
	msgReadBodyFailed = "Failed to read request body"
	msgInvalidJSON    = "Invalid JSON body"
	msgMissingEvent   = "event_name is required"
	msgForwardFailed  = "Failed to process event"
)

// trackError carries the HTTP error shape from a helper back to the handler.
type trackError struct {
	statusCode int
	message    string
}

func (e *trackError) Error() string { return e.message }

type trackRequest struct {
	EventName  string         `json:"event_name"`
	Parameters map[string]any `json:"parameters"`
	PageURL    string         `json:"page_url"`
	PageTitle  string         `json:"page_title"`
	Timestamp  string         `json:"timestamp"`
	UserAgent  string         `json:"user_agent"`
}

// IngestHandler accepts events relayed for the test arm. A rejected payload
// must leave no identifier cookie behind, so the FPID is only resolved after
// the payload parses.
func (s *Service) IngestHandler(c *gin.Context) {
	req, perr := s.parsePayload(c)
	if perr != nil {
		writeError(c, perr)
		return
	}

	fpid, ck := s.ids.GetOrCreate(c.Request)
	if ck != nil {
		http.SetCookie(c.Writer, ck)
	}

	evt := &Event{
		ID:         uuid.New().String(),
		FPID:       fpid,
		EventName:  req.EventName,
		Parameters: req.Parameters,
		PageURL:    req.PageURL,
		PageTitle:  req.PageTitle,
		Timestamp:  req.Timestamp,
		UserAgent:  req.UserAgent,
		ClientIP:   c.ClientIP(),
		ReceivedAt: time.Now().UTC(),
	}

	slog.Info("Received relayed event",
		"event_id", evt.ID,
		"event_name", evt.EventName,
		"fpid", identity.Preview(fpid))

	if err := s.forwarder.Forward(c.Request.Context(), evt); err != nil {
		slog.Error("Forwarder rejected event", "event_id", evt.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": msgForwardFailed,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"fpid":   fpid,
	})
}

// StatusHandler reports whether the caller already has a durable identifier.
// It only ever exposes an obfuscated preview, never the full value.
func (s *Service) StatusHandler(c *gin.Context) {
	var preview any
	exists := false
	if ck, err := c.Request.Cookie(identity.CookieName); err == nil && ck.Value != "" {
		exists = true
		preview = identity.Preview(ck.Value)
	}
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"fpid_exists": exists,
		"fpid":        preview,
	})
}

// parsePayload reads the size-limited body and binds it into a trackRequest.
func (s *Service) parsePayload(c *gin.Context) (*trackRequest, *trackError) {
	limited := io.LimitReader(c.Request.Body, s.maxBodyBytes+1) // +1 to detect oversized requests
	body, err := io.ReadAll(limited)
	if err != nil {
		slog.Error("Failed to read request body", "error", err)
		return nil, &trackError{statusCode: http.StatusInternalServerError, message: msgReadBodyFailed}
	}
	if int64(len(body)) > s.maxBodyBytes {
		slog.Warn("Request body exceeds maximum size", "size", len(body), "max", s.maxBodyBytes)
		return nil, &trackError{
			statusCode: http.StatusRequestEntityTooLarge,
			message:    "Request body exceeds maximum allowed size",
		}
	}

	var req trackRequest
	if err := json.Unmarshal(body, &req); err != nil {
		slog.Warn("Invalid JSON body received", "error", err, "payload_size", len(body))
		return nil, &trackError{statusCode: http.StatusBadRequest, message: msgInvalidJSON}
	}
	if req.EventName == "" {
		slog.Warn("Relayed event missing event_name", "payload_size", len(body))
		return nil, &trackError{statusCode: http.StatusBadRequest, message: msgMissingEvent}
	}
	return &req, nil
}

func writeError(c *gin.Context, err *trackError) {
	c.JSON(err.statusCode, gin.H{
		"status":  "error",
		"message": err.message,
	})
}
