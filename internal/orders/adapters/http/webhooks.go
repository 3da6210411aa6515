package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/partsdepot/backoffice/internal/webhooks"
)

// WebhookHandler exposes the payment gateway notification intake and the
// retry service's operational endpoints.
type WebhookHandler struct {
	processor *webhooks.Processor
	retry     *webhooks.RetryService
}

// NewWebhookHandler constructs a WebhookHandler.
func NewWebhookHandler(processor *webhooks.Processor, retry *webhooks.RetryService) *WebhookHandler {
	return &WebhookHandler{processor: processor, retry: retry}
}

// Register binds the webhook handlers to the provided ServeMux.
func (h *WebhookHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/v1/webhooks/payments", h.handlePaymentNotification)
	mux.HandleFunc("/v1/webhooks/retry", h.handleRetry)
	mux.HandleFunc("/v1/webhooks/retry/start", h.handleRetryStart)
	mux.HandleFunc("/v1/webhooks/retry/stop", h.handleRetryStop)
	mux.HandleFunc("/v1/webhooks/stats", h.handleStats)
}

type paymentNotification struct {
	Type string `json:"type"`
	Data struct {
		ID json.Number `json:"id"`
	} `json:"data"`
}

// handlePaymentNotification accepts gateway deliveries in both shapes the
// gateway sends: a JSON body with type and data.id, and the query-string
// form used by older notification topics. The payment id is extracted and
// handed to the processor; anything that is not a payment event is
// acknowledged and dropped.
func (h *WebhookHandler) handlePaymentNotification(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost && r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	eventType, paymentID := extractNotification(r)
	if eventType != "" && eventType != "payment" {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ignored"})
		return
	}
	if paymentID == "" {
		writeError(w, http.StatusBadRequest, "missing payment id")
		return
	}

	// Always acknowledge: a failed delivery stays in the log and the
	// retry sweep picks it up, so the gateway must not keep redelivering.
	_ = h.processor.Receive(r.Context(), paymentID)

	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func extractNotification(r *http.Request) (eventType, paymentID string) {
	query := r.URL.Query()
	eventType = query.Get("type")
	if eventType == "" {
		eventType = query.Get("topic")
	}
	paymentID = query.Get("data.id")
	if paymentID == "" {
		paymentID = query.Get("id")
	}

	if r.Method == http.MethodPost {
		var payload paymentNotification
		if err := json.NewDecoder(r.Body).Decode(&payload); err == nil {
			if payload.Type != "" {
				eventType = payload.Type
			}
			if payload.Data.ID.String() != "" {
				paymentID = payload.Data.ID.String()
			}
		}
	}

	return strings.TrimSpace(eventType), strings.TrimSpace(paymentID)
}

// handleRetry triggers one synchronous sweep over failed deliveries.
func (h *WebhookHandler) handleRetry(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	attempted, recovered, err := h.retry.ProcessFailed(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"attempted": attempted,
		"recovered": recovered,
	})
}

func (h *WebhookHandler) handleRetryStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	h.retry.Start()
	writeJSON(w, http.StatusOK, map[string]any{"running": h.retry.Running()})
}

func (h *WebhookHandler) handleRetryStop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	h.retry.Stop()
	writeJSON(w, http.StatusOK, map[string]any{"running": h.retry.Running()})
}

func (h *WebhookHandler) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	stats, err := h.retry.Stats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"pending":   stats.Pending,
		"succeeded": stats.Succeeded,
		"failed":    stats.Failed,
		"running":   h.retry.Running(),
	})
}
