package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/partsdepot/backoffice/internal/orders/app"
	"github.com/partsdepot/backoffice/internal/orders/domain"
	"github.com/partsdepot/backoffice/internal/orders/ports"
)

// Handler exposes HTTP endpoints for order operations.
type Handler struct {
	service *app.Service
}

// NewHandler constructs a Handler.
func NewHandler(service *app.Service) *Handler {
	return &Handler{service: service}
}

// Register binds the order handlers to the provided ServeMux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/v1/orders", h.handleOrders)
	mux.HandleFunc("/v1/orders/", h.handleOrderByRef)
	mux.HandleFunc("/v1/coupons", h.handleCoupons)
}

func (h *Handler) handleOrders(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.createOrder(w, r)
	case http.MethodGet:
		h.listOrders(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *Handler) handleOrderByRef(w http.ResponseWriter, r *http.Request) {
	trimmed := strings.TrimPrefix(r.URL.Path, "/v1/orders/")
	if trimmed == "" {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}

	if strings.HasSuffix(trimmed, "/status") {
		ref := strings.TrimSuffix(strings.TrimSuffix(trimmed, "/status"), "/")
		ref = strings.TrimSuffix(ref, "/")
		if ref == "" {
			writeError(w, http.StatusNotFound, "order not found")
			return
		}
		if r.Method != http.MethodPut {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		h.updateStatus(w, r, ref)
		return
	}

	ref := strings.TrimSuffix(trimmed, "/")
	if ref == "" {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.getOrder(w, r, ref)
	case http.MethodDelete:
		h.deleteOrder(w, r, ref)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var payload app.CreateOrderInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	result, err := h.service.CreateOrder(r.Context(), payload)
	if err != nil {
		// The order may have been persisted before a later step failed;
		// report what exists so the client is not left guessing.
		if result != nil && result.Order != nil {
			writeJSON(w, http.StatusBadGateway, map[string]any{
				"order": result.Order,
				"error": err.Error(),
			})
			return
		}
		if errors.Is(err, ports.ErrGatewayUnavailable) {
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"order":        result.Order,
		"items":        result.Items,
		"redirect_url": result.RedirectURL,
	})
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request, ref string) {
	result, err := h.service.GetOrder(r.Context(), ref)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			writeError(w, http.StatusNotFound, "order not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"order": result.Order, "items": result.Items})
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	filter := ports.ListFilter{}
	if statusParam := r.URL.Query().Get("status"); statusParam != "" {
		status := domain.OrderStatus(statusParam)
		if !domain.KnownStatus(status) {
			writeError(w, http.StatusBadRequest, "unknown status filter")
			return
		}
		filter.Status = &status
	}

	if pageParam := r.URL.Query().Get("page"); pageParam != "" {
		if page, err := strconv.Atoi(pageParam); err == nil {
			filter.Page = page
		}
	}

	if pageSizeParam := r.URL.Query().Get("page_size"); pageSizeParam != "" {
		if pageSize, err := strconv.Atoi(pageSizeParam); err == nil {
			filter.PageSize = pageSize
		}
	}

	orders, err := h.service.ListOrders(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"orders": orders})
}

type updateStatusRequest struct {
	Status       string `json:"status"`
	TrackingCode string `json:"tracking_code"`
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request, ref string) {
	var payload updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	actorID := strings.TrimSpace(r.Header.Get("X-Admin-ID"))

	result, err := h.service.TransitionOrder(r.Context(), ref, domain.OrderStatus(payload.Status), payload.TrackingCode, actorID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			writeError(w, http.StatusNotFound, "order not found")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	response := map[string]any{
		"order":           result.Order,
		"previous_status": result.Previous,
	}
	if len(result.SideEffects) > 0 {
		var failures []map[string]string
		for _, f := range result.SideEffects {
			failures = append(failures, map[string]string{
				"kind":       string(f.Kind),
				"product_id": f.ProductID,
				"error":      f.Err.Error(),
			})
		}
		response["side_effect_failures"] = failures
	}

	writeJSON(w, http.StatusOK, response)
}

func (h *Handler) deleteOrder(w http.ResponseWriter, r *http.Request, ref string) {
	err := h.service.DeleteOrder(r.Context(), ref)
	if err != nil {
		switch {
		case errors.Is(err, ports.ErrNotFound):
			writeError(w, http.StatusNotFound, "order not found")
		case errors.Is(err, ports.ErrNotDeletable):
			writeError(w, http.StatusConflict, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"message": "order deleted"})
}

type issueCouponRequest struct {
	UserID          string    `json:"user_id"`
	DiscountPercent int       `json:"discount_percent"`
	ExpiresAt       time.Time `json:"expires_at"`
}

func (h *Handler) handleCoupons(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var payload issueCouponRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}

	createdBy := strings.TrimSpace(r.Header.Get("X-Admin-ID"))

	coupon, err := h.service.IssueCoupon(r.Context(), payload.UserID, createdBy, payload.DiscountPercent, payload.ExpiresAt)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"coupon": coupon})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}
