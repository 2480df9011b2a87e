package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/conference-api/internal/domain"
	"github.com/conference-api/internal/pkg/validate"
)

type conferenceNotificationService interface {
	Send(ctx context.Context, req domain.NotificationSendRequest) error
	ListSent(ctx context.Context, limit int) ([]domain.SentNotificationRecord, error)
}

// ConferenceNotificationHandler serves the admin conference-notification endpoints.
type ConferenceNotificationHandler struct {
	svc conferenceNotificationService
}

func NewConferenceNotificationHandler(svc conferenceNotificationService) *ConferenceNotificationHandler {
	return &ConferenceNotificationHandler{svc: svc}
}

// Send queues a notification. Delivery happens asynchronously, so a
// successful response only means the request was accepted.
func (h *ConferenceNotificationHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req domain.NotificationSendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err := h.svc.Send(r.Context(), req); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, MessageEnvelope{Message: "notification queued"})
}

// List returns sent notifications, newest first. ?limit= caps the page.
func (h *ConferenceNotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	recs, err := h.svc.ListSent(r.Context(), limit)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SentNotificationsEnvelope{Data: recs, Count: len(recs)})
}
