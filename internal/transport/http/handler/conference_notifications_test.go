package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/conference-api/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mock ---

type mockNotificationSvc struct{ mock.Mock }

func (m *mockNotificationSvc) Send(ctx context.Context, req domain.NotificationSendRequest) error {
	return m.Called(ctx, req).Error(0)
}

func (m *mockNotificationSvc) ListSent(ctx context.Context, limit int) ([]domain.SentNotificationRecord, error) {
	args := m.Called(ctx, limit)
	recs, _ := args.Get(0).([]domain.SentNotificationRecord)
	return recs, args.Error(1)
}

func strPtr(s string) *string { return &s }

func sendBody(t *testing.T, req domain.NotificationSendRequest) *bytes.Reader {
	t.Helper()
	b, err := json.Marshal(req)
	require.NoError(t, err)
	return bytes.NewReader(b)
}

// --- Send tests ---

func TestSend_InvalidBody(t *testing.T) {
	svc := &mockNotificationSvc{}
	h := NewConferenceNotificationHandler(svc)
	rr := httptest.NewRecorder()
	h.Send(rr, httptest.NewRequest(http.MethodPost, "/v1/conference/notifications", bytes.NewBufferString("not-json")))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	svc.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestSend_ValidationFailure(t *testing.T) {
	svc := &mockNotificationSvc{}
	h := NewConferenceNotificationHandler(svc)
	rr := httptest.NewRecorder()
	body := sendBody(t, domain.NotificationSendRequest{Title: "No message", Scope: domain.ScopeEveryone})
	h.Send(rr, httptest.NewRequest(http.MethodPost, "/v1/conference/notifications", body))
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	svc.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestSend_ServiceRejectsScope(t *testing.T) {
	svc := &mockNotificationSvc{}
	svc.On("Send", mock.Anything, mock.Anything).Return(fmt.Errorf("role scope without target_role: %w", domain.ErrBadRequest))
	h := NewConferenceNotificationHandler(svc)
	rr := httptest.NewRecorder()
	body := sendBody(t, domain.NotificationSendRequest{Title: "t", Message: "m", Scope: domain.ScopeRole})
	h.Send(rr, httptest.NewRequest(http.MethodPost, "/v1/conference/notifications", body))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	var resp MessageEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Contains(t, resp.Error, "target_role")
}

func TestSend_Accepted(t *testing.T) {
	svc := &mockNotificationSvc{}
	want := domain.NotificationSendRequest{
		Title: "Keynote", Message: "Starts in 10 minutes", Urgent: true,
		Scope: domain.ScopeRole, TargetRole: strPtr(domain.RoleSpeaker),
	}
	svc.On("Send", mock.Anything, want).Return(nil)
	h := NewConferenceNotificationHandler(svc)
	rr := httptest.NewRecorder()
	h.Send(rr, httptest.NewRequest(http.MethodPost, "/v1/conference/notifications", sendBody(t, want)))

	assert.Equal(t, http.StatusAccepted, rr.Code)
	svc.AssertExpectations(t)
}

func TestSend_InternalErrorHidden(t *testing.T) {
	svc := &mockNotificationSvc{}
	svc.On("Send", mock.Anything, mock.Anything).Return(errors.New("kafka: out of brokers"))
	h := NewConferenceNotificationHandler(svc)
	rr := httptest.NewRecorder()
	body := sendBody(t, domain.NotificationSendRequest{Title: "t", Message: "m", Scope: domain.ScopeEveryone})
	h.Send(rr, httptest.NewRequest(http.MethodPost, "/v1/conference/notifications", body))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotContains(t, rr.Body.String(), "kafka")
}

// --- List tests ---

func TestList_DefaultLimit(t *testing.T) {
	svc := &mockNotificationSvc{}
	recs := []domain.SentNotificationRecord{{NotificationID: "n2", TimeSent: time.Now()}, {NotificationID: "n1"}}
	svc.On("ListSent", mock.Anything, 0).Return(recs, nil)
	h := NewConferenceNotificationHandler(svc)
	rr := httptest.NewRecorder()
	h.List(rr, httptest.NewRequest(http.MethodGet, "/v1/conference/notifications", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp SentNotificationsEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, "n2", resp.Data[0].NotificationID)
}

func TestList_ExplicitLimit(t *testing.T) {
	svc := &mockNotificationSvc{}
	svc.On("ListSent", mock.Anything, 5).Return([]domain.SentNotificationRecord{}, nil)
	h := NewConferenceNotificationHandler(svc)
	rr := httptest.NewRecorder()
	h.List(rr, httptest.NewRequest(http.MethodGet, "/v1/conference/notifications?limit=5", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	svc.AssertExpectations(t)
}

func TestList_BadLimit(t *testing.T) {
	h := NewConferenceNotificationHandler(&mockNotificationSvc{})
	rr := httptest.NewRecorder()
	h.List(rr, httptest.NewRequest(http.MethodGet, "/v1/conference/notifications?limit=abc", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

// --- Health ---

func TestPing(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/v1/health-check/{action}", NewHealthHandler().Ping)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/health-check/ping", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"message":"pong"}`, rr.Body.String())

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/health-check/other", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
