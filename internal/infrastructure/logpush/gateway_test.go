package logpush

import (
	"context"
	"testing"

	"github.com/conference-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestSend_LogsEachRequest(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	g := NewGateway(zap.New(core))

	err := g.Send(context.Background(), []domain.PushNotificationRequest{
		{DeviceID: "d1", Payload: domain.PushPayload{To: "tok-1", Title: "Hi"}},
		{DeviceID: "d2", Payload: domain.PushPayload{To: "tok-2", Title: "Hi"}},
	})

	require.NoError(t, err)
	entries := logs.FilterMessage("push").All()
	require.Len(t, entries, 2)
	assert.Equal(t, "d2", entries[1].ContextMap()["device_id"])
}
