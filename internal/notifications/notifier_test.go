package notifications_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"biterush/internal/notifications"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPostmarkNotifier_Notify(t *testing.T) {
	var got map[string]any
	var token string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token = r.Header.Get("X-Postmark-Server-Token")
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"To":"jane@example.com","SubmittedAt":"2026-01-02T15:04:05Z","MessageID":"abc-123","ErrorCode":0,"Message":"OK"}`))
	}))
	defer srv.Close()

	n := notifications.NewPostmarkNotifier("server-token", "orders@biterush.test", zap.NewNop()).WithBaseURL(srv.URL)

	err := n.Notify(context.Background(), notifications.Message{
		To:       "jane@example.com",
		Subject:  "Order placed",
		HTMLBody: "<p>Thanks</p>",
	})
	require.NoError(t, err)

	assert.Equal(t, "server-token", token)
	assert.Equal(t, "orders@biterush.test", got["From"])
	assert.Equal(t, "jane@example.com", got["To"])
	assert.Equal(t, "Order placed", got["Subject"])
	assert.Equal(t, "<p>Thanks</p>", got["TextBody"])
}

func TestPostmarkNotifier_CancelledContext(t *testing.T) {
	n := notifications.NewPostmarkNotifier("token", "orders@biterush.test", zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := n.Notify(ctx, notifications.Message{To: "jane@example.com"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLogNotifier_Notify(t *testing.T) {
	n := notifications.NewLogNotifier(zap.NewNop())
	assert.NoError(t, n.Notify(context.Background(), notifications.Message{To: "jane@example.com"}))
}
