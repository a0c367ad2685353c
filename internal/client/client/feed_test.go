package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	ws "github.com/coder/websocket"
	"github.com/mori-tea/mori/internal/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchNotifications(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		conn, err := ws.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(ws.StatusNormalClosure, "")
		data, _ := json.Marshal(map[string]any{
			"type": "notification", "id": 3, "centra_id": 9, "message": "Flouring machine F2 is now idle",
		})
		_ = conn.Write(r.Context(), ws.MessageText, data)
		_, _, _ = conn.Read(r.Context())
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var got []api.Notification
	err := WatchNotifications(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), "tok", 9, func(n api.Notification) {
		got = append(got, n)
		cancel()
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Flouring machine F2 is now idle", got[0].Message)
	assert.Contains(t, gotQuery, "token=tok")
	assert.Contains(t, gotQuery, "centra_id=9")
}

func TestWatchNotifications_RequiresToken(t *testing.T) {
	err := WatchNotifications(context.Background(), "ws://127.0.0.1:1", "", 0, func(api.Notification) {})
	assert.ErrorIs(t, err, ErrNotLoggedIn)
}

func TestWatchNotifications_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	err := WatchNotifications(context.Background(), "ws"+strings.TrimPrefix(srv.URL, "http"), "bad", 0, func(api.Notification) {})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}
