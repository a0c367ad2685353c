package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	ws "github.com/coder/websocket"
	"github.com/mori-tea/mori/internal/api"
)

// WatchNotifications connects to the live feed at baseURL (ws:// or wss://)
// and calls fn for every notification until ctx ends or the connection
// drops. centraID is only needed for admins.
func WatchNotifications(ctx context.Context, baseURL, accessToken string, centraID int64, fn func(api.Notification)) error {
	if accessToken == "" {
		return ErrNotLoggedIn
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("feed url: %w", err)
	}
	u = u.JoinPath("ws", "notifications")
	q := u.Query()
	q.Set("token", accessToken)
	if centraID > 0 {
		q.Set("centra_id", strconv.FormatInt(centraID, 10))
	}
	u.RawQuery = q.Encode()

	conn, resp, err := ws.Dial(ctx, u.String(), nil)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("feed: %s", resp.Status)
		}
		return fmt.Errorf("feed: %w", err)
	}
	defer conn.Close(ws.StatusNormalClosure, "")

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("feed read: %w", err)
		}
		var n api.Notification
		if err := json.Unmarshal(data, &n); err != nil {
			continue
		}
		fn(n)
	}
}
