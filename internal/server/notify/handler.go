package notify

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	ws "github.com/coder/websocket"
	"github.com/mori-tea/mori/internal/common"
	"github.com/mori-tea/mori/internal/logging"
	"github.com/mori-tea/mori/internal/server/auth"
)

// TokenVerifier checks access tokens. *auth.Issuer satisfies it.
type TokenVerifier interface {
	VerifyAccess(token string) (*auth.Claims, error)
}

// Handler serves the notification feed. The access token comes from the
// "token" query parameter or a bearer Authorization header; admins pick the
// centra with "centra_id". The connection is closed when the token expires.
func Handler(hub *Hub, verifier TokenVerifier, l logging.Logger) http.HandlerFunc {
	if l == nil {
		l = logging.Nop{}
	}
	log := l.With("module", "notify")

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		claims, err := verifier.VerifyAccess(accessToken(r))
		if err != nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		id, err := claims.Identity()
		if err != nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var requested int64
		if raw := r.URL.Query().Get("centra_id"); raw != "" {
			requested, err = strconv.ParseInt(raw, 10, 64)
			if err != nil {
				http.Error(w, "invalid centra_id", http.StatusBadRequest)
				return
			}
		}
		centraID, err := id.ResolveCentra(requested)
		switch {
		case errors.Is(err, common.ErrorValidation):
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		case err != nil:
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		conn, err := ws.Accept(w, r, nil)
		if err != nil {
			log.Warn(ctx, "websocket accept failed", "error", err)
			return
		}

		// The session lasts as long as the access token it was opened with.
		if claims.ExpiresAt != nil {
			var cancel context.CancelFunc
			ctx, cancel = context.WithDeadline(ctx, claims.ExpiresAt.Time)
			defer cancel()
		}

		log.Info(ctx, "subscriber connected", "user_id", id.UserID, "centra_id", centraID)
		NewClient(hub, conn, centraID).Run(ctx)
		log.Info(ctx, "subscriber disconnected", "user_id", id.UserID, "centra_id", centraID)
	}
}

func accessToken(r *http.Request) string {
	if t := r.URL.Query().Get("token"); t != "" {
		return t
	}
	h := r.Header.Get("Authorization")
	if rest, ok := strings.CutPrefix(h, "Bearer "); ok {
		return strings.TrimSpace(rest)
	}
	return ""
}

// NewMux routes the feed and a liveness probe.
func NewMux(hub *Hub, verifier TokenVerifier, l logging.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("GET /ws/notifications", Handler(hub, verifier, l))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}
