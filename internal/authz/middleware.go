package authz

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/staffdir/staffdir/internal/platform/httpx"
	"github.com/staffdir/staffdir/internal/token"
)

// Authenticator turns bearer tokens into request principals for HTTP
// handlers. Authorization itself happens later, inside each operation's
// transaction.
type Authenticator struct {
	Codec  *token.Codec
	Logger *slog.Logger
}

// Middleware rejects requests without a valid bearer token and stores the
// resolved account in the request context. An absent token and a tampered
// token produce the same 403.
func (a Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := bearerToken(r)
		if !ok {
			httpx.RespondError(w, httpx.ErrPermissionDenied)
			return
		}
		account, err := a.Codec.Resolve(raw)
		if err != nil {
			if a.Logger != nil {
				a.Logger.Warn("reject bearer token", slog.String("path", r.URL.Path))
			}
			httpx.RespondError(w, err)
			return
		}
		ctx := token.ContextWithAccount(r.Context(), account)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	raw, found := strings.CutPrefix(header, "Bearer ")
	if !found {
		return "", false
	}
	raw = strings.TrimSpace(raw)
	return raw, raw != ""
}
