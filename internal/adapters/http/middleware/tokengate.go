package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quotes-service/internal/adapters/http/dto"
	"github.com/jsamuelsen/quotes-service/internal/app"
	"github.com/jsamuelsen/quotes-service/internal/domain"
	"github.com/jsamuelsen/quotes-service/internal/platform/config"
)

const (
	// contextKeyTokenAdmitted is set on the gin context once the gate admits a request.
	contextKeyTokenAdmitted = "token_admitted"

	defaultAuthHeader = "Authorization"
	defaultAuthScheme = "Bearer"
)

// TokenAuthenticator decides whether a bearer token may call the quote routes.
type TokenAuthenticator interface {
	// Authenticate returns nil for an active token, an unauthorized error for
	// an empty value, a not-found error for an unknown or revoked token and
	// an internal error when the lookup fails.
	Authenticate(ctx context.Context, value string) error
}

// RequireToken returns middleware that admits only requests carrying an
// active bearer token. Header and scheme come from AuthConfig.
//
// Responses:
//   - 401 when the header is missing or not "<scheme> <token>"
//   - 404 when the token is unknown or revoked, so the client can issue one
//   - 500 when the lookup fails
func RequireToken(auth TokenAuthenticator, cfg *config.AuthConfig) gin.HandlerFunc {
	header, scheme := defaultAuthHeader, defaultAuthScheme
	if cfg != nil {
		if cfg.Header != "" {
			header = cfg.Header
		}

		if cfg.Scheme != "" {
			scheme = cfg.Scheme
		}
	}

	return func(c *gin.Context) {
		token := ExtractBearerToken(c.GetHeader(header), scheme)

		err := auth.Authenticate(c.Request.Context(), token)

		switch {
		case err == nil:
			c.Set(contextKeyTokenAdmitted, true)
			c.Next()
		case domain.IsUnauthorized(err):
			dto.Abort(c, http.StatusUnauthorized, app.MsgTokenMissing)
		case domain.IsNotFound(err):
			dto.Abort(c, http.StatusNotFound, app.MsgTokenUnknown)
		case domain.IsInternal(err):
			dto.AbortWithError(c, err)
		default:
			dto.AbortWithError(c, domain.NewInternalError(app.MsgTokenCheckFailed, err))
		}
	}
}

// ExtractBearerToken returns the token of a "<scheme> <token>" header value.
// The scheme is matched case-insensitively. Any other shape yields "".
func ExtractBearerToken(value, scheme string) string {
	fields := strings.Fields(value)
	if len(fields) != 2 || !strings.EqualFold(fields[0], scheme) {
		return ""
	}

	return fields[1]
}

// tokenAdmitted reports whether the gate admitted the request.
func tokenAdmitted(c *gin.Context) bool {
	return c.GetBool(contextKeyTokenAdmitted)
}
