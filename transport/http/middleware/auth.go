package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"

	"clinicore/config"
	"clinicore/infras/otel"
	"clinicore/shared/constant"
	"clinicore/shared/failure"
	"clinicore/transport/http/response"
)

// Auth guards the API with a static key and resolves the tenant scope every
// domain operation runs under.
type Auth interface {
	APIKey(next http.Handler) http.Handler
	Tenant(next http.Handler) http.Handler
}

type authImpl struct {
	otel otel.Otel
	cfg  *config.Config
}

func NewAuthMiddleware(otel otel.Otel, cfg *config.Config) Auth {
	return &authImpl{
		otel: otel,
		cfg:  cfg,
	}
}

// APIKey rejects requests that do not carry the configured key. An empty
// configured key disables the check, which is the development default.
func (m *authImpl) APIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if m.cfg.App.APIKey == constant.Empty {
			next.ServeHTTP(writer, request)

			return
		}

		provided := request.Header.Get(constant.RequestHeaderAPIKey)
		if subtle.ConstantTimeCompare([]byte(provided), []byte(m.cfg.App.APIKey)) != 1 {
			err := failure.Unauthorized("invalid or missing API key")
			response.WithError(writer, err)

			return
		}

		next.ServeHTTP(writer, request)
	})
}

// Tenant requires the X-Tenant-ID header and stores it on the request
// context. Every handler resolves its tenant from here, never from the body.
func (m *authImpl) Tenant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		tenantID := request.Header.Get(constant.RequestHeaderTenantID)
		if tenantID == constant.Empty {
			err := failure.Unauthorized("missing tenant header")
			response.WithError(writer, err)

			return
		}

		ctx := context.WithValue(request.Context(), constant.ContextKeyTenantID, tenantID)
		next.ServeHTTP(writer, request.WithContext(ctx))
	})
}
