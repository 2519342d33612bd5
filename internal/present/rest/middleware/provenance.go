package middleware

import (
	"context"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/bergason/inventory/internal/domain"
)

var tracer = otel.Tracer("provenance")

// CaptureSource records the server-observed client address in the request
// context. The ledger takes provenance from here, never from the payload.
func CaptureSource(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, span := tracer.Start(c.Request().Context(), "Provenance.Middleware.CaptureSource")
		defer span.End()

		addr := c.RealIP()
		ctx = context.WithValue(ctx, domain.SourceAddrCtxKey, addr)
		span.SetAttributes(attribute.String("SourceAddr", addr))

		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}
