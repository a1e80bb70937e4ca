package middleware

import (
	"net/http"

	"github.com/aws/aws-xray-sdk-go/xray"
	"github.com/labstack/echo/v4"
)

// Tracing opens an X-Ray segment named after the service for every
// request.  Database calls made with the request context become its
// subsegments.
func Tracing(service string) echo.MiddlewareFunc {
	return echo.WrapMiddleware(func(next http.Handler) http.Handler {
		return xray.Handler(xray.NewFixedSegmentNamer(service), next)
	})
}
