package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)

	t.Cleanup(func() {
		_ = tp.Shutdown(t.Context())
		otel.SetTracerProvider(prev)
	})
	return sr
}

func findSpan(t *testing.T, sr *tracetest.SpanRecorder, name string) sdktrace.ReadOnlySpan {
	t.Helper()
	for _, s := range sr.Ended() {
		if s.Name() == name {
			return s
		}
	}
	require.Failf(t, "span not found", "no span named %q", name)
	return nil
}

func hasAttr(span sdktrace.ReadOnlySpan, kv attribute.KeyValue) bool {
	for _, a := range span.Attributes() {
		if a == kv {
			return true
		}
	}
	return false
}

func TestTracing_Disabled(t *testing.T) {
	sr := setupTestTracer(t)

	router := gin.New()
	router.Use(Tracing(TracingConfig{Enabled: false, ServiceName: "test"}))
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, sr.Ended())
}

func TestTracing_SpanCarriesRouteAndRequestAttributes(t *testing.T) {
	sr := setupTestTracer(t)

	router := gin.New()
	router.Use(RequestID(), Tracing(TracingConfig{Enabled: true, ServiceName: "test"}), TracingAttributeInjector())
	router.GET("/tenants/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/tenants/42", nil)
	req.Header.Set(RequestIDHeader, "req-77")
	router.ServeHTTP(httptest.NewRecorder(), req)

	span := findSpan(t, sr, "GET /tenants/:id")
	assert.True(t, hasAttr(span, attribute.String("request_id", "req-77")))
}

func TestSpanErrorMarker(t *testing.T) {
	tests := []struct {
		name   string
		status int
		code   codes.Code
		desc   string
	}{
		{"not found", http.StatusNotFound, codes.Error, "Not Found"},
		{"bad gateway", http.StatusBadGateway, codes.Error, ""},
		{"payment required", http.StatusPaymentRequired, codes.Error, "Payment Required"},
		{"ok", http.StatusOK, codes.Unset, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sr := setupTestTracer(t)

			router := gin.New()
			router.Use(Tracing(TracingConfig{Enabled: true, ServiceName: "test"}), SpanErrorMarker())
			router.GET("/test", func(c *gin.Context) { c.Status(tt.status) })
			router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/test", nil))

			span := findSpan(t, sr, "GET /test")
			assert.Equal(t, tt.code, span.Status().Code)
			if tt.desc != "" {
				assert.Equal(t, tt.desc, span.Status().Description)
			}
		})
	}
}

func TestSpanErrorMarker_WithoutSpan(t *testing.T) {
	router := gin.New()
	router.Use(SpanErrorMarker())
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
