package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func loggerTestRouter(buf *bytes.Buffer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	testLogger := slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	router := gin.New()
	router.Use(CorrelationID())
	router.Use(Logger(testLogger))
	router.GET("/ok", func(c *gin.Context) { c.String(http.StatusOK, "OK") })
	router.GET("/bad", func(c *gin.Context) { c.String(http.StatusBadRequest, "bad") })
	router.GET("/boom", func(c *gin.Context) { c.String(http.StatusInternalServerError, "boom") })
	router.GET("/health", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	return router
}

func TestLoggerMiddleware(t *testing.T) {
	t.Run("LogsSuccessAtInfo", func(t *testing.T) {
		var buf bytes.Buffer
		router := loggerTestRouter(&buf)

		req, _ := http.NewRequest(http.MethodGet, "/ok?merchant_id=merchant_123", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		logOutput := buf.String()
		assert.Contains(t, logOutput, `"level":"INFO"`)
		assert.Contains(t, logOutput, `"msg":"Request completed"`)
		assert.Contains(t, logOutput, `"path":"/ok"`)
		assert.Contains(t, logOutput, `"query":"merchant_id=merchant_123"`)
		assert.Contains(t, logOutput, `"status":200`)
	})

	t.Run("EscalatesClientErrorsToWarn", func(t *testing.T) {
		var buf bytes.Buffer
		router := loggerTestRouter(&buf)

		req, _ := http.NewRequest(http.MethodGet, "/bad", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		logOutput := buf.String()
		assert.Contains(t, logOutput, `"level":"WARN"`)
		assert.Contains(t, logOutput, `"msg":"Request rejected"`)
	})

	t.Run("EscalatesServerErrorsToError", func(t *testing.T) {
		var buf bytes.Buffer
		router := loggerTestRouter(&buf)

		req, _ := http.NewRequest(http.MethodGet, "/boom", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		logOutput := buf.String()
		assert.Contains(t, logOutput, `"level":"ERROR"`)
		assert.Contains(t, logOutput, `"msg":"Request failed"`)
	})

	t.Run("AttachesCorrelationID", func(t *testing.T) {
		var buf bytes.Buffer
		router := loggerTestRouter(&buf)

		testCorrelationID := uuid.New().String()
		req, _ := http.NewRequest(http.MethodGet, "/ok", nil)
		req.Header.Set(CorrelationIDHeader, testCorrelationID)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Contains(t, buf.String(), `"correlation_id":"`+testCorrelationID+`"`)
	})

	t.Run("SkipsHealthProbes", func(t *testing.T) {
		var buf bytes.Buffer
		router := loggerTestRouter(&buf)

		req, _ := http.NewRequest(http.MethodGet, "/health", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Empty(t, buf.String())
	})
}
