package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/appauth/pkg/constants"
	"github.com/turtacn/appauth/pkg/logger"
)

func newTestRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(handlers...)
	return router
}

func TestRequestID(t *testing.T) {
	var fromContext interface{}
	router := newTestRouter(RequestID())
	router.GET("/test", func(c *gin.Context) {
		fromContext = c.Request.Context().Value(constants.ContextKeyRequestID)
		c.Status(http.StatusOK)
	})

	t.Run("generated", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

		id := w.Header().Get(constants.HeaderRequestID)
		_, err := uuid.Parse(id)
		require.NoError(t, err)
		assert.Equal(t, id, fromContext)
	})

	t.Run("propagated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(constants.HeaderRequestID, "req-42")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, "req-42", w.Header().Get(constants.HeaderRequestID))
		assert.Equal(t, "req-42", fromContext)
	})
}

func TestRecovery(t *testing.T) {
	router := newTestRouter(Recovery(logger.NewNoopLogger()), Logging(logger.NewNoopLogger()))
	router.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "server_error")
}

func TestAPIKey(t *testing.T) {
	current := "secret-1"
	router := newTestRouter(APIKey(func() string { return current }, logger.NewNoopLogger()))
	router.POST("/podInfo", func(c *gin.Context) { c.Status(http.StatusOK) })

	call := func(key string) int {
		req := httptest.NewRequest(http.MethodPost, "/podInfo", nil)
		if key != "" {
			req.Header.Set(constants.HeaderAPIKey, key)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusUnauthorized, call(""))
	assert.Equal(t, http.StatusUnauthorized, call("wrong"))
	assert.Equal(t, http.StatusOK, call("secret-1"))

	current = "secret-2"
	assert.Equal(t, http.StatusUnauthorized, call("secret-1"))
	assert.Equal(t, http.StatusOK, call("secret-2"))

	current = ""
	assert.Equal(t, http.StatusUnauthorized, call(""))
}
