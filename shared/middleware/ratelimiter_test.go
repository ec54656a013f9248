package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/itchan-dev/postmove/shared/domain"
	"github.com/itchan-dev/postmove/shared/middleware/ratelimiter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
}

func TestRateLimitByUser(t *testing.T) {
	handler := RateLimit(ratelimiter.New(0, 1, time.Hour), GetUserIDFromContext)(okHandler())

	request := func(user *domain.User) int {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		if user != nil {
			req = req.WithContext(context.WithValue(req.Context(), UserClaimsKey, user))
		}
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr.Code
	}

	alice := &domain.User{Id: 1}
	bob := &domain.User{Id: 2}
	assert.Equal(t, http.StatusOK, request(alice))
	assert.Equal(t, http.StatusTooManyRequests, request(alice))
	assert.Equal(t, http.StatusOK, request(bob))
	assert.Equal(t, http.StatusInternalServerError, request(nil), "missing user is a wiring error")
}

func TestRateLimitByIP(t *testing.T) {
	handler := RateLimit(ratelimiter.New(0, 2, time.Hour), GetIP)(okHandler())

	request := func(addr string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr.Code
	}

	assert.Equal(t, http.StatusOK, request("10.0.0.1:1000"))
	assert.Equal(t, http.StatusOK, request("10.0.0.1:1001"), "port is not part of the identity")
	assert.Equal(t, http.StatusTooManyRequests, request("10.0.0.1:1002"))
	assert.Equal(t, http.StatusOK, request("10.0.0.2:1000"))
}

func TestGetIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	req.Header.Set("X-Forwarded-For", "1.2.3.4")
	ip, err := GetIP(req)
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1", ip)

	req.RemoteAddr = "not-an-ip"
	_, err = GetIP(req)
	assert.Error(t, err)
}
