// Copyright (c) 2026 NovaGate Studio. All rights reserved.
// Author: khanh.ngo@novagate.studio

package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/novagate/account-portal/internal/platform/middleware"
)

// corsConfig is a fixed AppConfig for exercising the CORS policy.
type corsConfig struct {
	local  bool
	domain string
	extra  []string
}

func (c corsConfig) IsLocal() bool               { return c.local }
func (c corsConfig) SessionCookieDomain() string { return c.domain }
func (c corsConfig) CORSExtraOrigins() []string  { return c.extra }

func corsRequest(t *testing.T, cfg corsConfig, method, origin string) *httptest.ResponseRecorder {
	t.Helper()

	handler := middleware.CORS(cfg)(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusOK)
	}))

	request := httptest.NewRequest(method, "/api/v1/auth/login", nil)
	if origin != "" {
		request.Header.Set("Origin", origin)
	}

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	return recorder
}

/*
TestCORS_AllowList verifies the origin policy: apex-domain suffixes and the
configured extra origins are allowed in production, everything else gets no
CORS headers, and local deployments are open.
*/
func TestCORS_AllowList(t *testing.T) {
	production := corsConfig{
		domain: ".novagate.studio",
		extra:  []string{"https://staging.novagate.dev"},
	}

	testCases := []struct {
		name    string
		cfg     corsConfig
		origin  string
		allowed bool
	}{
		{name: "apex subdomain", cfg: production, origin: "https://pay.novagate.studio", allowed: true},
		{name: "extra origin", cfg: production, origin: "https://staging.novagate.dev", allowed: true},
		{name: "unknown origin", cfg: production, origin: "https://evil.example.com", allowed: false},
		{name: "extra origin is exact", cfg: production, origin: "https://sub.staging.novagate.dev", allowed: false},
		{name: "local allows anything", cfg: corsConfig{local: true, domain: "localhost"}, origin: "http://localhost:3000", allowed: true},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			recorder := corsRequest(t, testCase.cfg, http.MethodGet, testCase.origin)

			allowOrigin := recorder.Header().Get("Access-Control-Allow-Origin")
			if testCase.allowed {
				assert.Equal(t, testCase.origin, allowOrigin)
				assert.Equal(t, "true", recorder.Header().Get("Access-Control-Allow-Credentials"))
			} else {
				assert.Empty(t, allowOrigin)
			}
		})
	}
}

/*
TestCORS_Preflight verifies that OPTIONS requests are answered directly with
204 and never reach the downstream handler chain.
*/
func TestCORS_Preflight(t *testing.T) {
	cfg := corsConfig{domain: ".novagate.studio"}

	recorder := corsRequest(t, cfg, http.MethodOptions, "https://account.novagate.studio")
	assert.Equal(t, http.StatusNoContent, recorder.Code)
	assert.Equal(t, "https://account.novagate.studio", recorder.Header().Get("Access-Control-Allow-Origin"))
}

/*
TestCORS_NoOriginPassesThrough verifies that same-origin requests (no Origin
header) bypass the policy entirely.
*/
func TestCORS_NoOriginPassesThrough(t *testing.T) {
	cfg := corsConfig{domain: ".novagate.studio"}

	recorder := corsRequest(t, cfg, http.MethodGet, "")
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Empty(t, recorder.Header().Get("Access-Control-Allow-Origin"))
}
