package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taxi-booking-service/internal/auth"
	"taxi-booking-service/internal/http/middleware"
	"taxi-booking-service/internal/metrics"
	"taxi-booking-service/internal/model"
	"taxi-booking-service/internal/service"
)

type testServer struct {
	router *gin.Engine
	parser *auth.Parser
}

func newTestServer(t *testing.T, healthErr error) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	parser := auth.NewParser("test-secret", time.Hour)
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics("test", reg)

	handler := NewHandler(Services{
		Fares: service.NewFareCalculator(service.DefaultBaseFare, service.DefaultPerKm),
	}, zerolog.Nop())
	router := NewRouter(handler, middleware.Auth(parser), RouterOptions{
		Environment:    "test",
		Instrument:     m.Middleware(),
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		HealthCheck: func(context.Context) error {
			return healthErr
		},
	})
	return &testServer{router: router, parser: parser}
}

func (s *testServer) token(t *testing.T, role model.UserRole) string {
	t.Helper()
	profileID := uuid.New()
	token, _, err := s.parser.Issue(model.Principal{AccountID: uuid.New(), Role: role, ProfileID: &profileID})
	require.NoError(t, err)
	return token
}

func (s *testServer) do(method, path, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	rec := newTestServer(t, nil).do(http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = newTestServer(t, errors.New("db down")).do(http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestEstimateFare(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := srv.do(http.MethodGet, "/api/v1/fares/estimate?distance_km=10", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success bool               `json:"success"`
		Data    model.FareEstimate `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, 200.0, body.Data.Fare)
	assert.Equal(t, 50.0, body.Data.BaseFare)

	assert.Equal(t, http.StatusBadRequest, srv.do(http.MethodGet, "/api/v1/fares/estimate", "", "").Code)
	assert.Equal(t, http.StatusBadRequest, srv.do(http.MethodGet, "/api/v1/fares/estimate?distance_km=-2", "", "").Code)
}

func TestMetricsEndpointExposesRequests(t *testing.T) {
	srv := newTestServer(t, nil)
	srv.do(http.MethodGet, "/api/v1/fares/estimate?distance_km=1", "", "")

	rec := srv.do(http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "test_http_request_duration_seconds")
}

func TestRouteGuards(t *testing.T) {
	srv := newTestServer(t, nil)
	passenger := srv.token(t, model.UserRolePassenger)
	driver := srv.token(t, model.UserRoleDriver)
	admin := srv.token(t, model.UserRoleAdmin)
	someID := uuid.NewString()

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   string
		status int
	}{
		{"bookings need a token", http.MethodGet, "/api/v1/bookings", "", "", http.StatusUnauthorized},
		{"accounts are admin only", http.MethodGet, "/api/v1/accounts", passenger, "", http.StatusForbidden},
		{"booking delete is admin only", http.MethodDelete, "/api/v1/bookings/" + someID, driver, "", http.StatusForbidden},
		{"driver assignment is admin only", http.MethodPut, "/api/v1/bookings/" + someID + "/driver", passenger, `{"driver_id":"` + someID + `"}`, http.StatusForbidden},
		{"stats are admin only", http.MethodGet, "/api/v1/stats/dashboard", driver, "", http.StatusForbidden},
		{"malformed booking id", http.MethodGet, "/api/v1/bookings/not-a-uuid", admin, "", http.StatusBadRequest},
		{"malformed driver id", http.MethodGet, "/api/v1/drivers/123", admin, "", http.StatusBadRequest},
		{"passenger cannot edit another passenger", http.MethodPut, "/api/v1/passengers/" + someID, passenger, `{"name":"x"}`, http.StatusForbidden},
		{"driver cannot set another driver's availability", http.MethodPut, "/api/v1/drivers/" + someID + "/availability", driver, `{"availability":"Busy"}`, http.StatusForbidden},
		{"booking without pickup", http.MethodPost, "/api/v1/bookings", passenger, `{"destination":"Airport"}`, http.StatusBadRequest},
		{"admin booking with bad passenger", http.MethodPost, "/api/v1/bookings", admin, `{"passenger_id":"nope","pickup_location":"A","destination":"B"}`, http.StatusBadRequest},
		{"unknown booking status", http.MethodPut, "/api/v1/bookings/" + someID + "/status", admin, `{"status":"Teleported"}`, http.StatusBadRequest},
		{"unknown payment method", http.MethodPost, "/api/v1/payments", admin, `{"booking_id":"` + someID + `","payment_method":"Barter"}`, http.StatusBadRequest},
		{"unknown vehicle type filter", http.MethodGet, "/api/v1/vehicles?type=Rickshaw", admin, "", http.StatusBadRequest},
		{"unknown role filter", http.MethodGet, "/api/v1/accounts?role=ROOT", admin, "", http.StatusBadRequest},
		{"login needs credentials", http.MethodPost, "/api/v1/auth/login", "", `{"username":"asha"}`, http.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := srv.do(tc.method, tc.path, tc.token, tc.body)
			assert.Equal(t, tc.status, rec.Code, rec.Body.String())
		})
	}
}

func TestHandleErrorMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewHandler(Services{}, zerolog.Nop())

	tests := []struct {
		err    error
		status int
	}{
		{service.ErrPermissionDenied, http.StatusForbidden},
		{service.ErrInvalidCredentials, http.StatusUnauthorized},
		{fmt.Errorf("%w: bad phone", service.ErrInvalidInput), http.StatusBadRequest},
		{fmt.Errorf("%w: Completed -> Pending", service.ErrInvalidStatus), http.StatusBadRequest},
		{fmt.Errorf("booking %w", service.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: email taken", service.ErrConflict), http.StatusConflict},
		{errors.New("connection refused"), http.StatusServiceUnavailable},
	}
	for _, tc := range tests {
		t.Run(tc.err.Error(), func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			h.handleError(c, tc.err)
			assert.Equal(t, tc.status, rec.Code)

			var body service.Result
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.False(t, body.OK)
			assert.NotEmpty(t, body.Message)
		})
	}
}

func TestSplitCSV(t *testing.T) {
	assert.Equal(t, []string{"Pending", "In Progress"}, splitCSV(" Pending, ,In Progress,"))
	assert.Empty(t, splitCSV(""))
}
