package healthcheck

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type HealthCheckTestSuite struct {
	suite.Suite
	hc *HealthCheck
}

func (suite *HealthCheckTestSuite) SetupTest() {
	suite.hc = New("test", zap.NewNop())
	suite.hc.SetCacheTTL(0)
}

func (suite *HealthCheckTestSuite) checkerWith(status Status) CheckerFunc {
	return func(ctx context.Context) Check {
		return Check{Status: status, LastChecked: time.Now()}
	}
}

func (suite *HealthCheckTestSuite) TestCheck() {
	suite.Run("AllHealthy_ShouldAggregateHealthy", func() {
		// Arrange
		suite.hc.Register("db", suite.checkerWith(StatusHealthy))
		suite.hc.Register("cache", suite.checkerWith(StatusHealthy))

		// Act
		response := suite.hc.Check(context.Background())

		// Assert
		assert.Equal(suite.T(), StatusHealthy, response.Status)
		assert.Len(suite.T(), response.Checks, 2)
		assert.Equal(suite.T(), "test", response.Version)
	})

	suite.Run("OneUnhealthy_ShouldAggregateUnhealthy", func() {
		// Arrange
		suite.hc.Register("down", suite.checkerWith(StatusUnhealthy))

		// Act
		response := suite.hc.Check(context.Background())

		// Assert
		assert.Equal(suite.T(), StatusUnhealthy, response.Status)
	})

	suite.Run("DegradedOnly_ShouldAggregateDegraded", func() {
		// Arrange
		hc := New("test", zap.NewNop())
		hc.SetCacheTTL(0)
		hc.Register("slow", suite.checkerWith(StatusDegraded))

		// Act
		response := hc.Check(context.Background())

		// Assert
		assert.Equal(suite.T(), StatusDegraded, response.Status)
	})

	suite.Run("WithinCacheTTL_ShouldNotRerunCheckers", func() {
		// Arrange
		hc := New("test", zap.NewNop())
		calls := 0
		hc.Register("counted", CheckerFunc(func(ctx context.Context) Check {
			calls++
			return Check{Status: StatusHealthy}
		}))

		// Act
		hc.Check(context.Background())
		hc.Check(context.Background())

		// Assert
		assert.Equal(suite.T(), 1, calls)
	})
}

func (suite *HealthCheckTestSuite) TestHandler() {
	suite.Run("Unhealthy_ShouldReturn503", func() {
		// Arrange
		suite.hc.Register("down", suite.checkerWith(StatusUnhealthy))
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/health", nil)

		// Act
		suite.hc.Handler().ServeHTTP(recorder, request)

		// Assert
		assert.Equal(suite.T(), http.StatusServiceUnavailable, recorder.Code)
		assert.Contains(suite.T(), recorder.Body.String(), string(StatusUnhealthy))
	})

	suite.Run("Liveness_ShouldAlwaysReturn200", func() {
		// Arrange: a failing readiness check must not affect liveness.
		suite.hc.Register("down", suite.checkerWith(StatusUnhealthy))
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/live", nil)

		// Act
		suite.hc.LivenessHandler().ServeHTTP(recorder, request)

		// Assert
		assert.Equal(suite.T(), http.StatusOK, recorder.Code)
		assert.Contains(suite.T(), recorder.Body.String(), "alive")
	})

	suite.Run("Healthy_ShouldReturn200WithJSON", func() {
		// Arrange
		hc := New("1.2.3", zap.NewNop())
		hc.Register("db", suite.checkerWith(StatusHealthy))
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/health", nil)

		// Act
		hc.Handler().ServeHTTP(recorder, request)

		// Assert
		require.Equal(suite.T(), http.StatusOK, recorder.Code)
		assert.Equal(suite.T(), "application/json", recorder.Header().Get("Content-Type"))
		assert.Contains(suite.T(), recorder.Body.String(), "1.2.3")
	})
}

func TestHealthCheckTestSuite(t *testing.T) {
	suite.Run(t, new(HealthCheckTestSuite))
}
