package health

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProbe_FailureThreshold(t *testing.T) {
	failing := newProbe("db", time.Second, func(context.Context) error {
		return errors.New("down")
	})

	// Probes start healthy and require consecutive failures to flip.
	require.True(t, failing.healthy.Load())
	failing.run(context.Background())
	failing.run(context.Background())
	assert.True(t, failing.healthy.Load())
	failing.run(context.Background())
	assert.False(t, failing.healthy.Load())
}

func TestProbe_OneSuccessRecovers(t *testing.T) {
	var err error = errors.New("down")
	p := newProbe("flappy", time.Second, func(context.Context) error {
		return err
	})

	for i := 0; i < failAfter; i++ {
		p.run(context.Background())
	}
	require.False(t, p.healthy.Load())

	err = nil
	p.run(context.Background())
	assert.True(t, p.healthy.Load())
}

func TestReadyEndpoint(t *testing.T) {
	h := New()

	// Not ready until the manual gate opens.
	rec := httptest.NewRecorder()
	h.ReadyEndpoint(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "unhealthy")

	h.SetReady(true)
	rec = httptest.NewRecorder()
	h.ReadyEndpoint(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	// Draining flips it back.
	h.SetReady(false)
	rec = httptest.NewRecorder()
	h.ReadyEndpoint(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestLiveEndpoint_ReportsFailingProbe(t *testing.T) {
	h := New()
	h.AddLivenessCheck("always-down", time.Second, func(context.Context) error {
		return errors.New("broken pipe")
	})

	// Drive the probe past the threshold without starting tickers.
	p := h.liveness[0]
	for i := 0; i < failAfter; i++ {
		p.run(context.Background())
	}

	rec := httptest.NewRecorder()
	h.LiveEndpoint(rec, httptest.NewRequest(http.MethodGet, "/livez", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "always-down")
	assert.Contains(t, rec.Body.String(), "broken pipe")
}

func TestIsReady_ConsidersProbes(t *testing.T) {
	h := New()
	h.SetReady(true)
	h.AddReadinessCheck("dep", time.Second, func(context.Context) error {
		return errors.New("down")
	})
	require.True(t, h.IsReady(), "probe starts healthy")

	p := h.readiness[0]
	for i := 0; i < failAfter; i++ {
		p.run(context.Background())
	}
	assert.False(t, h.IsReady())
}

func TestStartStop(t *testing.T) {
	h := New()
	ran := make(chan struct{}, 1)
	h.AddLivenessCheck("tick", time.Second, func(context.Context) error {
		select {
		case ran <- struct{}{}:
		default:
		}
		return nil
	})

	h.Start(context.Background(), time.Hour)
	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("probe never ran")
	}
	h.Stop()
	h.Stop() // safe twice
}

func TestGoroutineCountCheck(t *testing.T) {
	require.NoError(t, GoroutineCountCheck(1_000_000)(context.Background()))
	require.Error(t, GoroutineCountCheck(0)(context.Background()))
}
