package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewPrometheusMetrics(reg)
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordOperationAttempt(ctx, "YearLeaderboard", "ScoringService")
	m.RecordOperationSuccess(ctx, "YearLeaderboard", "ScoringService")
	m.RecordOperationSuccess(ctx, "YearLeaderboard", "ScoringService")
	m.RecordOperationDuration(ctx, "YearLeaderboard", "ScoringService", 20*time.Millisecond)
	m.RecordCacheHit(ctx, "year_leaderboard")
	m.RecordCacheMiss(ctx, "year_leaderboard")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.operations.WithLabelValues("ScoringService", "YearLeaderboard", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cache.WithLabelValues("year_leaderboard", "hit")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.durations))

	_, err = NewPrometheusMetrics(reg)
	assert.Error(t, err, "duplicate registration must fail")
}

func TestNewLogger_JSONCarriesRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "production", "debug")

	ctx := WithRequestID(context.Background(), "req-1")
	logger.DebugContext(ctx, "hello", RequestIDAttr(ctx))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "hello", line["msg"])
	assert.Equal(t, "req-1", line["request_id"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("whatever"))
	assert.Equal(t, "", RequestID(context.Background()))
}
