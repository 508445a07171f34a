package metrics_test

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rpggio/storyverse/internal/metrics"
	"github.com/stretchr/testify/require"
)

func TestGateway_Observe(t *testing.T) {
	reg := prometheus.NewRegistry()
	g := metrics.NewGateway(reg)

	g.Observe("universe.create", time.Millisecond, nil)
	g.Observe("universe.create", time.Millisecond, errors.New("x"))
	g.Retry("universe.create")

	count, err := testutil.GatherAndCount(reg, "storyverse_gateway_calls_total")
	require.NoError(t, err)
	require.Equal(t, 2, count)

	count, err = testutil.GatherAndCount(reg, "storyverse_gateway_retries_total")
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestGateway_NilIsNoop(t *testing.T) {
	var g *metrics.Gateway
	require.NotPanics(t, func() {
		g.Observe("op", time.Second, nil)
		g.Retry("op")
	})
}
