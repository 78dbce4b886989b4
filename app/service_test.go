package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/gridstatus/config"
	"github.com/kilianp07/gridstatus/core/model"
	"github.com/kilianp07/gridstatus/core/poller"
)

func testConfig(jobs ...poller.Job) *config.Config {
	cfg := &config.Config{Poller: poller.Config{Jobs: jobs}}
	cfg.SetDefaults()
	return cfg
}

func TestNewServiceWithoutJobs(t *testing.T) {
	svc, err := New(testConfig())
	require.NoError(t, err)
	assert.Empty(t, svc.Collect(context.Background()))
	require.NotEmpty(t, svc.ISOs)
	assert.Equal(t, "miso", svc.ISOs[0].ID())
	assert.NoError(t, svc.Close())
}

func TestNewServiceUnknownISO(t *testing.T) {
	_, err := New(testConfig(poller.Job{ISO: "ercot", Dataset: model.DatasetLoad}))
	assert.Error(t, err)
}

func TestRunStopsOnCancel(t *testing.T) {
	svc, err := New(testConfig())
	require.NoError(t, err)
	defer svc.Close()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx, false) }()
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("service did not stop")
	}
}

func TestNewEIARequiresKey(t *testing.T) {
	_, err := NewEIA(testConfig(), nil)
	assert.Error(t, err)

	cfg := testConfig()
	cfg.EIA.APIKey = "k"
	c, err := NewEIA(cfg, nil)
	require.NoError(t, err)
	assert.NotNil(t, c)
}
