package telemetry_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"codeberg.org/nmarks/creditctl/internal/errors"
	"codeberg.org/nmarks/creditctl/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) telemetry.Config {
	t.Helper()
	return telemetry.Config{
		Enabled: true,
		DBPath:  filepath.Join(t.TempDir(), "telemetry.db"),
	}
}

func TestRepositoryStoreAndLast(t *testing.T) {
	repo, err := telemetry.NewRepository(testConfig(t))
	require.NoError(t, err)
	defer repo.Close()

	ctx := context.Background()
	ts := time.Unix(1_700_000_000, 0)

	snapshot := &telemetry.TickSnapshot{
		Timestamp:        ts,
		Scenario:         "thermal",
		Setpoint:         21.0,
		ProcessVariable:  18.5,
		FilteredVariable: 18.7,
		Error:            2.3,
		PTerm:            1.15,
		ITerm:            0.4,
		DTerm:            -0.05,
		Output:           1.0,
		Saturated:        true,
	}
	require.NoError(t, repo.Store(ctx, snapshot))

	got, err := repo.Last(ctx)
	require.NoError(t, err)
	assert.Equal(t, snapshot.Timestamp.Unix(), got.Timestamp.Unix())
	assert.Equal(t, "thermal", got.Scenario)
	assert.InDelta(t, 2.3, got.Error, 1e-9)
	assert.InDelta(t, 1.0, got.Output, 1e-9)
	assert.True(t, got.Saturated)
}

func TestRepositoryUpsertsOnTimestamp(t *testing.T) {
	repo, err := telemetry.NewRepository(testConfig(t))
	require.NoError(t, err)
	defer repo.Close()

	ctx := context.Background()
	ts := time.Unix(1_700_000_000, 0)

	first := &telemetry.TickSnapshot{Timestamp: ts, Scenario: "credit", Output: 0.2}
	require.NoError(t, repo.Store(ctx, first))

	second := &telemetry.TickSnapshot{Timestamp: ts, Scenario: "credit", Output: 0.7}
	require.NoError(t, repo.Store(ctx, second))

	got, err := repo.Last(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 0.7, got.Output, 1e-9)
}

func TestRepositoryLastEmpty(t *testing.T) {
	repo, err := telemetry.NewRepository(testConfig(t))
	require.NoError(t, err)
	defer repo.Close()

	_, err = repo.Last(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, telemetry.ErrNoSnapshots))
}

func TestServiceDisabledIsNoop(t *testing.T) {
	svc, err := telemetry.NewService(telemetry.Config{Enabled: false})
	require.NoError(t, err)

	require.NoError(t, svc.Record(context.Background(), &telemetry.TickSnapshot{}))
	require.NoError(t, svc.Close())
}

func TestServiceRejectsNilSnapshot(t *testing.T) {
	cfg := testConfig(t)
	svc, err := telemetry.NewService(cfg)
	require.NoError(t, err)
	defer svc.Close()

	err = svc.Record(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, telemetry.ErrInvalidSnapshot))
}
