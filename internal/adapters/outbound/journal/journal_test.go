package journal_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sufield/yieldvault/internal/adapters/outbound/journal"
	"github.com/sufield/yieldvault/internal/domain"
)

func sampleEvents() []domain.Event {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return []domain.Event{
		{ID: "a", Seq: 1, Kind: domain.EventStrategyUpdated, At: at, Strategy: "strategy-a"},
		{ID: "b", Seq: 2, Kind: domain.EventDeposited, At: at, Account: "alice", Assets: 1000, Shares: 1000},
		{ID: "c", Seq: 3, Kind: domain.EventHarvested, At: at, Profit: 100, Fee: 10},
		{ID: "d", Seq: 4, Kind: domain.EventWithdrawn, At: at, Account: "alice", Assets: 545, Shares: 500},
	}
}

func collect(t *testing.T, j *journal.Journal) []domain.Event {
	t.Helper()
	var got []domain.Event
	require.NoError(t, j.Replay(context.Background(), func(e domain.Event) error {
		got = append(got, e)
		return nil
	}))
	return got
}

func TestJournal_ReplayInOrder(t *testing.T) {
	ctx := context.Background()
	j, err := journal.OpenInMemory()
	require.NoError(t, err)
	defer j.Close()

	want := sampleEvents()
	for _, e := range want {
		require.NoError(t, j.Publish(ctx, e))
	}

	if diff := cmp.Diff(want, collect(t, j)); diff != "" {
		t.Errorf("Replay mismatch (-want +got):\n%s", diff)
	}
}

func TestJournal_Recent(t *testing.T) {
	ctx := context.Background()
	j, err := journal.OpenInMemory()
	require.NoError(t, err)
	defer j.Close()

	all := sampleEvents()
	for _, e := range all {
		require.NoError(t, j.Publish(ctx, e))
	}

	got, err := j.Recent(ctx, 2)
	require.NoError(t, err)
	if diff := cmp.Diff(all[2:], got); diff != "" {
		t.Errorf("Recent mismatch (-want +got):\n%s", diff)
	}

	none, err := j.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestJournal_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	j, err := journal.Open(journal.Config{Path: dir, SyncWrites: true})
	require.NoError(t, err)
	first := sampleEvents()[:2]
	for _, e := range first {
		require.NoError(t, j.Publish(ctx, e))
	}
	require.NoError(t, j.Close())

	j2, err := journal.Open(journal.Config{Path: dir})
	require.NoError(t, err)
	defer j2.Close()

	// A restarted vault numbers its events from 1 again; the journal keeps both runs.
	restarted := domain.Event{ID: "e", Seq: 1, Kind: domain.EventDeposited, Account: "bob", Assets: 5, Shares: 5}
	require.NoError(t, j2.Publish(ctx, restarted))

	got := collect(t, j2)
	require.Len(t, got, 3)
	assert.Equal(t, "e", got[2].ID)
}

func TestJournal_ReplayStopsOnError(t *testing.T) {
	ctx := context.Background()
	j, err := journal.OpenInMemory()
	require.NoError(t, err)
	defer j.Close()
	for _, e := range sampleEvents() {
		require.NoError(t, j.Publish(ctx, e))
	}

	stop := errors.New("stop")
	calls := 0
	err = j.Replay(ctx, func(domain.Event) error {
		calls++
		if calls == 2 {
			return stop
		}
		return nil
	})

	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 2, calls)
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := journal.Open(journal.Config{})
	assert.Error(t, err)
}

func TestJournal_PublishHonorsCancellation(t *testing.T) {
	j, err := journal.OpenInMemory()
	require.NoError(t, err)
	defer j.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, j.Publish(ctx, sampleEvents()[0]), context.Canceled)
}
