package local

import (
	"context"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgo/travelog/api/internal/model"
	"github.com/forgo/travelog/api/internal/repository"
)

func openOnFs(t *testing.T, fs afero.Fs) *Store {
	t.Helper()
	s, err := Open(Config{
		DataDir:        "data",
		DebounceWindow: 10 * time.Millisecond,
		Fs:             fs,
		Logger:         discardLogger(),
	})
	require.NoError(t, err)
	return s
}

func TestEngine_SnapshotRoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	ctx := context.Background()

	s := openOnFs(t, fs)
	m := createTestMember(t, s, "a@x.com", "island-walker")
	p := createTestPlace(t, s, "Seongsan Ilchulbong", "Jeju")
	r := createTestReview(t, s, m.ID, &p.ID, "Seongsan", 5, []string{"sunrise"})
	require.NoError(t, s.Close())

	// A second session over the same filesystem sees the full prior state.
	s2 := openOnFs(t, fs)
	defer s2.Close()

	found, err := s2.Members().FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, m.ID, found.ID)

	rev, err := s2.Reviews().FindByID(ctx, r.ID)
	require.NoError(t, err)
	require.NotNil(t, rev)
	assert.Equal(t, []string{"sunrise"}, rev.Tags, "tag rows travel with the snapshot")
	require.NotNil(t, rev.Place)
	assert.Equal(t, "Seongsan Ilchulbong", rev.Place.Name)
}

func TestEngine_CorruptSnapshotStartsFresh(t *testing.T) {
	fs := afero.NewMemMapFs()
	af := afero.Afero{Fs: fs}
	require.NoError(t, af.MkdirAll("data", 0o755))
	// Valid base64 that decodes to garbage, so restore itself fails.
	require.NoError(t, af.WriteFile("data/travelog.snapshot", []byte("bm90IGEgZGF0YWJhc2U="), 0o600))

	s := openOnFs(t, fs)
	defer s.Close()

	res, err := s.Members().Search(context.Background(), model.MemberFilter{})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Total, "corrupt snapshot falls back to an empty engine")
}

func TestEngine_ClosedStoreFailsFast(t *testing.T) {
	s := openOnFs(t, afero.NewMemMapFs())
	require.NoError(t, s.Close())

	ctx := context.Background()
	assert.ErrorIs(t, s.Ping(ctx), repository.ErrNotInitialized)
	_, err := s.Members().FindByEmail(ctx, "a@x.com")
	assert.ErrorIs(t, err, repository.ErrNotInitialized)
	assert.ErrorIs(t, s.Checkpoint(), repository.ErrNotInitialized)

	// A second Close is a no-op.
	require.NoError(t, s.Close())
}

func TestEngine_CheckpointAndReset(t *testing.T) {
	fs := afero.NewMemMapFs()

	s := openOnFs(t, fs)
	createTestMember(t, s, "a@x.com", "island-walker")
	require.NoError(t, s.Checkpoint())

	exists, err := afero.Exists(fs, "data/travelog.snapshot")
	require.NoError(t, err)
	assert.True(t, exists)

	// Close before resetting, otherwise the final flush rewrites the slot.
	require.NoError(t, s.Close())
	require.NoError(t, s.ResetSnapshot())

	s2 := openOnFs(t, fs)
	defer s2.Close()
	res, err := s2.Members().Search(context.Background(), model.MemberFilter{})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Total, "reset discards the persisted state")
}

func TestEngine_DebouncedSnapshotLands(t *testing.T) {
	fs := afero.NewMemMapFs()

	s := openOnFs(t, fs)
	createTestMember(t, s, "a@x.com", "island-walker")

	// The mutation scheduled a save; wait well past the 10ms window so the
	// timer fires before a second session reads the slot.
	time.Sleep(200 * time.Millisecond)

	s2 := openOnFs(t, fs)
	found, err := s2.Members().FindByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.NotNil(t, found, "debounced save persisted without an explicit flush")
	require.NoError(t, s2.Close())

	require.NoError(t, s.Close())
}
