package sink

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/LdDl/motion-features/motion"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSV(t *testing.T) {
	var buf bytes.Buffer
	s := NewCSV(&buf, 3)
	require.NoError(t, s.Write(5, []float64{1, 2.5, -3}))
	require.NoError(t, s.Write(9, []float64{0, 0, 90}))
	require.NoError(t, s.Flush())
	assert.Equal(t, "frame;f0;f1;f2\n5;1;2.5;-3\n9;0;0;90\n", buf.String())

	err := s.Write(10, []float64{1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "width 1")
}

type recorder struct {
	frames []int
	err    error
}

func (r *recorder) Write(frame int, row []float64) error {
	r.frames = append(r.frames, frame)
	return r.err
}

func TestMulti(t *testing.T) {
	first := &recorder{}
	second := &recorder{}
	require.NoError(t, Multi{first, second}.Write(3, []float64{1}))
	assert.Equal(t, []int{3}, first.frames)
	assert.Equal(t, []int{3}, second.frames)

	failing := &recorder{err: errors.New("boom")}
	third := &recorder{}
	require.Error(t, Multi{failing, third}.Write(4, []float64{1}))
	assert.Empty(t, third.frames)
}

func openStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "features.db")
	store, err := Open(path, nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, path
}

func TestStoreFeatures(t *testing.T) {
	store, path := openStore(t)
	require.NoError(t, store.Write(17, []float64{10, 0, 0, 0, 0, 30, 90}))
	require.NoError(t, store.Write(23, []float64{1, 2, 3, 4, 5, 6, 7}))

	vectors, err := store.Features()
	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.Equal(t, StoredVector{Frame: 17, Values: []float64{10, 0, 0, 0, 0, 30, 90}}, vectors[0])
	assert.Equal(t, 23, vectors[1].Frame)
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6, 7}, vectors[1].Values)

	// Reopening runs no migrations and keeps data
	require.NoError(t, store.Close())
	reopened, err := Open(path, nil)
	require.NoError(t, err)
	defer reopened.Close()
	vectors, err = reopened.Features()
	require.NoError(t, err)
	assert.Len(t, vectors, 2)
}

func TestStoreTrajectories(t *testing.T) {
	store, _ := openStore(t)
	cfg := motion.DefaultConfig()

	traj := motion.NewTrajectory(motion.NewPoint(0, 0), 3, cfg)
	for i, x := range []float64{10, 20, 30} {
		require.True(t, traj.Push(motion.NewPoint(x, 0), 4+i))
	}
	require.NoError(t, store.SaveTrajectory(traj, true))
	single := motion.NewTrajectory(motion.NewPoint(50, 50), 1, cfg)
	require.NoError(t, store.SaveTrajectory(single, false))

	records, err := store.Trajectories()
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, single.ID().String(), records[0].ID)
	assert.False(t, records[0].Valid)
	assert.Equal(t, motion.Stats{}, records[0].Stats)

	rec := records[1]
	assert.Equal(t, traj.ID().String(), rec.ID)
	assert.Equal(t, 3, rec.FirstFrame)
	assert.Equal(t, 6, rec.LastFrame)
	assert.Equal(t, 4, rec.Samples)
	assert.True(t, rec.Valid)
	assert.Equal(t, 1.0, rec.Scale)
	assert.InDelta(t, 10.0, rec.Stats.VelocityLong, 1e-9)
	assert.InDelta(t, 30.0, rec.Stats.Length, 1e-9)
}
