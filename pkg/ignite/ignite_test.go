package ignite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ignerrors "github.com/embeddedkv/ignite/pkg/errors"
	"github.com/embeddedkv/ignite/pkg/options"
)

func newTestInstance(t *testing.T, dir string) *Instance {
	t.Helper()
	inst, err := NewInstance(context.Background(), "ignite-test", options.WithDataDir(dir))
	require.NoError(t, err)
	return inst
}

func TestInstancePutGetDelete(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	inst := newTestInstance(t, dir)
	defer inst.Close(ctx)

	require.NoError(t, inst.Put(ctx, 1, []byte("hello")))

	got, err := inst.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), got)

	require.NoError(t, inst.Delete(ctx, 1))
	_, err = inst.Get(ctx, 1)
	assert.True(t, ignerrors.IsNotFoundError(err))
}

func TestInstanceListKeysAndStats(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	inst := newTestInstance(t, dir)
	defer inst.Close(ctx)

	require.NoError(t, inst.Put(ctx, 1, []byte("a")))
	require.NoError(t, inst.Put(ctx, 2, []byte("b")))

	keys, err := inst.ListKeys(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint32{1, 2}, keys)

	stats, err := inst.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.KeyCount)
}

func TestInstanceRotateAndSync(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	inst := newTestInstance(t, dir)
	defer inst.Close(ctx)

	require.NoError(t, inst.Put(ctx, 1, []byte("before")))
	require.NoError(t, inst.Rotate(ctx))
	require.NoError(t, inst.Put(ctx, 2, []byte("after")))
	require.NoError(t, inst.Sync(ctx))

	stats, err := inst.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.ImmutableFileCount)
}

func TestInstanceCloseThenReopenRecoversState(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	inst := newTestInstance(t, dir)
	require.NoError(t, inst.Put(ctx, 1, []byte("a")))
	require.NoError(t, inst.Put(ctx, 2, []byte("b")))
	require.NoError(t, inst.Delete(ctx, 1))
	require.NoError(t, inst.Close(ctx))

	inst2 := newTestInstance(t, dir)
	defer inst2.Close(ctx)

	_, err := inst2.Get(ctx, 1)
	assert.True(t, ignerrors.IsNotFoundError(err))

	v2, err := inst2.Get(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []byte("b"), v2)
}

func TestInstancePutRejectsOversizedValue(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	inst := newTestInstance(t, dir)
	defer inst.Close(ctx)

	big := make([]byte, options.MaxAllowedValueSize+1)
	err := inst.Put(ctx, 1, big)
	assert.ErrorIs(t, err, ignerrors.ErrValueTooLarge)
}
