package counter

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilePersist(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "counters.json")
	persist := NewFilePersist(path, nil)
	assert.Equal(t, path, persist.Path())

	s, err := persist.Load()
	require.NoError(t, err)
	assert.NotNil(t, s)
	assert.Empty(t, s)

	require.NoError(t, persist.Save(Snapshot{"foo": 3, "bar": 0}))
	s, err = persist.Load()
	require.NoError(t, err)
	assert.Equal(t, Snapshot{"foo": 3, "bar": 0}, s)

	require.NoError(t, persist.Save(Snapshot{"foo": 4}))
	s, err = persist.Load()
	require.NoError(t, err)
	assert.Equal(t, Snapshot{"foo": 4}, s)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "counters.json", entries[0].Name())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0644), info.Mode().Perm())

	require.NoError(t, persist.Clear())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, persist.Clear())
}

func TestFilePersistRelativePath(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer os.Chdir(wd)

	persist := NewFilePersist("", nil)
	require.NoError(t, persist.Save(Snapshot{"foo": 1}))
	s, err := persist.Load()
	require.NoError(t, err)
	assert.Equal(t, Snapshot{"foo": 1}, s)
	assert.FileExists(t, filepath.Join(dir, DefaultFileName))

	assert.NoError(t, syncDir("."))
	assert.NoError(t, syncDir(dir))
	assert.Error(t, syncDir(filepath.Join(dir, "missing")))
}

func TestFilePersistSeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "counters.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"seed":10}`), 0644))

	store := NewStore(nil, NewFilePersist(path, JSONCodec{}), nil)
	counter, err := store.Read("seed")
	require.NoError(t, err)
	assert.EqualValues(t, 10, counter.Value)

	_, err = store.Create("foo")
	require.NoError(t, err)
	_, err = store.Incr("foo")
	require.NoError(t, err)

	reloaded := NewStore(nil, NewFilePersist(path, JSONCodec{}), nil)
	assert.Equal(t, Snapshot{"seed": 10, "foo": 1}, reloaded.Snapshot())
}

func TestFilePersistIncrOverflow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "counters.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"big":9223372036854775807,"keep":5}`), 0644))

	store := NewStore(nil, NewFilePersist(path, JSONCodec{}), nil)
	_, err := store.Incr("big")
	assert.True(t, errors.Is(err, ErrOverflow))
	_, err = store.Incr("keep")
	require.NoError(t, err)

	reloaded := NewStore(nil, NewFilePersist(path, JSONCodec{}), nil)
	assert.Equal(t, Snapshot{"big": math.MaxInt64, "keep": 6}, reloaded.Snapshot())
}

func TestFilePersistMalformed(t *testing.T) {
	dir := t.TempDir()
	for i, content := range []string{"", "not json", `["a"]`, `{"foo":-1}`, `{"foo":"x"}`} {
		path := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))

		persist := NewFilePersist(path, nil)
		s, err := persist.Load()
		require.Error(t, err, i)
		assert.Empty(t, s)
		var persistErr *PersistError
		assert.True(t, errors.As(err, &persistErr))
		assert.Equal(t, "load", persistErr.Op)
		assert.True(t, errors.Is(err, ErrMalformed), content)

		store := NewStore(nil, persist, nil)
		assert.Equal(t, 0, store.Len())
	}
}

func TestFilePersistUnwritable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "counters.json")
	persist := NewFilePersist(path, nil)
	err := persist.Save(Snapshot{"foo": 1})
	require.Error(t, err)
	var persistErr *PersistError
	require.True(t, errors.As(err, &persistErr))
	assert.Equal(t, "save", persistErr.Op)
	assert.Equal(t, path, persistErr.Target)

	store := NewStore(nil, persist, nil)
	_, err = store.Create("foo")
	assert.NoError(t, err)
	counter, err := store.Incr("foo")
	assert.NoError(t, err)
	assert.EqualValues(t, 1, counter.Value)
}

func TestFilePersistMsgPack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "counters.msgpack")
	persist := NewFilePersist(path, MsgPackCodec{})
	require.NoError(t, persist.Save(Snapshot{"foo": 7}))

	s, err := persist.Load()
	require.NoError(t, err)
	assert.Equal(t, Snapshot{"foo": 7}, s)

	_, err = NewFilePersist(path, JSONCodec{}).Load()
	assert.Error(t, err)
}
