package counter

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memPersist struct {
	mu      sync.Mutex
	data    Snapshot
	saves   int
	clears  int
	loadErr error
	saveErr error
}

func (p *memPersist) Load() (Snapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.loadErr != nil {
		return nil, p.loadErr
	}
	s := Snapshot{}
	for k, v := range p.data {
		s[k] = v
	}
	return s, nil
}

func (p *memPersist) Save(s Snapshot) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.saves++
	if p.saveErr != nil {
		return p.saveErr
	}
	p.data = s
	return nil
}

func (p *memPersist) Clear() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clears++
	if p.saveErr != nil {
		return p.saveErr
	}
	p.data = nil
	return nil
}

func TestStoreOps(t *testing.T) {
	persist := &memPersist{}
	store := NewStore(nil, persist, nil)
	assert.Equal(t, 0, store.Len())
	assert.NotNil(t, store.List())
	assert.Empty(t, store.List())

	counter, err := store.Create("foo")
	require.NoError(t, err)
	assert.Equal(t, &Counter{Name: "foo", Value: 0}, counter)
	assert.Equal(t, Snapshot{"foo": 0}, persist.data)

	_, err = store.Create("foo")
	assert.True(t, errors.Is(err, ErrConflict))
	assert.Equal(t, 1, persist.saves)

	for i := 1; i <= 3; i++ {
		counter, err = store.Incr("foo")
		require.NoError(t, err)
		assert.EqualValues(t, i, counter.Value)
	}
	assert.Equal(t, Snapshot{"foo": 3}, persist.data)

	counter, err = store.Read("foo")
	require.NoError(t, err)
	assert.EqualValues(t, 3, counter.Value)

	_, err = store.Read("bar")
	assert.True(t, errors.Is(err, ErrNotFound))
	_, err = store.Incr("bar")
	assert.True(t, errors.Is(err, ErrNotFound))

	saves := persist.saves
	assert.False(t, store.Delete("bar"))
	assert.Equal(t, saves, persist.saves)

	assert.True(t, store.Delete("foo"))
	assert.Equal(t, Snapshot{}, persist.data)
	_, err = store.Read("foo")
	assert.True(t, errors.Is(err, ErrNotFound))

	counter, err = store.Create("foo")
	require.NoError(t, err)
	assert.EqualValues(t, 0, counter.Value)
}

func TestStoreList(t *testing.T) {
	store := NewStore(nil, &memPersist{}, nil)
	names := []string{"c", "a", "b"}
	for _, name := range names {
		_, err := store.Create(name)
		require.NoError(t, err)
	}
	_, err := store.Incr("a")
	require.NoError(t, err)

	list := store.List()
	require.Len(t, list, 3)
	for i, counter := range list {
		assert.Equal(t, names[i], counter.Name)
	}
	assert.EqualValues(t, 1, list[1].Value)
	assert.Equal(t, Snapshot{"a": 1, "b": 0, "c": 0}, store.Snapshot())
}

func TestStoreValidateName(t *testing.T) {
	store := NewStore(&Config{MaxNameLen: 8}, &memPersist{}, nil)
	for _, name := range []string{"", "a/b", "/", "123456789", string([]byte{0xff, 0xfe})} {
		_, err := store.Create(name)
		assert.True(t, errors.Is(err, ErrInvalidName), name)
	}
	for _, name := range []string{"a", "12345678", "a b", "计数", " "} {
		_, err := store.Create(name)
		assert.NoError(t, err, name)
	}
	assert.Equal(t, 5, store.Len())

	store = NewStore(nil, &memPersist{}, nil)
	_, err := store.Create(strings.Repeat("x", 4096))
	assert.NoError(t, err)
	assert.NoError(t, store.ValidateName("  "))

	assert.NoError(t, ValidateName("foo", 0))
	assert.NoError(t, ValidateName("\t", 0))
	assert.True(t, errors.Is(ValidateName("", 0), ErrInvalidName))
	assert.True(t, errors.Is(ValidateName("foo", 2), ErrInvalidName))
}

func TestStoreIncrOverflow(t *testing.T) {
	persist := &memPersist{data: Snapshot{"big": math.MaxInt64, "keep": 5}}
	store := NewStore(nil, persist, nil)
	saves := persist.saves

	_, err := store.Incr("big")
	assert.True(t, errors.Is(err, ErrOverflow))
	assert.Equal(t, saves, persist.saves)

	counter, err := store.Read("big")
	require.NoError(t, err)
	assert.EqualValues(t, int64(math.MaxInt64), counter.Value)
	assert.Equal(t, Snapshot{"big": math.MaxInt64, "keep": 5}, store.Snapshot())
}

func TestStoreLoad(t *testing.T) {
	persist := &memPersist{data: Snapshot{"seed": 10, "another": 2}}
	store := NewStore(nil, persist, nil)
	assert.Equal(t, 2, store.Len())

	counter, err := store.Incr("seed")
	require.NoError(t, err)
	assert.EqualValues(t, 11, counter.Value)

	list := store.List()
	require.Len(t, list, 2)
	assert.Equal(t, "another", list[0].Name)
	assert.Equal(t, "seed", list[1].Name)

	registry := prometheus.NewRegistry()
	metrics := NewMetrics(registry)
	store = NewStore(nil, &memPersist{loadErr: errors.New("broken")}, metrics)
	assert.Equal(t, 0, store.Len())
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.persistFailures.WithLabelValues("load")))
}

func TestStorePersistFailure(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := NewMetrics(registry)
	persist := &memPersist{saveErr: errors.New("disk full")}
	store := NewStore(nil, persist, metrics)

	_, err := store.Create("foo")
	require.NoError(t, err)
	counter, err := store.Incr("foo")
	require.NoError(t, err)
	assert.EqualValues(t, 1, counter.Value)

	counter, err = store.Read("foo")
	require.NoError(t, err)
	assert.EqualValues(t, 1, counter.Value)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.persistFailures.WithLabelValues("create")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.persistFailures.WithLabelValues("incr")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.persistWrites.WithLabelValues("incr")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.counters))

	store.Reset()
	assert.Equal(t, 0, store.Len())
	assert.Equal(t, 1, persist.clears)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.persistFailures.WithLabelValues("reset")))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.counters))
}

func TestStoreReset(t *testing.T) {
	persist := &memPersist{}
	store := NewStore(nil, persist, nil)
	for i := 0; i < 5; i++ {
		_, err := store.Create(fmt.Sprintf("c%d", i))
		require.NoError(t, err)
	}
	store.Reset()
	assert.Equal(t, 0, store.Len())
	assert.Empty(t, store.List())
	assert.Nil(t, persist.data)

	_, err := store.Create("c0")
	assert.NoError(t, err)
}

func TestStoreConcurrentCreate(t *testing.T) {
	store := NewStore(nil, &memPersist{}, nil)
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
		conflit int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Create("foo")
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				success++
			} else if errors.Is(err, ErrConflict) {
				conflit++
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, success)
	assert.Equal(t, 49, conflit)
}

func TestStoreConcurrentIncr(t *testing.T) {
	persist := &memPersist{}
	store := NewStore(nil, persist, nil)
	_, err := store.Create("foo")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_, err := store.Incr("foo")
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	counter, err := store.Read("foo")
	require.NoError(t, err)
	assert.EqualValues(t, 1000, counter.Value)
	assert.EqualValues(t, 1000, persist.data["foo"])
}
