package counter

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	c "github.com/d0ngw/hitcounter/common"
)

// Config the store config
type Config struct {
	MaxNameLen int  `yaml:"max_name_len"` //名称的最大字节数,0表示不限制
	Admin      bool `yaml:"admin"`        //是否开放reset接口
}

// Parse implements Configurer
func (p *Config) Parse() error {
	if p.MaxNameLen < 0 {
		return fmt.Errorf("invalid max_name_len %d", p.MaxNameLen)
	}
	return nil
}

type noSlashValidator struct{}

func (noSlashValidator) Validate(param string) bool {
	return !strings.Contains(param, "/")
}

// NewNameValidator build the counter name validator, maxLen <= 0 means unlimited
func NewNameValidator(maxLen int) c.StrValidator {
	if maxLen <= 0 {
		maxLen = math.MaxInt
	}
	return c.Validators{
		&c.UTF8Validator{},
		c.NewStringLenValidator(1, maxLen),
		noSlashValidator{},
	}
}

// Store is the in-memory counters, every mutation rewrites the whole snapshot
// through Persist while holding the lock
type Store struct {
	mu        sync.Mutex
	counters  *c.LinkedMap[string, int64]
	persist   Persist
	metrics   *Metrics
	validator c.StrValidator
}

// NewStore create the store and load its initial state from persist. A failed
// load is logged and the store starts empty.
func NewStore(conf *Config, persist Persist, metrics *Metrics) *Store {
	if conf == nil {
		conf = &Config{}
	}
	if persist == nil {
		persist = NopPersist{}
	}
	s := &Store{
		counters:  c.NewLinkedMap[string, int64](),
		persist:   persist,
		metrics:   metrics,
		validator: NewNameValidator(conf.MaxNameLen),
	}
	s.load()
	return s
}

func (s *Store) load() {
	snapshot, err := s.persist.Load()
	if err != nil {
		c.Warnf("load counters fail,init with empty counters,err:%v", err)
		s.metrics.loadFailed()
		snapshot = Snapshot{}
	}
	names := make([]string, 0, len(snapshot))
	for name := range snapshot {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		s.counters.Put(name, snapshot[name])
	}
	s.metrics.setCounters(s.counters.Len())
	c.Infof("loaded %d counters", s.counters.Len())
}

// ValidateName check name with the max length in bytes, maxLen <= 0 means unlimited
func ValidateName(name string, maxLen int) error {
	return validateName(NewNameValidator(maxLen), name)
}

func validateName(validator c.StrValidator, name string) error {
	if !validator.Validate(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// ValidateName check the name of a new counter
func (s *Store) ValidateName(name string) error {
	return validateName(s.validator, name)
}

// Create add the counter with value 0
func (s *Store) Create(name string) (*Counter, error) {
	if err := s.ValidateName(name); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.counters.PutIfAbsent(name, 0) {
		return nil, fmt.Errorf("%w: %s", ErrConflict, name)
	}
	s.saveLocked("create")
	return &Counter{Name: name, Value: 0}, nil
}

// Read get the counter
func (s *Store) Read(name string) (*Counter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.counters.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return &Counter{Name: name, Value: v}, nil
}

// List all counters in insertion order
func (s *Store) List() []*Counter {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.counters.Entries()
	counters := make([]*Counter, 0, len(entries))
	for _, e := range entries {
		counters = append(counters, &Counter{Name: e.Key, Value: e.Value})
	}
	return counters
}

// Incr increase the counter by 1 and return the new value. A counter at
// math.MaxInt64 is left unchanged and ErrOverflow is returned.
func (s *Store) Incr(name string) (*Counter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.counters.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if v == math.MaxInt64 {
		return nil, fmt.Errorf("%w: %s", ErrOverflow, name)
	}
	v++
	s.counters.Put(name, v)
	s.saveLocked("incr")
	return &Counter{Name: name, Value: v}, nil
}

// Delete remove the counter, it's a no-op when absent
func (s *Store) Delete(name string) (deleted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, deleted = s.counters.Remove(name); deleted {
		s.saveLocked("delete")
	}
	return
}

// Reset remove all counters and the persisted snapshot
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counters = c.NewLinkedMap[string, int64]()
	err := s.persist.Clear()
	if err != nil {
		c.Errorf("clear counters fail,err:%v", err)
	}
	s.metrics.persisted("reset", err)
	s.metrics.setCounters(0)
}

// Len the number of counters
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counters.Len()
}

// Snapshot copy the current state
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot(s.counters.Map())
}

// saveLocked writes the snapshot, failures are logged and never undo the mutation
func (s *Store) saveLocked(op string) {
	err := s.persist.Save(Snapshot(s.counters.Map()))
	if err != nil {
		c.Errorf("save counters after %s fail,err:%v", op, err)
	}
	s.metrics.persisted(op, err)
	s.metrics.setCounters(s.counters.Len())
}
