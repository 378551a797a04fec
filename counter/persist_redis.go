package counter

import (
	"errors"
	"fmt"

	"github.com/d0ngw/hitcounter/cache"
	"github.com/gomodule/redigo/redis"
)

// DefaultRedisKey the default key of the snapshot
const DefaultRedisKey = "hitcounter:counters"

// RedisPersist implements Persist which keeps the encoded snapshot in one redis key
type RedisPersist struct {
	server *cache.RedisServer
	key    string
	codec  Codec
}

// NewRedisPersist create RedisPersist, the server must be parsed
func NewRedisPersist(server *cache.RedisServer, key string, codec Codec) (*RedisPersist, error) {
	if server == nil {
		return nil, errors.New("redis server must not be nil")
	}
	if key == "" {
		key = DefaultRedisKey
	}
	if codec == nil {
		codec = JSONCodec{}
	}
	return &RedisPersist{server: server, key: key, codec: codec}, nil
}

func (p *RedisPersist) target() string {
	return fmt.Sprintf("redis://%s/%s", p.server.Addr(), p.key)
}

// Load implements Persist.Load
func (p *RedisPersist) Load() (Snapshot, error) {
	conn, err := p.server.GetConn()
	if err != nil {
		return Snapshot{}, &PersistError{Op: "load", Target: p.target(), Err: err}
	}
	defer conn.Close()

	data, err := redis.Bytes(conn.Do("GET", p.key))
	if errors.Is(err, redis.ErrNil) {
		return Snapshot{}, nil
	}
	if err != nil {
		return Snapshot{}, &PersistError{Op: "load", Target: p.target(), Err: err}
	}
	s, err := p.codec.Unmarshal(data)
	if err != nil {
		return Snapshot{}, &PersistError{Op: "load", Target: p.target(), Err: err}
	}
	return s, nil
}

// Save implements Persist.Save, SET replaces the value atomically
func (p *RedisPersist) Save(s Snapshot) error {
	data, err := p.codec.Marshal(s)
	if err != nil {
		return &PersistError{Op: "save", Target: p.target(), Err: err}
	}
	conn, err := p.server.GetConn()
	if err != nil {
		return &PersistError{Op: "save", Target: p.target(), Err: err}
	}
	defer conn.Close()

	if _, err = conn.Do("SET", p.key, data); err != nil {
		return &PersistError{Op: "save", Target: p.target(), Err: err}
	}
	return nil
}

// Clear implements Persist.Clear
func (p *RedisPersist) Clear() error {
	conn, err := p.server.GetConn()
	if err != nil {
		return &PersistError{Op: "clear", Target: p.target(), Err: err}
	}
	defer conn.Close()

	if _, err = conn.Do("DEL", p.key); err != nil {
		return &PersistError{Op: "clear", Target: p.target(), Err: err}
	}
	return nil
}

// Close releases the redis pool
func (p *RedisPersist) Close() error {
	return p.server.Close()
}
