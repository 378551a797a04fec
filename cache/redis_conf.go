package cache

import (
	"fmt"
	"time"

	c "github.com/d0ngw/hitcounter/common"
	"github.com/gomodule/redigo/redis"
)

// Redis连接池的默认参数
const (
	DefaultConnectTimout = 5 * 1000
	DefaultReadTimeout   = 5 * 1000
	DefaultWriteTimeout  = 5 * 1000
	DefaultMaxActive     = 10
	DefaultMaxIdle       = 2
	DefaultIdleTimeout   = 60 * 1000
)

// RedisPoolConf  Redis连接池配置
type RedisPoolConf struct {
	ConnectTimeout int `yaml:"connect_timeout"` //连接超时时间,单位毫秒
	ReadTimeout    int `yaml:"read_timeout"`    //读取超时,单位毫秒
	WriteTimeout   int `yaml:"write_timeout"`   //写取超时,单位毫秒
	MaxIdle        int `yaml:"max_idle"`        //最大空闲连接
	MaxActive      int `yaml:"max_active"`      //最大活跃连接,0表示不限制
	IdleTimeout    int `yaml:"idle_timeout"`    //空闲连接的超时时间,单位毫秒
}

var defaultPool = RedisPoolConf{
	ConnectTimeout: DefaultConnectTimout,
	ReadTimeout:    DefaultReadTimeout,
	WriteTimeout:   DefaultWriteTimeout,
	MaxActive:      DefaultMaxActive,
	MaxIdle:        DefaultMaxIdle,
	IdleTimeout:    DefaultIdleTimeout,
}

// RedisServer Redis实例的配置
type RedisServer struct {
	ID   string         `yaml:"id"`   //Redis实例的id
	Host string         `yaml:"host"` //Redis主机地址
	Port int            `yaml:"port"` //Redis的端口
	Auth string         `yaml:"auth"` //Redis认证密码
	DB   int            `yaml:"db"`   //Redis DB
	Pool *RedisPoolConf `yaml:"pool"` //连接池配置,为空时使用默认配置
	pool *redis.Pool    //Redis实例的连接池
}

// Addr host:port
func (p *RedisServer) Addr() string {
	return fmt.Sprintf("%s:%d", p.Host, p.Port)
}

// Parse implements Configurer, it checks the conf and inits the pool
func (p *RedisServer) Parse() error {
	if c.IsEmpty(p.Host) {
		return fmt.Errorf("invalid redis server conf,host must not be empty")
	}
	if p.Port <= 0 {
		return fmt.Errorf("invalid redis server conf,port %d", p.Port)
	}
	if p.pool != nil {
		return nil
	}
	poolConf := defaultPool
	if p.Pool != nil {
		poolConf = *p.Pool
	}
	return p.initPool(&poolConf)
}

// initPool 使用指定的参数初始化pool
func (p *RedisServer) initPool(poolConf *RedisPoolConf) error {
	if p.pool != nil {
		return fmt.Errorf("server %s already inited", p.ID)
	}
	options := []redis.DialOption{
		redis.DialConnectTimeout(time.Duration(poolConf.ConnectTimeout) * time.Millisecond),
		redis.DialReadTimeout(time.Duration(poolConf.ReadTimeout) * time.Millisecond),
		redis.DialWriteTimeout(time.Duration(poolConf.WriteTimeout) * time.Millisecond),
		redis.DialDatabase(p.DB),
	}
	if p.Auth != "" {
		options = append(options, redis.DialPassword(p.Auth))
	}

	var addr = p.Addr()

	pool := &redis.Pool{
		Dial: func() (redis.Conn, error) {
			return redis.Dial("tcp", addr, options...)
		},
		MaxActive:   poolConf.MaxActive,
		MaxIdle:     poolConf.MaxIdle,
		IdleTimeout: time.Duration(poolConf.IdleTimeout) * time.Millisecond,
		Wait:        true,
	}
	p.pool = pool
	c.Infof("init redis pool %s,addr:%s,db:%d", p.ID, addr, p.DB)
	return nil
}

// GetConn acquire redis conn, the caller must close it
func (p *RedisServer) GetConn() (redis.Conn, error) {
	if p.pool == nil {
		return nil, fmt.Errorf("no pool")
	}
	conn := p.pool.Get()
	if err := conn.Err(); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

// Close releases the pool
func (p *RedisServer) Close() error {
	if p.pool == nil {
		return nil
	}
	err := p.pool.Close()
	p.pool = nil
	return err
}
