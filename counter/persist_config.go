package counter

import (
	"fmt"
	"strings"

	"github.com/d0ngw/hitcounter/cache"
	c "github.com/d0ngw/hitcounter/common"
	"github.com/d0ngw/hitcounter/orm"
)

// Persist drivers
const (
	DriverFile  = "file"
	DriverRedis = "redis"
	DriverMySQL = "mysql"
	DriverNone  = "none"
)

// FilePersistConfig the config of FilePersist
type FilePersistConfig struct {
	Path string `yaml:"path"`
}

// RedisPersistConfig the config of RedisPersist
type RedisPersistConfig struct {
	cache.RedisServer `yaml:",inline"`
	Key               string `yaml:"key"`
}

// MySQLPersistConfig the config of MySQLPersist
type MySQLPersistConfig struct {
	orm.DBConfig `yaml:",inline"`
	Table        string `yaml:"table"`
}

// PersistConfig select and configure the persist storage
type PersistConfig struct {
	Driver string             `yaml:"driver"` //file,redis,mysql,none
	Format string             `yaml:"format"` //json,msgpack
	File   FilePersistConfig  `yaml:"file"`
	Redis  RedisPersistConfig `yaml:"redis"`
	MySQL  MySQLPersistConfig `yaml:"mysql"`
}

// Parse implements Configurer, only the selected driver is checked
func (p *PersistConfig) Parse() error {
	p.Driver = strings.ToLower(strings.TrimSpace(p.Driver))
	if p.Driver == "" {
		p.Driver = DriverFile
	}
	if _, err := CodecByName(p.Format); err != nil {
		return err
	}
	switch p.Driver {
	case DriverFile:
		if p.File.Path == "" {
			p.File.Path = DefaultFileName
		}
	case DriverRedis:
		if p.Redis.Key == "" {
			p.Redis.Key = DefaultRedisKey
		}
		if p.Redis.ID == "" {
			p.Redis.ID = "persist"
		}
	case DriverMySQL:
		if p.MySQL.Table == "" {
			p.MySQL.Table = DefaultTable
		}
		if !tableNameValidator.Validate(p.MySQL.Table) {
			return fmt.Errorf("invalid table name %q", p.MySQL.Table)
		}
		return p.MySQL.DBConfig.Parse()
	case DriverNone:
	default:
		return fmt.Errorf("unknown persist driver %q", p.Driver)
	}
	return nil
}

// MaxNameLen the longest counter name the selected driver can keep, 0 means unlimited
func (p *PersistConfig) MaxNameLen() int {
	if p.Driver == DriverMySQL {
		return MySQLMaxNameLen
	}
	return 0
}

// NewPersist build the selected Persist. When the result implements io.Closer the
// caller should close it on shutdown.
func (p *PersistConfig) NewPersist() (Persist, error) {
	codec, err := CodecByName(p.Format)
	if err != nil {
		return nil, err
	}
	switch p.Driver {
	case "", DriverFile:
		c.Infof("persist counters to file %s,format:%s", p.File.Path, codec.Name())
		return NewFilePersist(p.File.Path, codec), nil
	case DriverRedis:
		server := p.Redis.RedisServer
		if err = server.Parse(); err != nil {
			return nil, err
		}
		c.Infof("persist counters to redis %s key %s,format:%s", server.Addr(), p.Redis.Key, codec.Name())
		return NewRedisPersist(&server, p.Redis.Key, codec)
	case DriverMySQL:
		mysqlConf := orm.MysqlDBConfig(p.MySQL.DBConfig)
		db, err := mysqlConf.NewDB()
		if err != nil {
			return nil, err
		}
		persist, err := NewMySQLPersist(db, p.MySQL.Table)
		if err != nil {
			db.Close()
			return nil, err
		}
		if err = persist.Init(); err != nil {
			db.Close()
			return nil, err
		}
		c.Infof("persist counters to mysql %s/%s table %s", p.MySQL.URL, p.MySQL.Schema, p.MySQL.Table)
		return persist, nil
	case DriverNone:
		c.Warnf("counters are kept in memory only")
		return NopPersist{}, nil
	}
	return nil, fmt.Errorf("unknown persist driver %q", p.Driver)
}
