package counter

import (
	"path/filepath"
	"testing"

	c "github.com/d0ngw/hitcounter/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type persistTestConfig struct {
	Counter *Config        `yaml:"counter"`
	Persist *PersistConfig `yaml:"persist"`
}

func (p *persistTestConfig) Parse() error {
	return c.Parse(p)
}

func TestPersistConfigLoad(t *testing.T) {
	conf := &persistTestConfig{}
	yaml := `
counter:
  admin: true
persist:
  driver: redis
  format: msgpack
  redis:
    host: 127.0.0.1
    port: 6380
    auth: secret
    pool:
      max_active: 3
`
	require.NoError(t, c.LoadConfig(conf, yaml, ""))
	assert.Equal(t, 0, conf.Counter.MaxNameLen)
	assert.Equal(t, 0, conf.Persist.MaxNameLen())
	assert.True(t, conf.Counter.Admin)
	assert.Equal(t, DriverRedis, conf.Persist.Driver)
	assert.Equal(t, "127.0.0.1", conf.Persist.Redis.Host)
	assert.Equal(t, 6380, conf.Persist.Redis.Port)
	assert.Equal(t, "secret", conf.Persist.Redis.Auth)
	assert.Equal(t, 3, conf.Persist.Redis.Pool.MaxActive)
	assert.Equal(t, DefaultRedisKey, conf.Persist.Redis.Key)

	persist, err := conf.Persist.NewPersist()
	require.NoError(t, err)
	redisPersist, ok := persist.(*RedisPersist)
	require.True(t, ok)
	assert.Equal(t, FormatMsgPack, redisPersist.codec.Name())
	assert.NoError(t, redisPersist.Close())
}

func TestPersistConfigParse(t *testing.T) {
	conf := &PersistConfig{}
	require.NoError(t, conf.Parse())
	assert.Equal(t, DriverFile, conf.Driver)
	assert.Equal(t, DefaultFileName, conf.File.Path)

	conf = &PersistConfig{Driver: "FILE", File: FilePersistConfig{Path: filepath.Join(t.TempDir(), "c.json")}}
	require.NoError(t, conf.Parse())
	persist, err := conf.NewPersist()
	require.NoError(t, err)
	filePersist, ok := persist.(*FilePersist)
	require.True(t, ok)
	assert.Equal(t, conf.File.Path, filePersist.Path())

	conf = &PersistConfig{Driver: "none"}
	require.NoError(t, conf.Parse())
	persist, err = conf.NewPersist()
	require.NoError(t, err)
	assert.Equal(t, NopPersist{}, persist)

	assert.Error(t, (&PersistConfig{Driver: "etcd"}).Parse())
	assert.Error(t, (&PersistConfig{Format: "xml"}).Parse())
	assert.Error(t, (&PersistConfig{Driver: "mysql"}).Parse())
	assert.Error(t, (&PersistConfig{Driver: "mysql", MySQL: MySQLPersistConfig{Table: "bad table"}}).Parse())

	conf = &PersistConfig{Driver: "mysql"}
	conf.MySQL.URL = "127.0.0.1:3306"
	conf.MySQL.Schema = "test"
	require.NoError(t, conf.Parse())
	assert.Equal(t, DefaultTable, conf.MySQL.Table)
	assert.Equal(t, 10, conf.MySQL.MaxConn)
	assert.Equal(t, MySQLMaxNameLen, conf.MaxNameLen())

	conf = &PersistConfig{Driver: "redis"}
	require.NoError(t, conf.Parse())
	_, err = conf.NewPersist()
	assert.Error(t, err)
}
