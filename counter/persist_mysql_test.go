package counter

import (
	"os"
	"testing"

	"github.com/d0ngw/hitcounter/orm"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMySQLPersist(t *testing.T) {
	_, err := NewMySQLPersist(nil, "")
	assert.Error(t, err)

	p := &MySQLPersist{table: "counters"}
	query, args := p.insertBatch([]string{"a", "b"}, Snapshot{"a": 1, "b": 2})
	assert.Equal(t, "INSERT INTO `counters` (`name`,`val`) VALUES (?,?),(?,?)", query)
	assert.Equal(t, []interface{}{"a", int64(1), "b", int64(2)}, args)
}

// HITCOUNTER_TEST_MYSQL is a go-sql-driver dsn, e.g. root:pass@tcp(127.0.0.1:3306)/test
func TestMySQLPersist(t *testing.T) {
	dsn := os.Getenv("HITCOUNTER_TEST_MYSQL")
	if dsn == "" {
		t.Skip("HITCOUNTER_TEST_MYSQL not set")
	}
	mysqlConf, err := mysql.ParseDSN(dsn)
	require.NoError(t, err)
	dbConf := &orm.DBConfig{User: mysqlConf.User, Pass: mysqlConf.Passwd, URL: mysqlConf.Addr, Schema: mysqlConf.DBName}
	require.NoError(t, dbConf.Parse())
	db, err := (*orm.MysqlDBConfig)(dbConf).NewDB()
	require.NoError(t, err)

	persist, err := NewMySQLPersist(db, "hitcounter_test")
	require.NoError(t, err)
	defer persist.Close()
	require.NoError(t, persist.Init())
	require.NoError(t, persist.Clear())

	s, err := persist.Load()
	require.NoError(t, err)
	assert.Empty(t, s)

	big := Snapshot{}
	for i := 0; i < insertBatchSize+10; i++ {
		big[string(rune('a'+i%26))+string(rune('0'+i/26%10))+string(rune('A'+i/260))] = int64(i)
	}
	require.NoError(t, persist.Save(big))
	s, err = persist.Load()
	require.NoError(t, err)
	assert.Equal(t, big, s)

	store := NewStore(nil, persist, nil)
	_, err = store.Incr("a0A")
	require.NoError(t, err)
	s, err = persist.Load()
	require.NoError(t, err)
	assert.EqualValues(t, 1, s["a0A"])

	store.Reset()
	s, err = persist.Load()
	require.NoError(t, err)
	assert.Empty(t, s)
}
