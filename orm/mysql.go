package orm

import (
	"database/sql"
	"fmt"
	"time"

	c "github.com/d0ngw/hitcounter/common"
	"github.com/go-sql-driver/mysql"
)

// DBError 数据库错误
type DBError struct {
	Msg string
	Err error
}

func (e *DBError) Error() string {
	if e.Err == nil {
		return e.Msg
	}
	return fmt.Sprintf("%s,err:%v", e.Msg, e.Err)
}

func (e *DBError) Unwrap() error {
	return e.Err
}

// MysqlDBConfig MySQL数据库
type MysqlDBConfig DBConfig

// DSN 构建go-sql-driver/mysql的连接串
func (config *MysqlDBConfig) DSN() string {
	dsn := mysql.NewConfig()
	dsn.User = config.User
	dsn.Passwd = config.Pass
	dsn.Net = "tcp"
	dsn.Addr = config.URL
	dsn.DBName = config.Schema
	dsn.ParseTime = true
	dsn.Loc = time.Local
	if config.Charset != "" {
		dsn.Params = map[string]string{"charset": config.Charset}
	}
	return dsn.FormatDSN()
}

// NewDB 构建MySql数据库连接池
func (config *MysqlDBConfig) NewDB() (*sql.DB, error) {
	if config == nil {
		return nil, &DBError{"Not found config", nil}
	}

	if len(config.User) == 0 || len(config.URL) == 0 || len(config.Schema) == 0 {
		return nil, &DBError{"Invalid config", nil}
	}

	db, err := sql.Open("mysql", config.DSN())
	if err != nil {
		c.Errorf("Error on initializing database connection,%v", err)
		return nil, &DBError{"Can't open connection", err}
	}
	db.SetMaxIdleConns(config.MaxIdle)
	db.SetMaxOpenConns(config.MaxConn)
	if config.MaxTimeSecond > 0 {
		db.SetConnMaxLifetime(time.Duration(config.MaxTimeSecond) * time.Second)
	}
	return db, nil
}
