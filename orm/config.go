// Package orm 提供数据库连接配置
package orm

import (
	"fmt"

	c "github.com/d0ngw/hitcounter/common"
)

// 连接池的默认参数
const (
	DefaultMaxConn       = 10
	DefaultMaxIdle       = 2
	DefaultMaxTimeSecond = 300
	DefaultCharset       = "utf8mb4"
)

// DBConfig 数据库配置
type DBConfig struct {
	User          string `yaml:"user"`
	Pass          string `yaml:"pass"`
	URL           string `yaml:"url"`
	Schema        string `yaml:"schema"`
	MaxConn       int    `yaml:"maxConn"`
	MaxIdle       int    `yaml:"maxIdle"`
	MaxTimeSecond int    `yaml:"maxTimeSecond"`
	Charset       string `yaml:"charset"`
}

// Parse implements Configurer
func (p *DBConfig) Parse() error {
	if p.URL == "" {
		return fmt.Errorf("need url")
	}
	if p.Schema == "" {
		return fmt.Errorf("need schema")
	}
	if p.MaxConn <= 0 {
		p.MaxConn = DefaultMaxConn
	}
	if p.MaxIdle <= 0 {
		p.MaxIdle = DefaultMaxIdle
	}
	if p.MaxTimeSecond <= 0 {
		p.MaxTimeSecond = DefaultMaxTimeSecond
	}
	if p.Charset == "" {
		p.Charset = DefaultCharset
	}
	return nil
}

// DBConfig implements DBConfigurer
func (p *DBConfig) DBConfig() *DBConfig {
	return p
}

// DBConfigurer DB配置器
type DBConfigurer interface {
	c.Configurer
	DBConfig() *DBConfig
}
