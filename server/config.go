// Package server 组装计数器的http接口
package server

import (
	"fmt"
	"net"
	"strconv"

	c "github.com/d0ngw/hitcounter/common"
	"github.com/d0ngw/hitcounter/counter"
	chttp "github.com/d0ngw/hitcounter/http"
)

// Config 服务配置
type Config struct {
	c.AppConfig `yaml:",inline"`
	HTTP        *chttp.Config          `yaml:"http"`
	Counter     *counter.Config        `yaml:"counter"`
	Persist     *counter.PersistConfig `yaml:"persist"`
}

// Parse implements Configurer
func (p *Config) Parse() error {
	if p.HTTP == nil {
		p.HTTP = &chttp.Config{}
	}
	if p.Counter == nil {
		p.Counter = &counter.Config{}
	}
	if p.Persist == nil {
		p.Persist = &counter.PersistConfig{}
	}
	if err := c.Parse(p); err != nil {
		return err
	}
	// 存储有名称长度限制时收紧max_name_len
	if limit := p.Persist.MaxNameLen(); limit > 0 && (p.Counter.MaxNameLen == 0 || p.Counter.MaxNameLen > limit) {
		p.Counter.MaxNameLen = limit
	}
	return nil
}

// DefaultConfig 没有配置文件时使用的配置
func DefaultConfig() *Config {
	conf := &Config{}
	if err := conf.Parse(); err != nil {
		panic(err)
	}
	return conf
}

// Override 使用命令行的addr和环境变量PORT覆盖http.addr,port只替换端口部分
func (p *Config) Override(addr, port string) error {
	if addr != "" {
		p.HTTP.Addr = addr
	}
	if port == "" {
		return nil
	}
	if _, err := strconv.ParseUint(port, 10, 16); err != nil {
		return fmt.Errorf("invalid port %q", port)
	}
	host, _, err := net.SplitHostPort(p.HTTP.Addr)
	if err != nil {
		return fmt.Errorf("invalid http addr %q,err:%w", p.HTTP.Addr, err)
	}
	p.HTTP.Addr = net.JoinHostPort(host, port)
	return nil
}
