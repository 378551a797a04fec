// hitcounter 命名计数器的http服务
package main

import (
	"flag"
	"io"
	"os"
	"path/filepath"

	c "github.com/d0ngw/hitcounter/common"
	"github.com/d0ngw/hitcounter/counter"
	"github.com/d0ngw/hitcounter/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	confFile = flag.String("conf", "", "yaml config file")
	addr     = flag.String("addr", "", "http listen address, overrides http.addr")
)

func loadConfig() (*server.Config, error) {
	if *confFile == "" {
		return server.DefaultConfig(), nil
	}
	conf := &server.Config{}
	dir, file := filepath.Split(*confFile)
	if err := c.LoadConfig(conf, "", dir, file); err != nil {
		return nil, err
	}
	return conf, nil
}

func main() {
	flag.Parse()
	os.Exit(run())
}

// run 启动服务直到收到退出信号,返回进程的退出码
func run() int {
	defer c.SyncLogger()

	conf, err := loadConfig()
	if err != nil {
		c.Criticalf("load config %s fail,err:%v", *confFile, err)
		return 1
	}
	if err = conf.Override(*addr, os.Getenv("PORT")); err != nil {
		c.Criticalf("override config fail,err:%v", err)
		return 1
	}

	persist, err := conf.Persist.NewPersist()
	if err != nil {
		c.Criticalf("create persist %s fail,err:%v", conf.Persist.Driver, err)
		return 1
	}
	if closer, ok := persist.(io.Closer); ok {
		defer func() {
			if err := closer.Close(); err != nil {
				c.Errorf("close persist fail,err:%v", err)
			}
		}()
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	store := counter.NewStore(conf.Counter, persist, counter.NewMetrics(registry))
	srv, err := server.New(conf, store, registry)
	if err != nil {
		c.Criticalf("create server fail,err:%v", err)
		return 1
	}

	services := c.NewServices(srv.Service())
	if !services.Init() || !services.Start() {
		c.Criticalf("start hitcounter fail")
		services.Stop()
		return 1
	}
	c.Infof("hit counter service %s started at %s,persist:%s,counters:%d", server.Version, srv.Service().Addr(), conf.Persist.Driver, store.Len())

	hook := c.NewShutdownhook()
	hook.AddHook(func() {
		services.Stop()
	})
	hook.WaitShutdown()
	c.Infof("hit counter service stopped")
	return 0
}
