package server

import (
	"errors"
	"net/http"

	c "github.com/d0ngw/hitcounter/common"
	"github.com/d0ngw/hitcounter/counter"
	chttp "github.com/d0ngw/hitcounter/http"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server 计数器服务,持有配置,计数器存储和http服务
type Server struct {
	conf    *Config
	store   *counter.Store
	service *chttp.Service
}

// New 注册所有的处理器,registry用于请求统计和/metrics
func New(conf *Config, store *counter.Store, registry *prometheus.Registry) (*Server, error) {
	if c.HasNil(conf, store, registry) || conf.HTTP == nil {
		return nil, errors.New("config,store and registry must not be nil")
	}
	admin := conf.Counter != nil && conf.Counter.Admin

	httpConf := conf.HTTP
	if err := httpConf.RegMiddleware(newRequestMetrics(registry)); err != nil {
		return nil, err
	}
	if err := httpConf.RegController(NewIndexController()); err != nil {
		return nil, err
	}
	if err := httpConf.RegController(NewCounterController(store, admin)); err != nil {
		return nil, err
	}
	metricsHandler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
	if err := httpConf.RegHandler("GET /metrics", "metrics", metricsHandler); err != nil {
		return nil, err
	}
	httpConf.SetFallback(func(w http.ResponseWriter, r *http.Request) {
		c.Infof("no handler for %s %s", r.Method, r.URL.Path)
		chttp.RenderError(w, chttp.FallbackStatus(r), "")
	})
	if admin {
		c.Warnf("admin enabled,DELETE /counters removes all counters")
	}

	return &Server{
		conf:    conf,
		store:   store,
		service: chttp.NewService(httpConf),
	}, nil
}

// Service the http service to be started
func (p *Server) Service() *chttp.Service {
	return p.service
}

// Store the counters
func (p *Server) Store() *counter.Store {
	return p.store
}

// Handler 构建不需要监听端口的http.Handler
func (p *Server) Handler() (http.Handler, error) {
	return p.conf.HTTP.Handler()
}
