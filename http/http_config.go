// Package http 提供基本的http服务
package http

import (
	"fmt"
	"net/http"
	"strings"
	"sync"

	c "github.com/d0ngw/hitcounter/common"
)

// 默认参数
const (
	DefaultAddr            = ":8080"
	DefaultReadTimeout     = 10
	DefaultWriteTimeout    = 10
	DefaultShutdownTimeout = 5
)

type namedHandler struct {
	name    string
	handler http.HandlerFunc
}

// Config Http配置
type Config struct {
	Addr            string `yaml:"addr"`             //Http监听地址
	ReadTimeout     int    `yaml:"read_timeout"`     //读超时,单位秒
	WriteTimeout    int    `yaml:"write_timeout"`    //写超时,单位秒
	ShutdownTimeout int    `yaml:"shutdown_timeout"` //等待请求处理完成的超时,单位秒
	MaxConns        int    `yaml:"max_conns"`        //最大的并发连接数,0表示不限制

	middlewares []Middleware             //过滤操作
	controllers []Controller             //controller
	handles     map[string]*namedHandler //pattern -> handler
	fallback    http.HandlerFunc         //未匹配的请求
	lock        sync.RWMutex
}

// NewConfig 创建配置
func NewConfig(addr string) *Config {
	conf := &Config{Addr: addr}
	if err := conf.Parse(); err != nil {
		c.Errorf("parse http config fail,err:%v", err)
	}
	return conf
}

// Parse implements Configurer
func (p *Config) Parse() error {
	if p.Addr == "" {
		p.Addr = DefaultAddr
	}
	if p.ReadTimeout <= 0 {
		p.ReadTimeout = DefaultReadTimeout
	}
	if p.WriteTimeout <= 0 {
		p.WriteTimeout = DefaultWriteTimeout
	}
	if p.ShutdownTimeout <= 0 {
		p.ShutdownTimeout = DefaultShutdownTimeout
	}
	if p.MaxConns < 0 {
		return fmt.Errorf("invalid max_conns %d", p.MaxConns)
	}
	return nil
}

// RegController 注册controller中的所有处理函数
func (p *Config) RegController(controller Controller) error {
	if controller == nil {
		return fmt.Errorf("can't reg nil controller")
	}

	handlers, err := reflectHandlers(controller)
	if err != nil {
		return err
	}
	if len(handlers) == 0 {
		c.Warnf("can't find handler in %T#%s", controller, controller.GetName())
		return nil
	}

	methodNames := controller.GetPatternMethods()
	p.lock.Lock()
	defer p.lock.Unlock()
	for pattern, methodName := range methodNames {
		full := JoinPattern(controller.GetPath(), pattern)
		name := controller.GetName() + "." + ToUnderlineName(methodName)
		if err := p.regHandleFunc(full, name, handlers[full]); err != nil {
			return err
		}
		c.Infof("register controller %T#%s,pattern:%s", controller, controller.GetName(), full)
	}
	p.controllers = append(p.controllers, controller)
	return nil
}

func (p *Config) regHandleFunc(pattern, name string, handlerFunc http.HandlerFunc) error {
	if handlerFunc == nil {
		return fmt.Errorf("can't bind nil handler to %s", pattern)
	}
	if p.handles == nil {
		p.handles = map[string]*namedHandler{}
	}
	if _, ok := p.handles[pattern]; ok {
		return fmt.Errorf("duplicate pattern:%s", pattern)
	}
	p.handles[pattern] = &namedHandler{name: name, handler: handlerFunc}
	return nil
}

// RegHandleFunc 注册pattern的处理函数handlerFunc,name用于日志和统计
func (p *Config) RegHandleFunc(pattern, name string, handlerFunc http.HandlerFunc) error {
	p.lock.Lock()
	defer p.lock.Unlock()
	return p.regHandleFunc(pattern, name, handlerFunc)
}

// RegHandler 注册pattern的处理器handler
func (p *Config) RegHandler(pattern, name string, handler http.Handler) error {
	if handler == nil {
		return fmt.Errorf("can't bind nil handler to %s", pattern)
	}
	return p.RegHandleFunc(pattern, name, handler.ServeHTTP)
}

// SetFallback 设置没有匹配到pattern(404)或者方法不允许(405)时的处理函数,
// 处理函数可以从响应头中取得Allow
func (p *Config) SetFallback(handlerFunc http.HandlerFunc) {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.fallback = handlerFunc
}

// RegMiddleware 注册middleware,先注册的在外层
func (p *Config) RegMiddleware(middleware Middleware) error {
	if middleware == nil {
		return fmt.Errorf("invalid middleware")
	}
	p.lock.Lock()
	defer p.lock.Unlock()
	p.middlewares = append(p.middlewares, middleware)
	return nil
}

// Handler 根据已注册的处理函数和middleware构建http.Handler
func (p *Config) Handler() (http.Handler, error) {
	p.lock.RLock()
	defer p.lock.RUnlock()

	serveMux := http.NewServeMux()
	for pattern, h := range p.handles {
		if err := safeHandle(serveMux, pattern, p.withMiddleware(h)); err != nil {
			return nil, err
		}
	}
	return &dispatcher{mux: serveMux, fallback: p.withMiddleware(&namedHandler{handler: p.fallback})}, nil
}

func safeHandle(mux *http.ServeMux, pattern string, h http.HandlerFunc) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("invalid pattern %q:%v", pattern, r)
		}
	}()
	mux.HandleFunc(pattern, h)
	return nil
}

// withMiddleware 依次调用各个middleware,middleware不调用next时请求到此为止
func (p *Config) withMiddleware(h *namedHandler) http.HandlerFunc {
	name := h.name
	handlerFunc := h.handler
	var handler http.HandlerFunc = func(w http.ResponseWriter, r *http.Request) {
		if handlerFunc == nil {
			RenderError(w, FallbackStatus(r), "")
			return
		}
		handlerFunc(w, r)
	}

	for i := len(p.middlewares) - 1; i >= 0; i-- {
		handler = p.middlewares[i].Handle(handler)
	}
	return func(w http.ResponseWriter, r *http.Request) {
		handler(w, requestWithHandlerName(r, name))
	}
}

// dispatcher 将匹配到的请求交给mux,未匹配的请求交给fallback
type dispatcher struct {
	mux      *http.ServeMux
	fallback http.HandlerFunc
}

func (p *dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h, pattern := p.mux.Handler(r); pattern == "" {
		probe := &headerProbe{header: http.Header{}}
		h.ServeHTTP(probe, r)
		if probe.status == http.StatusMethodNotAllowed || probe.status == http.StatusNotFound {
			if allow := probe.header.Get("Allow"); allow != "" {
				w.Header().Set("Allow", allow)
			}
			p.fallback(w, RequestWithContext(r, fallbackStatusKey, probe.status))
			return
		}
		// 重定向等其它响应
		copyHeader(w.Header(), probe.header)
		w.WriteHeader(probe.status)
		return
	}
	p.mux.ServeHTTP(w, r)
}

// FallbackStatus 未匹配请求的状态码,404或者405
func FallbackStatus(r *http.Request) int {
	status, _ := r.Context().Value(fallbackStatusKey).(int)
	if status == 0 {
		return http.StatusNotFound
	}
	return status
}

// headerProbe 只记录mux内部处理器的状态码和响应头
type headerProbe struct {
	header http.Header
	status int
}

func (p *headerProbe) Header() http.Header {
	return p.header
}

func (p *headerProbe) WriteHeader(status int) {
	if p.status == 0 {
		p.status = status
	}
}

func (p *headerProbe) Write(b []byte) (int, error) {
	if p.status == 0 {
		p.status = http.StatusOK
	}
	return len(b), nil
}

func copyHeader(dst, src http.Header) {
	for k, vs := range src {
		if strings.EqualFold(k, "Content-Length") {
			continue
		}
		for _, v := range vs {
			dst.Add(k, v)
		}
	}
}
