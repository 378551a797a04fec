package http

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	c "github.com/d0ngw/hitcounter/common"
	"golang.org/x/net/netutil"
)

type tcpKeepAliveListener struct {
	*net.TCPListener
}

// Accept 接受连接
func (ln tcpKeepAliveListener) Accept() (net.Conn, error) {
	tc, err := ln.AcceptTCP()
	if err != nil {
		return nil, err
	}
	if err = tc.SetKeepAlive(true); err != nil {
		tc.Close()
		return nil, err
	}
	if err = tc.SetKeepAlivePeriod(3 * time.Minute); err != nil {
		tc.Close()
		return nil, err
	}
	return tc, nil
}

// GraceableHandler 安全地关闭的处理器
type GraceableHandler struct {
	handler   http.Handler
	waitGroup *sync.WaitGroup
}

func (p *GraceableHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.waitGroup.Add(1)
	defer p.waitGroup.Done()

	p.handler.ServeHTTP(w, r)
}

// Service Http服务
type Service struct {
	c.BaseService
	Conf         *Config
	listener     net.Listener
	graceHandler *GraceableHandler
	server       *http.Server
	lock         sync.Mutex
}

// NewService 创建Http服务
func NewService(conf *Config) *Service {
	return &Service{
		BaseService: c.BaseService{SName: "http"},
		Conf:        conf,
	}
}

// Init 初始化Http服务
func (p *Service) Init() error {
	p.lock.Lock()
	defer p.lock.Unlock()

	if p.Conf == nil {
		return errors.New("no http config")
	}
	handler, err := p.Conf.Handler()
	if err != nil {
		return err
	}

	graceHandler := &GraceableHandler{
		handler:   handler,
		waitGroup: &sync.WaitGroup{}}

	p.server = &http.Server{
		Addr:         p.Conf.Addr,
		ReadTimeout:  time.Duration(p.Conf.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(p.Conf.WriteTimeout) * time.Second,
		Handler:      graceHandler}
	p.graceHandler = graceHandler
	return nil
}

// Start 启动Http服务,开始端口监听和服务处理
func (p *Service) Start() bool {
	p.lock.Lock()
	defer p.lock.Unlock()

	if p.server == nil {
		c.Errorf("http service is not inited")
		return false
	}

	ln, err := net.Listen("tcp", p.Conf.Addr)
	if err != nil {
		c.Errorf("listen at %s fail,error:%v", p.Conf.Addr, err)
		return false
	}
	c.Infof("listen at %s", ln.Addr())

	var listener net.Listener = ln
	if tcpLn, ok := ln.(*net.TCPListener); ok {
		listener = tcpKeepAliveListener{tcpLn}
	}
	if p.Conf.MaxConns > 0 {
		listener = netutil.LimitListener(listener, p.Conf.MaxConns)
	}
	p.listener = listener

	server := p.server
	p.graceHandler.waitGroup.Add(1)
	go func() {
		defer p.graceHandler.waitGroup.Done()
		err := server.Serve(listener)
		var errLevel = c.Error
		if errors.Is(err, http.ErrServerClosed) || errors.Is(err, net.ErrClosed) {
			errLevel = c.Info
		}
		c.Logf(errLevel, "server.Serve return with %v", err)
	}()
	return true
}

// Addr 实际监听的地址,未启动时为配置的地址
func (p *Service) Addr() string {
	p.lock.Lock()
	defer p.lock.Unlock()
	if p.listener != nil {
		return p.listener.Addr().String()
	}
	return p.Conf.Addr
}

// Stop 停止Http服务,关闭端口监听并等待处理中的请求完成
func (p *Service) Stop() bool {
	p.lock.Lock()
	defer p.lock.Unlock()

	if p.server == nil {
		return true
	}

	ok := true
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(p.Conf.ShutdownTimeout)*time.Second)
	defer cancel()
	if err := p.server.Shutdown(ctx); err != nil {
		c.Errorf("shutdown http server error:%v", err)
		if err = p.server.Close(); err != nil {
			c.Errorf("close http server error:%v", err)
		}
		ok = false
	}

	//等待所有的服务
	c.Infof("waiting shutdown")
	p.graceHandler.waitGroup.Wait()
	c.Infof("finish shutdown")

	p.listener = nil
	p.graceHandler = nil
	p.server = nil
	return ok
}
