package http

import (
	"net/http"
)

// Middleware 包装处理函数,在next前后执行额外的处理
type Middleware interface {
	// Handle 返回包装后的处理函数
	Handle(next http.HandlerFunc) http.HandlerFunc
}

// MiddlewareFunc 函数形式的Middleware
type MiddlewareFunc func(next http.HandlerFunc) http.HandlerFunc

// Handle implements Middleware
func (f MiddlewareFunc) Handle(next http.HandlerFunc) http.HandlerFunc {
	return f(next)
}

// StatusRecorder 记录响应状态码的ResponseWriter
type StatusRecorder struct {
	http.ResponseWriter
	Status int
	Bytes  int
}

// NewStatusRecorder 包装w
func NewStatusRecorder(w http.ResponseWriter) *StatusRecorder {
	if r, ok := w.(*StatusRecorder); ok {
		return r
	}
	return &StatusRecorder{ResponseWriter: w}
}

// WriteHeader implements http.ResponseWriter
func (p *StatusRecorder) WriteHeader(status int) {
	if p.Status == 0 {
		p.Status = status
	}
	p.ResponseWriter.WriteHeader(status)
}

func (p *StatusRecorder) Write(b []byte) (int, error) {
	if p.Status == 0 {
		p.Status = http.StatusOK
	}
	n, err := p.ResponseWriter.Write(b)
	p.Bytes += n
	return n, err
}

// StatusCode 响应状态码,未写入时为200
func (p *StatusRecorder) StatusCode() int {
	if p.Status == 0 {
		return http.StatusOK
	}
	return p.Status
}

// Unwrap 支持http.ResponseController
func (p *StatusRecorder) Unwrap() http.ResponseWriter {
	return p.ResponseWriter
}
