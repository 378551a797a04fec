package http

import (
	"context"
	"net/http"
)

type key int

const (
	handlerKey        key = 1 // 处理器名称的key
	fallbackStatusKey key = 2 // 未匹配请求状态码的key
)

// RequestWithContext 向req的context中设置key = val,返回新的request
func RequestWithContext(req *http.Request, key, val interface{}) *http.Request {
	ctx := req.Context()
	ctx = context.WithValue(ctx, key, val)
	return req.WithContext(ctx)
}

// HandlerName 取得处理当前请求的处理器名称,未匹配到处理器时为空
func HandlerName(req *http.Request) string {
	name, _ := req.Context().Value(handlerKey).(string)
	return name
}

func requestWithHandlerName(req *http.Request, name string) *http.Request {
	return RequestWithContext(req, handlerKey, name)
}
