package http

import (
	"net/http"
	"net/url"
	"strings"

	c "github.com/d0ngw/hitcounter/common"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrorResp JSON错误响应
type ErrorResp struct {
	Status  int    `json:"status"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// RenderJSON 渲染JSON,状态码为200
func RenderJSON(w http.ResponseWriter, jsonData interface{}) {
	RenderJSONWithStatus(w, http.StatusOK, jsonData)
}

// RenderJSONWithStatus 使用指定的状态码渲染JSON
func RenderJSONWithStatus(w http.ResponseWriter, status int, jsonData interface{}) {
	data, err := json.Marshal(jsonData)
	if err != nil {
		c.Errorf("marshal json fail,err:%v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	data = append(data, '\n')
	if _, err = w.Write(data); err != nil {
		c.Debugf("write response fail,err:%v", err)
	}
}

// RenderError 渲染JSON错误,message为空时使用状态码的描述
func RenderError(w http.ResponseWriter, status int, message string) {
	reason := http.StatusText(status)
	if message == "" {
		message = reason
	}
	RenderJSONWithStatus(w, status, &ErrorResp{Status: status, Error: reason, Message: message})
}

// Scheme 请求的协议,优先使用代理设置的X-Forwarded-Proto
func Scheme(r *http.Request) string {
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		proto = strings.ToLower(strings.TrimSpace(strings.Split(proto, ",")[0]))
		if proto == "http" || proto == "https" {
			return proto
		}
	}
	if r.TLS != nil {
		return "https"
	}
	return "http"
}

// ExternalURL 根据请求的协议和Host构建path的绝对URL
func ExternalURL(r *http.Request, segments ...string) string {
	u := url.URL{
		Scheme: Scheme(r),
		Host:   r.Host,
		Path:   "/" + strings.Join(segments, "/"),
	}
	return u.String()
}
