package server

import (
	"net/http"

	c "github.com/d0ngw/hitcounter/common"
	chttp "github.com/d0ngw/hitcounter/http"
)

// Version 服务的版本
const Version = "1.0.0"

// IndexController 健康检查和服务信息
type IndexController struct {
	chttp.BaseController
}

// NewIndexController create IndexController
func NewIndexController() *IndexController {
	return &IndexController{
		BaseController: chttp.BaseController{
			Name: "index",
			Path: "/",
			PatternMethods: map[string]string{
				"GET /health": "Health",
				"GET /{$}":    "Index",
			},
		},
	}
}

// Health 健康检查
func (p *IndexController) Health(w http.ResponseWriter, r *http.Request) {
	chttp.RenderJSON(w, map[string]string{"status": "OK"})
}

type indexResp struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Version string `json:"version"`
	URL     string `json:"url"`
}

// Index 服务信息
func (p *IndexController) Index(w http.ResponseWriter, r *http.Request) {
	c.Infof("Request for Base URL")
	chttp.RenderJSON(w, &indexResp{
		Status:  http.StatusOK,
		Message: "Hit Counter Service",
		Version: Version,
		URL:     chttp.ExternalURL(r, "counters"),
	})
}
