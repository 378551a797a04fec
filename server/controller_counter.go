package server

import (
	"errors"
	"fmt"
	"net/http"

	c "github.com/d0ngw/hitcounter/common"
	"github.com/d0ngw/hitcounter/counter"
	chttp "github.com/d0ngw/hitcounter/http"
)

// CounterController 计数器的增删改查
type CounterController struct {
	chttp.BaseController
	store *counter.Store
	admin bool
}

// NewCounterController create CounterController, Reset is only served when admin is true
func NewCounterController(store *counter.Store, admin bool) *CounterController {
	return &CounterController{
		BaseController: chttp.BaseController{
			Name: "counter",
			Path: "/counters",
			PatternMethods: map[string]string{
				"GET /":          "List",
				"DELETE /":       "Reset",
				"POST /{name}":   "Create",
				"GET /{name}":    "Read",
				"PUT /{name}":    "Update",
				"DELETE /{name}": "Delete",
			},
		},
		store: store,
		admin: admin,
	}
}

// List 列出所有的计数器
func (p *CounterController) List(w http.ResponseWriter, r *http.Request) {
	c.Infof("Request to list all counters...")
	chttp.RenderJSON(w, p.store.List())
}

// Create 创建计数器
func (p *CounterController) Create(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	c.Infof("Request to Create counter: %s...", name)

	cnt, err := p.store.Create(name)
	if err != nil {
		renderStoreError(w, name, err)
		return
	}
	w.Header().Set("Location", chttp.ExternalURL(r, "counters", name))
	chttp.RenderJSONWithStatus(w, http.StatusCreated, cnt)
}

// Read 读取计数器
func (p *CounterController) Read(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	c.Infof("Request to Read counter: %s...", name)

	cnt, err := p.store.Read(name)
	if err != nil {
		renderStoreError(w, name, err)
		return
	}
	chttp.RenderJSON(w, cnt)
}

// Update 计数器加1
func (p *CounterController) Update(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	c.Infof("Request to Update counter: %s...", name)

	cnt, err := p.store.Incr(name)
	if err != nil {
		renderStoreError(w, name, err)
		return
	}
	chttp.RenderJSON(w, cnt)
}

// Delete 删除计数器,不存在时同样返回204
func (p *CounterController) Delete(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	c.Infof("Request to Delete counter: %s...", name)

	p.store.Delete(name)
	w.WriteHeader(http.StatusNoContent)
}

// Reset 删除所有的计数器
func (p *CounterController) Reset(w http.ResponseWriter, r *http.Request) {
	if !p.admin {
		chttp.RenderError(w, http.StatusNotFound, "")
		return
	}
	c.Warnf("Request to Reset all %d counters", p.store.Len())
	p.store.Reset()
	w.WriteHeader(http.StatusNoContent)
}

func renderStoreError(w http.ResponseWriter, name string, err error) {
	switch {
	case errors.Is(err, counter.ErrConflict):
		chttp.RenderError(w, http.StatusConflict, fmt.Sprintf("Counter '%s' exists", name))
	case errors.Is(err, counter.ErrOverflow):
		chttp.RenderError(w, http.StatusConflict, fmt.Sprintf("Counter '%s' reached the max value", name))
	case errors.Is(err, counter.ErrNotFound):
		chttp.RenderError(w, http.StatusNotFound, fmt.Sprintf("Counter '%s' not found", name))
	case errors.Is(err, counter.ErrInvalidName):
		chttp.RenderError(w, http.StatusBadRequest, fmt.Sprintf("Counter name '%s' is invalid", name))
	default:
		c.Errorf("handle counter %s fail,err:%v", name, err)
		chttp.RenderError(w, http.StatusInternalServerError, "")
	}
}
