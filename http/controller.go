package http

import (
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"unicode"
)

// Controller 接口定义http处理器
type Controller interface {
	// GetName 控制器的名称
	GetName() string
	// GetPath 路径前缀,同一个控制器下的处理方法都挂在该路径下
	GetPath() string
	// GetPatternMethods 返回pattern到处理方法名的映射,pattern可以带http方法前缀,如"POST /{name}"
	GetPatternMethods() map[string]string
}

// BaseController 表示一个控制器
type BaseController struct {
	Name           string            // Controller的名称
	Path           string            // Controller的路径
	PatternMethods map[string]string // pattern -> 方法名
}

// GetName implements Controller
func (p *BaseController) GetName() string {
	return p.Name
}

// GetPath implements Controller
func (p *BaseController) GetPath() string {
	return p.Path
}

// GetPatternMethods implements Controller
func (p *BaseController) GetPatternMethods() map[string]string {
	return p.PatternMethods
}

var handlerFuncType = reflect.TypeOf(http.HandlerFunc(nil))

// reflectHandlers 按PatternMethods查找controller中签名为http.HandlerFunc的可导出方法,
// 返回完整的pattern到处理方法的映射
func reflectHandlers(controller Controller) (handlers map[string]http.HandlerFunc, err error) {
	val := reflect.ValueOf(controller)
	if !val.IsValid() || val.Kind() != reflect.Ptr || val.IsNil() {
		return nil, fmt.Errorf("controller must be a valid pointer")
	}

	handlers = map[string]http.HandlerFunc{}
	for pattern, methodName := range controller.GetPatternMethods() {
		method := val.MethodByName(methodName)
		if !method.IsValid() {
			return nil, fmt.Errorf("can't find method %s in %T", methodName, controller)
		}
		if !method.Type().ConvertibleTo(handlerFuncType) {
			return nil, fmt.Errorf("%T#%s is not a http.HandlerFunc", controller, methodName)
		}
		full := JoinPattern(controller.GetPath(), pattern)
		if _, ok := handlers[full]; ok {
			return nil, fmt.Errorf("duplicate pattern %s in %T", full, controller)
		}
		handlers[full] = method.Convert(handlerFuncType).Interface().(http.HandlerFunc)
	}
	return handlers, nil
}

// JoinPattern 将controller的路径与pattern拼接,保留pattern中的http方法前缀
// 例如("/counters","POST /{name}") -> "POST /counters/{name}"
func JoinPattern(base, pattern string) string {
	var method string
	pattern = strings.TrimSpace(pattern)
	if i := strings.IndexAny(pattern, " \t"); i >= 0 {
		method, pattern = pattern[:i]+" ", strings.TrimSpace(pattern[i+1:])
	}
	base = strings.TrimSuffix(base, "/")
	if base != "" && !strings.HasPrefix(base, "/") {
		base = "/" + base
	}
	pattern = strings.TrimPrefix(pattern, "/")
	if pattern == "" && base != "" {
		return method + base
	}
	return method + base + "/" + pattern
}

// ToUnderlineName 将驼峰命名改为小写的下划线命名
func ToUnderlineName(camelName string) string {
	nameRune := []rune(camelName)
	normalizeName := make([]rune, 0, len(nameRune))

	for ni := 0; ni < len(nameRune); ni++ {
		if ni != 0 && unicode.IsUpper(nameRune[ni]) && unicode.IsLower(nameRune[ni-1]) {
			normalizeName = append(normalizeName, '_')
		}

		r := nameRune[ni]
		if unicode.IsUpper(nameRune[ni]) {
			r = unicode.ToLower(r)
		}
		normalizeName = append(normalizeName, r)
	}
	return string(normalizeName)
}
