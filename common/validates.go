package common

import (
	"regexp"
	"unicode/utf8"
)

// StrValidator 字符串验证器
type StrValidator interface {
	//Validate 验证字符串参数是否符合规则
	Validate(param string) bool
}

// StringLenValidator 字符串长度验证,按字节计算
type StringLenValidator struct {
	min int //最小长度
	max int //最大长度
}

// NewStringLenValidator 创建长度验证器
func NewStringLenValidator(min, max int) *StringLenValidator {
	return &StringLenValidator{min: min, max: max}
}

// Validate 验证字符串的长度
func (p *StringLenValidator) Validate(param string) bool {
	strLen := len(param)
	return p.min <= strLen && strLen <= p.max
}

// UTF8Validator 合法的UTF-8字符串
type UTF8Validator struct {
}

// Validate 验证字符串是否是合法的UTF-8编码
func (p *UTF8Validator) Validate(param string) bool {
	return utf8.ValidString(param)
}

// RegExValidator 正则表达式验证
type RegExValidator struct {
	pattern *regexp.Regexp //正则表达式
	empty   bool           //是否允许为空
}

// NewRegExValidator 创建正则表达式验证器
func NewRegExValidator(pattern *regexp.Regexp, allowEmpty bool) *RegExValidator {
	return &RegExValidator{pattern: pattern, empty: allowEmpty}
}

// Validate 正则表达式验证
func (p *RegExValidator) Validate(param string) bool {
	if param == "" && p.empty {
		return true
	}
	return p.pattern.MatchString(param)
}

// Validators 组合多个验证器,全部通过才算通过
type Validators []StrValidator

// Validate implements StrValidator
func (p Validators) Validate(param string) bool {
	for _, v := range p {
		if !v.Validate(param) {
			return false
		}
	}
	return true
}
