package code

import (
	"fmt"
	"net/http"
)

// Code 统一业务状态码
type Code struct {
	// 状态码
	code int
	// 状态
	status bool
	// HTTP 状态码
	httpStatus int
	// 错误消息
	Lang lang
	// 数据
	data interface{}
	// 是否含有 Data
	haveData bool
	// 错误详细信息
	details []string
	// 是否含有详情
	haveDetails bool
}

var codes = map[int]string{}

// NewError 注册一个失败状态码
func NewError(code int, l lang) *Code {
	if _, ok := codes[code]; ok {
		panic(fmt.Sprintf("错误码 %d 已经存在，请更换一个", code))
	}
	codes[code] = l.GetMessage()
	return &Code{code: code, status: false, httpStatus: http.StatusOK, Lang: l}
}

// NewSuss 注册一个成功状态码
func NewSuss(code int, l lang) *Code {
	if _, ok := codes[code]; ok {
		panic(fmt.Sprintf("成功码 %d 已经存在，请更换一个", code))
	}
	codes[code] = l.GetMessage()
	return &Code{code: code, status: true, httpStatus: http.StatusOK, Lang: l}
}

// Clone 创建一个新的 Code 副本,而不是修改原对象
func (e *Code) Clone() *Code {
	return &Code{
		code:       e.code,
		status:     e.status,
		httpStatus: e.httpStatus,
		Lang:       e.Lang,
	}
}

// Error 实现 error 接口
func (e *Code) Error() string {
	if e.haveDetails {
		return fmt.Sprintf("code: %d, msg: %s, details: %v", e.code, e.Lang.GetMessage(), e.details)
	}
	return fmt.Sprintf("code: %d, msg: %s", e.code, e.Lang.GetMessage())
}

// Is 状态码相同即视为同一错误，WithDetails 副本与原始状态码匹配
func (e *Code) Is(target error) bool {
	t, ok := target.(*Code)
	if !ok {
		return false
	}
	return e.code == t.code
}

func (e *Code) Code() int {
	return e.code
}

func (e *Code) Status() bool {
	return e.status
}

func (e *Code) Msg() string {
	return e.Lang.GetMessage()
}

// StatusCode 返回 HTTP 状态码
func (e *Code) StatusCode() int {
	if e.httpStatus == 0 {
		return http.StatusOK
	}
	return e.httpStatus
}

// WithStatusCode 声明期设置 HTTP 状态码
func (e *Code) WithStatusCode(status int) *Code {
	e.httpStatus = status
	return e
}

// WithDetails 附加错误详情，返回副本避免污染全局状态码对象
func (e *Code) WithDetails(details ...string) *Code {
	c := e.Clone()
	c.details = details
	c.haveDetails = true
	return c
}

// WithData 附加响应数据，返回副本
func (e *Code) WithData(data interface{}) *Code {
	c := e.Clone()
	c.data = data
	c.haveData = true
	return c
}

func (e *Code) Details() []string {
	return e.details
}

func (e *Code) HaveDetails() bool {
	return e.haveDetails
}

func (e *Code) Data() interface{} {
	return e.data
}

func (e *Code) HaveData() bool {
	return e.haveData
}
