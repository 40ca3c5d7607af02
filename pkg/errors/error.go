package errors

import (
	"errors"
	"fmt"

	"github.com/iceymoss/go-task-dropbox/pkg/xerr"
)

type CodeMsg struct {
	Code int    // 错误码
	Msg  string // 错误消息
	Err  error  // 原始错误
}

// 实现 error 接口
func (e *CodeMsg) Error() string {
	return fmt.Sprintf("code=%d, msg=%s", e.Code, e.Msg)
}

func (e *CodeMsg) Unwrap() error {
	return e.Err
}

// HTTPStatus 对应的 HTTP 状态码
func (e *CodeMsg) HTTPStatus() int {
	return xerr.HTTPStatus(e.Code)
}

// New 构造函数
func New(code int, msg string) error {
	return &CodeMsg{Code: code, Msg: msg}
}

// Wrap 携带原始错误
func Wrap(code int, err error) *CodeMsg {
	return &CodeMsg{Code: code, Msg: err.Error(), Err: err}
}

// coder 由各业务错误类型实现，用于归类
type coder interface {
	Code() int
}

// FromError 把任意错误归一为 CodeMsg
// 错误链上第一个实现 Code() 的错误决定错误码，否则按服务器内部错误处理
func FromError(err error) *CodeMsg {
	if err == nil {
		return nil
	}
	var cm *CodeMsg
	if errors.As(err, &cm) {
		return cm
	}
	var c coder
	if errors.As(err, &c) {
		return Wrap(c.Code(), err)
	}
	return Wrap(xerr.ErrInternalServer, err)
}
