package core

import (
	"fmt"
	"strings"

	"github.com/iceymoss/go-task-dropbox/pkg/xerr"
)

// MissingArgumentError 构造期缺少必填参数
type MissingArgumentError struct {
	Task string
	Arg  string
}

func (e *MissingArgumentError) Error() string {
	return fmt.Sprintf("%s: missing required argument %q", e.Task, e.Arg)
}

func (e *MissingArgumentError) Code() int { return xerr.ErrMissingParameter }

// UnknownArgumentError 出现未声明的参数
type UnknownArgumentError struct {
	Task string
	Args []string
}

func (e *UnknownArgumentError) Error() string {
	return fmt.Sprintf("%s: unknown argument(s) %s", e.Task, strings.Join(e.Args, ", "))
}

func (e *UnknownArgumentError) Code() int { return xerr.ErrUnknownParameter }

// ExecutionError 外部调用失败，Err 为原始错误
type ExecutionError struct {
	Task string
	Op   string
	Err  error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("%s: %s failed: %v", e.Task, e.Op, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

func (e *ExecutionError) Code() int { return xerr.ErrExternalCall }
