package service

import "errors"

var (
	// ErrNotFound 资源不存在
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput 输入参数不合法
	ErrInvalidInput = errors.New("invalid input")
)
