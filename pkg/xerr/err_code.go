package xerr

const (
	ErrInternalServer = 500 // HTTP 500

	ErrBadRequest       = 1000 // HTTP 400
	ErrMissingParameter = 1002 // HTTP 400
	ErrInvalidJSON      = 1003 // HTTP 400
	ErrUnknownParameter = 1004 // HTTP 400

	ErrNotFound         = 1300 // HTTP 404
	ErrResourceNotFound = 1301 // HTTP 404
	ErrJobNotFound      = 1302 // HTTP 404
	ErrSecretNotFound   = 1303 // HTTP 424, 运行时密钥缺失

	ErrExternalCall = 1500 // HTTP 502
)

// HTTPStatus 将业务错误码映射为 HTTP 状态码
func HTTPStatus(code int) int {
	switch {
	case code == ErrSecretNotFound:
		return 424
	case code == ErrExternalCall:
		return 502
	case code >= ErrNotFound && code < ErrNotFound+100:
		return 404
	case code >= ErrBadRequest && code < ErrBadRequest+100:
		return 400
	default:
		return 500
	}
}
