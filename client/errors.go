package client

import "fmt"

// Kind classifies an API failure by what the caller should do about it.
type Kind string

const (
	KindValidation Kind = "validation" // 400: fix the input
	KindAuth       Kind = "auth"       // 401: sign in again
	KindForbidden  Kind = "forbidden"  // 403: not allowed
	KindNotFound   Kind = "notfound"   // 404: resource missing
	KindMethod     Kind = "method"     // 405: unsupported operation
	KindServer     Kind = "server"     // 429/5xx: backend trouble, retry later
	KindNetwork    Kind = "network"    // transport failure, no response at all
)

// APIError is the single error type every wrapper returns. Message is always
// user-facing Korean text, preferring the server's own message when present.
type APIError struct {
	Kind       Kind
	HTTPStatus int
	Code       int
	Message    string
	cause      error
}

func (e *APIError) Error() string {
	if e.HTTPStatus == 0 {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s (HTTP %d): %s", e.Kind, e.HTTPStatus, e.Message)
}

func (e *APIError) Unwrap() error { return e.cause }

// IsServerError reports whether the failure came from the backend itself.
func (e *APIError) IsServerError() bool { return e.Kind == KindServer }

// IsNetworkError reports whether the request never reached the backend.
func (e *APIError) IsNetworkError() bool { return e.Kind == KindNetwork }

// classify maps an HTTP status and parsed envelope to one APIError. Every
// wrapper funnels failures through here so status handling stays in one place.
func classify(status int, env *envelope) *APIError {
	var kind Kind
	var msg string
	switch {
	case status == 400:
		kind, msg = KindValidation, "요청이 올바르지 않습니다."
	case status == 401:
		kind, msg = KindAuth, "로그인이 필요합니다."
	case status == 403:
		kind, msg = KindForbidden, "접근 권한이 없습니다."
	case status == 404:
		kind, msg = KindNotFound, "요청한 정보를 찾을 수 없습니다."
	case status == 405:
		kind, msg = KindMethod, "지원하지 않는 요청입니다."
	case status == 429:
		kind, msg = KindServer, "요청이 너무 많습니다. 잠시 후 다시 시도해주세요."
	default:
		kind, msg = KindServer, "서버에 문제가 발생했습니다. 잠시 후 다시 시도해주세요."
	}

	e := &APIError{Kind: kind, HTTPStatus: status, Message: msg}
	if env != nil {
		e.Code = env.Code
		if env.Message != "" {
			e.Message = env.Message
		}
	}
	return e
}

// netError wraps a transport-level failure where no HTTP response exists.
func netError(err error) *APIError {
	return &APIError{
		Kind:    KindNetwork,
		Message: "네트워크 연결을 확인해주세요.",
		cause:   err,
	}
}
