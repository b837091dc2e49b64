package transport

import "time"

// ErrorBody is returned for every failed request. The front end reads Error.
type ErrorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// OKBody acknowledges a request without a resource in the response.
type OKBody struct {
	OK bool `json:"ok"`
}

// HealthBody reports dependency state for GET /api/health.
type HealthBody struct {
	OK        bool      `json:"ok"`
	DB        bool      `json:"db"`
	Cache     *bool     `json:"cache,omitempty"`
	Uploads   bool      `json:"uploads"`
	CheckedAt time.Time `json:"checked_at"`
}

func NewError(code string, message string) ErrorBody {
	return ErrorBody{Error: message, Code: code}
}
