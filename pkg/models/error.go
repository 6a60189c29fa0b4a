package models

import "encoding/json"

// Error codes let the landing page branch without matching on message text.
const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeInvalidEmail     = "invalid_email"
	ErrCodeNotFound         = "not_found"
	ErrCodeStoreUnavailable = "store_unavailable"
	ErrCodeInternal         = "internal"
)

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func CreateError(code, msg string) []byte {
	err, _ := json.Marshal(ErrorPayload{
		Code:    code,
		Message: msg,
	})
	return err
}
