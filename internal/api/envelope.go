package api

import (
	"strconv"

	"github.com/danielgtaylor/huma/v2"
)

// EnvelopeVersion is the version of the response envelope.
const EnvelopeVersion = 1

// Envelope wraps every JSON response.
type Envelope struct {
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// EnvelopeTransformer wraps response bodies in an Envelope.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	if apiErr, ok := v.(*APIError); ok {
		return Envelope{
			Version: EnvelopeVersion,
			Error:   apiErr.Message,
			Code:    apiErr.Code,
			Details: apiErr.Details,
		}, nil
	}

	code, err := strconv.Atoi(status)
	if err != nil {
		code = 200
	}
	if code >= 400 {
		if se, ok := v.(huma.StatusError); ok {
			return Envelope{Version: EnvelopeVersion, Error: se.Error()}, nil
		}
	}
	return Envelope{Version: EnvelopeVersion, Success: code < 400, Data: v}, nil
}
