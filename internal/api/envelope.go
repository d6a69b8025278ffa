package api

import (
	"net/http"
	"strconv"

	"github.com/danielgtaylor/huma/v2"
)

// EnvelopeVersion is the current response envelope version.
const EnvelopeVersion = 1

// Envelope is the JSON shape of every API response.
type Envelope struct {
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// EnvelopeTransformer wraps huma response bodies in an Envelope.
// Error bodies (*APIError) become failed envelopes carrying the message and code.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	if env, ok := v.(*Envelope); ok {
		return env, nil
	}

	if apiErr, ok := v.(*APIError); ok {
		return &Envelope{
			Version: EnvelopeVersion,
			Success: false,
			Error:   apiErr.Message,
			Code:    apiErr.Code,
			Details: apiErr.Details,
		}, nil
	}

	if code, err := strconv.Atoi(status); err == nil && code >= http.StatusBadRequest {
		// Huma's own error models (e.g. schema validation) when no hook is installed.
		if model, ok := v.(*huma.ErrorModel); ok {
			return &Envelope{
				Version: EnvelopeVersion,
				Success: false,
				Error:   model.Detail,
				Code:    statusToCode(code),
				Details: model.Errors,
			}, nil
		}
	}

	return &Envelope{
		Version: EnvelopeVersion,
		Success: true,
		Data:    v,
	}, nil
}
