package api

import (
	"strconv"

	"github.com/danielgtaylor/huma/v2"
)

// EnvelopeVersion is the version of the response envelope. Clients check it
// before reading anything else.
const EnvelopeVersion = 1

// APIEnvelope wraps every successful response body.
type APIEnvelope struct { //nolint:revive // API prefix is intentional for clarity
	Version int  `json:"v"`
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// APIErrorBody is the error object inside an error envelope.
type APIErrorBody struct { //nolint:revive // API prefix is intentional for clarity
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// APIErrorEnvelope wraps every error response body.
type APIErrorEnvelope struct { //nolint:revive // API prefix is intentional for clarity
	Version int          `json:"v"`
	Success bool         `json:"success"`
	Error   APIErrorBody `json:"error"`
}

// EnvelopeTransformer is a huma transformer that wraps response bodies in the
// versioned envelope.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	code, _ := strconv.Atoi(status)

	switch body := v.(type) {
	case *APIError:
		return errorEnvelope(body.Code, body.Message, body.Details), nil
	case error:
		return errorEnvelope(statusToCode(code), body.Error(), nil), nil
	}

	if code >= 400 {
		return errorEnvelope(statusToCode(code), "", v), nil
	}

	return APIEnvelope{
		Version: EnvelopeVersion,
		Success: true,
		Data:    v,
	}, nil
}

func errorEnvelope(code, message string, details any) APIErrorEnvelope {
	return APIErrorEnvelope{
		Version: EnvelopeVersion,
		Success: false,
		Error: APIErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}
