package api

import "github.com/quarantaenehelden/notification-api/store"

var (
	errorMessageMap = map[int64]string{
		999:  "internal server error",
		1001: "invalid authorization format",

		1010: "invalid parameters",
		1011: "cannot parse request",

		1100: store.ErrAccountNotFound.Error(),

		1200: store.ErrRequestNotExist.Error(),
		1201: store.ErrOfferNotExist.Error(),
	}

	errorInternalServer             = errorJSON(999)
	errorInvalidAuthorizationFormat = errorJSON(1001)

	errorInvalidParameters  = errorJSON(1010)
	errorCannotParseRequest = errorJSON(1011)

	errorAccountNotFound = errorJSON(1100)

	errorRequestNotExist = errorJSON(1200)
	errorOfferNotExist   = errorJSON(1201)
)

type ErrorResponse struct {
	Code    int64  `json:"code"`
	Message string `json:"message"`
}

func errorJSON(code int64) ErrorResponse {
	var message string
	if msg, ok := errorMessageMap[code]; ok {
		message = msg
	} else {
		message = "unknown"
	}

	return ErrorResponse{
		Code:    code,
		Message: message,
	}
}
