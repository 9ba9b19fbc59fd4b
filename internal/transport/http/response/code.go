package response

import "net/http"

const (
	MsgRouteNotFound = "Route not found"
	MsgInternal      = "Internal server error"
	MsgBadBody       = "Invalid request body"
)

// DefaultMsg 没有业务提示时按状态码给出的默认文案
var DefaultMsg = map[int]string{
	http.StatusBadRequest:            "Bad Request",
	http.StatusUnauthorized:          "Unauthorized",
	http.StatusForbidden:             "Forbidden",
	http.StatusNotFound:              "Not Found",
	http.StatusConflict:              "Conflict",
	http.StatusRequestEntityTooLarge: "Request body too large",
	http.StatusTooManyRequests:       "Too many requests",
	http.StatusInternalServerError:   MsgInternal,
	http.StatusServiceUnavailable:    "Server busy",
}
