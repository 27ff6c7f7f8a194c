package utils

import (
	"github.com/gin-gonic/gin"
)

// ErrorBody is the JSON error envelope returned by every handler.
type ErrorBody struct {
	Error    string `json:"error"`
	Detail   string `json:"detail,omitempty"`
	Redirect string `json:"redirect,omitempty"`
}

// ErrorResponse writes the error envelope with the given status code.
func ErrorResponse(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorBody{Error: message})
}

// ErrorResponseDetail writes the error envelope with an extra detail string,
// used to pass backend-provided error text through verbatim.
func ErrorResponseDetail(c *gin.Context, status int, message, detail string) {
	c.JSON(status, ErrorBody{Error: message, Detail: detail})
}

// RedirectResponse writes the error envelope with a redirect hint for the
// front panel (session expired, not logged in).
func RedirectResponse(c *gin.Context, status int, message, location string) {
	c.JSON(status, ErrorBody{Error: message, Redirect: location})
}

// SuccessResponse writes data with a 2xx status code.
func SuccessResponse(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}
