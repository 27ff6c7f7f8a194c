package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"almacen-front/internal/backend"
	"almacen-front/internal/middleware"
	appErrors "almacen-front/pkg/errors"
	"almacen-front/pkg/utils"
)

// writeError maps a failure to the response envelope. Backend-provided
// error text passes through verbatim; validation failures never reached
// the network and answer 400/409; anything else degrades to a generic
// notice, never a crash.
func writeError(c *gin.Context, err error) {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Status == http.StatusUnauthorized {
			utils.RedirectResponse(c, http.StatusUnauthorized, "session expired", middleware.LoginPath)
			return
		}
		detail := apiErr.Detail
		if detail == "" {
			detail = "the warehouse backend rejected the request"
		}
		utils.ErrorResponseDetail(c, http.StatusBadGateway, "backend error", detail)
		return
	}

	var appErr *appErrors.AppError
	if errors.As(err, &appErr) {
		status := http.StatusBadRequest
		switch appErr.Code {
		case "BUSY":
			status = http.StatusConflict
		case "SCALE_OFFLINE":
			status = http.StatusServiceUnavailable
		case "NO_REVIEW":
			status = http.StatusNotFound
		}
		utils.ErrorResponse(c, status, appErr.Message)
		return
	}

	utils.ErrorResponse(c, http.StatusBadGateway, "request failed, please retry")
}
