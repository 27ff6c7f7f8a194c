package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"almacen-front/internal/backend"
	"almacen-front/internal/domain/albaran"
	"almacen-front/internal/session"
	"almacen-front/pkg/utils"
)

type AlbaranHandler struct {
	api   *backend.Client
	store *session.Store
}

func NewAlbaranHandler(api *backend.Client, store *session.Store) *AlbaranHandler {
	return &AlbaranHandler{api: api, store: store}
}

func (h *AlbaranHandler) RegisterRoutes(router *gin.RouterGroup) {
	albaranes := router.Group("/albaranes")
	{
		albaranes.GET("/pending", h.Pending)
		albaranes.GET("/panel", h.Panel)
		albaranes.GET("/:id", h.Detail)
		albaranes.POST("/:id/complete", h.Complete)
	}
}

// Pending lists this client's pending notes of one type.
func (h *AlbaranHandler) Pending(c *gin.Context) {
	typ := albaran.Type(c.Query("type"))
	if !albaran.IsValidType(typ) {
		utils.ErrorResponse(c, http.StatusBadRequest, "type must be incoming or outgoing")
		return
	}

	list, err := h.api.PendingAlbaranes(c.Request.Context(), typ, h.store.SessionKey())
	if err != nil {
		writeError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, list)
}

// Panel serves the pending panel's full render data, catalog included, in
// one request.
func (h *AlbaranHandler) Panel(c *gin.Context) {
	typ := albaran.Type(c.Query("type"))
	if !albaran.IsValidType(typ) {
		utils.ErrorResponse(c, http.StatusBadRequest, "type must be incoming or outgoing")
		return
	}

	catalog, pending, err := h.api.PanelData(c.Request.Context(), typ, h.store.SessionKey())
	if err != nil {
		writeError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, gin.H{
		"catalog": catalog,
		"pending": pending,
	})
}

func (h *AlbaranHandler) Detail(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid albaran id")
		return
	}

	detail, err := h.api.Albaran(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, detail)
}

// Complete marks a pending note completed after the operator's explicit
// confirmation on the panel.
func (h *AlbaranHandler) Complete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid albaran id")
		return
	}

	result, err := h.api.CompleteAlbaran(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, result)
}
