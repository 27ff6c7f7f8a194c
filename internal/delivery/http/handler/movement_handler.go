package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"almacen-front/internal/domain/albaran"
	"almacen-front/internal/domain/movement"
	movementUC "almacen-front/internal/usecase/movement"
	"almacen-front/pkg/utils"
)

type MovementHandler struct {
	service *movementUC.Service
}

func NewMovementHandler(service *movementUC.Service) *MovementHandler {
	return &MovementHandler{service: service}
}

func (h *MovementHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/products", h.Products)
	router.POST("/entrada", h.SubmitEntrada)
	router.POST("/salida", h.SubmitSalida)
	router.GET("/movements", h.History)
}

func (h *MovementHandler) Products(c *gin.Context) {
	catalog, err := h.service.RefreshCatalog(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, catalog)
}

func (h *MovementHandler) SubmitEntrada(c *gin.Context) {
	var req movementUC.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid movement line")
		return
	}
	req.Note = utils.SanitizeNote(req.Note)

	result, err := h.service.SubmitEntrada(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusCreated, result)
}

func (h *MovementHandler) SubmitSalida(c *gin.Context) {
	var req movementUC.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid movement line")
		return
	}
	req.OrderRef = utils.SanitizeString(req.OrderRef)

	result, err := h.service.SubmitSalida(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusCreated, result)
}

// History serves the unified movement list, normalized, deduplicated and
// newest first, optionally filtered by type and free-text query.
func (h *MovementHandler) History(c *gin.Context) {
	list, err := h.service.History(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	typeFilter := albaran.Type(c.Query("type"))
	query := c.Query("q")

	filtered := make([]movement.Movement, 0, len(list))
	for _, m := range list {
		if albaran.IsValidType(typeFilter) && m.Type != typeFilter {
			continue
		}
		if !m.Matches(query) {
			continue
		}
		filtered = append(filtered, m)
	}

	utils.SuccessResponse(c, http.StatusOK, filtered)
}
