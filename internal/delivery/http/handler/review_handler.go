package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"almacen-front/internal/backend"
	"almacen-front/internal/domain/albaran"
	"almacen-front/internal/session"
	reviewUC "almacen-front/internal/usecase/review"
	"almacen-front/pkg/utils"
)

// maxUploadBytes caps OCR uploads; delivery-note photos and PDFs stay
// well under this.
const maxUploadBytes = 10 << 20

type ReviewHandler struct {
	api     *backend.Client
	store   *session.Store
	service *reviewUC.Service
}

func NewReviewHandler(api *backend.Client, store *session.Store, service *reviewUC.Service) *ReviewHandler {
	return &ReviewHandler{api: api, store: store, service: service}
}

func (h *ReviewHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/ocr", h.Upload)

	review := router.Group("/ocr/review")
	{
		review.GET("", h.Current)
		review.PUT("/type", h.SetType)
		review.POST("/lines", h.AppendLine)
		review.PATCH("/lines/:idx", h.UpdateLine)
		review.DELETE("/lines/:idx", h.RemoveLine)
		review.POST("/commit", h.Commit)
	}
}

// Upload sends the document for extraction and seeds a review from the
// candidate items. Zero extracted items still opens the review; the
// operator adds lines by hand.
func (h *ReviewHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "select a file to analyze")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "failed to read upload")
		return
	}
	if len(content) > maxUploadBytes {
		utils.ErrorResponse(c, http.StatusRequestEntityTooLarge, "file is too large")
		return
	}

	filename := utils.SanitizeFilename(header.Filename)
	result, err := h.api.UploadOCR(c.Request.Context(), filename, content, h.store.SessionKey())
	if err != nil {
		writeError(c, err)
		return
	}

	review := h.service.Start(result.Items, filename, nil)

	message := "analyzed: review the extracted lines"
	if len(result.Items) == 0 {
		message = "analyzed: 0 items, review or add lines manually"
	}
	utils.SuccessResponse(c, http.StatusOK, gin.H{
		"review":  review,
		"message": message,
	})
}

func (h *ReviewHandler) Current(c *gin.Context) {
	review, ok := h.service.Current()
	if !ok {
		utils.ErrorResponse(c, http.StatusNotFound, "no review in progress")
		return
	}
	utils.SuccessResponse(c, http.StatusOK, review)
}

type setTypeRequest struct {
	Type string `json:"type" binding:"required"`
}

func (h *ReviewHandler) SetType(c *gin.Context) {
	var req setTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "type is required")
		return
	}
	if err := h.service.SetType(albaran.Type(req.Type)); err != nil {
		writeError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, gin.H{"ok": true})
}

func (h *ReviewHandler) AppendLine(c *gin.Context) {
	if err := h.service.AppendLine(); err != nil {
		writeError(c, err)
		return
	}
	review, _ := h.service.Current()
	utils.SuccessResponse(c, http.StatusOK, review)
}

func (h *ReviewHandler) UpdateLine(c *gin.Context) {
	idx, err := strconv.Atoi(c.Param("idx"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid line index")
		return
	}

	var patch reviewUC.LinePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid line patch")
		return
	}

	if err := h.service.UpdateLine(idx, patch); err != nil {
		writeError(c, err)
		return
	}
	review, _ := h.service.Current()
	utils.SuccessResponse(c, http.StatusOK, review)
}

func (h *ReviewHandler) RemoveLine(c *gin.Context) {
	idx, err := strconv.Atoi(c.Param("idx"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid line index")
		return
	}

	if err := h.service.RemoveLine(idx); err != nil {
		writeError(c, err)
		return
	}
	review, _ := h.service.Current()
	utils.SuccessResponse(c, http.StatusOK, review)
}

// Commit validates and submits the reviewed batch.
func (h *ReviewHandler) Commit(c *gin.Context) {
	var req reviewUC.CommitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid commit request")
		return
	}

	outcome, err := h.service.Commit(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, outcome)
}
