package handler

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"almacen-front/internal/domain/product"
	"almacen-front/internal/logger"
	"almacen-front/internal/scale"
	"almacen-front/internal/scanner"
	movementUC "almacen-front/internal/usecase/movement"
	"almacen-front/pkg/utils"
)

// PanelHandler serves the workstation-level state: the scale reading and
// the keystroke bridge the front panel streams raw keys through. Decoded
// scans come back on the same socket, already resolved against the
// catalog.
type PanelHandler struct {
	feed      *scale.Feed
	movements *movementUC.Service
	window    time.Duration
	upgrader  websocket.Upgrader
}

func NewPanelHandler(feed *scale.Feed, movements *movementUC.Service, scanWindow time.Duration) *PanelHandler {
	return &PanelHandler{
		feed:      feed,
		movements: movements,
		window:    scanWindow,
		upgrader: websocket.Upgrader{
			// The panel runs on the same workstation; origin checks are
			// handled by the CORS layer for the rest of the API.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (h *PanelHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/scale", h.Scale)
	router.GET("/scale/qty", h.ScaleQty)
	router.GET("/ws/keys", h.Keys)
}

// Scale returns the current reading snapshot.
func (h *PanelHandler) Scale(c *gin.Context) {
	utils.SuccessResponse(c, http.StatusOK, h.feed.Reading())
}

// ScaleQty returns the reading as a submission-ready quantity for the
// given unit: rounded to three decimals, refused for discrete units or a
// disconnected feed.
func (h *PanelHandler) ScaleQty(c *gin.Context) {
	unit := product.Unit(c.Query("unit"))
	if !product.IsValidUnit(unit) {
		utils.ErrorResponse(c, http.StatusBadRequest, "unit must be one of the catalog units")
		return
	}

	qty, readUnit, err := h.movements.ScaleQty(unit)
	if err != nil {
		writeError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, gin.H{"qty": qty, "unit": readUnit})
}

type keyFrame struct {
	Key string `json:"key"`
}

type scanEvent struct {
	Type  string `json:"type"`
	Code  string `json:"code"`
	SKU   string `json:"sku,omitempty"`
	Name  string `json:"name,omitempty"`
	Unit  string `json:"unit,omitempty"`
	Error string `json:"error,omitempty"`
}

// Keys upgrades to a websocket, feeds every key frame into a decoder
// scoped to this connection, and pushes a scan event whenever a complete
// code arrives. Closing the socket closes the decoder, leaving no
// lingering timers.
func (h *PanelHandler) Keys(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn("Keystroke bridge upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	var writeMu sync.Mutex
	ctx := c.Request.Context()

	decoder := scanner.NewDecoder(func(code string) {
		event := scanEvent{Type: "scan", Code: code}
		if p, err := h.movements.ResolveScan(ctx, code); err != nil {
			event.Error = err.Error()
		} else {
			event.SKU = p.SKU
			event.Name = p.Name
			event.Unit = string(p.Unit)
		}

		writeMu.Lock()
		defer writeMu.Unlock()
		if err := conn.WriteJSON(event); err != nil {
			logger.Debug("Failed to push scan event", zap.Error(err))
		}
	}, h.window)
	defer decoder.Close()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var frame keyFrame
		if err := json.Unmarshal(payload, &frame); err != nil || frame.Key == "" {
			continue
		}
		decoder.Key(frame.Key)
	}
}
