package handlers

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"liveshop/internal/hub"
	"liveshop/pkg/logger"
	"liveshop/pkg/utils"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true // clients connect from arbitrary origins
	},
}

type WSHandler struct {
	hub *hub.Hub
	log logger.Logger
}

func NewWSHandler(h *hub.Hub, log logger.Logger) *WSHandler {
	return &WSHandler{hub: h, log: log}
}

// HandleConnection upgrades the request and hands the connection to the hub.
func (h *WSHandler) HandleConnection(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.log.Error("Failed to upgrade connection", "error", err)
		return nil // upgrader already wrote the error response
	}

	client := hub.NewClient(utils.GenerateID("conn"), h.hub, conn, h.log)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
	return nil
}
