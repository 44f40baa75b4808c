package views

import (
	"log"
	"time"

	"github.com/GrainArc/CragTopo/services"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// EventsHandler 拓扑图变更推送，只读
type EventsHandler struct {
	topos *services.TopoService
	hub   services.EventHub
}

func NewEventsHandler(topos *services.TopoService, hub services.EventHub) *EventsHandler {
	return &EventsHandler{topos: topos, hub: hub}
}

// Stream 订阅一张拓扑图的线条变更
func (h *EventsHandler) Stream(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if _, err := h.topos.Get(c.Request.Context(), id); err != nil {
		abortWithError(c, err)
		return
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade to websocket: %v", err)
		return
	}
	defer conn.Close()

	events, unsubscribe := h.hub.Subscribe(id)
	defer unsubscribe()

	// 读协程只用于感知连接关闭
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-closed:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(ev); err != nil {
				log.Printf("推送拓扑图 %d 变更失败: %v", id, err)
				return
			}
		case <-ticker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
