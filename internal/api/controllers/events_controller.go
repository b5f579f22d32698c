package controllers

import (
	"github.com/gin-gonic/gin"

	"learnez/internal/realtime"
	"learnez/pkg/utils"
)

type EventsController struct {
	hub *realtime.SSEHub
}

func NewEventsController(hub *realtime.SSEHub) *EventsController {
	return &EventsController{hub: hub}
}

// Stream godoc
// @Summary Stream the caller's realtime events
// @Description Server-sent events: attempt-updated, milestone-created, roadmap-ready, roadmap-failed
// @Tags Events
// @Produce text/event-stream
// @Security BearerAuth
// @Router /events [get]
func (e *EventsController) Stream(c *gin.Context) {
	userID := c.GetString(utils.ContextUserIDKey)

	client := e.hub.NewSSEClient(userID)
	e.hub.AddChannel(client, realtime.UserChannel(userID))
	defer e.hub.CloseClient(client)

	utils.LoggerFrom(c).Debug("event stream opened", "client_id", client.ID)
	e.hub.ServeHTTP(c.Writer, c.Request, client)
}
