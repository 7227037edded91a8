package controllers

import (
	"net/http"

	"git.ruekov.eu/ruakij/chat-relay/cmd/api/models"
	"git.ruekov.eu/ruakij/chat-relay/cmd/api/service"
	"github.com/gin-gonic/gin"
)

type StatusController struct {
	chatService *service.ChatService
}

func NewStatusController(chatService *service.ChatService) *StatusController {
	return &StatusController{
		chatService: chatService,
	}
}

func (co StatusController) RegisterRoutes(router *gin.RouterGroup) *gin.RouterGroup {
	router.GET("/status", co.getStatus)
	router.GET("/status/streams/:id", co.getStream)

	return router
}

func (co StatusController) getStatus(c *gin.Context) {
	c.JSON(http.StatusOK, models.Status{
		Object:        "status",
		Model:         co.chatService.Model(),
		ActiveStreams: co.chatService.ActiveStreams(),
		Streams:       co.chatService.Streams(),
	})
}

func (co StatusController) getStream(c *gin.Context) {
	info, ok := co.chatService.Stream(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "stream not found"})
		return
	}
	c.JSON(http.StatusOK, info)
}
