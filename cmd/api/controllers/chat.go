package controllers

import (
	"net/http"

	"git.ruekov.eu/ruakij/chat-relay/cmd/api/logger"
	"git.ruekov.eu/ruakij/chat-relay/cmd/api/models"
	"git.ruekov.eu/ruakij/chat-relay/cmd/api/service"
	"github.com/gin-gonic/gin"
)

type ChatController struct {
	chatService *service.ChatService
}

func NewChatController(chatService *service.ChatService) *ChatController {
	return &ChatController{
		chatService: chatService,
	}
}

func (co ChatController) RegisterRoutes(router *gin.RouterGroup) *gin.RouterGroup {
	router.POST("/chat", co.postChat)
	router.GET("/chat/ws", co.getChatWebsocket)

	return router
}

func (co ChatController) postChat(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		co.reject(c, err)
		return
	}
	logger.Info.Printf("Request data: %s", body)

	conversation, err := co.chatService.ParseConversation(body)
	if err != nil {
		co.reject(c, err)
		return
	}

	context := c.Request.Context()
	dataChan, err := co.chatService.ProcessChatRequestStream(context, models.ChatRequest{
		Messages:  conversation,
		Transport: "http",
	})
	if err != nil {
		co.reject(c, err)
		return
	}

	// Commit the response, everything after this point can only abort the stream
	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	for {
		select {
		case <-context.Done():
			return
		case chunk, ok := <-dataChan:
			if !ok {
				return
			}
			if chunk.Err != nil {
				logger.Error.Printf("Error in POST /api/chat: %s", chunk.Err)
				panic(http.ErrAbortHandler)
			}
			if _, err := c.Writer.Write([]byte(chunk.Text)); err != nil {
				logger.Warn.Printf("Writing to client failed: %s", err)
				return
			}
			c.Writer.Flush()
		}
	}
}

func (co ChatController) reject(c *gin.Context, err error) {
	logger.Error.Printf("Error in %s %s: %s", c.Request.Method, c.FullPath(), err)
	c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
}
