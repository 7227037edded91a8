package controllers

import (
	"net/http"
	"strings"

	"git.ruekov.eu/ruakij/chat-relay/cmd/api/logger"
	"git.ruekov.eu/ruakij/chat-relay/cmd/api/models"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// CloseRejected mirrors a 400 response on websocket connections
const CloseRejected = 4400

// Control frames carry at most 125 bytes, two of them are the close code
const maxCloseReason = 123

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func (co ChatController) getChatWebsocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already replied with an error status
		logger.Warn.Printf("Websocket upgrade failed: %s", err)
		return
	}
	defer conn.Close()

	_, body, err := conn.ReadMessage()
	if err != nil {
		logger.Warn.Printf("Reading websocket request failed: %s", err)
		return
	}
	logger.Info.Printf("Request data: %s", body)

	conversation, err := co.chatService.ParseConversation(body)
	if err != nil {
		co.closeWebsocket(conn, CloseRejected, err)
		return
	}

	dataChan, err := co.chatService.ProcessChatRequestStream(c.Request.Context(), models.ChatRequest{
		Messages:  conversation,
		Transport: "websocket",
	})
	if err != nil {
		co.closeWebsocket(conn, CloseRejected, err)
		return
	}

	for chunk := range dataChan {
		if chunk.Err != nil {
			co.closeWebsocket(conn, websocket.CloseInternalServerErr, chunk.Err)
			return
		}
		if err := conn.WriteMessage(websocket.TextMessage, []byte(chunk.Text)); err != nil {
			// The producer stops once the request context ends with this handler
			logger.Warn.Printf("Writing to websocket failed: %s", err)
			return
		}
	}

	co.closeWebsocket(conn, websocket.CloseNormalClosure, nil)
}

func (co ChatController) closeWebsocket(conn *websocket.Conn, code int, err error) {
	reason := ""
	if err != nil {
		logger.Error.Printf("Error in GET /api/chat/ws: %s", err)
		reason = err.Error()
		if len(reason) > maxCloseReason {
			reason = strings.ToValidUTF8(reason[:maxCloseReason], "")
		}
	}

	message := websocket.FormatCloseMessage(code, reason)
	if err := conn.WriteMessage(websocket.CloseMessage, message); err != nil {
		logger.Warn.Printf("Sending websocket close failed: %s", err)
	}
}
