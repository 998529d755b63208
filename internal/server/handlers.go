package server

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// receiveNotification buffers the whole body, answers 200 and hands the body
// to the dispatcher. The pipeline outcome never reaches the response.
func (s *Server) receiveNotification(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		slog.Error("Error reading request", "error", err)
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	slog.Debug("Request body", "body", string(body))

	c.Status(http.StatusOK)
	c.Writer.WriteHeaderNow()

	go s.dispatcher.Handle(s.ctx, body)
}
