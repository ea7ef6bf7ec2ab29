package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/mockinterview/internal/services"
)

// SessionHandler hands out anonymous session tokens. A token only selects which user
// owns new interviews; no route requires one.
type SessionHandler struct {
	svc services.UserService
}

func NewSessionHandler(svc services.UserService) *SessionHandler {
	return &SessionHandler{svc: svc}
}

func (h *SessionHandler) StartAnonymous(c *gin.Context) {
	sess, err := h.svc.StartAnonymous(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}
