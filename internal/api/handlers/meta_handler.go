package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type MetaHandler struct {
	name    string
	version string
}

func NewMetaHandler(name, version string) *MetaHandler {
	return &MetaHandler{name: name, version: version}
}

func (h *MetaHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": h.name,
		"version": h.version,
		"docs":    "/docs",
	})
}

func (h *MetaHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}
