// Package server exposes the HTTP surface: run triggering and history.
package server

import (
	"github.com/gin-gonic/gin"

	"github.com/hud-govt-nz/hud-automate/internal/orchestrator"
	"github.com/hud-govt-nz/hud-automate/internal/server/handler"
)

func NewRouter(orc *orchestrator.Orchestrator, webhookSecret string) *gin.Engine {
	h := handler.New(orc, webhookSecret)

	r := gin.New()
	r.Use(gin.Recovery())
	r.POST("/trigger", h.TriggerRun)
	r.GET("/history", h.ListHistory)
	r.GET("/history/:id", h.HistoryDetail)
	return r
}
