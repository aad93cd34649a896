package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) HandleAnalyses(c *gin.Context) {
	h.writeJSON(c, h.analyses.GetAll())
}

func (h *Handler) HandleAnalysisDetail(c *gin.Context) {
	analysis, exists := h.analyses.Get(c.Param("id"))
	if !exists {
		h.writeError(c, "Analysis not found", http.StatusNotFound)
		return
	}
	h.writeJSON(c, analysis)
}
