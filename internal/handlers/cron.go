package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"opensocial/internal/logger"
	"opensocial/internal/services"
)

type CronHandler struct {
	ranking *services.RankingService
}

func NewCronHandler(ranking *services.RankingService) *CronHandler {
	return &CronHandler{ranking: ranking}
}

// RecomputeScores runs the score decay pass. Reached only through the
// cron secret middleware.
func (h *CronHandler) RecomputeScores(c *gin.Context) {
	n, err := h.ranking.RecomputeAllScores(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	logger.Get().Info().Int64("posts", n).Msg("score recompute triggered via cron endpoint")
	c.JSON(http.StatusOK, gin.H{"updated": n})
}
