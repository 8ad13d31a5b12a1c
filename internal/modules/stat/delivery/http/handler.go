package handler

import (
	"net/http"

	stat "anoa.com/eventhub/internal/modules/stat/service"
	"anoa.com/eventhub/pkg/response"
	"github.com/gin-gonic/gin"
)

type StatHandler struct {
	statService stat.StatService
}

func NewStatHandler(statService stat.StatService) *StatHandler {
	return &StatHandler{
		statService: statService,
	}
}

func (h *StatHandler) GetTotalUsers(c *gin.Context) {
	count, err := h.statService.GetTotalUsers(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total_users": count,
	})
}

func (h *StatHandler) GetEventStats(c *gin.Context) {
	eventID, err := response.ParamUUID(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	stats, err := h.statService.GetEventStats(c.Request.Context(), userID, eventID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
