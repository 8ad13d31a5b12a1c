package handler

import (
	"net/http"
	"net/url"

	line "anoa.com/eventhub/internal/modules/line/service"
	"anoa.com/eventhub/pkg/response"
	"github.com/gin-gonic/gin"
)

type LineHandler struct {
	lineService line.LineService
	frontendURL string
}

func NewLineHandler(lineService line.LineService, frontendURL string) *LineHandler {
	return &LineHandler{
		lineService: lineService,
		frontendURL: frontendURL,
	}
}

func (h *LineHandler) Login(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	authURL, err := h.lineService.LoginURL(userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": authURL})
}

// Callback is reached by the browser after LINE Login, so it always redirects back to the frontend.
func (h *LineHandler) Callback(c *gin.Context) {
	target := h.frontendURL + "/settings?line=bound"
	if err := h.lineService.Callback(c.Request.Context(), c.Query("code"), c.Query("state")); err != nil {
		target = h.frontendURL + "/settings?line=error&reason=" + url.QueryEscape(err.Error())
	}
	c.Redirect(http.StatusFound, target)
}

func (h *LineHandler) Unbind(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.lineService.Unbind(c.Request.Context(), userID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "LINE account unbound"})
}
