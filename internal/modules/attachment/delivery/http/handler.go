package handler

import (
	"fmt"
	"net/http"

	attachment "anoa.com/eventhub/internal/modules/attachment/service"
	"anoa.com/eventhub/pkg/response"
	"github.com/gin-gonic/gin"
)

// MaxImageSize caps a single event image upload.
const MaxImageSize = 5 << 20

type AttachmentHandler struct {
	service attachment.AttachmentService
}

func NewAttachmentHandler(service attachment.AttachmentService) *AttachmentHandler {
	return &AttachmentHandler{service: service}
}

// UploadImage stores an image for later use in an event description or
// cover. Images not bound to an event are removed by the cleanup job.
func (h *AttachmentHandler) UploadImage(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	if file.Size > MaxImageSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error": fmt.Sprintf("image exceeds %d MB", MaxImageSize>>20),
		})
		return
	}

	resp, err := h.service.UploadImage(c.Request.Context(), userID, file)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}
