package handler

import (
	"net/http"

	"anoa.com/eventhub/internal/modules/form/dto"
	form "anoa.com/eventhub/internal/modules/form/service"
	"anoa.com/eventhub/pkg/response"
	"anoa.com/eventhub/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type FormHandler struct {
	service form.FormService
}

func NewFormHandler(service form.FormService) *FormHandler {
	return &FormHandler{service: service}
}

// ids reads the caller and the :id event parameter.
func ids(c *gin.Context) (userID, eventID uuid.UUID, ok bool) {
	eventID, err := response.ParamUUID(c, "id")
	if err != nil {
		response.ResponseError(c, err)
		return uuid.Nil, uuid.Nil, false
	}

	userID, err = response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return uuid.Nil, uuid.Nil, false
	}
	return userID, eventID, true
}

func (h *FormHandler) GetSchema(c *gin.Context) {
	userID, eventID, ok := ids(c)
	if !ok {
		return
	}

	res, err := h.service.GetSchema(c.Request.Context(), userID, eventID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *FormHandler) SaveSchema(c *gin.Context) {
	userID, eventID, ok := ids(c)
	if !ok {
		return
	}

	var req dto.SaveSchemaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	res, err := h.service.SaveSchema(c.Request.Context(), userID, eventID, req.Schema())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *FormHandler) GetDraft(c *gin.Context) {
	userID, eventID, ok := ids(c)
	if !ok {
		return
	}

	res, err := h.service.GetDraft(c.Request.Context(), userID, eventID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *FormHandler) TogglePersonalField(c *gin.Context) {
	userID, eventID, ok := ids(c)
	if !ok {
		return
	}

	res, err := h.service.TogglePersonalField(c.Request.Context(), userID, eventID, c.Param("field"))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *FormHandler) AddQuestion(c *gin.Context) {
	userID, eventID, ok := ids(c)
	if !ok {
		return
	}

	res, err := h.service.AddQuestion(c.Request.Context(), userID, eventID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, res)
}

func (h *FormHandler) UpdateQuestion(c *gin.Context) {
	userID, eventID, ok := ids(c)
	if !ok {
		return
	}

	var req dto.UpdateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	res, err := h.service.UpdateQuestion(c.Request.Context(), userID, eventID, c.Param("qid"), req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *FormHandler) DeleteQuestion(c *gin.Context) {
	userID, eventID, ok := ids(c)
	if !ok {
		return
	}

	res, err := h.service.DeleteQuestion(c.Request.Context(), userID, eventID, c.Param("qid"))
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *FormHandler) DiscardDraft(c *gin.Context) {
	userID, eventID, ok := ids(c)
	if !ok {
		return
	}

	if err := h.service.DiscardDraft(c.Request.Context(), userID, eventID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "draft discarded"})
}

func (h *FormHandler) SaveDraft(c *gin.Context) {
	userID, eventID, ok := ids(c)
	if !ok {
		return
	}

	res, err := h.service.SaveDraft(c.Request.Context(), userID, eventID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}
