package handler

import (
	"fmt"
	"net/http"

	"anoa.com/eventhub/internal/modules/registration/dto"
	registration "anoa.com/eventhub/internal/modules/registration/service"
	"anoa.com/eventhub/pkg/response"
	"anoa.com/eventhub/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type RegistrationHandler struct {
	service registration.RegistrationService
}

func NewRegistrationHandler(service registration.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{service: service}
}

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

func (h *RegistrationHandler) GetForm(c *gin.Context) {
	userID, eventID, ok := ids(c)
	if !ok {
		return
	}

	res, err := h.service.GetForm(c.Request.Context(), userID, eventID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *RegistrationHandler) Register(c *gin.Context) {
	userID, eventID, ok := ids(c)
	if !ok {
		return
	}

	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	res, err := h.service.Register(c.Request.Context(), userID, eventID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, res)
}

func (h *RegistrationHandler) UpdateMine(c *gin.Context) {
	userID, eventID, ok := ids(c)
	if !ok {
		return
	}

	var req dto.UpdateRegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	res, err := h.service.UpdateMine(c.Request.Context(), userID, eventID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *RegistrationHandler) CancelMine(c *gin.Context) {
	userID, eventID, ok := ids(c)
	if !ok {
		return
	}

	if err := h.service.CancelMine(c.Request.Context(), userID, eventID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "registration cancelled"})
}

func (h *RegistrationHandler) ListMine(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	res, err := h.service.ListMine(c.Request.Context(), userID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": res})
}

func (h *RegistrationHandler) ListTable(c *gin.Context) {
	userID, eventID, ok := ids(c)
	if !ok {
		return
	}

	res, err := h.service.ListTable(c.Request.Context(), userID, eventID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *RegistrationHandler) ExportCSV(c *gin.Context) {
	userID, eventID, ok := ids(c)
	if !ok {
		return
	}

	file, err := h.service.ExportCSV(c.Request.Context(), userID, eventID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.FileName))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", file.Content)
}

func (h *RegistrationHandler) Review(c *gin.Context) {
	userID, eventID, ok := ids(c)
	if !ok {
		return
	}

	registrationID, err := response.ParamUUID(c, "rid")
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	res, err := h.service.Review(c.Request.Context(), userID, eventID, registrationID, req)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}
