package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"charaverse-api/services"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}

type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func SendError(c *gin.Context, status int, err string) {
	c.JSON(status, ErrorResponse{
		Error: err,
		Code:  status,
	})
}

func SendSuccess(c *gin.Context, message string, data interface{}) {
	response := SuccessResponse{
		Message: message,
	}
	if data != nil {
		response.Data = data
	}
	c.JSON(http.StatusOK, response)
}

func SendCreated(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, SuccessResponse{
		Message: message,
		Data:    data,
	})
}

// SendServiceError maps the service error taxonomy to HTTP statuses.
func SendServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		SendError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrForbidden):
		SendError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrConflict):
		SendError(c, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrInvalidState):
		SendError(c, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, services.ErrValidation):
		SendError(c, http.StatusBadRequest, err.Error())
	default:
		SendError(c, http.StatusInternalServerError, "Something went wrong")
	}
}
