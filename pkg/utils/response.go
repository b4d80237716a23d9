package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	sharedDomain "github.com/davicafu/memberquery/internal/shared/domain"
)

// ErrorResponse define la estructura estándar para las respuestas de error.
type ErrorResponse struct {
	Message string `json:"message"`
	Kind    string `json:"kind,omitempty"`
}

// SendSuccess envía una respuesta exitosa con un payload de datos.
func SendSuccess(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, gin.H{
		"data": data,
	})
}

// SendError envía una respuesta de error con un formato estandarizado.
func SendError(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{
		"error": ErrorResponse{
			Message: message,
		},
	})
}

// SendClassifiedError elige el status a partir del tipo de error.
// Los errores de dominio "not found" se pasan en notFound.
func SendClassifiedError(c *gin.Context, err error, notFound ...error) {
	for _, nf := range notFound {
		if errors.Is(err, nf) {
			SendNotFound(c, err.Error())
			return
		}
	}

	kind := sharedDomain.KindOf(err)
	if kind == "" {
		// Un error sin clasificar no expone su detalle al cliente.
		SendInternalServerError(c, "internal server error")
		return
	}
	status := http.StatusInternalServerError
	if kind == sharedDomain.KindInvalidArgument {
		status = http.StatusBadRequest
	}

	c.JSON(status, gin.H{
		"error": ErrorResponse{
			Message: err.Error(),
			Kind:    string(kind),
		},
	})
}

// --- Helpers específicos para errores comunes ---

func SendBadRequest(c *gin.Context, message string) {
	SendError(c, http.StatusBadRequest, message)
}

func SendNotFound(c *gin.Context, message string) {
	SendError(c, http.StatusNotFound, message)
}

func SendInternalServerError(c *gin.Context, message string) {
	SendError(c, http.StatusInternalServerError, message)
}
