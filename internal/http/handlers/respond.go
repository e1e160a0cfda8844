package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Every response carries a human-readable message; failures add either a single
// error string or a field-level errors list. The HTTP status carries the class.

func RespondOK(ctx *gin.Context, message string, extra gin.H) {
	RespondStatus(ctx, http.StatusOK, message, extra)
}

func RespondStatus(ctx *gin.Context, status int, message string, extra gin.H) {
	body := gin.H{"message": message}

	for k, v := range extra {
		body[k] = v
	}

	ctx.JSON(status, body)
}

func RespondError(ctx *gin.Context, status int, message, errText string) {
	ctx.JSON(status, gin.H{
		"message": message,
		"error":   errText,
	})
}

func RespondValidation(ctx *gin.Context, message string, fields []FieldError) {
	ctx.JSON(http.StatusBadRequest, gin.H{
		"message": message,
		"errors":  fields,
	})
}

func RespondBadRequest(ctx *gin.Context, message, errText string) {
	RespondError(ctx, http.StatusBadRequest, message, errText)
}

func RespondNotFound(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusNotFound, message, "not found")
}

func RespondUnprocessable(ctx *gin.Context, message, errText string) {
	RespondError(ctx, http.StatusUnprocessableEntity, message, errText)
}

func RespondInternal(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusInternalServerError, message, "internal error")
}
