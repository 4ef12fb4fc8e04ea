package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the uniform error body for every failure.
type ErrorResponse struct {
	Status  int          `json:"status"`
	Error   string       `json:"error"`
	Message string       `json:"message"`
	Path    string       `json:"path"`
	Fields  []FieldError `json:"fields,omitempty"`
}

type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Param   string `json:"param,omitempty"`
	Message string `json:"message,omitempty"`
}

func RespondError(ctx *gin.Context, status int, errLabel, message string) {
	ctx.JSON(status, ErrorResponse{
		Status:  status,
		Error:   errLabel,
		Message: message,
		Path:    ctx.Request.URL.Path,
	})
}

// RespondValidation aggregates every field error into one response instead
// of failing on the first.
func RespondValidation(ctx *gin.Context, message string, fields []FieldError) {
	ctx.JSON(http.StatusBadRequest, ErrorResponse{
		Status:  http.StatusBadRequest,
		Error:   "Validation Failed",
		Message: message,
		Path:    ctx.Request.URL.Path,
		Fields:  fields,
	})
}

func RespondBadRequest(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusBadRequest, "Bad Request", message)
}

func RespondNotFound(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusNotFound, "Not Found", message)
}

func RespondUnauthorized(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusUnauthorized, "Unauthorized", message)
}

// RespondConflict reports a duplicate username/email on registration.
func RespondConflict(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusUnprocessableEntity, "Resource Already Exists", message)
}

func RespondInternal(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusInternalServerError, "Internal Server Error", message)
}
