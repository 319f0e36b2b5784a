package responses

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var logger = zap.NewNop()

// APIResponse is the standard envelope for every endpoint.
type APIResponse struct {
	Status  string      `json:"status"` // "success" or "error"
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Errors  []string    `json:"errors,omitempty"`
}

// InitLogger installs the structured logger used for response logging.
func InitLogger(l *zap.Logger) {
	if l != nil {
		logger = l
	}
}

// Success sends a 200 envelope with the provided payload.
func Success(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusOK, APIResponse{Status: "success", Data: data, Message: message})
	logger.Info("API success", zap.String("path", c.Request.URL.Path), zap.Int("status", http.StatusOK))
}

// Partial sends an error envelope that still carries a payload, for
// operations that kept part of their work before failing.
func Partial(c *gin.Context, code int, data interface{}, message string, errs ...string) {
	c.JSON(code, APIResponse{Status: "error", Data: data, Message: message, Errors: errs})
	logger.Warn("API partial failure", zap.String("path", c.Request.URL.Path), zap.Int("status", code), zap.Strings("errors", errs))
}

// Error sends an error envelope with the given status code.
func Error(c *gin.Context, code int, message string, errs ...string) {
	c.JSON(code, APIResponse{Status: "error", Message: message, Errors: errs})
	logger.Error("API error", zap.String("path", c.Request.URL.Path), zap.Int("status", code), zap.Strings("errors", errs))
}
