package response

import (
	"github.com/gin-gonic/gin"
)

// Response is the JSON acknowledgment returned to the payment gateway.
type Response struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Success returns a success response
func Success(message string) Response {
	return Response{Status: "success", Message: message}
}

// Failed returns a resolved-but-unsuccessful response (still HTTP 200)
func Failed(message string) Response {
	return Response{Status: "failed", Message: message}
}

// Error returns an error response
func Error(message string) Response {
	return Response{Status: "error", Message: message}
}

// JSON sends a JSON response
func JSON(c *gin.Context, statusCode int, response Response) {
	c.JSON(statusCode, response)
}

// SuccessJSON sends a success JSON response
func SuccessJSON(c *gin.Context, message string) {
	JSON(c, 200, Success(message))
}

// ErrorJSON sends an error JSON response
func ErrorJSON(c *gin.Context, statusCode int, message string) {
	JSON(c, statusCode, Error(message))
}
