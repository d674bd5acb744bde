package utils

import "github.com/gin-gonic/gin"

// ErrorResponse is the envelope for every failed request.
func ErrorResponse(message string) gin.H {
	return gin.H{
		"success": false,
		"error":   message,
	}
}

// SuccessResponse is the envelope for every successful request.
func SuccessResponse(message string, data interface{}) gin.H {
	return gin.H{
		"success": true,
		"message": message,
		"data":    data,
	}
}
