package handler

import (
	"errors"
	"net/http"
	"strconv"

	"flight-reservation/internal/middleware"
	apperrors "flight-reservation/pkg/app_errors"
	"flight-reservation/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func BindJson(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return err
	}
	return nil
}

func BindQuery(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindQuery(obj); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return err
	}
	return nil
}

// paramID 解析路徑上的數字 id，失敗時直接回 400
func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return id, true
}

// currentIdentity 取得 JWTAuth 放入的身分，缺少時回 401
func currentIdentity(c *gin.Context) (*middleware.Identity, bool) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return nil, false
	}
	return identity, true
}

// errorResponse 依錯誤分類決定 HTTP 狀態與回應內容
func errorResponse(err error) (int, gin.H) {
	body := gin.H{"error": err.Error()}

	var seatErr *apperrors.SeatError
	if errors.As(err, &seatErr) {
		body["seat_ids"] = seatErr.SeatIDs
	}
	var capErr *apperrors.CapacityError
	if errors.As(err, &capErr) {
		body["requested"] = capErr.Requested
		body["available"] = capErr.Available
	}

	switch {
	case errors.Is(err, apperrors.ErrUnauthorized):
		return http.StatusUnauthorized, body
	case errors.Is(err, apperrors.ErrForbidden):
		return http.StatusForbidden, body
	case errors.Is(err, apperrors.ErrDuplicateSeatSelection), errors.Is(err, apperrors.ErrInvalidSeat):
		return http.StatusUnprocessableEntity, body
	case errors.Is(err, apperrors.ErrInvalidInput):
		return http.StatusBadRequest, body
	case apperrors.IsNotFound(err):
		return http.StatusNotFound, body
	case apperrors.IsConflict(err), errors.Is(err, apperrors.ErrAlreadyCancelled):
		return http.StatusConflict, body
	case apperrors.IsTransient(err):
		return http.StatusServiceUnavailable, gin.H{"error": "Service temporarily unavailable", "retryable": true}
	default:
		return http.StatusInternalServerError, gin.H{"error": "Internal server error"}
	}
}

// handleError 記錄一次並回應錯誤；extra 會併入回應內容
func handleError(c *gin.Context, err error, operation string, extra gin.H) {
	status, body := errorResponse(err)
	for k, v := range extra {
		body[k] = v
	}

	log := logger.WithComponent("handler").With(
		zap.String("operation", operation),
		zap.Int("status", status),
		zap.Error(err),
	)
	if status >= http.StatusInternalServerError {
		log.Error("Request failed")
	} else {
		log.Warn("Request rejected")
	}

	c.JSON(status, body)
}

func handleSuccess(c *gin.Context, data interface{}, statusCode int) {
	if data != nil {
		c.JSON(statusCode, data)
	} else {
		c.Status(statusCode)
	}
}
