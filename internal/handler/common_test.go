package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"

	"flight-reservation/internal/middleware"

	"github.com/gin-gonic/gin"
)

var (
	InvalidJSON = `{"invalid": json}`
)

// create JSON request body
func createJSONRequest(data interface{}) *bytes.Buffer {
	if s, ok := data.(string); ok {
		return bytes.NewBufferString(s)
	}
	jsonData, err := json.Marshal(data)
	if err != nil {
		return bytes.NewBuffer([]byte(""))
	}
	return bytes.NewBuffer(jsonData)
}

// create HTTP request with JSON body
func createJSONHTTPRequest(method, url string, data interface{}) *http.Request {
	req, err := http.NewRequest(method, url, createJSONRequest(data))
	if err != nil {
		return nil
	}
	req.Header.Set("Content-Type", "application/json")
	return req
}

// newTestRouter 以固定身分取代 JWT 驗證
func newTestRouter(identity *middleware.Identity) (*gin.Engine, *gin.RouterGroup, *gin.RouterGroup) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	if identity != nil {
		router.Use(middleware.SetIdentity(identity))
	}
	api := router.Group("/api/v1")
	admin := router.Group("/api/v1/admin")
	return router, api, admin
}

func decode(body *bytes.Buffer, v interface{}) error {
	return json.Unmarshal(body.Bytes(), v)
}
