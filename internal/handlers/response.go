package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"learning-service/internal/repository"
)

// Response is the envelope every endpoint returns.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

func respondCreated(c *gin.Context, data any, message string) {
	c.JSON(http.StatusCreated, Response{Success: true, Data: data, Message: message})
}

func respondMessage(c *gin.Context, message string) {
	c.JSON(http.StatusOK, Response{Success: true, Message: message})
}

func respondError(c *gin.Context, status int, err error) {
	c.JSON(status, Response{Success: false, Error: err.Error()})
}

func respondBadRequest(c *gin.Context, err error) {
	respondError(c, http.StatusBadRequest, err)
}

// listOptions parses pagination and sorting query params; out-of-range
// values fall back to the repository defaults.
func listOptions(c *gin.Context) repository.ListOptions {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	dir := -1
	if c.Query("order") == "asc" {
		dir = 1
	}
	return repository.ListOptions{
		Page:    page,
		Limit:   limit,
		SortBy:  c.Query("sort"),
		SortDir: dir,
	}
}

// objectIDParam parses a hex object id path parameter, failing the request
// with a 400 when it is malformed.
func objectIDParam(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "invalid " + name})
		return primitive.NilObjectID, false
	}
	return id, true
}
