package flight

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

type FlightHandler struct {
	service *Service
}

func NewFlightHandler(s *Service) *FlightHandler {
	return &FlightHandler{service: s}
}

func (h *FlightHandler) RegisterRoutes(router *gin.Engine) {
	router.POST("/v1/flights/search", h.SearchFlightsHandler)
	router.GET("/v1/flights/trends", h.TrendsHandler)
}

func (h *FlightHandler) SearchFlightsHandler(c *gin.Context) {
	var q SearchQuery
	if err := c.ShouldBindJSON(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("Invalid request format: %v", err),
			"code":  ErrorCodeValidation,
		})
		return
	}

	response, err := h.service.Search(c.Request.Context(), q)
	if err != nil {
		sendError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *FlightHandler) TrendsHandler(c *gin.Context) {
	q := SearchQuery{
		Origin:      c.Query("origin"),
		Destination: c.Query("destination"),
		Date:        c.Query("date"),
		ReturnDate:  c.Query("returnDate"),
		CabinClass:  c.Query("cabinClass"),
		Currency:    c.Query("currency"),
	}

	response, err := h.service.Trends(c.Request.Context(), q)
	if err != nil {
		sendError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func sendError(c *gin.Context, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.Status, gin.H{
			"error": appErr.Message,
			"code":  appErr.Code,
		})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{
		"error":   "Internal Server Error",
		"code":    ErrorCodeInternalFailure,
		"details": err.Error(),
	})
}
