package tournament

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
	tz      *time.Location
}

func NewHandler(service *Service, tz *time.Location) *Handler {
	return &Handler{service: service, tz: tz}
}

func (h *Handler) year(c *gin.Context) (int, bool) {
	year := 0
	if s := c.Query("year"); s != "" {
		y, err := strconv.Atoi(s)
		if err != nil || y <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid year"})
			return 0, false
		}
		year = y
	}
	year, err := h.service.ResolveYear(c.Request.Context(), year)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve year"})
		return 0, false
	}
	return year, true
}

// GET /api/v1/tournaments?year=
func (h *Handler) ListTournaments(c *gin.Context) {
	year, ok := h.year(c)
	if !ok {
		return
	}
	tournaments, err := h.service.List(c.Request.Context(), year)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load tournaments"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"year": year, "data": tournaments})
}

// GET /api/v1/tournaments/export?year=&format=excel|csv
func (h *Handler) ExportTournaments(c *gin.Context) {
	year, ok := h.year(c)
	if !ok {
		return
	}
	tournaments, err := h.service.List(c.Request.Context(), year)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load tournaments"})
		return
	}

	data, filename, contentType, err := Export(c.DefaultQuery("format", FormatExcel), year, tournaments, h.tz)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, contentType, data)
}
