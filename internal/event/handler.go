package event

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sharath018/gencon-schedule-backend/internal/importlock"
	"github.com/sharath018/gencon-schedule-backend/middleware"
	"gorm.io/gorm"
)

const (
	contentTypeJSON = "application/json"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	maxUploadBytes = 32 << 20
)

type Handler struct {
	Service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{Service: s}
}

// ===========================
// 📥 Data ingest - POST /api/v1/data-ingests
// Accepts the JSON feed body or a multipart upload with an xlsx "file".
func (h *Handler) Ingest(c *gin.Context) {
	rows, src, err := h.readFeed(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	events, err := ConvertAll(rows, h.Service.TZ)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	summary, err := h.Service.Import(c.Request.Context(), events, src)
	if err != nil {
		c.JSON(importStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *Handler) readFeed(c *gin.Context) ([]ImportedEvent, ImportSource, error) {
	src := ImportSource{IP: middleware.GetIPFromContext(c)}

	if fh, err := c.FormFile("file"); err == nil {
		if fh.Size > maxUploadBytes {
			return nil, src, errors.New("uploaded file is too large")
		}
		f, err := fh.Open()
		if err != nil {
			return nil, src, err
		}
		defer f.Close()

		raw, err := io.ReadAll(f)
		if err != nil {
			return nil, src, err
		}
		rows, err := ReadWorkbook(bytes.NewReader(raw))
		if err != nil {
			return nil, src, err
		}
		src.Kind, src.ContentType, src.Raw = SourceXLSX, contentTypeXLSX, raw
		return rows, src, nil
	}

	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxUploadBytes))
	if err != nil {
		return nil, src, err
	}
	var req ImportRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, src, errors.New("invalid request body: " + err.Error())
	}
	if req.EventData == nil {
		return nil, src, errors.New("eventData is required")
	}
	src.Kind, src.ContentType, src.Raw = SourceJSON, contentTypeJSON, raw
	return req.EventData, src, nil
}

func importStatus(err error) int {
	var dup *DuplicateGameIDError
	var conv *ConvertError
	switch {
	case errors.As(err, &dup), errors.As(err, &conv):
		return http.StatusBadRequest
	case errors.Is(err, importlock.ErrLocked):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// ===========================
// 📄 List events - GET /api/v1/events?year=&day=&search=&page=&limit=
func (h *Handler) ListEvents(c *gin.Context) {
	year, ok := h.year(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit > 500 {
		limit = 500
	}

	filter := ListFilter{
		Year:   year,
		Search: c.Query("search"),
		Page:   page,
		Limit:  limit,
	}
	if d := c.Query("day"); d != "" {
		day, err := h.Service.ParseDayID(d)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		filter.Day = &day
	}

	result, err := h.Service.List(c.Request.Context(), filter)
	if err != nil {
		log.Printf("❌ Failed to list events: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch events"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// ===========================
// 🔍 Get event - GET /api/v1/events/:id
func (h *Handler) GetEvent(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event ID"})
		return
	}

	ev, err := h.Service.Get(c.Request.Context(), uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch event"})
		return
	}
	c.JSON(http.StatusOK, ev)
}

// ===========================
// 📅 Event days - GET /api/v1/event-days?year=
func (h *Handler) ListDays(c *gin.Context) {
	year, ok := h.year(c)
	if !ok {
		return
	}
	days, err := h.Service.Days(c.Request.Context(), year)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch event days"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"year": year, "data": days})
}

// year reads ?year= and falls back to the latest imported year.
func (h *Handler) year(c *gin.Context) (int, bool) {
	if s := c.Query("year"); s != "" {
		y, err := strconv.Atoi(s)
		if err != nil || y <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid year"})
			return 0, false
		}
		return y, true
	}
	y, err := h.Service.Repo.LatestYear(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve year"})
		return 0, false
	}
	return y, true
}
