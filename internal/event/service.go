package event

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sharath018/gencon-schedule-backend/internal/gamemaster"
	"github.com/sharath018/gencon-schedule-backend/internal/importlock"
	"github.com/sharath018/gencon-schedule-backend/internal/importlog"
	"github.com/sharath018/gencon-schedule-backend/internal/metrics"
	"github.com/sharath018/gencon-schedule-backend/internal/notification"
	"gorm.io/gorm"
)

// Import sources
const (
	SourceJSON = "json"
	SourceXLSX = "xlsx"
	SourceCron = "cron"
)

type Locker interface {
	Acquire(ctx context.Context) (func(), error)
}

type Archiver interface {
	Put(ctx context.Context, runID, contentType string, body []byte) (string, error)
}

type Notifier interface {
	ImportCompleted(ctx context.Context, ev notification.ImportCompleted) error
}

// ImportSource describes where a batch came from. Raw is archived as is.
type ImportSource struct {
	Kind        string
	ContentType string
	Raw         []byte
	IP          string
}

// ImportSummary is returned to the caller of a successful import.
type ImportSummary struct {
	RunID      string `json:"run_id"`
	EventIDs   []uint `json:"event_ids"`
	Created    int    `json:"created"`
	Updated    int    `json:"updated"`
	ArchiveKey string `json:"archive_key,omitempty"`
}

// Service wraps the importer with locking, transactions and bookkeeping,
// and serves the read side.
type Service struct {
	DB          *gorm.DB
	Repo        *Repository
	GameMasters *gamemaster.Repository
	Lock        Locker
	Archive     Archiver
	Runs        importlog.Service
	Notifier    Notifier
	TZ          *time.Location
}

func NewService(db *gorm.DB, tz *time.Location, lock Locker, archive Archiver, runs importlog.Service, notifier Notifier) *Service {
	return &Service{
		DB:          db,
		Repo:        NewRepository(db),
		GameMasters: gamemaster.NewRepository(db),
		Lock:        lock,
		Archive:     archive,
		Runs:        runs,
		Notifier:    notifier,
		TZ:          tz,
	}
}

// ===========================
// 📥 Import
func (s *Service) Import(ctx context.Context, events []IngestEvent, src ImportSource) (*ImportSummary, error) {
	runID := uuid.NewString()
	start := time.Now()

	release := func() {}
	var err error
	if s.Lock != nil {
		release, err = s.Lock.Acquire(ctx)
	}
	if err != nil {
		status := importlog.StatusFailed
		if errors.Is(err, importlock.ErrLocked) {
			status = importlog.StatusLocked
		}
		s.finish(ctx, runID, src, status, len(events), Result{}, time.Since(start), err, nil)
		return nil, err
	}
	defer release()

	var archiveKey string
	if s.Archive != nil {
		archiveKey, err = s.Archive.Put(ctx, runID, src.ContentType, src.Raw)
		if err != nil {
			log.Printf("⚠️ Could not archive feed for run %s: %v", runID, err)
		}
	}

	var res Result
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var runErr error
		res, runErr = NewGormImporter(tx).Run(ctx, events)
		return runErr
	})

	details := map[string]interface{}{"years": batchYears(events)}
	if archiveKey != "" {
		details["archive_key"] = archiveKey
	}
	if err != nil {
		log.Printf("❌ Import %s failed: %v", runID, err)
		s.finish(ctx, runID, src, importlog.StatusFailed, len(events), Result{}, time.Since(start), err, details)
		return nil, err
	}

	log.Printf("✅ Import %s done: %d created, %d updated", runID, res.Created, res.Updated)
	s.finish(ctx, runID, src, importlog.StatusSuccess, len(events), res, time.Since(start), nil, details)

	if s.Notifier != nil && len(events) > 0 {
		msg := notification.ImportCompleted{
			RunID:      runID,
			Source:     src.Kind,
			Years:      batchYears(events),
			EventCount: len(events),
			Created:    res.Created,
			Updated:    res.Updated,
		}
		if err := s.Notifier.ImportCompleted(ctx, msg); err != nil {
			log.Printf("⚠️ Import %s committed but notification failed: %v", runID, err)
		}
	}

	return &ImportSummary{
		RunID:      runID,
		EventIDs:   res.IDs,
		Created:    res.Created,
		Updated:    res.Updated,
		ArchiveKey: archiveKey,
	}, nil
}

func (s *Service) finish(ctx context.Context, runID string, src ImportSource, status string, count int, res Result, took time.Duration, err error, details map[string]interface{}) {
	metrics.ObserveImport(status, res.Created, res.Updated, took)
	if s.Runs == nil {
		return
	}
	entry := importlog.Entry{
		RunID:      runID,
		Source:     src.Kind,
		Status:     status,
		EventCount: count,
		Created:    res.Created,
		Updated:    res.Updated,
		Duration:   took,
		Err:        err,
		Details:    details,
		IP:         src.IP,
	}
	// the request context may be cancelled by now
	if rerr := s.Runs.Record(context.WithoutCancel(ctx), entry); rerr != nil {
		log.Printf("⚠️ Failed to record import run %s: %v", runID, rerr)
	}
}

func batchYears(events []IngestEvent) []int {
	seen := map[int]bool{}
	var years []int
	for _, e := range events {
		if y := e.Year(); !seen[y] {
			seen[y] = true
			years = append(years, y)
		}
	}
	sort.Ints(years)
	return years
}

// ===========================
// 📄 Read side

// ParseDayID parses a YYYYMMDD day into midnight venue time.
func (s *Service) ParseDayID(dayID string) (time.Time, error) {
	day, err := time.ParseInLocation("20060102", dayID, s.TZ)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day %q, use YYYYMMDD", dayID)
	}
	return day, nil
}

func (s *Service) List(ctx context.Context, filter ListFilter) (*PaginatedEvents, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}

	var from, to time.Time
	if filter.Day != nil {
		from = *filter.Day
		to = from.AddDate(0, 0, 1)
	}

	events, total, err := s.Repo.List(ctx, filter.Year, from, to, filter.Search, filter.Limit, (filter.Page-1)*filter.Limit)
	if err != nil {
		return nil, err
	}
	data, err := s.toResponses(ctx, events)
	if err != nil {
		return nil, err
	}

	return &PaginatedEvents{
		Data:       data,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
	}, nil
}

func (s *Service) Get(ctx context.Context, id uint) (*EventResponse, error) {
	e, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	out, err := s.toResponses(ctx, []Event{*e})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

// Days lists the venue-local days that have events, in order.
func (s *Service) Days(ctx context.Context, year int) ([]EventDay, error) {
	starts, err := s.Repo.StartTimes(ctx, year)
	if err != nil {
		return nil, err
	}
	days := []EventDay{}
	seen := map[int]bool{}
	for _, st := range starts {
		local := st.In(s.TZ)
		id, _ := strconv.Atoi(local.Format("20060102"))
		if seen[id] {
			continue
		}
		seen[id] = true
		days = append(days, EventDay{DayID: id, Date: local.Format("1/2/2006")})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].DayID < days[j].DayID })
	return days, nil
}

func (s *Service) toResponses(ctx context.Context, events []Event) ([]EventResponse, error) {
	ids := make([]uint, len(events))
	for i, e := range events {
		ids[i] = e.ID
	}
	gms := map[uint][]string{}
	if len(ids) > 0 {
		var err error
		if gms, err = s.GameMasters.ListByEvents(ctx, ids); err != nil {
			return nil, err
		}
	}

	out := make([]EventResponse, len(events))
	for i, e := range events {
		out[i] = toResponse(e, s.TZ)
		out[i].GameMasters = gms[e.ID]
		if out[i].GameMasters == nil {
			out[i].GameMasters = []string{}
		}
	}
	return out, nil
}

func toResponse(e Event, tz *time.Location) EventResponse {
	updated := e.UpdatedAt
	r := EventResponse{
		ID:               e.ID,
		GameID:           e.GameID,
		Title:            e.Title,
		Description:      e.Description,
		EventType:        e.EventType.Name,
		StartTime:        e.StartTime.In(tz),
		EndTime:          e.EndTime.In(tz),
		Cost:             e.Cost,
		TicketsAvailable: e.TicketsAvailable,
		MinPlayers:       e.MinPlayers,
		MaxPlayers:       e.MaxPlayers,
		AgeRequirement:   e.AgeRequirement.String(),
		ExperienceLevel:  e.ExperienceLevel.String(),
		TableNumber:      e.TableNumber,
		Round:            e.Round,
		TotalRounds:      e.TotalRounds,
		UpdatedAt:        &updated,
	}
	if e.GameSystem != nil {
		r.GameSystem = &e.GameSystem.Name
	}
	if e.Materials != nil {
		r.Materials = &e.Materials.Summary
	}
	if e.Contact != nil {
		r.Contact = &e.Contact.Email
	}
	if e.Website != nil {
		r.Website = &e.Website.URL
	}
	if e.Group != nil {
		r.Group = &e.Group.Name
	}
	if e.Location != nil {
		r.Location = &e.Location.Name
	}
	if e.Room != nil {
		r.Room = &e.Room.Name
	}
	if e.Section != nil {
		r.Section = &e.Section.Name
	}
	return r
}
