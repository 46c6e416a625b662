package importlog

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"
)

type Service interface {
	Record(ctx context.Context, entry Entry) error
	List(ctx context.Context, filter RunFilter) (*PaginatedRuns, error)
	GetByID(ctx context.Context, id string) (*ImportRun, error)
}

// Entry is what the importer knows about a finished run.
type Entry struct {
	RunID      string
	Source     string
	Status     string
	EventCount int
	Created    int
	Updated    int
	Duration   time.Duration
	Err        error
	Details    map[string]interface{}
	IP         string
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// Record stores one import run
func (s *service) Record(ctx context.Context, e Entry) error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	detailsJSON, err := json.Marshal(e.Details)
	if err != nil {
		detailsJSON = []byte("{}")
	}

	run := &ImportRun{
		ID:         e.RunID,
		Source:     e.Source,
		Status:     e.Status,
		EventCount: e.EventCount,
		Created:    e.Created,
		Updated:    e.Updated,
		DurationMS: e.Duration.Milliseconds(),
		Details:    detailsJSON,
		IPAddress:  e.IP,
	}
	if e.Err != nil {
		msg := e.Err.Error()
		run.Error = &msg
	}
	return s.repo.Create(ctx, run)
}

// List retrieves paginated import runs with filters
func (s *service) List(ctx context.Context, filter RunFilter) (*PaginatedRuns, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}

	runs, total, err := s.repo.GetByFilter(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &PaginatedRuns{
		Data:       runs,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: int(math.Ceil(float64(total) / float64(filter.Limit))),
	}, nil
}

// GetByID retrieves a specific import run
func (s *service) GetByID(ctx context.Context, id string) (*ImportRun, error) {
	run, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("import run not found: %w", err)
	}
	return run, nil
}
