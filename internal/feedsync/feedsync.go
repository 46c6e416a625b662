package feedsync

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sharath018/gencon-schedule-backend/internal/event"
)

const maxFeedBytes = 64 << 20

// Importer is the part of event.Service the sync job drives.
type Importer interface {
	Import(ctx context.Context, events []event.IngestEvent, src event.ImportSource) (*event.ImportSummary, error)
}

// Syncer pulls the published schedule spreadsheet and imports it.
type Syncer struct {
	url      string
	client   *http.Client
	importer Importer
	tz       *time.Location
}

func NewSyncer(url string, importer Importer, tz *time.Location) *Syncer {
	return &Syncer{
		url:      url,
		client:   &http.Client{Timeout: 2 * time.Minute},
		importer: importer,
		tz:       tz,
	}
}

// Run downloads, parses and imports the feed once.
func (s *Syncer) Run(ctx context.Context) (*event.ImportSummary, error) {
	raw, err := s.download(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := event.ReadWorkbook(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	events, err := event.ConvertAll(rows, s.tz)
	if err != nil {
		return nil, fmt.Errorf("convert feed: %w", err)
	}

	return s.importer.Import(ctx, events, event.ImportSource{
		Kind:        event.SourceCron,
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Raw:         raw,
	})
}

func (s *Syncer) download(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download feed: unexpected status %s", resp.Status)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
}

// ===========================
// ⏰ Scheduler

type Scheduler struct {
	c    *cron.Cron
	spec string
}

// New registers the sync job on a standard 5-field cron spec.
func New(spec string, syncer *Syncer) (*Scheduler, error) {
	s := &Scheduler{c: cron.New(), spec: spec}
	_, err := s.c.AddFunc(spec, func() {
		log.Println("🔄 Feed sync tick: downloading schedule")
		summary, err := syncer.Run(context.Background())
		if err != nil {
			log.Printf("❌ Feed sync failed: %v", err)
			return
		}
		log.Printf("✅ Feed sync done: run=%s created=%d updated=%d", summary.RunID, summary.Created, summary.Updated)
	})
	if err != nil {
		return nil, fmt.Errorf("invalid FEED_SYNC_CRON %q: %w", spec, err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	log.Printf("🚀 Starting feed sync scheduler (cron=%s)", s.spec)
	s.c.Start()
}

// Stop waits for a running sync to finish.
func (s *Scheduler) Stop() {
	<-s.c.Stop().Done()
}
