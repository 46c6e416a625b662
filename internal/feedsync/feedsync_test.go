package feedsync

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sharath018/gencon-schedule-backend/internal/event"
	"github.com/xuri/excelize/v2"
)

type fakeImporter struct {
	events []event.IngestEvent
	src    event.ImportSource
}

func (f *fakeImporter) Import(_ context.Context, events []event.IngestEvent, src event.ImportSource) (*event.ImportSummary, error) {
	f.events = events
	f.src = src
	return &event.ImportSummary{RunID: "run", Created: len(events)}, nil
}

func feedWorkbook(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	rows := [][]interface{}{
		{"Game ID", "Title", "Event Type", "Start Date & Time", "End Date & Time", "Age Required", "Experience Required"},
		{"BGM24ND1", "Catan", "BGM - Board Game", "08/01/2024 10:00 AM", "08/01/2024 12:00 PM", "Everyone (6+)", "None"},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

func TestSyncerRun(t *testing.T) {
	body := feedWorkbook(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(body)
	}))
	defer srv.Close()

	imp := &fakeImporter{}
	summary, err := NewSyncer(srv.URL, imp, time.UTC).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Created != 1 || len(imp.events) != 1 || imp.events[0].GameID != "BGM24ND1" {
		t.Fatalf("imported = %+v", imp.events)
	}
	if imp.src.Kind != event.SourceCron || len(imp.src.Raw) != len(body) {
		t.Errorf("source = %s, %d bytes", imp.src.Kind, len(imp.src.Raw))
	}
	if want := time.Date(2024, 8, 1, 10, 0, 0, 0, time.UTC); !imp.events[0].Start.Equal(want) {
		t.Errorf("start = %v", imp.events[0].Start)
	}
}

func TestSyncerRunBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	imp := &fakeImporter{}
	if _, err := NewSyncer(srv.URL, imp, time.UTC).Run(context.Background()); err == nil {
		t.Fatal("expected an error")
	}
	if imp.events != nil {
		t.Error("importer should not run")
	}
}

func TestNewRejectsBadSpec(t *testing.T) {
	if _, err := New("every tuesday", NewSyncer("http://localhost", &fakeImporter{}, time.UTC)); err == nil {
		t.Fatal("expected an invalid spec error")
	}
	s, err := New("0 */6 * * *", NewSyncer("http://localhost", &fakeImporter{}, time.UTC))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s.Start()
	s.Stop()
}
