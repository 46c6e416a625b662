package event

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sharath018/gencon-schedule-backend/internal/location"
)

func feedRow() ImportedEvent {
	return ImportedEvent{
		GameID:           "RPG24ND286543",
		Title:            "Into the Dungeon",
		DescriptionShort: "A classic crawl",
		EventType:        "RPG - Role Playing Game",
		GameSystem:       NumberOrString{Text: "D&D 5e"},
		AgeRequirement:   "Teen (13+)",
		ExperienceType:   "Some (You've played it a bit and understand the basics)",
		StartDate:        "8/1/2024",
		StartTime:        "09:00",
		EndDate:          "8/1/2024",
		EndTime:          "13:00",
		Cost:             4,
		TicketsAvailable: 6,
		PlayersMin:       3,
		PlayersMax:       6,
		Location:         "ICC",
		Room:             NumberOrString{Text: "Hall D : Section 3"},
		TableNum:         12,
		GMNames:          "Ann Lee, Bo Chen",
		Website:          "https://example.org",
		Contact:          "gm@example.org",
		Group:            "Dungeon Crawlers",
	}
}

func TestToIngestConvertsRow(t *testing.T) {
	ev, err := feedRow().ToIngest(time.UTC)
	if err != nil {
		t.Fatalf("ToIngest: %v", err)
	}

	want := time.Date(2024, 8, 1, 9, 0, 0, 0, time.UTC)
	if !ev.Start.Equal(want) {
		t.Errorf("start = %v, want %v", ev.Start, want)
	}
	if ev.Year() != 2024 {
		t.Errorf("year = %d", ev.Year())
	}
	if ev.AgeRequirement != AgeTeen || ev.ExperienceLevel != ExperienceSome {
		t.Errorf("levels = %v/%v", ev.AgeRequirement, ev.ExperienceLevel)
	}
	if ev.GameSystem == nil || *ev.GameSystem != "D&D 5e" {
		t.Errorf("game system = %v", ev.GameSystem)
	}
	if ev.Cost == nil || *ev.Cost != 4 {
		t.Errorf("cost = %v", ev.Cost)
	}
	if ev.Materials != nil {
		t.Errorf("empty materials should be nil, got %q", *ev.Materials)
	}
	wantLoc := location.NewSectionIngest("ICC", "Hall D", "Section 3")
	if ev.Location == nil || *ev.Location != wantLoc {
		t.Errorf("location = %+v", ev.Location)
	}
	if len(ev.GameMasters) != 2 || ev.GameMasters[1] != "Bo Chen" {
		t.Errorf("game masters = %v", ev.GameMasters)
	}
	if ev.Tournament != nil {
		t.Errorf("non-tournament row got round info %+v", ev.Tournament)
	}
}

func TestToIngestTournamentAndClamps(t *testing.T) {
	row := feedRow()
	row.Tournament = true
	row.Round = 2
	row.RoundTotal = 3
	row.TicketsAvailable = -4
	row.Cost = 0

	ev, err := row.ToIngest(time.UTC)
	if err != nil {
		t.Fatalf("ToIngest: %v", err)
	}
	if ev.Tournament == nil || ev.Tournament.Round != 2 || ev.Tournament.TotalRounds != 3 {
		t.Errorf("tournament = %+v", ev.Tournament)
	}
	if ev.TicketsAvailable != 0 {
		t.Errorf("tickets = %d, want 0", ev.TicketsAvailable)
	}
	if ev.Cost != nil {
		t.Errorf("zero cost should be nil")
	}
}

func TestToIngestRejectsBadRows(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ImportedEvent)
	}{
		{"missing game id", func(r *ImportedEvent) { r.GameID = " " }},
		{"missing event type", func(r *ImportedEvent) { r.EventType = "" }},
		{"bad start", func(r *ImportedEvent) { r.StartTime = "9am" }},
		{"bad end", func(r *ImportedEvent) { r.EndDate = "2024-08-01" }},
		{"unknown age", func(r *ImportedEvent) { r.AgeRequirement = "toddlers" }},
		{"unknown experience", func(r *ImportedEvent) { r.ExperienceType = "guru" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := feedRow()
			tt.mutate(&row)
			if _, err := row.ToIngest(time.UTC); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestConvertAllReportsRow(t *testing.T) {
	bad := feedRow()
	bad.GameID = "BAD1"
	bad.StartDate = "nope"

	_, err := ConvertAll([]ImportedEvent{feedRow(), bad}, time.UTC)
	var ce *ConvertError
	if !errors.As(err, &ce) {
		t.Fatalf("err = %v, want ConvertError", err)
	}
	if ce.Row != 2 || ce.GameID != "BAD1" {
		t.Errorf("got row %d game %s", ce.Row, ce.GameID)
	}
}

func TestParseLocation(t *testing.T) {
	seven := 7
	zero := 0
	tests := []struct {
		name string
		loc  string
		room NumberOrString
		want *location.Ingest
	}{
		{"empty", "", NumberOrString{Text: "Hall A"}, nil},
		{"building only", "ICC", NumberOrString{}, ptr(location.NewLocationIngest("ICC"))},
		{"numbered room", "JW", NumberOrString{Number: &seven}, ptr(location.NewRoomIngest("JW", "Room 7"))},
		{"zero room", "JW", NumberOrString{Number: &zero}, ptr(location.NewLocationIngest("JW"))},
		{"named room", "ICC", NumberOrString{Text: "Hall D"}, ptr(location.NewRoomIngest("ICC", "Hall D"))},
		{"section", "ICC", NumberOrString{Text: "Hall D : Sec 2"}, ptr(location.NewSectionIngest("ICC", "Hall D", "Sec 2"))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseLocation(tt.loc, tt.room)
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("got %+v, want %+v", got, tt.want)
			}
			if got != nil && *got != *tt.want {
				t.Errorf("got %+v, want %+v", *got, *tt.want)
			}
		})
	}
}

func TestNumberOrStringJSON(t *testing.T) {
	var row struct {
		A NumberOrString `json:"a"`
		B NumberOrString `json:"b"`
		C NumberOrString `json:"c"`
	}
	if err := json.Unmarshal([]byte(`{"a": 12, "b": "Hall", "c": null}`), &row); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if row.A.Number == nil || *row.A.Number != 12 || row.A.String() != "12" {
		t.Errorf("a = %+v", row.A)
	}
	if row.B.Number != nil || row.B.String() != "Hall" {
		t.Errorf("b = %+v", row.B)
	}
	if row.C.String() != "" {
		t.Errorf("c = %+v", row.C)
	}

	var bad NumberOrString
	if err := json.Unmarshal([]byte(`true`), &bad); err == nil {
		t.Error("expected an error for a bool")
	}
}

func TestParseLevels(t *testing.T) {
	if a, err := ParseAgeRequirement("EVERYONE (6+)"); err != nil || a != AgeEveryone {
		t.Errorf("age = %v, %v", a, err)
	}
	if e, err := ParseExperienceLevel("expert"); err != nil || e != ExperienceExpert {
		t.Errorf("experience = %v, %v", e, err)
	}
	if AgeAdult <= AgeMature || ExperienceExpert <= ExperienceSome {
		t.Error("levels must be ordered")
	}
}

func ptr[T any](v T) *T { return &v }
