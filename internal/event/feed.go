package event

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sharath018/gencon-schedule-backend/internal/location"
	"github.com/sharath018/gencon-schedule-backend/internal/tournament"
)

const (
	feedDateLayout = "1/2/2006"
	feedTimeLayout = "15:04"
)

// ImportRequest is the JSON body of POST /data-ingests.
type ImportRequest struct {
	EventData []ImportedEvent `json:"eventData" binding:"required"`
}

// ImportedEvent is one row of the published schedule as the front end sends it.
type ImportedEvent struct {
	AgeRequirement   string         `json:"ageRequirement"`
	Contact          string         `json:"contact"`
	Cost             int            `json:"cost"`
	DescriptionShort string         `json:"descriptionShort"`
	EndDate          string         `json:"endDate"`
	EndTime          string         `json:"endTime"`
	EventType        string         `json:"eventType"`
	ExperienceType   string         `json:"experienceType"`
	GameID           string         `json:"gameId"`
	GameSystem       NumberOrString `json:"gameSystem"`
	GMNames          string         `json:"gmNames"`
	Group            string         `json:"group"`
	Location         string         `json:"location"`
	Materials        string         `json:"materials"`
	PlayersMin       int            `json:"playersMin"`
	PlayersMax       int            `json:"playersMax"`
	StartDate        string         `json:"startDate"`
	StartTime        string         `json:"startTime"`
	TableNum         int            `json:"tableNum"`
	TicketsAvailable int            `json:"ticketsAvailable"`
	Title            string         `json:"title"`
	Tournament       bool           `json:"tournament"`
	Room             NumberOrString `json:"room"`
	Round            int            `json:"round"`
	RoundTotal       int            `json:"roundTotal"`
	Website          string         `json:"website"`
}

// NumberOrString holds a JSON value the feed sends either as a number or as a string.
type NumberOrString struct {
	Number *int
	Text   string
}

func (n *NumberOrString) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*n = NumberOrString{}
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		*n = NumberOrString{}
		return json.Unmarshal(b, &n.Text)
	}
	var v int
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("expected number or string, got %s", s)
	}
	*n = NumberOrString{Number: &v}
	return nil
}

func (n NumberOrString) MarshalJSON() ([]byte, error) {
	if n.Number != nil {
		return json.Marshal(*n.Number)
	}
	return json.Marshal(n.Text)
}

func (n NumberOrString) String() string {
	if n.Number != nil {
		return strconv.Itoa(*n.Number)
	}
	return n.Text
}

// ConvertError reports which feed row could not be turned into an event.
type ConvertError struct {
	Row    int
	GameID string
	Err    error
}

func (e *ConvertError) Error() string {
	return fmt.Sprintf("row %d (game %s): %v", e.Row, e.GameID, e.Err)
}

func (e *ConvertError) Unwrap() error { return e.Err }

// ConvertAll converts every row, stopping at the first invalid one.
func ConvertAll(rows []ImportedEvent, tz *time.Location) ([]IngestEvent, error) {
	out := make([]IngestEvent, 0, len(rows))
	for i, row := range rows {
		ev, err := row.ToIngest(tz)
		if err != nil {
			return nil, &ConvertError{Row: i + 1, GameID: row.GameID, Err: err}
		}
		out = append(out, ev)
	}
	return out, nil
}

// ToIngest validates the row and converts it, interpreting dates in tz.
func (r ImportedEvent) ToIngest(tz *time.Location) (IngestEvent, error) {
	if strings.TrimSpace(r.GameID) == "" {
		return IngestEvent{}, fmt.Errorf("missing game id")
	}
	if strings.TrimSpace(r.EventType) == "" {
		return IngestEvent{}, fmt.Errorf("missing event type")
	}

	start, err := time.ParseInLocation(feedDateLayout+" "+feedTimeLayout, r.StartDate+" "+r.StartTime, tz)
	if err != nil {
		return IngestEvent{}, fmt.Errorf("bad start time: %w", err)
	}
	end, err := time.ParseInLocation(feedDateLayout+" "+feedTimeLayout, r.EndDate+" "+r.EndTime, tz)
	if err != nil {
		return IngestEvent{}, fmt.Errorf("bad end time: %w", err)
	}

	age, err := ParseAgeRequirement(r.AgeRequirement)
	if err != nil {
		return IngestEvent{}, err
	}
	experience, err := ParseExperienceLevel(r.ExperienceType)
	if err != nil {
		return IngestEvent{}, err
	}

	ev := IngestEvent{
		GameID:           r.GameID,
		EventType:        r.EventType,
		GameSystem:       optionalString(r.GameSystem.String()),
		Title:            r.Title,
		Description:      r.DescriptionShort,
		Start:            start,
		End:              end,
		Cost:             optionalInt(r.Cost),
		TicketsAvailable: max(r.TicketsAvailable, 0),
		MinPlayers:       r.PlayersMin,
		MaxPlayers:       r.PlayersMax,
		AgeRequirement:   age,
		ExperienceLevel:  experience,
		Location:         parseLocation(r.Location, r.Room),
		TableNumber:      optionalInt(r.TableNum),
		Materials:        optionalString(r.Materials),
		Contact:          optionalString(r.Contact),
		Website:          optionalString(r.Website),
		Group:            optionalString(r.Group),
		GameMasters:      splitGameMasters(r.GMNames),
	}
	if r.Tournament {
		ev.Tournament = &tournament.RoundInfo{Round: r.Round, TotalRounds: r.RoundTotal}
	}
	return ev, nil
}

// parseLocation maps the location and room columns onto the hierarchy. Rooms
// sent as numbers become "Room N"; "Room : Section" names a section.
func parseLocation(loc string, room NumberOrString) *location.Ingest {
	loc = strings.TrimSpace(loc)
	if loc == "" {
		return nil
	}

	var roomName, sectionName string
	switch {
	case room.Number != nil && *room.Number != 0:
		roomName = fmt.Sprintf("Room %d", *room.Number)
	case room.Number == nil && strings.TrimSpace(room.Text) != "":
		parts := strings.Split(room.Text, " : ")
		if len(parts) == 2 {
			roomName, sectionName = strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
		} else {
			roomName = strings.TrimSpace(room.Text)
		}
	}

	var in location.Ingest
	switch {
	case roomName == "":
		in = location.NewLocationIngest(loc)
	case sectionName == "":
		in = location.NewRoomIngest(loc, roomName)
	default:
		in = location.NewSectionIngest(loc, roomName, sectionName)
	}
	return &in
}

func splitGameMasters(names string) []string {
	var out []string
	for _, n := range strings.Split(names, ", ") {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return out
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func optionalInt(n int) *int {
	if n == 0 {
		return nil
	}
	return &n
}
