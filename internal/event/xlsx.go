package event

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// Column headers of the published event spreadsheet.
const (
	colGameID       = "Game ID"
	colGroup        = "Group"
	colTitle        = "Title"
	colShortDesc    = "Short Description"
	colEventType    = "Event Type"
	colGameSystem   = "Game System"
	colMinPlayers   = "Minimum Players"
	colMaxPlayers   = "Maximum Players"
	colAgeRequired  = "Age Required"
	colExperience   = "Experience Required"
	colMaterials    = "Materials Required Details"
	colStart        = "Start Date & Time"
	colEnd          = "End Date & Time"
	colGMNames      = "GM Names"
	colWebsite      = "Website"
	colEmail        = "Email"
	colTournament   = "Tournament?"
	colRoundNumber  = "Round Number"
	colTotalRounds  = "Total Rounds"
	colCost         = "Cost $"
	colLocation     = "Location"
	colRoomName     = "Room Name"
	colTableNumber  = "Table Number"
	colTicketsAvail = "Tickets Available"
)

var requiredColumns = []string{colGameID, colTitle, colEventType, colStart, colEnd}

var spreadsheetTimeLayouts = []string{
	"01/02/2006 03:04 PM",
	"1/2/2006 3:04 PM",
	"1/2/2006 15:04",
	"1/2/06 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
}

var ErrEmptyWorkbook = errors.New("workbook has no header row")

// ReadWorkbook parses the first sheet of the published schedule spreadsheet.
// Columns are located by header name so reordered exports still import.
func ReadWorkbook(r io.Reader) ([]ImportedEvent, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyWorkbook
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyWorkbook
	}

	columns := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		columns[strings.TrimSpace(h)] = i
	}
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}

	out := make([]ImportedEvent, 0, len(rows)-1)
	for i, row := range rows[1:] {
		cell := func(name string) string {
			idx, ok := columns[name]
			if !ok || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}
		if cell(colGameID) == "" {
			continue
		}

		ev, err := rowToImported(cell)
		if err != nil {
			// +2: one for the header, one for 1-based rows
			return nil, &ConvertError{Row: i + 2, GameID: cell(colGameID), Err: err}
		}
		out = append(out, ev)
	}
	return out, nil
}

func rowToImported(cell func(string) string) (ImportedEvent, error) {
	start, err := parseSpreadsheetTime(cell(colStart))
	if err != nil {
		return ImportedEvent{}, fmt.Errorf("%s: %w", colStart, err)
	}
	end, err := parseSpreadsheetTime(cell(colEnd))
	if err != nil {
		return ImportedEvent{}, fmt.Errorf("%s: %w", colEnd, err)
	}

	ev := ImportedEvent{
		AgeRequirement:   cell(colAgeRequired),
		Contact:          cell(colEmail),
		DescriptionShort: cell(colShortDesc),
		EndDate:          end.Format(feedDateLayout),
		EndTime:          end.Format(feedTimeLayout),
		EventType:        cell(colEventType),
		ExperienceType:   cell(colExperience),
		GameID:           cell(colGameID),
		GameSystem:       NumberOrString{Text: cell(colGameSystem)},
		GMNames:          cell(colGMNames),
		Group:            cell(colGroup),
		Location:         cell(colLocation),
		Materials:        cell(colMaterials),
		StartDate:        start.Format(feedDateLayout),
		StartTime:        start.Format(feedTimeLayout),
		Title:            cell(colTitle),
		Tournament:       strings.EqualFold(cell(colTournament), "yes"),
		Website:          cell(colWebsite),
	}

	ints := []struct {
		col string
		dst *int
	}{
		{colCost, &ev.Cost},
		{colMinPlayers, &ev.PlayersMin},
		{colMaxPlayers, &ev.PlayersMax},
		{colTableNumber, &ev.TableNum},
		{colTicketsAvail, &ev.TicketsAvailable},
		{colRoundNumber, &ev.Round},
		{colTotalRounds, &ev.RoundTotal},
	}
	for _, f := range ints {
		n, err := parseSpreadsheetInt(cell(f.col))
		if err != nil {
			return ImportedEvent{}, fmt.Errorf("%s: %w", f.col, err)
		}
		*f.dst = n
	}

	room := cell(colRoomName)
	if n, err := strconv.Atoi(room); err == nil {
		ev.Room = NumberOrString{Number: &n}
	} else {
		ev.Room = NumberOrString{Text: room}
	}
	return ev, nil
}

func parseSpreadsheetTime(s string) (time.Time, error) {
	for _, layout := range spreadsheetTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// parseSpreadsheetInt accepts blanks, "$4.00" style costs and float-formatted counts.
func parseSpreadsheetInt(s string) (int, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "$")
	if s == "" {
		return 0, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	return int(math.Round(f)), nil
}
