package tournament

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"
)

// Export formats
const (
	FormatExcel = "excel"
	FormatCSV   = "csv"
)

var exportHeaders = []string{"Tournament", "Total Rounds", "Round", "Event ID", "Title", "Start Time"}

// Export renders tournaments as one row per member event. It returns the
// file, its name and its content type.
func Export(format string, year int, tournaments []Ingest, tz *time.Location) ([]byte, string, string, error) {
	switch format {
	case FormatExcel, "":
		data, err := exportExcel(tournaments, tz)
		if err != nil {
			return nil, "", "", err
		}
		filename := fmt.Sprintf("tournaments_%d.xlsx", year)
		return data, filename, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", nil

	case FormatCSV:
		data, err := exportCSV(tournaments, tz)
		if err != nil {
			return nil, "", "", err
		}
		filename := fmt.Sprintf("tournaments_%d.csv", year)
		return data, filename, "text/csv", nil

	default:
		return nil, "", "", fmt.Errorf("unsupported format for tournaments: %s", format)
	}
}

func exportRows(tournaments []Ingest, tz *time.Location) [][]string {
	var rows [][]string
	for _, t := range tournaments {
		for _, s := range t.Segments {
			for _, m := range s.Members {
				rows = append(rows, []string{
					t.Name,
					strconv.Itoa(t.TotalRounds),
					strconv.Itoa(s.Round),
					strconv.FormatUint(uint64(m.ID), 10),
					m.Title,
					m.StartTime.In(tz).Format("2006-01-02 15:04"),
				})
			}
		}
	}
	return rows
}

func exportExcel(tournaments []Ingest, tz *time.Location) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	sheetName := "Tournaments"
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, err
	}

	for i, header := range exportHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		f.SetCellValue(sheetName, cell, header)
	}

	for r, row := range exportRows(tournaments, tz) {
		for c, value := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return nil, err
			}
			f.SetCellValue(sheetName, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func exportCSV(tournaments []Ingest, tz *time.Location) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(exportHeaders); err != nil {
		return nil, err
	}
	if err := writer.WriteAll(exportRows(tournaments, tz)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
