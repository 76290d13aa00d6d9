package scoringservice

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	scoringdomain "github.com/Black-And-White-Club/advent-board/app/modules/scoring/domain"
	timerdomain "github.com/Black-And-White-Club/advent-board/app/modules/timer/domain"
	"github.com/xuri/excelize/v2"
)

const (
	StandingsSheet = "Standings"
	StarsSheet     = "Stars"
)

var (
	standingsHeader = []any{"Position", "Name", "User ID", "Score", "Stars", "Gold", "Silver", "Bronze"}
	starsHeader     = []any{"Day", "Star", "Rank", "Name", "User ID", "Duration", "Seconds", "Points"}
)

// ExportYear writes an XLSX workbook of the standings and every ranked star.
func (s *ScoringService) ExportYear(ctx context.Context, year int, w io.Writer) error {
	_, err := withTelemetry(s, ctx, "ExportYear", strconv.Itoa(year), func(ctx context.Context) (struct{}, error) {
		if err := timerdomain.ValidateYear(year); err != nil {
			return struct{}{}, err
		}
		standings, boards, err := s.computeYear(ctx, year)
		if err != nil {
			return struct{}{}, err
		}
		n := 0
		if s.base == scoringdomain.PointsBaseUsers {
			n = len(standings)
		}
		return struct{}{}, WriteWorkbook(w, standings, boards, n)
	})
	return err
}

// WriteWorkbook renders standings and boards as XLSX. usersBase is the
// points base when scoring by registered users, or 0 to use board sizes.
func WriteWorkbook(w io.Writer, standings []Standing, boards []scoringdomain.Board, usersBase int) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", StandingsSheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(StarsSheet); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDEBF7"}},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	names := make(map[string]string, len(standings))
	rows := make([][]any, 0, len(standings))
	for _, st := range standings {
		names[st.UserID] = st.Name
		rows = append(rows, []any{st.Position, st.Name, st.UserID, st.Score, st.Stars, st.Golds, st.Silvers, st.Bronzes})
	}
	if err := writeSheet(f, StandingsSheet, header, standingsHeader, rows); err != nil {
		return err
	}

	rows = rows[:0]
	for _, b := range boards {
		n := len(b.Entries)
		if usersBase > 0 {
			n = usersBase
		}
		for _, e := range b.Entries {
			name, ok := names[e.UserID]
			if !ok {
				name = e.UserID
			}
			rows = append(rows, []any{
				b.Day, b.Star, e.Rank + 1, name, e.UserID,
				FormatDuration(e.Duration), int64(e.Duration / time.Second),
				scoringdomain.Points(e.Rank, n),
			})
		}
	}
	if err := writeSheet(f, StarsSheet, header, starsHeader, rows); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, headerStyle int, header []any, rows [][]any) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", sheet, err)
	}
	if err := f.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("failed to style %s header: %w", sheet, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+2, err)
		}
	}
	if err := f.SetColWidth(sheet, "B", "E", 20); err != nil {
		return fmt.Errorf("failed to size %s columns: %w", sheet, err)
	}
	return nil
}

// FormatDuration renders d as h:mm:ss, with days folded into hours.
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := int64(d / time.Hour)
	m := int64(d%time.Hour) / int64(time.Minute)
	sec := int64(d%time.Minute) / int64(time.Second)
	return fmt.Sprintf("%d:%02d:%02d", h, m, sec)
}
