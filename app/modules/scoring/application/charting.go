package scoringservice

import (
	"context"
	"fmt"
	"io"
	"strconv"

	timerdomain "github.com/Black-And-White-Club/advent-board/app/modules/timer/domain"
	"github.com/mattn/go-runewidth"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// chartTopN is how many standings the year chart shows.
const chartTopN = 10

// ChartPalette holds the colors used by rendered charts.
type ChartPalette struct {
	Background drawing.Color
	Bar        drawing.Color
	Leader     drawing.Color
	Text       drawing.Color
}

// DefaultPalette is a dark night sky with gold for the leader.
var DefaultPalette = ChartPalette{
	Background: drawing.ColorFromHex("0f0f23"),
	Bar:        drawing.ColorFromHex("009900"),
	Leader:     drawing.ColorFromHex("ffff66"),
	Text:       drawing.ColorFromHex("cccccc"),
}

// YearChart writes a PNG bar chart of the top scores.
func (s *ScoringService) YearChart(ctx context.Context, year int, w io.Writer) error {
	_, err := withTelemetry(s, ctx, "YearChart", strconv.Itoa(year), func(ctx context.Context) (struct{}, error) {
		if err := timerdomain.ValidateYear(year); err != nil {
			return struct{}{}, err
		}
		standings, err := s.yearLeaderboard(ctx, year)
		if err != nil {
			return struct{}{}, err
		}
		return struct{}{}, GenerateStandingsChart(w, year, standings, DefaultPalette)
	})
	return err
}

// GenerateStandingsChart renders the top scorers as bars, best first.
// Users without points are left out; with nobody scoring a placeholder is drawn.
func GenerateStandingsChart(w io.Writer, year int, standings []Standing, palette ChartPalette) error {
	var bars []chart.Value
	top := 0
	for _, st := range standings {
		if st.Score <= 0 || len(bars) == chartTopN {
			continue
		}
		style := chart.Style{
			FillColor:   palette.Bar,
			StrokeColor: palette.Bar,
		}
		if len(bars) == 0 {
			style.FillColor = palette.Leader
			style.StrokeColor = palette.Leader
		}
		bars = append(bars, chart.Value{
			Label: runewidth.Truncate(st.Name, 12, "…"),
			Value: float64(st.Score),
			Style: style,
		})
		top = max(top, st.Score)
	}
	if len(bars) == 0 {
		return renderNoDataPlaceholder(w, fmt.Sprintf("No scores for %d yet", year), palette)
	}

	graph := chart.BarChart{
		Title:      fmt.Sprintf("%d leaderboard", year),
		TitleStyle: chart.Style{FontColor: palette.Text},
		Width:      1000,
		Height:     450,
		BarWidth:   60,
		BarSpacing: 20,
		Background: chart.Style{
			FillColor: palette.Background,
			Padding:   chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		Canvas: chart.Style{
			FillColor: palette.Background,
		},
		XAxis: chart.Style{
			FontColor: palette.Text,
		},
		YAxis: chart.YAxis{
			Style: chart.Style{FontColor: palette.Text},
			Range: &chart.ContinuousRange{Min: 0, Max: float64(top)},
		},
		Bars: bars,
	}

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

func renderNoDataPlaceholder(w io.Writer, msg string, palette ChartPalette) error {
	const (
		width  = 400
		height = 200
	)

	graph := chart.Chart{
		Width:  width,
		Height: height,
		Background: chart.Style{
			FillColor: palette.Background,
		},
		Canvas: chart.Style{
			FillColor: palette.Background,
		},
		XAxis: chart.XAxis{Style: chart.Style{Hidden: true}},
		YAxis: chart.YAxis{Style: chart.Style{Hidden: true}},
		// go-chart refuses to render without a series, so draw an invisible one.
		Series: []chart.Series{
			chart.ContinuousSeries{
				XValues: []float64{0, 1},
				YValues: []float64{0, 1},
				Style:   chart.Style{StrokeColor: drawing.ColorTransparent},
			},
		},
		Elements: []chart.Renderable{
			func(r chart.Renderer, cb chart.Box, chartDefaults chart.Style) {
				r.SetFontColor(palette.Text)
				r.SetFontSize(12.0)
				tb := r.MeasureText(msg)
				x := (cb.Width() - tb.Width()) / 2
				y := (cb.Height() + tb.Height()) / 2
				r.Text(msg, x, y)
			},
		},
	}
	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("failed to render placeholder: %w", err)
	}
	return nil
}
