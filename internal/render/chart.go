// Package render draws the MR-rate-over-time series as a line chart.
//
// This is the presentation layer: it consumes the aggregator's series and
// knows nothing about where the numbers came from.
package render

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/wcharczuk/go-chart/v2"

	"github.com/tku137/gitlab-sprint-stats/internal/domain"
)

// ErrEmptySeries is returned when there is nothing to plot.
var ErrEmptySeries = errors.New("render: empty series")

const dateLayout = "2006-01-02"

// ASCII renders the series as a terminal line chart, x-ordered as given
// (sprint order), with the covered date range in the caption.
func ASCII(series []domain.SprintMRRate, width, height int) (string, error) {
	if len(series) == 0 {
		return "", ErrEmptySeries
	}
	values := make([]float64, len(series))
	for i, point := range series {
		values[i] = point.MRRate
	}
	caption := fmt.Sprintf("MR rate per sprint, %s to %s",
		series[0].StartDate.Format(dateLayout),
		series[len(series)-1].StartDate.Format(dateLayout))
	plot := asciigraph.Plot(values,
		asciigraph.Width(width),
		asciigraph.Height(height),
		asciigraph.Caption(caption),
	)
	return plot, nil
}

// PNG renders the series as a time-indexed line chart (x = sprint start date)
// and writes the image to w. At least two sprints are needed to draw a line.
func PNG(series []domain.SprintMRRate, w io.Writer) error {
	if len(series) == 0 {
		return ErrEmptySeries
	}
	if len(series) < 2 {
		return errors.New("render: need at least two sprints for a line chart")
	}
	xs := make([]time.Time, len(series))
	ys := make([]float64, len(series))
	for i, point := range series {
		xs[i] = point.StartDate
		ys[i] = point.MRRate
	}
	graph := chart.Chart{
		Title: "MR Rate Over Time",
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeDateValueFormatter,
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "mr_rate",
				XValues: xs,
				YValues: ys,
			},
		},
	}
	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("rendering chart: %w", err)
	}
	return nil
}
