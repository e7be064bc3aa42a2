package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/svdpmukherjee/wordgame-analysis/internal/models"
	"github.com/svdpmukherjee/wordgame-analysis/internal/pipeline"
)

const chartsDirName = "charts"

// WriteCharts renders the run's summary charts as standalone HTML files
// under dir/charts. They are a review aid for the research team, not part
// of the statistical output.
func WriteCharts(dir string, res *pipeline.Result) error {
	chartsDir := filepath.Join(dir, chartsDirName)
	if err := os.MkdirAll(chartsDir, 0755); err != nil {
		return fmt.Errorf("can't create charts directory: %w", err)
	}

	if err := renderChart(filepath.Join(chartsDir, "thresholds.html"), generateThresholdChart(res)); err != nil {
		return err
	}
	if err := renderChart(filepath.Join(chartsDir, "creation_times.html"), generateCreationTimeChart(res)); err != nil {
		return err
	}
	return renderChart(filepath.Join(chartsDir, "away_time.html"), generateAwayTimeChart(res))
}

type renderable interface {
	Render(w io.Writer) error
}

func renderChart(path string, chart renderable) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("can't create chart file: %w", err)
	}
	defer f.Close()

	if err := chart.Render(f); err != nil {
		return fmt.Errorf("failed to render %s: %w", filepath.Base(path), err)
	}
	return nil
}

// generateThresholdChart plots the effective speed threshold per word
// length, one line per phase, fallbacks included.
func generateThresholdChart(res *pipeline.Result) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Speed Thresholds",
			Subtitle: fmt.Sprintf("%.0fth percentile of pooled creation times", res.Params.FastPercentile*100),
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Type: "category",
			Name: "word length",
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type:  "value",
			Name:  "seconds",
			Scale: opts.Bool(true),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
	)

	table := res.Thresholds
	if table == nil {
		return line
	}

	lengthSet := make(map[int]bool)
	for _, e := range table.Entries() {
		lengthSet[e.Length] = true
	}
	lengths := make([]int, 0, len(lengthSet))
	for l := range lengthSet {
		lengths = append(lengths, l)
	}
	sort.Ints(lengths)

	xs := make([]string, len(lengths))
	for i, l := range lengths {
		xs[i] = strconv.Itoa(l)
	}
	line.SetXAxis(xs)

	for _, g := range table.Globals() {
		items := make([]opts.LineData, 0, len(lengths))
		for _, l := range lengths {
			entry, ok := table.Lookup(g.Phase, l)
			if !ok {
				items = append(items, opts.LineData{})
				continue
			}
			items = append(items, opts.LineData{Value: entry.Seconds})
		}
		line.AddSeries(string(g.Phase), items).
			SetSeriesOptions(charts.WithLineStyleOpts(opts.LineStyle{Width: 2}))
	}
	return line
}

// generateCreationTimeChart scatters every classified word as (length,
// creation seconds), split into flagged and clean series so the threshold
// surface is visible at a glance.
func generateCreationTimeChart(res *pipeline.Result) *charts.Scatter {
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title: "Word Creation Times",
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Type: "value",
			Name: "word length",
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type:  "value",
			Name:  "creation seconds",
			Scale: opts.Bool(true),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)

	flagged := make([]opts.ScatterData, 0)
	clean := make([]opts.ScatterData, 0)
	for _, pr := range res.Participants {
		for _, v := range pr.Verdicts {
			point := opts.ScatterData{Value: []interface{}{v.Length, v.CreationSeconds}}
			if v.Flagged {
				flagged = append(flagged, point)
			} else {
				clean = append(clean, point)
			}
		}
	}

	scatter.AddSeries("clean", clean)
	scatter.AddSeries("flagged", flagged)
	return scatter
}

// generateAwayTimeChart bars per-participant away and inactivity totals.
func generateAwayTimeChart(res *pipeline.Result) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title: "Time Away From Task",
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type: "value",
			Name: "seconds",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
	)

	ids := make([]string, 0, len(res.Participants))
	pageAway := make([]opts.BarData, 0, len(res.Participants))
	mouseIdle := make([]opts.BarData, 0, len(res.Participants))
	for _, pr := range res.Participants {
		m := pr.Metrics
		ids = append(ids, displayID(m))
		pageAway = append(pageAway, opts.BarData{Value: m.TotalTimePageLeftSeconds})
		mouseIdle = append(mouseIdle, opts.BarData{Value: m.TotalTimeMouseInactivitySeconds})
	}

	bar.SetXAxis(ids)
	bar.AddSeries("page away", pageAway)
	bar.AddSeries("mouse inactive", mouseIdle)
	return bar
}

func displayID(m models.SessionMetrics) string {
	if m.ParticipantID == "" {
		return "(missing id)"
	}
	return m.ParticipantID
}
