package server

import (
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/heartlive/models"
)

const chartTimeLayout = "15:04:05"

// generateHistoryChart plots the retained readings in arrival order with the zone edges marked.
func generateHistoryChart(history []models.Reading) *charts.Line {
	line := charts.NewLine()

	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: "macarons"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Heart Rate",
			Subtitle: "Current session",
		}),
		charts.WithXAxisOpts(opts.XAxis{
			AxisLabel: &opts.AxisLabel{
				Rotate: 45,
			},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name:         "BPM",
			NameLocation: "middle",
			NameGap:      40,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:            opts.Bool(true),
			Trigger:         "axis",
			BackgroundColor: "#f5f5f5",
			BorderColor:     "#ccc",
		}),
	)

	xAxis := make([]string, 0, len(history))
	items := make([]opts.LineData, 0, len(history))
	for _, r := range history {
		xAxis = append(xAxis, r.Timestamp.Format(chartTimeLayout))
		items = append(items, opts.LineData{Value: r.BPM})
	}

	line.SetXAxis(xAxis).
		AddSeries("Heart Rate", items,
			charts.WithMarkLineNameYAxisItemOpts(
				opts.MarkLineNameYAxisItem{Name: "Low", YAxis: models.LowerNormalBPM},
				opts.MarkLineNameYAxisItem{Name: "Elevated", YAxis: models.UpperNormalBPM},
				opts.MarkLineNameYAxisItem{Name: "High", YAxis: models.UpperElevatedBPM},
			),
		)
	line.SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))

	return line
}

// zoneCounts counts readings per zone, in zone order.
func zoneCounts(history []models.Reading) map[models.Zone]int {
	counts := make(map[models.Zone]int, len(models.Zones))
	for _, r := range history {
		z, err := models.Classify(r.BPM)
		if err != nil {
			continue
		}
		counts[z]++
	}
	return counts
}

// generateZoneChart shows the share of readings in each zone.
func generateZoneChart(history []models.Reading) *charts.Bar {
	bar := charts.NewBar()

	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: "macarons"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Heart Rate Zones",
			Subtitle: "Readings per zone",
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name:         "Readings",
			NameLocation: "middle",
			NameGap:      40,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Trigger: "axis",
			AxisPointer: &opts.AxisPointer{
				Type: "shadow",
			},
		}),
	)

	counts := zoneCounts(history)
	labels := make([]string, 0, len(models.Zones))
	data := make([]opts.BarData, 0, len(models.Zones))
	for _, z := range models.Zones {
		labels = append(labels, z.Label()+" ("+z.Range()+")")
		data = append(data, opts.BarData{
			Value:     counts[z],
			ItemStyle: &opts.ItemStyle{Color: z.Color()},
		})
	}

	bar.SetXAxis(labels).AddSeries("Readings", data)
	return bar
}
