package app

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	chart "github.com/wcharczuk/go-chart/v2"

	"tickstats/internal/model"
	"tickstats/internal/timeseries"
)

func writeStdevCSV(path string, results []model.StdevResult, places int32) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"security_id", "snap_time", "stdev_bid", "stdev_mid", "stdev_ask"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, res := range results {
		record := []string{
			res.SecurityID,
			res.SnapTime.UTC().Format(time.RFC3339),
			formatOptional(res.StdevBid, places),
			formatOptional(res.StdevMid, places),
			formatOptional(res.StdevAsk, places),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return writer.Error()
}

func writeConversionsCSV(path string, results []model.ConversionResult, places int32) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"ccy_pair", "timestamp", "price", "new_price", "reason"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, res := range results {
		record := []string{
			res.CcyPair,
			res.Timestamp.UTC().Format(time.RFC3339),
			formatFloat(res.Price, places),
			formatOptional(res.NewPrice, places),
			res.Reason,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return writer.Error()
}

// writeStdevPNG renders one time series per security of the chosen stdev
// field, skipping undefined rows.
func writeStdevPNG(path string, results []model.StdevResult, field string, maxPoints int) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	pick := func(res model.StdevResult) *float64 {
		switch field {
		case "bid":
			return res.StdevBid
		case "ask":
			return res.StdevAsk
		default:
			return res.StdevMid
		}
	}

	bySecurity, err := timeseries.Group(results,
		func(r model.StdevResult) string { return r.SecurityID },
		func(r model.StdevResult) time.Time { return r.SnapTime },
	)
	if err != nil {
		return err
	}

	var series []chart.Series
	for _, sec := range timeseries.Keys(bySecurity) {
		var xs []time.Time
		var ys []float64
		for _, res := range bySecurity[sec] {
			v := pick(res)
			if v == nil {
				continue
			}
			xs = append(xs, res.SnapTime)
			ys = append(ys, *v)
		}
		if len(xs) < 2 {
			continue
		}
		xs, ys = downsample(xs, ys, maxPoints)
		series = append(series, chart.TimeSeries{
			Name:    sec,
			XValues: xs,
			YValues: ys,
		})
	}
	if len(series) == 0 {
		return fmt.Errorf("no defined stdev points to chart")
	}

	valueFormatter := func(v interface{}) string {
		return chart.FloatValueFormatterWithFormat(v, "%.4f")
	}
	graph := chart.Chart{
		Width:  1280,
		Height: 720,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatter,
		},
		YAxis: chart.YAxis{
			Name:           fmt.Sprintf("Rolling stdev (%s)", field),
			ValueFormatter: valueFormatter,
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return graph.Render(chart.PNG, file)
}

func downsample(xs []time.Time, ys []float64, max int) ([]time.Time, []float64) {
	if max <= 0 || len(xs) <= max {
		return xs, ys
	}

	outX := make([]time.Time, 0, max)
	outY := make([]float64, 0, max)
	step := float64(len(xs)-1) / float64(max-1)
	for i := 0; i < max; i++ {
		idx := int(math.Round(step * float64(i)))
		if idx >= len(xs) {
			idx = len(xs) - 1
		}
		outX = append(outX, xs[idx])
		outY = append(outY, ys[idx])
	}
	return outX, outY
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func formatFloat(v float64, places int32) string {
	return decimal.NewFromFloat(v).StringFixed(places)
}

// formatOptional renders nil as the empty cell so undefined stays visibly
// distinct from zero.
func formatOptional(v *float64, places int32) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v, places)
}
