// Package loader reads the four CSV input shapes. Malformed rows are fatal
// for the batch and reported with file position and key; soft per-record
// conditions are not its business.
package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"tickstats/internal/model"
)

// Accepted timestamp layouts, tried in order.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

func parseTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unsortable timestamp %q", raw)
}

func parseFloat(raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("non-numeric value %q", raw)
	}
	return v, nil
}

func parseBool(raw string) (bool, error) {
	v, err := strconv.ParseBool(strings.ToLower(strings.TrimSpace(raw)))
	if err != nil {
		return false, fmt.Errorf("non-boolean value %q", raw)
	}
	return v, nil
}

// header maps lowercased column names to their positions.
type header map[string]int

func (h header) get(record []string, name string) (string, error) {
	idx, ok := h[name]
	if !ok || idx >= len(record) {
		return "", fmt.Errorf("missing required field %q", name)
	}
	return record[idx], nil
}

func readCSV(path string, row func(line int, h header, record []string) error) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true

	headRow, err := reader.Read()
	if err != nil {
		return fmt.Errorf("%s: read header: %w", path, err)
	}
	h := make(header, len(headRow))
	for i, name := range headRow {
		h[strings.ToLower(strings.TrimSpace(name))] = i
	}

	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		line++
		if err := row(line, h, record); err != nil {
			return fmt.Errorf("%s line %d: %w", path, line, err)
		}
	}
}

// PriceSnapshots loads security_id,snap_time,bid,mid,ask rows.
func PriceSnapshots(path string) ([]model.PriceSnapshot, error) {
	var snaps []model.PriceSnapshot
	err := readCSV(path, func(line int, h header, record []string) error {
		var snap model.PriceSnapshot
		var raw string
		var err error

		if snap.SecurityID, err = h.get(record, "security_id"); err != nil {
			return err
		}
		if raw, err = h.get(record, "snap_time"); err != nil {
			return err
		}
		if snap.SnapTime, err = parseTime(raw); err != nil {
			return fmt.Errorf("security %q: %w", snap.SecurityID, err)
		}
		for _, col := range []struct {
			name string
			dst  *float64
		}{
			{"bid", &snap.Bid},
			{"mid", &snap.Mid},
			{"ask", &snap.Ask},
		} {
			if raw, err = h.get(record, col.name); err != nil {
				return err
			}
			if *col.dst, err = parseFloat(raw); err != nil {
				return fmt.Errorf("security %q field %s: %w", snap.SecurityID, col.name, err)
			}
		}
		snaps = append(snaps, snap)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snaps, nil
}

// PriceObservations loads ccy_pair,timestamp,price rows.
func PriceObservations(path string) ([]model.PriceObservation, error) {
	var observations []model.PriceObservation
	err := readCSV(path, func(line int, h header, record []string) error {
		var obs model.PriceObservation
		var raw string
		var err error

		if obs.CcyPair, err = h.get(record, "ccy_pair"); err != nil {
			return err
		}
		if raw, err = h.get(record, "timestamp"); err != nil {
			return err
		}
		if obs.Timestamp, err = parseTime(raw); err != nil {
			return fmt.Errorf("pair %q: %w", obs.CcyPair, err)
		}
		if raw, err = h.get(record, "price"); err != nil {
			return err
		}
		if obs.Price, err = parseFloat(raw); err != nil {
			return fmt.Errorf("pair %q: %w", obs.CcyPair, err)
		}
		observations = append(observations, obs)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return observations, nil
}

// SpotRates loads ccy_pair,timestamp,spot_mid_rate rows.
func SpotRates(path string) ([]model.SpotRateRecord, error) {
	var spots []model.SpotRateRecord
	err := readCSV(path, func(line int, h header, record []string) error {
		var spot model.SpotRateRecord
		var raw string
		var err error

		if spot.CcyPair, err = h.get(record, "ccy_pair"); err != nil {
			return err
		}
		if raw, err = h.get(record, "timestamp"); err != nil {
			return err
		}
		if spot.Timestamp, err = parseTime(raw); err != nil {
			return fmt.Errorf("pair %q: %w", spot.CcyPair, err)
		}
		if raw, err = h.get(record, "spot_mid_rate"); err != nil {
			return err
		}
		if spot.SpotMidRate, err = parseFloat(raw); err != nil {
			return fmt.Errorf("pair %q: %w", spot.CcyPair, err)
		}
		spots = append(spots, spot)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return spots, nil
}

// CurrencyPairRefs loads ccy_pair,convert_price,conversion_factor rows.
func CurrencyPairRefs(path string) ([]model.CurrencyPairRef, error) {
	var refs []model.CurrencyPairRef
	err := readCSV(path, func(line int, h header, record []string) error {
		var ref model.CurrencyPairRef
		var raw string
		var err error

		if ref.CcyPair, err = h.get(record, "ccy_pair"); err != nil {
			return err
		}
		if raw, err = h.get(record, "convert_price"); err != nil {
			return err
		}
		if ref.ConvertPrice, err = parseBool(raw); err != nil {
			return fmt.Errorf("pair %q: %w", ref.CcyPair, err)
		}
		if raw, err = h.get(record, "conversion_factor"); err != nil {
			return err
		}
		if ref.ConversionFactor, err = parseFloat(raw); err != nil {
			return fmt.Errorf("pair %q: %w", ref.CcyPair, err)
		}
		refs = append(refs, ref)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return refs, nil
}
