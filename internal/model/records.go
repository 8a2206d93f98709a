package model

import "time"

// PriceSnapshot is one hourly bid/mid/ask observation for a security.
type PriceSnapshot struct {
	SecurityID string
	SnapTime   time.Time
	Bid        float64
	Mid        float64
	Ask        float64
}

// CurrencyPairRef is static reference data describing how a pair converts.
type CurrencyPairRef struct {
	CcyPair          string
	ConvertPrice     bool
	ConversionFactor float64
}

// SpotRateRecord is a single observed spot mid rate for a pair.
type SpotRateRecord struct {
	CcyPair     string
	Timestamp   time.Time
	SpotMidRate float64
}

// PriceObservation is one price to be converted.
type PriceObservation struct {
	CcyPair   string
	Timestamp time.Time
	Price     float64
}

// Reasons reported on conversion results. Soft failures are carried here
// rather than as errors so downstream consumers can tell "computed" from
// "why not" without reading logs.
const (
	ReasonConverted    = "converted"
	ReasonPairNotFound = "pair not found"
	ReasonNoSpotRate   = "no spot rate in window"
	ReasonNoConversion = "conversion not required"
)

// ConversionResult is the outcome of converting one PriceObservation.
// NewPrice is nil unless a value was produced for this observation.
type ConversionResult struct {
	CcyPair   string
	Timestamp time.Time
	Price     float64
	NewPrice  *float64
	Reason    string
}

// Converted reports whether a new price was computed from a spot rate.
func (r ConversionResult) Converted() bool {
	return r.Reason == ReasonConverted
}

// StdevResult is the rolling standard deviation emitted for one snapshot.
// The stdev fields are nil until the window has filled since the last gap.
type StdevResult struct {
	SecurityID string
	SnapTime   time.Time
	StdevBid   *float64
	StdevMid   *float64
	StdevAsk   *float64
}

// Defined reports whether this result carries computed values.
func (r StdevResult) Defined() bool {
	return r.StdevBid != nil && r.StdevMid != nil && r.StdevAsk != nil
}
