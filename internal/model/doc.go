// Package model defines the record shapes flowing through both analytics
// pipelines.
//
// Conventions:
//   - Timestamps: time.Time in UTC; snapshot times are hourly-aligned
//   - Prices and rates: float64; fixed-precision rendering happens at the edges
//   - Records are immutable once loaded; derived results are produced, never mutated
package model
