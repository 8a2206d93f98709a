package rates

import (
	"tickstats/internal/model"
)

// ConverterOptions tune conversion behaviour.
type ConverterOptions struct {
	// CopyUnconvertedPrice controls whether observations whose pair has
	// convert_price = false carry the original price in new_price, or leave
	// it unset. Either way the reason is "conversion not required".
	CopyUnconvertedPrice bool
}

// PriceConverter joins observations against pair reference data and resolves
// spot rates. Conversion is pure; the converter is safe for concurrent use
// once built.
type PriceConverter struct {
	refs map[string]model.CurrencyPairRef
	idx  *SpotRateIndex
	opts ConverterOptions
}

// NewPriceConverter builds a converter over the reference table and index.
func NewPriceConverter(refs []model.CurrencyPairRef, idx *SpotRateIndex, opts ConverterOptions) *PriceConverter {
	byPair := make(map[string]model.CurrencyPairRef, len(refs))
	for _, ref := range refs {
		byPair[ref.CcyPair] = ref
	}
	return &PriceConverter{refs: byPair, idx: idx, opts: opts}
}

// Convert produces exactly one result for one observation. Missing reference
// data and missing spot rates are soft failures reported via the reason
// field, never errors.
func (c *PriceConverter) Convert(obs model.PriceObservation) model.ConversionResult {
	res := model.ConversionResult{
		CcyPair:   obs.CcyPair,
		Timestamp: obs.Timestamp,
		Price:     obs.Price,
	}

	ref, ok := c.refs[obs.CcyPair]
	if !ok {
		res.Reason = model.ReasonPairNotFound
		return res
	}

	if !ref.ConvertPrice {
		res.Reason = model.ReasonNoConversion
		if c.opts.CopyUnconvertedPrice {
			price := obs.Price
			res.NewPrice = &price
		}
		return res
	}

	rate, ok := c.idx.Resolve(obs.CcyPair, obs.Timestamp)
	if !ok {
		res.Reason = model.ReasonNoSpotRate
		return res
	}

	converted := obs.Price/ref.ConversionFactor + rate.SpotMidRate
	res.NewPrice = &converted
	res.Reason = model.ReasonConverted
	return res
}

// ConvertAll converts a batch, preserving input order.
func (c *PriceConverter) ConvertAll(observations []model.PriceObservation) []model.ConversionResult {
	results := make([]model.ConversionResult, len(observations))
	for i, obs := range observations {
		results[i] = c.Convert(obs)
	}
	return results
}
