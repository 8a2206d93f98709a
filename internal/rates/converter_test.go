package rates

import (
	"math"
	"testing"
	"time"

	"tickstats/internal/model"
)

func newTestConverter(t *testing.T, refs []model.CurrencyPairRef, spots []model.SpotRateRecord, copyUnconverted bool) *PriceConverter {
	t.Helper()
	idx, err := NewSpotRateIndex(spots, time.Hour)
	if err != nil {
		t.Fatalf("build index: %v", err)
	}
	return NewPriceConverter(refs, idx, ConverterOptions{CopyUnconvertedPrice: copyUnconverted})
}

func TestConvertFormula(t *testing.T) {
	conv := newTestConverter(t,
		[]model.CurrencyPairRef{{CcyPair: "EURUSD", ConvertPrice: true, ConversionFactor: 100}},
		[]model.SpotRateRecord{spot("EURUSD", at(9, 50), 1.11)},
		true,
	)

	res := conv.Convert(model.PriceObservation{CcyPair: "EURUSD", Timestamp: at(9, 59), Price: 550})
	if res.Reason != model.ReasonConverted {
		t.Fatalf("reason = %q, want %q", res.Reason, model.ReasonConverted)
	}
	if res.NewPrice == nil {
		t.Fatal("new price should be set")
	}
	if math.Abs(*res.NewPrice-6.61) > 1e-9 {
		t.Fatalf("new price = %v, want 6.61 (550/100 + 1.11)", *res.NewPrice)
	}
}

func TestConvertPairNotFound(t *testing.T) {
	conv := newTestConverter(t, nil, nil, true)

	res := conv.Convert(model.PriceObservation{CcyPair: "XXXYYY", Timestamp: at(9, 0), Price: 1})
	if res.Reason != model.ReasonPairNotFound {
		t.Fatalf("reason = %q, want %q", res.Reason, model.ReasonPairNotFound)
	}
	if res.NewPrice != nil {
		t.Fatal("new price must stay unset for unknown pairs")
	}
}

func TestConvertNotRequiredCopiesPrice(t *testing.T) {
	refs := []model.CurrencyPairRef{{CcyPair: "JPYUSD", ConvertPrice: false, ConversionFactor: 110}}
	obs := model.PriceObservation{CcyPair: "JPYUSD", Timestamp: at(9, 0), Price: 42.5}

	conv := newTestConverter(t, refs, nil, true)
	res := conv.Convert(obs)
	if res.Reason != model.ReasonNoConversion {
		t.Fatalf("reason = %q, want %q", res.Reason, model.ReasonNoConversion)
	}
	if res.NewPrice == nil || *res.NewPrice != obs.Price {
		t.Fatalf("new price should copy the original price, got %v", res.NewPrice)
	}

	conv = newTestConverter(t, refs, nil, false)
	res = conv.Convert(obs)
	if res.Reason != model.ReasonNoConversion {
		t.Fatalf("reason = %q, want %q", res.Reason, model.ReasonNoConversion)
	}
	if res.NewPrice != nil {
		t.Fatal("new price should stay unset when copying is disabled")
	}
}

func TestConvertNoSpotRateInWindow(t *testing.T) {
	conv := newTestConverter(t,
		[]model.CurrencyPairRef{{CcyPair: "EURUSD", ConvertPrice: true, ConversionFactor: 1}},
		[]model.SpotRateRecord{spot("EURUSD", at(6, 0), 1.10)},
		true,
	)

	res := conv.Convert(model.PriceObservation{CcyPair: "EURUSD", Timestamp: at(9, 0), Price: 1})
	if res.Reason != model.ReasonNoSpotRate {
		t.Fatalf("reason = %q, want %q", res.Reason, model.ReasonNoSpotRate)
	}
	if res.NewPrice != nil {
		t.Fatal("new price must stay unset without a usable spot rate")
	}
}

func TestConvertAllPreservesInputOrder(t *testing.T) {
	conv := newTestConverter(t,
		[]model.CurrencyPairRef{{CcyPair: "EURUSD", ConvertPrice: true, ConversionFactor: 1}},
		[]model.SpotRateRecord{spot("EURUSD", at(9, 0), 1.0)},
		true,
	)

	observations := []model.PriceObservation{
		{CcyPair: "EURUSD", Timestamp: at(9, 30), Price: 3},
		{CcyPair: "MISSING", Timestamp: at(9, 30), Price: 2},
		{CcyPair: "EURUSD", Timestamp: at(9, 15), Price: 1},
	}

	results := conv.ConvertAll(observations)
	if len(results) != len(observations) {
		t.Fatalf("got %d results, want %d", len(results), len(observations))
	}
	for i, res := range results {
		if res.CcyPair != observations[i].CcyPair || res.Price != observations[i].Price {
			t.Fatalf("result %d does not match observation %d", i, i)
		}
	}
	if results[1].Reason != model.ReasonPairNotFound {
		t.Fatalf("middle result reason = %q, want %q", results[1].Reason, model.ReasonPairNotFound)
	}
}
