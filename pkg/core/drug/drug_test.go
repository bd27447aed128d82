package drug

import (
	"math"
	"testing"

	"github.com/dwalast/drugguide/pkg/repo/model"
	"github.com/stretchr/testify/assert"
)

func TestParsePrice(t *testing.T) {
	cases := []struct {
		in   any
		want float64
		ok   bool
	}{
		{nil, 0, true},
		{"", 0, true},
		{false, 0, true},
		{float64(12.5), 12.5, true},
		{"12,5", 12.5, true},
		{" 30 EGP", 30, true},
		{"1,250,5", 1.25, true},
		{".5", 0.5, true},
		{"abc", 0, false},
		{true, 0, false},
	}
	for _, c := range cases {
		got, ok := ParsePrice(c.in)
		assert.Equal(t, c.ok, ok, "input %#v", c.in)
		if c.ok {
			assert.InDelta(t, c.want, got, 1e-9, "input %#v", c.in)
		} else {
			assert.True(t, math.IsNaN(got))
		}
	}
}

func TestIsValidRejectsPlaceholders(t *testing.T) {
	for _, name := range []string{"test", "aaa", " TEST ", "تجربة", "   ", "x", "some illegal import here"} {
		raw := model.RawRecord{"name": name, "newPrice": 10.0, "oldPrice": 8.0}
		assert.False(t, IsValid(raw), "name %q", name)
	}
	assert.False(t, IsValid(model.RawRecord{"newPrice": 10.0}))
	assert.False(t, IsValid(nil))
}

func TestIsValidPrices(t *testing.T) {
	assert.False(t, IsValid(model.RawRecord{"name": "Panadol", "newPrice": 0.0, "oldPrice": 0.0}))
	assert.False(t, IsValid(model.RawRecord{"name": "Panadol"}))
	assert.False(t, IsValid(model.RawRecord{"name": "Panadol", "newPrice": "n/a", "oldPrice": 5.0}))
	assert.True(t, IsValid(model.RawRecord{"name": "Panadol", "newPrice": 0.0, "oldPrice": 50.0}))
	assert.True(t, IsValid(model.RawRecord{"name": "Panadol", "newPrice": "15,5"}))
}

func TestNormalizeBackfillsMissingPrice(t *testing.T) {
	d := Normalize("7", model.RawRecord{"name": "Panadol", "newPrice": 0.0, "oldPrice": 50.0}, 3)
	assert.Equal(t, 50.0, d.NewPrice)
	assert.Equal(t, 50.0, d.OldPrice)
	assert.Equal(t, 0.0, d.PriceChange)
	assert.Equal(t, 0.0, d.PriceChangePercent)
	assert.Equal(t, "7", d.ID)
	assert.Equal(t, "7", d.No)
	assert.Equal(t, 3, d.OriginalOrder)
}

func TestNormalizePriceChange(t *testing.T) {
	d := Normalize("0", model.RawRecord{"name": "Brufen", "newPrice": 120.0, "oldPrice": 100.0, "no": 44.0}, 0)
	assert.Equal(t, 20.0, d.PriceChange)
	assert.Equal(t, 20.0, d.PriceChangePercent)
	assert.Equal(t, "44", d.No)
	assert.True(t, d.IsIncrease())

	d = Normalize("1", model.RawRecord{"name": "Panadol", "newPrice": 15.0, "oldPrice": 12.0}, 0)
	assert.Equal(t, 3.0, d.PriceChange)
	assert.Equal(t, 25.0, d.PriceChangePercent)

	d = Normalize("2", model.RawRecord{"name": "Cataflam", "newPrice": 20.0, "oldPrice": 30.0}, 0)
	assert.Equal(t, -33.33, d.PriceChangePercent)
	assert.True(t, d.IsDecrease())
}

func TestPriceChangeGuardsZeroOld(t *testing.T) {
	change, percent := PriceChange(50, 0)
	assert.Equal(t, 50.0, change)
	assert.Equal(t, 0.0, percent)
}

func TestNormalizeOptionalFields(t *testing.T) {
	d := Normalize("0", model.RawRecord{
		"name":                   "Augmentin",
		"newPrice":               90.0,
		"oldPrice":               80.0,
		"activeIngredient":       "amoxicillin",
		"averageDiscountPercent": 5.0,
		"manufacturer":           "GSK",
		"isAvailable":            true,
		"expiryWarning":          30.0,
	}, 0)
	if assert.NotNil(t, d.ActiveIngredient) {
		assert.Equal(t, "amoxicillin", *d.ActiveIngredient)
	}
	if assert.NotNil(t, d.AverageDiscountPercent) {
		assert.Equal(t, 5.0, *d.AverageDiscountPercent)
	}
	if assert.NotNil(t, d.Manufacturer) {
		assert.Equal(t, "GSK", *d.Manufacturer)
	}
	assert.Nil(t, d.Category)
	if assert.NotNil(t, d.IsAvailable) {
		assert.True(t, *d.IsAvailable)
	}
}

func TestRound2HalfUp(t *testing.T) {
	assert.Equal(t, 0.13, Round2(0.125))
	assert.Equal(t, -0.12, Round2(-0.125))
	assert.Equal(t, 33.33, Round2(33.333333))
}

func TestCheckImportEntry(t *testing.T) {
	assert.Empty(t, CheckImportEntry("0", map[string]any{"name": "Panadol", "newPrice": 15.0}))
	assert.Empty(t, CheckImportEntry("0", map[string]any{"name": "Panadol", "newPrice": 0.0}))
	assert.Equal(t, "السطر 1: بيانات غير صالحة", CheckImportEntry("1", "oops"))
	assert.Equal(t, "السطر 2: اسم الدواء مطلوب", CheckImportEntry("2", map[string]any{"name": "  ", "newPrice": 1.0}))
	assert.Equal(t, "السطر 3: السعر الجديد غير صالح", CheckImportEntry("3", map[string]any{"name": "x", "newPrice": "12"}))
	assert.Equal(t, "السطر 4: السعر الجديد غير صالح", CheckImportEntry("4", map[string]any{"name": "x", "newPrice": -1.0}))
}

func TestNumericKey(t *testing.T) {
	f, ok := NumericKey(" 12 ")
	assert.True(t, ok)
	assert.Equal(t, 12.0, f)
	_, ok = NumericKey("1.5e2")
	assert.True(t, ok)
	for _, k := range []string{"NaN", "inf", "-Inf", "Infinity", "updateDate", ""} {
		_, ok := NumericKey(k)
		assert.False(t, ok, k)
	}
}
