package field

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanturaiot/wmbus-core/internal/field/formula"
	"github.com/vanturaiot/wmbus-core/internal/field/unit"
	"github.com/vanturaiot/wmbus-core/internal/wmbus"
)

func TestExtractFieldsMatchesAndMarks(t *testing.T) {
	e := &wmbus.DVEntry{
		DifVifKey:       "V13-S0-T0-U0",
		VIFRange:        wmbus.VIFRangeVolume,
		MeasurementType: wmbus.Instantaneous,
		HasNumeric:      true,
		Numeric:         1.234,
	}
	tel := wmbus.NewTelegram(wmbus.AboutTelegram{}, nil)
	tel.AddEntry(e)

	fi := &FieldInfo{
		Name:        "total",
		Quantity:    unit.QuantityVolume,
		DisplayUnit: unit.UnitM3,
		Matcher:     FieldMatcher{VIFRange: wmbus.VIFRangeVolume, AnyMeasurementType: true},
	}
	r := ExtractFields(tel, []*FieldInfo{fi})
	require.Contains(t, r.Numeric, "total_m3")
	assert.InDelta(t, 1.234, r.Numeric["total_m3"], 1e-9)
	assert.True(t, e.Consumed())
}

func TestExtractFieldsIndexNrSelectsNthMatch(t *testing.T) {
	tel := wmbus.NewTelegram(wmbus.AboutTelegram{}, nil)
	tel.AddEntry(&wmbus.DVEntry{Offset: 0, DifVifKey: "a", VIFRange: wmbus.VIFRangeEnergy, HasNumeric: true, Numeric: 1})
	tel.AddEntry(&wmbus.DVEntry{Offset: 1, DifVifKey: "b", VIFRange: wmbus.VIFRangeEnergy, HasNumeric: true, Numeric: 2})

	fi := &FieldInfo{Name: "second", IndexNr: 2, Matcher: FieldMatcher{VIFRange: wmbus.VIFRangeEnergy, AnyMeasurementType: true}}
	r := ExtractFields(tel, []*FieldInfo{fi})
	assert.Equal(t, 2.0, r.Numeric["second"])
}

func TestCalculateFieldsPropagatesNaNWhenInputMissing(t *testing.T) {
	r := newResult()
	r.Numeric["total"] = 10

	expr, err := formula.Parse("total - missing")
	require.NoError(t, err)

	CalculateFields(r, map[string]*formula.Expr{"delta": expr})
	assert.False(t, NaNSafe(r.Numeric["delta"]))
}

func TestComposeStatusDefaultsToOK(t *testing.T) {
	r := newResult()
	assert.Equal(t, "OK", ComposeStatus(r, nil))
}

func TestComposeStatusJoinsAndSortsDeduped(t *testing.T) {
	r := newResult()
	r.Strings["__status__leak"] = "LEAK"
	r.Strings["__status__dry"] = "DRY"
	got := ComposeStatus(r, []string{"DRY"})
	assert.Equal(t, "DRY LEAK", got)
}
