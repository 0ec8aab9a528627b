package serialize

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanturaiot/wmbus-core/internal/field"
	"github.com/vanturaiot/wmbus-core/internal/wmbus"
)

func TestTelegramOmitsNaNCalculatedField(t *testing.T) {
	tel := wmbus.NewTelegram(wmbus.AboutTelegram{Timestamp: 1000, RSSI: -80}, nil)
	tel.PushAddress(wmbus.Address{ID: "12345678"})

	r := &field.Result{
		Numeric: map[string]float64{"total": 1.5, "delta": math.NaN()},
		Strings: map[string]string{},
		Status:  "OK",
	}

	doc, err := Telegram(tel, r, Options{MeterName: "supercom587"})
	require.NoError(t, err)

	assert.Equal(t, "12345678", Field(doc, "id").String())
	assert.Equal(t, 1.5, Field(doc, "total").Float())
	assert.False(t, Field(doc, "delta").Exists())
	assert.Equal(t, "OK", Field(doc, "status").String())
}

func TestTelegramPrettyOutput(t *testing.T) {
	tel := wmbus.NewTelegram(wmbus.AboutTelegram{}, nil)
	r := &field.Result{Numeric: map[string]float64{}, Strings: map[string]string{}, Status: "OK"}
	doc, err := Telegram(tel, r, Options{Pretty: true})
	require.NoError(t, err)
	assert.Contains(t, string(doc), "\n")
}
