// Package serialize renders a decoded telegram's field.Result as JSON
// (spec §6). Field names are only known once a Meter's FieldInfos have
// been resolved at configuration time, so this builds the document by
// setting paths on an initially-empty buffer with
// github.com/tidwall/sjson rather than marshaling a fixed Go struct —
// the same "unknown document shape, known paths" use case sjson exists
// for, and an indirect dependency of the retrieval pack's
// oasisprotocol-cli promoted here to direct use.
package serialize

import (
	"math"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/vanturaiot/wmbus-core/internal/field"
	"github.com/vanturaiot/wmbus-core/internal/wmbus"
)

// Options controls the shape of the emitted document.
type Options struct {
	// Name is the configured meter's name (distinct from MeterName, the
	// driver that decoded it), e.g. "MyWarmWater".
	Name      string
	MeterName string
	Pretty    bool
}

// Telegram renders t's identity plus r's fields into a JSON document.
// NaN-valued calculated fields are omitted, matching spec §4.6's "a
// calculated field with missing inputs does not appear in output"
// rule downstream of field.CalculateFields's NaN propagation.
func Telegram(t *wmbus.Telegram, r *field.Result, opts Options) ([]byte, error) {
	doc := []byte("{}")
	var err error

	doc, err = sjson.SetBytes(doc, "_", "telegram")
	if err != nil {
		return nil, err
	}

	addr := t.LastAddress()
	doc, err = sjson.SetBytes(doc, "id", addr.ID)
	if err != nil {
		return nil, err
	}
	doc, err = sjson.SetBytes(doc, "media", mediaName(t.DLLType))
	if err != nil {
		return nil, err
	}
	doc, err = sjson.SetBytes(doc, "meter", opts.MeterName)
	if err != nil {
		return nil, err
	}
	doc, err = sjson.SetBytes(doc, "name", opts.Name)
	if err != nil {
		return nil, err
	}
	doc, err = sjson.SetBytes(doc, "timestamp", isoTimestamp(t.About.Timestamp))
	if err != nil {
		return nil, err
	}
	doc, err = sjson.SetBytes(doc, "rssi", t.About.RSSI)
	if err != nil {
		return nil, err
	}
	doc, err = sjson.SetBytes(doc, "status", r.Status)
	if err != nil {
		return nil, err
	}

	for name, v := range r.Numeric {
		if math.IsNaN(v) {
			continue
		}
		doc, err = sjson.SetBytes(doc, name, v)
		if err != nil {
			return nil, err
		}
	}
	for name, v := range r.Strings {
		if hasStatusPrefix(name) {
			continue
		}
		doc, err = sjson.SetBytes(doc, name, v)
		if err != nil {
			return nil, err
		}
	}

	if opts.Pretty {
		doc = pretty.Pretty(doc)
	}
	return doc, nil
}

func hasStatusPrefix(s string) bool {
	return len(s) >= len("__status__") && s[:len("__status__")] == "__status__"
}

// isoTimestamp renders a Unix epoch second as the UTC ISO-8601 string
// spec §6 requires, e.g. "2024-01-02T03:04:05Z".
func isoTimestamp(epoch int64) string {
	return time.Unix(epoch, 0).UTC().Format(time.RFC3339)
}

func mediaName(dllType byte) string {
	switch dllType {
	case 0x06:
		return "warm water"
	case 0x07:
		return "water"
	case 0x04:
		return "heat"
	case 0x02:
		return "electricity"
	default:
		return "unknown"
	}
}

// Field reads a single JSON path back out of a previously serialized
// document without a full unmarshal; this package's tests use it.
func Field(doc []byte, path string) gjson.Result {
	return gjson.GetBytes(doc, path)
}
