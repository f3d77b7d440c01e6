package firestore

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ============================================================
// Firestore value codec
// ============================================================

// value is the Firestore typed-value wrapper. Only the variants this
// service writes are modeled; unknown variants decode as zero values.
type value struct {
	StringValue    *string  `json:"stringValue,omitempty"`
	IntegerValue   *string  `json:"integerValue,omitempty"`
	DoubleValue    *float64 `json:"doubleValue,omitempty"`
	TimestampValue *string  `json:"timestampValue,omitempty"`
	BooleanValue   *bool    `json:"booleanValue,omitempty"`
}

func stringVal(s string) value {
	return value{StringValue: &s}
}

// decimalVal stores amounts as strings so they round-trip without
// float drift.
func decimalVal(d decimal.Decimal) value {
	s := d.String()
	return value{StringValue: &s}
}

func timeVal(t time.Time) value {
	s := t.UTC().Format(time.RFC3339Nano)
	return value{TimestampValue: &s}
}

func (v value) asString() string {
	if v.StringValue != nil {
		return *v.StringValue
	}
	return ""
}

// asDecimal accepts the string encoding this service writes plus the
// numeric variants older records may carry.
func (v value) asDecimal() decimal.Decimal {
	switch {
	case v.StringValue != nil:
		d, err := decimal.NewFromString(*v.StringValue)
		if err != nil {
			return decimal.Zero
		}
		return d
	case v.IntegerValue != nil:
		d, err := decimal.NewFromString(*v.IntegerValue)
		if err != nil {
			return decimal.Zero
		}
		return d
	case v.DoubleValue != nil:
		return decimal.NewFromFloat(*v.DoubleValue)
	default:
		return decimal.Zero
	}
}

func (v value) asTime() time.Time {
	if v.TimestampValue == nil {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, *v.TimestampValue)
	if err != nil {
		return time.Time{}
	}
	return t.Local()
}

func decodeDocument(body []byte) (*document, error) {
	var doc document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	return &doc, nil
}

// docID extracts the final path segment of a document resource name,
// e.g. "projects/p/databases/(default)/documents/users/u/transactions/abc"
// yields "abc".
func docID(name string) string {
	i := strings.LastIndexByte(name, '/')
	if i < 0 {
		return name
	}
	return name[i+1:]
}

// fingerprint summarizes a document list for cheap change detection:
// the document count plus the max updateTime observed.
func fingerprint(docs []document) string {
	max := ""
	for _, d := range docs {
		if d.UpdateTime > max {
			max = d.UpdateTime
		}
	}
	return fmt.Sprintf("%d|%s", len(docs), max)
}
