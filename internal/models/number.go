package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// The PHP backend sends numeric columns either as JSON numbers or as quoted
// strings ("1500", "4.50"), and sometimes as "" or null for unset values.
// These helpers accept all of those; anything else is a decode error.

func numberText(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] != '"' {
		return string(raw), nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", err
	}
	return strings.TrimSpace(s), nil
}

func decodeInt(field string, raw json.RawMessage) (int64, error) {
	text, err := numberText(raw)
	if err != nil || text == "" {
		return 0, wrapNumber(field, raw, err)
	}
	d, err := decimal.NewFromString(text)
	if err != nil {
		return 0, wrapNumber(field, raw, err)
	}
	if !d.IsInteger() || !d.BigInt().IsInt64() {
		return 0, fmt.Errorf("%s: %s is not a whole number", field, raw)
	}
	return d.IntPart(), nil
}

func decodeFloat(field string, raw json.RawMessage) (float64, error) {
	text, err := numberText(raw)
	if err != nil || text == "" {
		return 0, wrapNumber(field, raw, err)
	}
	d, err := decimal.NewFromString(text)
	if err != nil {
		return 0, wrapNumber(field, raw, err)
	}
	f, _ := d.Float64()
	return f, nil
}

func wrapNumber(field string, raw json.RawMessage, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: invalid number %s: %w", field, raw, err)
}
