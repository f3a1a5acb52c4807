package dataset

import (
	"strconv"
	"strings"
	"time"
)

// ValueType defines the storage type for values and columns
type ValueType string

const (
	ValueTypeString    ValueType = "string"
	ValueTypeNumeric   ValueType = "numeric"
	ValueTypeBoolean   ValueType = "boolean"
	ValueTypeTimestamp ValueType = "timestamp"
	ValueTypeMissing   ValueType = "missing"
)

// TimestampLayout is the canonical textual form of timestamp cells
const TimestampLayout = "2006-01-02T15:04:05Z07:00"

// Value represents a single nullable cell
type Value struct {
	Type         ValueType `json:"type"`
	StringVal    string    `json:"string_val,omitempty"`
	NumericVal   float64   `json:"numeric_val,omitempty"`
	BooleanVal   bool      `json:"boolean_val,omitempty"`
	TimestampVal time.Time `json:"timestamp_val,omitempty"`
}

// NewStringValue creates a string value
func NewStringValue(s string) Value {
	return Value{Type: ValueTypeString, StringVal: s}
}

// NewNumericValue creates a numeric value
func NewNumericValue(n float64) Value {
	return Value{Type: ValueTypeNumeric, NumericVal: n}
}

// NewBooleanValue creates a boolean value
func NewBooleanValue(b bool) Value {
	return Value{Type: ValueTypeBoolean, BooleanVal: b}
}

// NewTimestampValue creates a timestamp value
func NewTimestampValue(t time.Time) Value {
	return Value{Type: ValueTypeTimestamp, TimestampVal: t}
}

// NewMissingValue creates a missing value
func NewMissingValue() Value {
	return Value{Type: ValueTypeMissing}
}

// IsMissing reports whether the cell holds no value
func (v Value) IsMissing() bool {
	return v.Type == ValueTypeMissing || v.Type == ""
}

// IsNumeric returns true if the value represents a number
func (v Value) IsNumeric() bool {
	return v.Type == ValueTypeNumeric
}

// AsFloat64 returns the numeric value as float64, or 0 if not numeric
func (v Value) AsFloat64() float64 {
	switch v.Type {
	case ValueTypeNumeric:
		return v.NumericVal
	case ValueTypeBoolean:
		if v.BooleanVal {
			return 1
		}
	}
	return 0
}

// AsString returns the string value, or empty string if not a string
func (v Value) AsString() string {
	if v.Type == ValueTypeString {
		return v.StringVal
	}
	return ""
}

// AsBoolean returns the boolean value, or false if not a boolean
func (v Value) AsBoolean() bool {
	return v.Type == ValueTypeBoolean && v.BooleanVal
}

// AsTime returns the timestamp value, or the zero time if not a timestamp
func (v Value) AsTime() time.Time {
	if v.Type == ValueTypeTimestamp {
		return v.TimestampVal
	}
	return time.Time{}
}

// String returns the textual form used for export and display
func (v Value) String() string {
	switch v.Type {
	case ValueTypeString:
		return v.StringVal
	case ValueTypeNumeric:
		return strconv.FormatFloat(v.NumericVal, 'f', -1, 64)
	case ValueTypeBoolean:
		return strconv.FormatBool(v.BooleanVal)
	case ValueTypeTimestamp:
		return v.TimestampVal.Format(TimestampLayout)
	}
	return ""
}

// Equal reports exact equality; two missing values are equal.
func (v Value) Equal(other Value) bool {
	if v.IsMissing() || other.IsMissing() {
		return v.IsMissing() && other.IsMissing()
	}
	if v.Type != other.Type {
		return false
	}
	switch v.Type {
	case ValueTypeNumeric:
		return v.NumericVal == other.NumericVal
	case ValueTypeBoolean:
		return v.BooleanVal == other.BooleanVal
	case ValueTypeTimestamp:
		return v.TimestampVal.Equal(other.TimestampVal)
	}
	return v.StringVal == other.StringVal
}

// key renders a type-tagged form such that key equality matches Equal
func (v Value) key(b *strings.Builder) {
	if v.IsMissing() {
		b.WriteString("m:")
		return
	}
	switch v.Type {
	case ValueTypeNumeric:
		b.WriteString("n:")
		if v.NumericVal == 0 {
			b.WriteString("0")
		} else {
			b.WriteString(strconv.FormatFloat(v.NumericVal, 'g', -1, 64))
		}
	case ValueTypeBoolean:
		b.WriteString("b:")
		b.WriteString(strconv.FormatBool(v.BooleanVal))
	case ValueTypeTimestamp:
		b.WriteString("t:")
		b.WriteString(strconv.FormatInt(v.TimestampVal.UnixNano(), 10))
	default:
		b.WriteString("s:")
		b.WriteString(strconv.Quote(v.StringVal))
	}
}
