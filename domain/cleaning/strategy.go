// Package cleaning defines the closed sets of operations the cleaning
// components accept and the artifacts they persist.
package cleaning

import (
	"strings"

	"gocleanse/domain/core"
)

// FillMethod selects how missing cells are imputed
type FillMethod string

const (
	FillMean     FillMethod = "mean"
	FillMedian   FillMethod = "median"
	FillConstant FillMethod = "constant"
	FillZero     FillMethod = "zero"
)

// DefaultFillConstant is written by FillConstant when no constant is given
const DefaultFillConstant = "NA"

// FillStrategy is a fill method plus its optional constant
type FillStrategy struct {
	Method   FillMethod `json:"method"`
	Constant string     `json:"constant,omitempty"`
}

// ConstantOrDefault returns the configured constant or "NA"
func (s FillStrategy) ConstantOrDefault() string {
	if s.Constant == "" {
		return DefaultFillConstant
	}
	return s.Constant
}

// ParseFillMethod accepts the method names plus "fill" as an alias of constant
func ParseFillMethod(s string) (FillMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mean":
		return FillMean, nil
	case "median":
		return FillMedian, nil
	case "constant", "fill":
		return FillConstant, nil
	case "zero":
		return FillZero, nil
	}
	return "", core.NewUnsupportedOperationError("fill", "unknown method "+s)
}

// AllColumns targets every column in row-dropping operations
const AllColumns = "*"

// OutlierMethod selects how flagged outliers are remediated
type OutlierMethod string

const (
	OutlierMedian OutlierMethod = "median"
	OutlierMean   OutlierMethod = "mean"
	OutlierMode   OutlierMethod = "mode"
	OutlierRemove OutlierMethod = "remove"
)

// ParseOutlierMethod validates an outlier remediation method name
func ParseOutlierMethod(s string) (OutlierMethod, error) {
	switch m := OutlierMethod(strings.ToLower(strings.TrimSpace(s))); m {
	case OutlierMedian, OutlierMean, OutlierMode, OutlierRemove:
		return m, nil
	}
	return "", core.NewUnsupportedOperationError("outlier remediation", "unknown method "+s)
}

// CategoryOrder decides how label codes are assigned
type CategoryOrder string

const (
	OrderSorted    CategoryOrder = "sorted"     // natural byte-wise sort of the distinct values
	OrderFirstSeen CategoryOrder = "first_seen" // order of first appearance in the column
)

// ParseCategoryOrder validates a category order name
func ParseCategoryOrder(s string) (CategoryOrder, error) {
	switch o := CategoryOrder(strings.ToLower(strings.TrimSpace(s))); o {
	case OrderSorted, OrderFirstSeen:
		return o, nil
	case "":
		return OrderSorted, nil
	}
	return "", core.NewUnsupportedOperationError("encode", "unknown category order "+s)
}

// UnknownCategoryPolicy decides what happens when an existing mapping meets a new value
type UnknownCategoryPolicy string

const (
	UnknownError   UnknownCategoryPolicy = "error"
	UnknownReserve UnknownCategoryPolicy = "reserve"
)

// UnknownCode is the reserved label code for values absent from a supplied mapping
const UnknownCode = -1

// ParseUnknownCategoryPolicy validates a policy name
func ParseUnknownCategoryPolicy(s string) (UnknownCategoryPolicy, error) {
	switch p := UnknownCategoryPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case UnknownError, UnknownReserve:
		return p, nil
	case "":
		return UnknownError, nil
	}
	return "", core.NewUnsupportedOperationError("encode", "unknown category policy "+s)
}
