package domain

import (
	"fmt"
	"math"
)

// Subtotal sums quantity*unitPrice over the collection. It is pure: no
// rounding during accumulation, empty input yields exactly zero, and the
// result does not depend on item order.
//
// A non-finite line total (NaN or ±Inf from a bad numeric entry) contributes
// zero instead of poisoning the whole sum; entry points validate numbers, so
// this only matters for values that arrived through older persisted state.
func Subtotal(items []LineItem) float64 {
	var total float64
	for _, item := range items {
		lt := item.LineTotal()
		if math.IsNaN(lt) || math.IsInf(lt, 0) {
			continue
		}
		total += lt
	}
	return total
}

// FormatAmount renders a monetary amount with two decimal places.
// Rounding happens here, at presentation time only.
func FormatAmount(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// FormatBRL renders a monetary amount with the R$ currency prefix.
func FormatBRL(v float64) string {
	return "R$ " + FormatAmount(v)
}

// FiniteAmount reports whether v is a usable monetary value.
func FiniteAmount(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
