package xid

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	InvoicePrefix = "INV"
	ProductPrefix = "PRD"

	width = 8
)

// Format renders id as PREFIX-00000042. Ids wider than eight digits are kept
// whole.
func Format(id int64, prefix string) string {
	return fmt.Sprintf("%s-%0*d", prefix, width, id)
}

// Parse recovers the numeric id from a formatted identifier. The prefix match
// is case-insensitive.
func Parse(formatted string, prefix string) (int64, error) {
	trimmed := strings.TrimSpace(formatted)
	head, digits, ok := strings.Cut(trimmed, "-")
	if !ok || !strings.EqualFold(head, prefix) || digits == "" {
		return 0, fmt.Errorf("identifier %q does not match %s-########", formatted, prefix)
	}
	id, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("identifier %q has a non-numeric suffix", formatted)
	}
	return id, nil
}

// NextCode returns the code following the highest PREFIX-n in codes.
func NextCode(codes []string, prefix string) string {
	var maxID int64
	for _, code := range codes {
		if !strings.HasPrefix(code, prefix+"-") {
			continue
		}
		id, err := Parse(code, prefix)
		if err != nil {
			continue
		}
		if id > maxID {
			maxID = id
		}
	}
	return Format(maxID+1, prefix)
}
