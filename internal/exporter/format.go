package exporter

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var countPrinter = message.NewPrinter(language.English)

// formatFloat formats a float64 value for CSV output with exactly 2 decimal
// places, so values like 13.4 appear as 13.40.
func formatFloat(f float64) string {
	return fmt.Sprintf("%.2f", f)
}

// formatInt formats an int value for CSV output
func formatInt(i int) string {
	return strconv.Itoa(i)
}

// FormatCurrency formats a value as dollars with thousands separators,
// e.g. "$1,234.56".
func FormatCurrency(value float64) string {
	sign := ""
	if value < 0 {
		sign = "-"
		value = -value
	}
	whole := int64(math.Floor(value))
	cents := int64(math.Round((value - float64(whole)) * 100))
	if cents == 100 {
		whole++
		cents = 0
	}
	return fmt.Sprintf("%s$%s.%02d", sign, groupThousands(whole), cents)
}

// FormatPercentage formats a value as a signed percentage with one decimal,
// e.g. "+12.3%" or "-5.1%".
func FormatPercentage(value float64) string {
	return fmt.Sprintf("%+.1f%%", value)
}

// FormatCount formats an integer with thousands separators, e.g. "1,234".
func FormatCount(value int) string {
	return countPrinter.Sprintf("%d", value)
}

func groupThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
