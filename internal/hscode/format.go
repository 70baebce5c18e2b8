// Package hscode normalizes Harmonized System style classification codes.
//
// Oracle answers arrive as free text. [Extract] pulls the candidate digit run
// out of that text and [Formatter.Format] turns any digit-bearing string into
// the dotted form used by a jurisdiction, e.g. "8471300100" -> "8471.30.01.00".
//
// Formatting is total: every input produces a string, and no function in this
// package returns an error.
package hscode

import "strings"

// Formatter formats codes against a jurisdiction table.
type Formatter struct {
	table *Table
}

// NewFormatter returns a Formatter backed by table. A nil table enforces no lengths.
func NewFormatter(table *Table) *Formatter {
	if table == nil {
		table = NewTable()
	}
	return &Formatter{table: table}
}

// Table returns the jurisdiction table used by f.
func (f *Formatter) Table() *Table {
	return f.table
}

// Format formats raw using the default jurisdiction table.
func Format(raw string, j Jurisdiction) string {
	return defaultFormatter.Format(raw, j)
}

var defaultFormatter = NewFormatter(defaultTable)

// Format strips everything but decimal digits from raw, fits the digits to the
// jurisdiction's expected length (truncating, or right-padding with '0'), and
// joins the digit groups with '.'.
//
// Padding means a short answer is silently lengthened; a padded code is not
// authoritative. Because of that, formatting with a jurisdiction is not a
// round trip: Format(Format(x, j), "") equals Format(x, j) only when no
// truncation or padding happened.
func (f *Formatter) Format(raw string, j Jurisdiction) string {
	digits := Digits(raw)

	if j != "" {
		if want, ok := f.table.Length(j); ok {
			digits = fit(digits, want)
		}
	}

	return strings.Join(group(digits), ".")
}

// Digits returns the ASCII decimal digits of s in order.
func Digits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if c := s[i]; c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	return b.String()
}

func fit(digits string, n int) string {
	switch {
	case len(digits) > n:
		return digits[:n]
	case len(digits) < n:
		return digits + strings.Repeat("0", n-len(digits))
	default:
		return digits
	}
}

// groupSizes holds the layouts for the standard HS lengths.
var groupSizes = map[int][]int{
	6:  {2, 2, 2},
	8:  {4, 2, 2},
	10: {4, 2, 2, 2},
}

func group(digits string) []string {
	sizes, ok := groupSizes[len(digits)]
	if !ok {
		return pairs(digits)
	}

	out := make([]string, 0, len(sizes))
	pos := 0
	for _, n := range sizes {
		out = append(out, digits[pos:pos+n])
		pos += n
	}
	return out
}

// pairs splits digits into 2-digit groups, the last holding a single digit
// when the length is odd. This is kept for compatibility with codes the
// service has always emitted for non-standard lengths (e.g. Japan's 9 digits
// become "12.34.56.78.9"); it is not a tariff convention.
func pairs(digits string) []string {
	out := make([]string, 0, (len(digits)+1)/2)
	for i := 0; i < len(digits); i += 2 {
		end := min(i+2, len(digits))
		out = append(out, digits[i:end])
	}
	return out
}
