package hscode

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		j    Jurisdiction
		want string
	}{
		{"six digits", "123456", "", "12.34.56"},
		{"eight digits", "12345678", "", "1234.56.78"},
		{"ten digits", "1234567890", "", "1234.56.78.90"},
		{"non-digits stripped, odd length", "abc123de45", "", "12.34.5"},
		{"empty", "", "", ""},
		{"no digits at all", "not a code", "", ""},
		{"already dotted", "8471.30.01", "", "8471.30.01"},
		{"padded to japan length", "123", "JP", "12.30.00.00.0"},
		{"truncated to us length", "1234567890123", "US", "1234.56.78.90"},
		{"padded to us length", "847130", "US", "8471.30.00.00"},
		{"exact brazil length", "84713012", "BR", "8471.30.12"},
		{"lower-case jurisdiction", "847130", "us", "8471.30.00.00"},
		{"jurisdiction with spaces", "847130", " br ", "8471.30.00"},
		{"unknown jurisdiction", "847130", "ZZ", "84.71.30"},
		{"empty input padded", "", "AU", "0000.00.00"},
		{"four digits", "8471", "", "84.71"},
		{"seven digits", "1234567", "", "12.34.56.7"},
		{"twelve digits", "123456789012", "", "12.34.56.78.90.12"},
		{"non-ascii digits ignored", "٨٤٧١30", "", "30"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.raw, tt.j))
		})
	}
}

func TestFormat_LengthMatchesTable(t *testing.T) {
	inputs := []string{"", "1", "12345", "847130", "8471300100", "84713001009999999", "HS: 8471.30"}

	for _, e := range DefaultTable().Entries() {
		for _, in := range inputs {
			got := Format(in, e.ID)
			assert.Len(t, Digits(got), e.Length, "jurisdiction %s input %q -> %q", e.ID, in, got)
		}
	}
}

func TestFormat_RoundTrip(t *testing.T) {
	t.Run("stable without enforcement", func(t *testing.T) {
		for _, in := range []string{"123456", "12345678", "1234567890", "12345"} {
			once := Format(in, "")
			assert.Equal(t, once, Format(once, ""))
		}
	})

	t.Run("padding is not reversible", func(t *testing.T) {
		once := Format("847130", "US")
		// The padded zeros are now indistinguishable from real digits.
		assert.Equal(t, "8471.30.00.00", Format(once, ""))
		assert.NotEqual(t, Format("847130", ""), Format(once, ""))
	})
}

func TestFormatter_CustomTable(t *testing.T) {
	f := NewFormatter(NewTable(Entry{ID: "xx", Length: 6}))

	assert.Equal(t, "12.34.56", f.Format("12345678", "XX"))
	assert.Equal(t, "1234.56.78", f.Format("12345678", "US"), "default table must not leak into a custom one")
}

func TestFormatter_NilTable(t *testing.T) {
	f := NewFormatter(nil)
	assert.Equal(t, "12.3", f.Format("123", "US"))
}

func TestFormat_Concurrent(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, e := range DefaultEntries {
				got := Format("847130", e.ID)
				if len(Digits(got)) != e.Length {
					t.Errorf("%s: got %q", e.ID, got)
				}
			}
		}()
	}
	wg.Wait()
}

func TestDigits(t *testing.T) {
	assert.Equal(t, "847130", Digits("HS 8471.30"))
	assert.Equal(t, "", Digits("—"))
	assert.Equal(t, strings.Repeat("9", 3), Digits("9a9b9"))
}

func TestTable(t *testing.T) {
	tbl := DefaultTable()
	require.Equal(t, 10, tbl.Len())

	n, ok := tbl.Length("jp")
	require.True(t, ok)
	assert.Equal(t, 9, n)

	_, ok = tbl.Length("ZZ")
	assert.False(t, ok)

	entries := tbl.Entries()
	assert.Equal(t, Jurisdiction("AU"), entries[0].ID)
	assert.Equal(t, Jurisdiction("US"), entries[len(entries)-1].ID)
}

func TestNewTable_SkipsInvalid(t *testing.T) {
	tbl := NewTable(
		Entry{ID: "", Length: 8},
		Entry{ID: "AA", Length: 0},
		Entry{ID: "BB", Length: -1},
		Entry{ID: "cc", Length: 6},
	)
	require.Equal(t, 1, tbl.Len())

	e, ok := tbl.Lookup("CC")
	require.True(t, ok)
	assert.Equal(t, "CC", e.Label)
}

func TestTable_WithLengths(t *testing.T) {
	tbl := DefaultTable().WithLengths(map[string]int{"us": 8, "NZ": 8})

	n, _ := tbl.Length("US")
	assert.Equal(t, 8, n)
	n, _ = tbl.Length("NZ")
	assert.Equal(t, 8, n)

	orig, _ := DefaultTable().Length("US")
	assert.Equal(t, 10, orig, "WithLengths must not mutate the receiver")
}
