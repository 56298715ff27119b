package contacts

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindEmails(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"none", "no contact details here", []string{}},
		{"single", "Contact: jane@widgetco.io", []string{"jane@widgetco.io"}},
		{
			name: "deduplicated and sorted",
			text: "zed@b.com\nann@a.org\nzed@b.com ann@a.org",
			want: []string{"ann@a.org", "zed@b.com"},
		},
		{
			name: "plus and dots in local part",
			text: "mail first.last+tag@mail.example.co.in now",
			want: []string{"first.last+tag@mail.example.co.in"},
		},
		{"tld too short", "foo@bar.c", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FindEmails(tt.text))
		})
	}
}

func TestFindMobiles(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"valid leading nine", "call 9876543210", []string{"9876543210"}},
		{"leading one rejected", "call 1234567890", []string{}},
		{"leading five rejected", "call 5876543210", []string{}},
		{"leading six to nine accepted", "6000000000 7000000000 8000000000", []string{"6000000000", "7000000000", "8000000000"}},
		{"eleven digits rejected", "98765432101", []string{}},
		{"nine digits rejected", "987654321", []string{}},
		{"plus country code", "+91 9876543210", []string{"9876543210"}},
		{"country code with dash", "+91-9876543210", []string{"9876543210"}},
		{"country code glued", "919876543210", []string{"9876543210"}},
		{"ten digits starting with 91", "9198765432", []string{"9198765432"}},
		{"duplicates collapse", "9876543210 and again 9876543210", []string{"9876543210"}},
		{"sorted", "9999999999 6666666666", []string{"6666666666", "9999999999"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FindMobiles(tt.text))
		})
	}
}

func TestFindLandlines(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"dash separator", "Tel: 022-12345678", []string{"022-12345678"}},
		{"space separator", "Office 080 26543210", []string{"080 26543210"}},
		{"no separator", "04023456789", []string{"04023456789"}},
		{"must start with zero", "Tel: 122-12345678", []string{}},
		{"deduplicated", "022-12345678 / 022-12345678", []string{"022-12345678"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FindLandlines(tt.text))
		})
	}
}

func TestFindPhones(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"no leading digit rule", "1234567890", []string{"1234567890"}},
		{"international prefix kept", "+1 5551234567", []string{"+1 5551234567"}},
		{"eleven digits rejected", "12345678901", []string{}},
		{"glued country code", "Call +919876543210 now", []string{"+919876543210"}},
		{"glued country code with space", "+91 9876543210", []string{"+91 9876543210"}},
		{"plus without country code", "(+9876543210)", []string{"9876543210"}},
		{"embedded in a word", "ref9876543210", []string{}},
		{"line start", "9876543210\n5551234567", []string{"5551234567", "9876543210"}},
		{"sorted and unique", "9876543210 1234567890 9876543210", []string{"1234567890", "9876543210"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FindPhones(tt.text))
		})
	}
}

func TestUniqueSorted(t *testing.T) {
	got := uniqueSorted([]string{"b", "a", "b", "c", "a"})
	assert.Equal(t, []string{"a", "b", "c"}, got)
	assert.True(t, sort.StringsAreSorted(got))

	empty := uniqueSorted(nil)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}
