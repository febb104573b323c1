package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeMAWB(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "11 digits split 3+8", raw: "99934022122", want: "999-34022122"},
		{name: "already hyphenated", raw: "999-34022122", want: "999-34022122"},
		{name: "12 digits drop leading", raw: "199934022122", want: "999-34022122"},
		{name: "trim and upper", raw: "  abc ", want: "ABC"},
		{name: "embedded separators", raw: "999 34022122", want: "999-34022122"},
		{name: "dots stripped", raw: "999.34022122", want: "999-34022122"},
		{name: "blank", raw: "   ", want: ""},
		{name: "empty", raw: "", want: ""},
		{name: "nan token", raw: "nan", want: ""},
		{name: "none token", raw: "None", want: ""},
		{name: "hyphenated short prefix not preserved", raw: "99-1234567", want: "991234567"},
		{name: "hyphenated 3-char prefix preserved", raw: "abc-xyz", want: "ABC-XYZ"},
		{name: "10 digits fall through", raw: "9993402212", want: "9993402212"},
		{name: "13 digits fall through", raw: "9993402212345", want: "9993402212345"},
		{name: "alphanumeric fall through", raw: "AWB 12345", want: "AWB12345"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeMAWB(tt.raw))
		})
	}
}

func TestNormalizeMAWB_Idempotent(t *testing.T) {
	inputs := []string{
		"99934022122",
		"199934022122",
		"999-34022122",
		"  abc ",
		"AWB 12345",
		"",
		"nan",
		"99-1234567",
	}
	for _, raw := range inputs {
		once := NormalizeMAWB(raw)
		assert.Equal(t, once, NormalizeMAWB(once), "normalize(normalize(%q))", raw)
	}
}

func TestParseMAWBList(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "mixed separators",
			text: "999-34022122, 99934022133\n999 34022144",
			want: []string{"999-34022122", "999-34022133", "999-34022144"},
		},
		{
			name: "deduplicates after normalization",
			text: "99934022122 999-34022122",
			want: []string{"999-34022122"},
		},
		{
			name: "sorted output",
			text: "999-34022199 999-34022100",
			want: []string{"999-34022100", "999-34022199"},
		},
		{
			name: "space where hyphen belongs rejoined",
			text: "999 34022144",
			want: []string{"999-34022144"},
		},
		{
			name: "space separated full identifiers stay separate",
			text: "999-34022122 99934022133",
			want: []string{"999-34022122", "999-34022133"},
		},
		{name: "empty input means no filter", text: "", want: nil},
		{name: "whitespace only means no filter", text: "  \n\t ", want: nil},
		{name: "tokens normalizing to empty dropped", text: "nan, none", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseMAWBList(tt.text))
		})
	}
}
