//go:build !integration

package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "lowercases", input: "Amoxicillin", want: "amoxicillin"},
		{name: "collapses whitespace", input: "  Amoxicillin   500 mg ", want: "amoxicillin 500 mg"},
		{name: "strips accents", input: "Paracétamol", want: "paracetamol"},
		{name: "drops punctuation", input: "Lisinopril (Oral), Tablet", want: "lisinopril oral tablet"},
		{name: "keeps strength characters", input: "Hydrocodone/APAP 5/325", want: "hydrocodone/apap 5/325"},
		{name: "keeps decimals and percent", input: "Sodium Chloride 0.9%", want: "sodium chloride 0.9%"},
		{name: "empty", input: "  ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeName(tt.input))
		})
	}
}

func TestNormalizeAll(t *testing.T) {
	got := NormalizeAll([]string{"Amoxil", "AMOXIL", "", "Trimox"})
	assert.Equal(t, []string{"amoxil", "trimox"}, got)
}
