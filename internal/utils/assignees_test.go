package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeAssignees(t *testing.T) {
	tests := []struct {
		name   string
		input  []string
		expect []string
	}{
		{"absent", nil, nil},
		{"single scalar", []string{"u1"}, []string{"u1"}},
		{"repeated fields", []string{"u1", "u2"}, []string{"u1", "u2"}},
		{"json array", []string{`["u1","u2"]`}, []string{"u1", "u2"}},
		{"json array with whitespace", []string{`  ["u1"]`}, []string{"u1"}},
		{"malformed json falls back to scalar", []string{`["u1",`}, []string{`["u1",`}},
		{"bracket-looking scalar", []string{"not-json["}, []string{"not-json["}},
		{"duplicates preserved", []string{"u1", "u1"}, []string{"u1", "u1"}},
		{"order preserved", []string{`["u3","u1","u2"]`}, []string{"u3", "u1", "u2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, NormalizeAssignees(tt.input))
		})
	}
}

func TestNormalizeAssigneesDoesNotAliasInput(t *testing.T) {
	input := []string{"u1", "u2"}
	out := NormalizeAssignees(input)

	out[0] = "changed"
	assert.Equal(t, "u1", input[0])
}

func TestParseID(t *testing.T) {
	id, err := ParseID("42")
	assert.NoError(t, err)
	assert.Equal(t, uint(42), id)

	for _, bad := range []string{"", "0", "-1", "abc", "1.5", "18446744073709551616"} {
		_, err := ParseID(bad)
		assert.Error(t, err, "value %q", bad)
	}

	assert.Equal(t, "42", FormatID(42))
}
