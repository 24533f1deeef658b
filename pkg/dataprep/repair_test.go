package dataprep

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRepairNumericString(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"42", "42"},
		{" 3.14 ", "3.14"},
		{"3,14", "3.14"},
		{"1.234,56", "1234.56"},
		{"1,234.56", "1234.56"},
		{"1,234,567", "1234567"},
		{"not a number", "not a number"},
		{"12,34,56", "123456"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, RepairNumericString(tc.in), "input %q", tc.in)
	}
}

func TestRepairDateString(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"2021-05-17", "2021-05-17"},
		{"17/05/2021", "2021-05-17"},
		{"2021/05/17", "2021-05-17"},
		{"17 May 2021", "2021-05-17"},
		{"May 17, 2021", "2021-05-17"},
		{"yesterday", "yesterday"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, RepairDateString(tc.in), "input %q", tc.in)
	}
}

func TestRepairColumn(t *testing.T) {
	raw := []string{"3,14", "NA", "1.234,56", ""}
	got := RepairColumn(raw, RepairNumericString)
	assert.Equal(t, []string{"3.14", "NA", "1234.56", ""}, got)
}
