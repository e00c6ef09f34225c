package http

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator_Money(t *testing.T) {
	type amounts struct {
		Amount string `json:"amount" validate:"required,money"`
		Income string `json:"income" validate:"omitempty,money0"`
	}
	v := NewValidator()

	tests := []struct {
		name    string
		in      amounts
		invalid []string
	}{
		{"whole amount", amounts{Amount: "100000"}, nil},
		{"two places", amounts{Amount: "25000.50", Income: "0.00"}, nil},
		{"one place", amounts{Amount: "0.5", Income: "0"}, nil},
		{"largest column value", amounts{Amount: "9999999999999999.99"}, nil},
		{"scientific notation", amounts{Amount: "1e5", Income: "5E4"}, []string{"amount", "income"}},
		{"three places", amounts{Amount: "100.001"}, []string{"amount"}},
		{"zero amount", amounts{Amount: "0.00"}, []string{"amount"}},
		{"negative", amounts{Amount: "-100", Income: "-1"}, []string{"amount", "income"}},
		{"sign prefix", amounts{Amount: "+100"}, []string{"amount"}},
		{"leading dot", amounts{Amount: ".50"}, []string{"amount"}},
		{"trailing dot", amounts{Amount: "100."}, []string{"amount"}},
		{"whitespace", amounts{Amount: " 100"}, []string{"amount"}},
		{"too many digits", amounts{Amount: "12345678901234567"}, []string{"amount"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.in)
			if len(tt.invalid) == 0 {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var fields []string
			for _, fe := range ToFieldErrors(err) {
				fields = append(fields, fe.Field)
				assert.Contains(t, fe.Message, "plain decimal string")
			}
			assert.ElementsMatch(t, tt.invalid, fields)
		})
	}
}
