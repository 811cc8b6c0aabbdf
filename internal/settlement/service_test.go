package settlement

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestBalanceMessage(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		want   string
	}{
		{
			name:   "positive means they owe you",
			amount: "30",
			want:   "john owes you 30.00 USD",
		},
		{
			name:   "negative means you owe them",
			amount: "-12.5",
			want:   "You owe john 12.50 USD",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, err := decimal.NewFromString(tt.amount)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, balanceMessage("john", "USD", amount))
		})
	}
}
