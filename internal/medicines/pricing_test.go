package medicines

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSalePriceFromMargin(t *testing.T) {
	cases := map[string]struct {
		purchase float64
		margin   float64
		want     float64
	}{
		"quarter margin":  {purchase: 75, margin: 25, want: 100},
		"zero margin":     {purchase: 50, margin: 0, want: 50},
		"typical":         {purchase: 120, margin: 20, want: 150},
		"rounded":         {purchase: 10, margin: 33, want: 14.93},
		"full margin":     {purchase: 30, margin: 100, want: 30},
		"margin over 100": {purchase: 30, margin: 150, want: 30},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			require.InDelta(t, tc.want, SalePriceFromMargin(tc.purchase, tc.margin), 0.001)
		})
	}
}

func TestRoundMoney(t *testing.T) {
	require.Equal(t, 10.56, RoundMoney(10.556))
	require.Equal(t, 10.55, RoundMoney(10.554))
	require.Equal(t, 0.0, RoundMoney(-3))
	require.Equal(t, 0.0, RoundMoney(math.NaN()))
	require.Equal(t, 0.0, RoundMoney(math.Inf(1)))
}
