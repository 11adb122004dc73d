package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOpeningBid_Table(t *testing.T) {
	cases := []struct {
		rating float64
		want   float64
	}{
		{9.8, 2.0},
		{9.0, 2.0},
		{8.7, 1.5},
		{8.0, 1.0},
		{7.6, 0.75},
		{7.0, 0.5},
		{6.2, 0.3},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, OpeningBid(Player{Rating: tc.rating}), "rating %.1f", tc.rating)
	}
}

func TestIncrement_Table(t *testing.T) {
	cases := []struct {
		current float64
		want    float64
	}{
		{0.3, 0.05},
		{0.95, 0.05},
		{1.0, 0.10},
		{4.9, 0.10},
		{5.0, 0.20},
		{9.8, 0.20},
		{10.0, 0.25},
		{19.75, 0.25},
		{20.0, 1.0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Increment(tc.current), "current %.2f", tc.current)
	}
}

func TestIncrement_Monotonic(t *testing.T) {
	prev := 0.0
	for _, amount := range []float64{0.3, 0.9, 1.5, 4.0, 7.0, 12.0, 25.0} {
		step := Increment(amount)
		assert.GreaterOrEqual(t, step, prev, "step table must not shrink as bids grow")
		prev = step
	}
}

func TestNextAmount_FirstBidTakesOpeningPrice(t *testing.T) {
	a := &Auction{Live: true, Player: &Player{Rating: 9.2}, Bid: 2.0}
	assert.Equal(t, 2.0, a.NextAmount())

	a.Team = "CSK"
	a.LastBidTeam = "CSK"
	assert.Equal(t, 2.1, a.NextAmount())
}

func TestRoundBid_NoFloatDrift(t *testing.T) {
	bid := 0.3
	for i := 0; i < 18; i++ {
		bid = RoundBid(bid + Increment(bid))
	}
	assert.Equal(t, 1.4, bid)
}
