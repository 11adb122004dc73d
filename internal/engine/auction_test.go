package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func liveAuction() *Auction {
	return &Auction{
		Live:   true,
		Player: &Player{Name: "p", Rating: 9.2},
		Bid:    2.0,
	}
}

func TestValidateBid(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Auction)
		team    string
		purse   float64
		want    float64
		wantErr error
	}{
		{
			name:  "first bid takes opening price",
			team:  "CSK",
			purse: 120,
			want:  2.0,
		},
		{
			name: "second bid adds increment",
			mutate: func(a *Auction) {
				a.Team = "CSK"
				a.LastBidTeam = "CSK"
			},
			team:  "MI",
			purse: 120,
			want:  2.2,
		},
		{
			name: "consecutive self-bid rejected",
			mutate: func(a *Auction) {
				a.Team = "CSK"
				a.LastBidTeam = "CSK"
			},
			team:    "CSK",
			purse:   120,
			wantErr: ErrSelfBid,
		},
		{
			name:    "spectator cannot bid",
			team:    "",
			purse:   120,
			wantErr: ErrNoTeam,
		},
		{
			name:    "insufficient purse",
			team:    "CSK",
			purse:   1.5,
			wantErr: ErrInsufficientPurse,
		},
		{
			name:    "paused auction rejects",
			mutate:  func(a *Auction) { a.Paused = true },
			team:    "CSK",
			purse:   120,
			wantErr: ErrAuctionPaused,
		},
		{
			name:    "no player on the block",
			mutate:  func(a *Auction) { a.Player = nil },
			team:    "CSK",
			purse:   120,
			wantErr: ErrAuctionNotLive,
		},
		{
			name:    "not live",
			mutate:  func(a *Auction) { a.Live = false },
			team:    "CSK",
			purse:   120,
			wantErr: ErrAuctionNotLive,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := liveAuction()
			if tc.mutate != nil {
				tc.mutate(a)
			}
			amount, err := ValidateBid(a, tc.team, tc.purse)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, amount)
		})
	}
}

func TestValidateBid_StrictlyIncreasingSequence(t *testing.T) {
	a := liveAuction()
	teams := []string{"CSK", "MI", "CSK", "MI", "RR"}
	prev := 0.0
	for _, team := range teams {
		amount, err := ValidateBid(a, team, 120)
		require.NoError(t, err)
		require.Greater(t, amount, prev, "bids must strictly increase")
		require.NotEqual(t, a.LastBidTeam, team, "no consecutive self-bid")
		a.Bid = amount
		a.Team = team
		a.LastBidTeam = team
		prev = amount
	}
}

func TestValidateCounter(t *testing.T) {
	assert.NoError(t, ValidateCounter(3.0, 2.0, 100))
	assert.ErrorIs(t, ValidateCounter(2.0, 2.0, 100), ErrCounterTooLow)
	assert.ErrorIs(t, ValidateCounter(1.5, 2.0, 100), ErrCounterTooLow)
	assert.ErrorIs(t, ValidateCounter(3.0, 2.0, 2.5), ErrInsufficientPurse)
}
