package engine

import "errors"

var (
	ErrAuctionNotLive    = errors.New("auction is not live")
	ErrAuctionPaused     = errors.New("auction is paused")
	ErrNoPlayerOnBlock   = errors.New("no player on the block")
	ErrNoTeam            = errors.New("no team assigned")
	ErrSelfBid           = errors.New("already the highest bidder")
	ErrInsufficientPurse = errors.New("insufficient purse")
	ErrTeamTaken         = errors.New("team already taken")
	ErrCounterTooLow     = errors.New("counter must exceed the winning bid")
)

// Auction is the live bidding substate of a room. Timer is whole seconds
// remaining; resolution happens when it goes below zero.
type Auction struct {
	Live        bool    `json:"live"`
	Paused      bool    `json:"paused"`
	Player      *Player `json:"player,omitempty"`
	Bid         float64 `json:"bid"`
	Team        string  `json:"team,omitempty"`
	LastBidTeam string  `json:"lastBidTeam,omitempty"`
	Timer       int     `json:"timer"`
}

// NextAmount is what the next accepted bid will cost. The first bid takes
// the opening price as-is; later bids add the increment step.
func (a *Auction) NextAmount() float64 {
	if a.Team == "" {
		return a.Bid
	}
	return RoundBid(a.Bid + Increment(a.Bid))
}

// ValidateBid checks whether team may place the next bid with the given
// remaining purse and returns the amount the bid would commit at.
func ValidateBid(a *Auction, team string, purse float64) (float64, error) {
	if !a.Live || a.Player == nil {
		return 0, ErrAuctionNotLive
	}
	if a.Paused {
		return 0, ErrAuctionPaused
	}
	if team == "" {
		return 0, ErrNoTeam
	}
	if a.LastBidTeam == team {
		return 0, ErrSelfBid
	}
	amount := a.NextAmount()
	if amount > purse {
		return 0, ErrInsufficientPurse
	}
	return amount, nil
}

// ValidateCounter checks an RTM counter-offer against the winning bid and
// the counter-bidder's purse.
func ValidateCounter(counter, winningBid, purse float64) error {
	if counter <= winningBid {
		return ErrCounterTooLow
	}
	if counter > purse {
		return ErrInsufficientPurse
	}
	return nil
}
