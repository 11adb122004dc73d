package types

import "github.com/crichub/auction-backend/internal/engine"

// UserView is the participant shape exposed in snapshots.
type UserView struct {
	Name      string `json:"name"`
	Team      string `json:"team,omitempty"`
	Connected bool   `json:"connected"`
	IsAway    bool   `json:"isAway,omitempty"`
	IsHost    bool   `json:"isHost,omitempty"`
}

// TeamResult is one leaderboard row.
type TeamResult struct {
	Team   string  `json:"team"`
	Owner  string  `json:"owner,omitempty"`
	Rating float64 `json:"rating"`
	Purse  float64 `json:"purse"`
	Squad  int     `json:"squad"`
	HasXI  bool    `json:"hasXI"`
}

// RoomSnapshot is the full room state sent on join and persisted to the
// snapshot store. It mirrors the in-memory room minus timer state.
type RoomSnapshot struct {
	Code           string                     `json:"code"`
	IsPublic       bool                       `json:"isPublic"`
	Host           string                     `json:"host,omitempty"`
	Users          []UserView                 `json:"users"`
	AvailableTeams []string                   `json:"availableTeams"`
	Squads         map[string][]engine.Player `json:"squads"`
	Purse          map[string]float64         `json:"purse"`
	RTMLeft        map[string]int             `json:"rtmLeft"`
	Rules          engine.Rules               `json:"rules"`
	Sets           []string                   `json:"sets,omitempty"`
	CurrentSet     string                     `json:"currentSet,omitempty"`
	AuctionStarted bool                       `json:"auctionStarted"`
	AuctionEnded   bool                       `json:"auctionEnded"`
	Auction        engine.Auction             `json:"auction"`
	PlayingXI      map[string][]string        `json:"playingXI,omitempty"`
	Logs           []string                   `json:"logs,omitempty"`
	Chat           []ChatLine                 `json:"chat,omitempty"`
}

// ChatLine is one entry of the room chat ring.
type ChatLine struct {
	User    string `json:"user"`
	Message string `json:"message"`
}
