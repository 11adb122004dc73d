package types

import "github.com/crichub/auction-backend/internal/engine"

// ClientMessage is the single frame shape clients send over the websocket.
// Type selects which fields are meaningful.
type ClientMessage struct {
	Type    string        `json:"type"`
	User    string        `json:"user,omitempty"`
	Team    string        `json:"team,omitempty"`
	Code    string        `json:"code,omitempty"`
	Action  string        `json:"action,omitempty"`
	Target  string        `json:"target,omitempty"`
	Message string        `json:"message,omitempty"`
	Amount  float64       `json:"amount,omitempty"`
	Rules   *engine.Rules `json:"rules,omitempty"`
	XI      []string      `json:"xi,omitempty"`
}

// Client message types.
const (
	MsgJoinRoom      = "joinRoom"
	MsgReconnectUser = "reconnectUser"
	MsgVerifyCode    = "verifyIdentityCode"
	MsgSelectTeam    = "selectTeam"
	MsgSetRules      = "setRules"
	MsgAdminAction   = "adminAction"
	MsgBid           = "bid"
	MsgChat          = "chat"
	MsgRTMAccept     = "rtmAccept"
	MsgRTMReject     = "rtmReject"
	MsgRTMBuyerOK    = "rtmBuyerAccept"
	MsgRTMBuyerNo    = "rtmBuyerReject"
	MsgSubmitXI      = "submitXI"
)

// ServerMessage is the single frame shape the server sends. Type selects
// which fields are present; everything else is omitted from the JSON.
type ServerMessage struct {
	Type        string          `json:"type"`
	Error       string          `json:"error,omitempty"`
	Reason      string          `json:"reason,omitempty"`
	Code        string          `json:"code,omitempty"`
	User        string          `json:"user,omitempty"`
	Team        string          `json:"team,omitempty"`
	Host        string          `json:"host,omitempty"`
	Message     string          `json:"message,omitempty"`
	Bid         float64         `json:"bid,omitempty"`
	Price       float64         `json:"price,omitempty"`
	Amount      float64         `json:"amount,omitempty"`
	Purse       float64         `json:"purse,omitempty"`
	Timer       int             `json:"timer,omitempty"`
	Show        bool            `json:"show,omitempty"`
	Player      *engine.Player  `json:"player,omitempty"`
	Rules       *engine.Rules   `json:"rules,omitempty"`
	Teams       []string        `json:"teams,omitempty"`
	Snapshot    *RoomSnapshot   `json:"snapshot,omitempty"`
	Leaderboard []TeamResult    `json:"leaderboard,omitempty"`
}

// Server message types.
const (
	EvtJoinedRoom     = "joinedRoom"
	EvtError          = "error"
	EvtIdentityShow   = "identityShowCode"
	EvtIdentityInput  = "identityInputRequired"
	EvtIdentityFailed = "identityFailed"
	EvtUserJoined     = "userJoined"
	EvtUserLeft       = "userLeft"
	EvtTeamPicked     = "teamPicked"
	EvtRulesUpdated   = "rulesUpdated"
	EvtHostChanged    = "hostChanged"
	EvtChat           = "chat"
	EvtAuctionStarted = "auctionStarted"
	EvtNewPlayer      = "newPlayer"
	EvtTimer          = "timer"
	EvtBidUpdate      = "bidUpdate"
	EvtBidRejected    = "bidRejected"
	EvtSold           = "sold"
	EvtUnsold         = "unsold"
	EvtRTMOffer       = "rtmOffer"
	EvtRTMBuyerChoice = "rtmBuyerChoice"
	EvtRTMOverlay     = "rtmOverlay"
	EvtAuctionEnded   = "auctionEnded"
	EvtLeaderboard    = "leaderboard"
	EvtPaused         = "auctionPaused"
	EvtResumed        = "auctionResumed"
	EvtKicked         = "kicked"
)
