package room

import (
	"github.com/crichub/auction-backend/internal/engine"
	"github.com/crichub/auction-backend/internal/types"
)

// Msg is a message on a room's inbox. Every mutation of room state arrives
// as one of these and is handled to completion by the room goroutine, which
// is what serializes concurrent bids.
type Msg interface{ isRoomMsg() }

// Join admits a connection under a display name. Depending on the name's
// current state this is a fresh join, a transparent reattach, a post-kick
// spectator re-entry, or the start of an identity challenge.
type Join struct {
	ConnID string
	Name   string
	Outbox chan types.ServerMessage
}

// VerifyIdentity answers an identity challenge from the new connection.
type VerifyIdentity struct {
	ConnID string
	Name   string
	Code   string
	Outbox chan types.ServerMessage
}

// Leave reports that a connection's transport dropped.
type Leave struct{ ConnID string }

// SelectTeam claims a franchise team for the participant.
type SelectTeam struct {
	ConnID string
	Team   string
}

// SetRules replaces the room configuration. Host-only, pre-start.
type SetRules struct {
	ConnID string
	Rules  engine.Rules
}

// AdminAction is a host control: start, togglePause, skip, skipSet, end,
// or kick (with Target set to the participant name).
type AdminAction struct {
	ConnID string
	Action string
	Target string
}

// PlaceBid bids on the player currently on the block.
type PlaceBid struct{ ConnID string }

// RTMAction is one step of the right-to-match negotiation. Kind is one of
// the types.MsgRTM* message types; Amount carries the counter-offer.
type RTMAction struct {
	ConnID string
	Kind   string
	Amount float64
}

// ChatMessage relays a chat line to the room.
type ChatMessage struct {
	ConnID string
	Text   string
}

// SubmitXI submits a team's playing eleven after the auction.
type SubmitXI struct {
	ConnID string
	Names  []string
}

// GetState reflects internal state without data races. Test-only.
type GetState struct{ Reply chan View }

// Shutdown stops the room goroutine and closes all client outboxes.
type Shutdown struct{}

func (Join) isRoomMsg()           {}
func (VerifyIdentity) isRoomMsg() {}
func (Leave) isRoomMsg()          {}
func (SelectTeam) isRoomMsg()     {}
func (SetRules) isRoomMsg()       {}
func (AdminAction) isRoomMsg()    {}
func (PlaceBid) isRoomMsg()       {}
func (RTMAction) isRoomMsg()      {}
func (ChatMessage) isRoomMsg()    {}
func (SubmitXI) isRoomMsg()       {}
func (GetState) isRoomMsg()       {}
func (Shutdown) isRoomMsg()       {}

// Timer fires are inbox messages too, stamped with the generation that
// armed them; a stale generation means the timer was superseded and the
// fire is dropped.
type tickMsg struct{ gen int }
type graceMsg struct {
	name string
	gen  int
}
type rtmTimeoutMsg struct{ gen int }
type emptyRoomMsg struct{ gen int }
type challengeExpiredMsg struct {
	name string
	gen  int
}

func (tickMsg) isRoomMsg()             {}
func (graceMsg) isRoomMsg()            {}
func (rtmTimeoutMsg) isRoomMsg()       {}
func (emptyRoomMsg) isRoomMsg()        {}
func (challengeExpiredMsg) isRoomMsg() {}

// UserInfo is a participant's state as seen through GetState.
type UserInfo struct {
	Team      string
	Connected bool
	IsAway    bool
	IsKicked  bool
}

// View is a race-free copy of room state for tests.
type View struct {
	Host           string
	AdminUser      string
	Users          map[string]UserInfo
	AvailableTeams map[string]bool
	Squads         map[string][]engine.Player
	Purse          map[string]float64
	RTMLeft        map[string]int
	Rules          engine.Rules
	Auction        engine.Auction
	RTMPhase       string
	AuctionStarted bool
	AuctionEnded   bool
	SetsRemaining  int
	PlayingXI      map[string][]string
}
