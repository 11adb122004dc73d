package room

import (
	"testing"
	"time"

	"github.com/crichub/auction-backend/internal/engine"
	"github.com/crichub/auction-backend/internal/types"
)

func rtmRules() engine.Rules {
	r := engine.DefaultRules()
	r.RTMEnabled = true
	r.RTMPerTeam = 2
	return r
}

// setupAuction joins alice (host, CSK) and bob (MI) and returns their
// outboxes.
func setupAuction(t *testing.T, r *Room) (alice, bob chan types.ServerMessage) {
	t.Helper()
	alice = join(t, r, "c1", "alice")
	bob = join(t, r, "c2", "bob")
	r.Inbox() <- SelectTeam{ConnID: "c1", Team: "CSK"}
	recvType(t, alice, types.EvtTeamPicked, time.Second)
	r.Inbox() <- SelectTeam{ConnID: "c2", Team: "MI"}
	recvType(t, bob, types.EvtTeamPicked, time.Second)
	return alice, bob
}

func assertPurseConservation(t *testing.T, v View) {
	t.Helper()
	for _, team := range TeamCodes {
		total := v.Purse[team]
		for _, p := range v.Squads[team] {
			total += p.Price
		}
		if engine.RoundBid(total) != v.Rules.Purse {
			t.Fatalf("purse conservation broken for %s: purse=%v squad total=%v",
				team, v.Purse[team], total-v.Purse[team])
		}
	}
}

func TestAuction_SoldToHighestBidder(t *testing.T) {
	r := newTestRoom(t, []engine.Player{marqueePlayer("p1")}, testRules(), testOptions())
	alice, bob := setupAuction(t, r)

	r.Inbox() <- AdminAction{ConnID: "c1", Action: "start"}
	np := recvType(t, bob, types.EvtNewPlayer, time.Second)
	if np.Bid != 2.0 {
		t.Fatalf("expected opening bid 2.0, got %v", np.Bid)
	}

	// CSK takes the opening price, MI raises by one increment.
	r.Inbox() <- PlaceBid{ConnID: "c1"}
	up := recvType(t, bob, types.EvtBidUpdate, time.Second)
	if up.Bid != 2.0 || up.Team != "CSK" {
		t.Fatalf("unexpected first bid: %+v", up)
	}
	r.Inbox() <- PlaceBid{ConnID: "c2"}
	up = recvType(t, bob, types.EvtBidUpdate, time.Second)
	if up.Bid != 2.2 || up.Team != "MI" {
		t.Fatalf("unexpected second bid: %+v", up)
	}

	sold := recvType(t, alice, types.EvtSold, 5*time.Second)
	if sold.Team != "MI" || sold.Price != 2.2 {
		t.Fatalf("unexpected sale: %+v", sold)
	}

	v := waitView(t, r, 5*time.Second, func(v View) bool { return v.AuctionEnded })
	if v.Purse["MI"] != 117.8 {
		t.Fatalf("MI purse not debited: %v", v.Purse["MI"])
	}
	squad := v.Squads["MI"]
	if len(squad) != 1 || squad[0].Name != "p1" || squad[0].Price != 2.2 || squad[0].RTM {
		t.Fatalf("unexpected MI squad: %+v", squad)
	}
	assertPurseConservation(t, v)

	// The pool is exhausted, so the engine auto-ended; a late bid is a
	// rejected no-op, not a crash.
	r.Inbox() <- PlaceBid{ConnID: "c2"}
	recvType(t, bob, types.EvtBidRejected, time.Second)
	v = getView(t, r)
	if v.Purse["MI"] != 117.8 {
		t.Fatalf("bid after end mutated state")
	}
}

func TestAuction_ConsecutiveSelfBidRejected(t *testing.T) {
	r := newTestRoom(t, []engine.Player{marqueePlayer("p1")}, testRules(), testOptions())
	alice, _ := setupAuction(t, r)

	r.Inbox() <- AdminAction{ConnID: "c1", Action: "start"}
	recvType(t, alice, types.EvtNewPlayer, time.Second)

	r.Inbox() <- PlaceBid{ConnID: "c1"}
	recvType(t, alice, types.EvtBidUpdate, time.Second)
	r.Inbox() <- PlaceBid{ConnID: "c1"}
	rej := recvType(t, alice, types.EvtBidRejected, time.Second)
	if rej.Reason != engine.ErrSelfBid.Error() {
		t.Fatalf("unexpected rejection reason %q", rej.Reason)
	}
}

func TestAuction_SpectatorCannotBid(t *testing.T) {
	r := newTestRoom(t, []engine.Player{marqueePlayer("p1")}, testRules(), testOptions())
	alice := join(t, r, "c1", "alice")
	carol := join(t, r, "c3", "carol")
	r.Inbox() <- SelectTeam{ConnID: "c1", Team: "CSK"}
	recvType(t, alice, types.EvtTeamPicked, time.Second)

	r.Inbox() <- AdminAction{ConnID: "c1", Action: "start"}
	recvType(t, carol, types.EvtNewPlayer, time.Second)

	r.Inbox() <- PlaceBid{ConnID: "c3"}
	rej := recvType(t, carol, types.EvtBidRejected, time.Second)
	if rej.Reason != engine.ErrNoTeam.Error() {
		t.Fatalf("unexpected rejection reason %q", rej.Reason)
	}
}

func TestAuction_AdminActionsRequireHost(t *testing.T) {
	r := newTestRoom(t, []engine.Player{marqueePlayer("p1")}, testRules(), testOptions())
	_, bob := setupAuction(t, r)

	r.Inbox() <- AdminAction{ConnID: "c2", Action: "start"}
	recvType(t, bob, types.EvtError, time.Second)
	v := getView(t, r)
	if v.AuctionStarted {
		t.Fatalf("non-host started the auction")
	}
}

func TestAuction_UnsoldPlayersDiscardedAndAutoEnd(t *testing.T) {
	players := []engine.Player{
		marqueePlayer("p1"),
		marqueePlayer("p2"),
		{Name: "p3", Role: engine.RoleBowl, Rating: 8.1, Tag: engine.SetCappedBowl},
	}
	opts := testOptions()
	opts.CountdownSeconds = 0
	r := newTestRoom(t, players, testRules(), opts)
	alice, _ := setupAuction(t, r)

	r.Inbox() <- AdminAction{ConnID: "c1", Action: "start"}

	drawn := map[string]int{}
	unsold := 0
	deadline := time.After(10 * time.Second)
loop:
	for {
		select {
		case m, ok := <-alice:
			if !ok {
				t.Fatalf("outbox closed mid-auction")
			}
			switch m.Type {
			case types.EvtNewPlayer:
				drawn[m.Player.Name]++
			case types.EvtUnsold:
				unsold++
			case types.EvtAuctionEnded:
				break loop
			}
		case <-deadline:
			t.Fatalf("auction never ended")
		}
	}

	if len(drawn) != len(players) || unsold != len(players) {
		t.Fatalf("drawn=%v unsold=%d, want all %d players exactly once", drawn, unsold, len(players))
	}
	for name, n := range drawn {
		if n != 1 {
			t.Fatalf("player %s drawn %d times", name, n)
		}
	}

	v := getView(t, r)
	for _, team := range TeamCodes {
		if len(v.Squads[team]) != 0 {
			t.Fatalf("unsold auction should leave squads empty")
		}
	}
	if !v.AuctionEnded {
		t.Fatalf("engine should auto-end on exhaustion")
	}
}

func TestAuction_PauseFreezesCountdown(t *testing.T) {
	opts := testOptions()
	r := newTestRoom(t, []engine.Player{marqueePlayer("p1")}, testRules(), opts)
	alice, _ := setupAuction(t, r)

	r.Inbox() <- AdminAction{ConnID: "c1", Action: "start"}
	recvType(t, alice, types.EvtNewPlayer, time.Second)
	r.Inbox() <- AdminAction{ConnID: "c1", Action: "togglePause"}
	recvType(t, alice, types.EvtPaused, time.Second)

	// Far longer than the countdown; the player must still be on the block.
	time.Sleep(20 * opts.TickInterval)
	v := getView(t, r)
	if v.Auction.Player == nil || v.AuctionEnded {
		t.Fatalf("paused auction advanced: %+v", v.Auction)
	}

	r.Inbox() <- AdminAction{ConnID: "c1", Action: "togglePause"}
	recvType(t, alice, types.EvtResumed, time.Second)
	recvType(t, alice, types.EvtUnsold, 5*time.Second)
}

func TestAuction_SkipResolvesUnsoldImmediately(t *testing.T) {
	players := []engine.Player{marqueePlayer("p1"), marqueePlayer("p2")}
	r := newTestRoom(t, players, testRules(), testOptions())
	alice, _ := setupAuction(t, r)

	r.Inbox() <- AdminAction{ConnID: "c1", Action: "start"}
	first := recvType(t, alice, types.EvtNewPlayer, time.Second)

	r.Inbox() <- AdminAction{ConnID: "c1", Action: "skip"}
	skipped := recvType(t, alice, types.EvtUnsold, time.Second)
	if skipped.Player.Name != first.Player.Name {
		t.Fatalf("skip resolved the wrong player")
	}
	next := recvType(t, alice, types.EvtNewPlayer, time.Second)
	if next.Player.Name == first.Player.Name {
		t.Fatalf("player drawn twice")
	}
}

func TestAuction_SkipSetDropsRemainingPlayers(t *testing.T) {
	players := []engine.Player{
		marqueePlayer("m1"),
		marqueePlayer("m2"),
		marqueePlayer("m3"),
		{Name: "b1", Role: engine.RoleBowl, Rating: 8.1, Tag: engine.SetCappedBowl},
	}
	r := newTestRoom(t, players, testRules(), testOptions())
	alice, _ := setupAuction(t, r)

	r.Inbox() <- AdminAction{ConnID: "c1", Action: "start"}
	recvType(t, alice, types.EvtNewPlayer, time.Second)

	r.Inbox() <- AdminAction{ConnID: "c1", Action: "skipSet"}
	next := recvType(t, alice, types.EvtNewPlayer, 2*time.Second)
	if next.Player.Name != "b1" {
		t.Fatalf("skipSet should advance to the next set, drew %q", next.Player.Name)
	}
	v := getView(t, r)
	if v.SetsRemaining != 0 {
		t.Fatalf("expected only the on-block player left, %d remaining", v.SetsRemaining)
	}
}

func TestAuction_HostEndIsTerminal(t *testing.T) {
	r := newTestRoom(t, []engine.Player{marqueePlayer("p1"), marqueePlayer("p2")}, testRules(), testOptions())
	alice, bob := setupAuction(t, r)

	r.Inbox() <- AdminAction{ConnID: "c1", Action: "start"}
	recvType(t, alice, types.EvtNewPlayer, time.Second)
	r.Inbox() <- AdminAction{ConnID: "c1", Action: "end"}
	recvType(t, bob, types.EvtAuctionEnded, time.Second)

	r.Inbox() <- PlaceBid{ConnID: "c2"}
	recvType(t, bob, types.EvtBidRejected, time.Second)
	v := getView(t, r)
	if v.Auction.Live || !v.AuctionEnded {
		t.Fatalf("end must be terminal: %+v", v.Auction)
	}
}
