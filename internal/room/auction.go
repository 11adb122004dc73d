package room

import (
	"sort"

	"github.com/crichub/auction-backend/internal/engine"
	"github.com/crichub/auction-backend/internal/types"
)

func (r *Room) handleAdminAction(m AdminAction) {
	p, ok := r.users[m.ConnID]
	if !ok {
		return
	}
	if m.ConnID != r.admin {
		r.send(p, types.ServerMessage{Type: types.EvtError, Error: "only the host can do that"})
		return
	}

	switch m.Action {
	case "start":
		if r.auctionStarted || r.auctionEnded {
			return
		}
		r.auctionStarted = true
		r.auction.Live = true
		r.logf("auction started")
		r.broadcast(types.ServerMessage{Type: types.EvtAuctionStarted})
		r.drawNext()

	case "togglePause":
		if !r.auction.Live || r.rtm != nil {
			return
		}
		r.auction.Paused = !r.auction.Paused
		if r.auction.Paused {
			r.broadcast(types.ServerMessage{Type: types.EvtPaused})
		} else {
			r.broadcast(types.ServerMessage{Type: types.EvtResumed})
		}

	case "skip":
		if !r.auction.Live || r.auction.Player == nil || r.rtm != nil {
			return
		}
		r.resolveUnsold()

	case "skipSet":
		if !r.auction.Live || r.rtm != nil {
			return
		}
		if r.currentSet < len(r.sets) {
			// Remaining players of the set are never auctioned.
			r.sets[r.currentSet].Players = nil
			r.logf("set %s skipped", r.sets[r.currentSet].Name)
		}
		if r.auction.Player != nil {
			r.resolveUnsold()
		} else {
			r.drawNext()
		}

	case "end":
		r.endAuction()

	case "kick":
		target := r.findByName(m.Target)
		if target == nil || target.isKicked || target == p {
			return
		}
		r.kick(target)

	default:
		r.send(p, types.ServerMessage{Type: types.EvtError, Error: "unknown admin action"})
	}
}

// drawNext pulls a random player from the first non-empty remaining set and
// puts them on the block. Exhaustion ends the auction.
func (r *Room) drawNext() {
	for r.currentSet < len(r.sets) && len(r.sets[r.currentSet].Players) == 0 {
		r.currentSet++
	}
	if r.currentSet >= len(r.sets) {
		r.endAuction()
		return
	}

	set := &r.sets[r.currentSet]
	i := r.rnd.Intn(len(set.Players))
	player := set.Players[i]
	set.Players = append(set.Players[:i], set.Players[i+1:]...)

	r.auction.Player = &player
	r.auction.Bid = engine.OpeningBid(player)
	r.auction.Team = ""
	r.auction.LastBidTeam = ""
	r.auction.Timer = r.opts.CountdownSeconds

	r.broadcast(types.ServerMessage{Type: types.EvtNewPlayer, Player: &player, Bid: r.auction.Bid})
	r.tickGen++
	r.after(r.opts.TickInterval, tickMsg{gen: r.tickGen})
}

func (r *Room) handleTick(m tickMsg) {
	if m.gen != r.tickGen {
		return
	}
	if !r.auction.Live || r.auction.Player == nil || r.rtm != nil {
		return
	}
	if r.auction.Paused {
		r.after(r.opts.TickInterval, tickMsg{gen: m.gen})
		return
	}
	r.auction.Timer--
	if r.auction.Timer < 0 {
		r.resolveCurrent()
		return
	}
	r.broadcast(types.ServerMessage{Type: types.EvtTimer, Timer: r.auction.Timer})
	r.after(r.opts.TickInterval, tickMsg{gen: m.gen})
}

func (r *Room) handleBid(m PlaceBid) {
	p, ok := r.users[m.ConnID]
	if !ok {
		return
	}
	if r.rtm != nil {
		r.send(p, types.ServerMessage{Type: types.EvtBidRejected, Reason: engine.ErrAuctionPaused.Error()})
		return
	}
	amount, err := engine.ValidateBid(&r.auction, p.team, r.purse[p.team])
	if err != nil {
		r.send(p, types.ServerMessage{Type: types.EvtBidRejected, Reason: err.Error()})
		return
	}

	r.auction.Bid = amount
	r.auction.Team = p.team
	r.auction.LastBidTeam = p.team
	r.auction.Timer = r.opts.CountdownSeconds
	r.broadcast(types.ServerMessage{Type: types.EvtBidUpdate, Bid: amount, Team: p.team})
}

// resolveCurrent settles the player on the block when the countdown runs
// out: unsold with no bidder, otherwise a sale, possibly via RTM.
func (r *Room) resolveCurrent() {
	winner := r.auction.Team
	if winner == "" {
		r.resolveUnsold()
		return
	}
	// Purse could have moved in a pathological replay; re-validate.
	if r.purse[winner] < r.auction.Bid {
		r.resolveUnsold()
		return
	}
	if prev := r.rtmEligibleTeam(winner); prev != "" {
		r.enterRTM(winner, prev)
		return
	}
	r.commitSale(winner, r.auction.Bid, false)
}

func (r *Room) resolveUnsold() {
	player := r.auction.Player
	r.auction.Player = nil
	r.tickGen++
	if player != nil {
		r.logf("%s went unsold", player.Name)
		r.broadcast(types.ServerMessage{Type: types.EvtUnsold, Player: player})
	}
	r.drawNext()
}

// rtmEligibleTeam returns the prior team entitled to a right-to-match on
// the current player, or "" when the sale should commit directly.
func (r *Room) rtmEligibleTeam(winner string) string {
	if !r.rules.RTMEnabled || r.auction.Player == nil {
		return ""
	}
	prev := r.auction.Player.PrevTeam
	if prev == "" || prev == winner {
		return ""
	}
	if r.rtmLeft[prev] <= 0 {
		return ""
	}
	if r.teamOwner(prev) == nil {
		return ""
	}
	return prev
}

func (r *Room) enterRTM(winner, prevTeam string) {
	r.rtm = &rtmState{phase: "offer", winner: winner, prevTeam: prevTeam}
	r.tickGen++ // freeze the countdown while negotiating

	owner := r.teamOwner(prevTeam)
	r.send(owner, types.ServerMessage{
		Type:   types.EvtRTMOffer,
		Player: r.auction.Player,
		Bid:    r.auction.Bid,
		Team:   winner,
	})
	r.broadcastExcept(owner, types.ServerMessage{
		Type:   types.EvtRTMOverlay,
		Show:   true,
		Player: r.auction.Player,
		Team:   prevTeam,
	})

	r.rtmGen++
	r.after(r.opts.RTMTimeout, rtmTimeoutMsg{gen: r.rtmGen})
}

func (r *Room) handleRTMAction(m RTMAction) {
	if r.rtm == nil {
		return
	}
	p, ok := r.users[m.ConnID]
	if !ok {
		return
	}

	switch m.Kind {
	case types.MsgRTMReject, types.MsgRTMAccept:
		if r.rtm.phase != "offer" || p.team != r.rtm.prevTeam {
			return
		}
		if m.Kind == types.MsgRTMReject {
			r.finishRTMToWinner()
			return
		}
		if err := engine.ValidateCounter(m.Amount, r.auction.Bid, r.purse[r.rtm.prevTeam]); err != nil {
			// Invalid counters degrade silently to the original sale.
			r.finishRTMToWinner()
			return
		}
		r.rtm.counter = m.Amount
		r.rtm.phase = "buyer"
		winnerOwner := r.teamOwner(r.rtm.winner)
		r.send(winnerOwner, types.ServerMessage{
			Type:   types.EvtRTMBuyerChoice,
			Player: r.auction.Player,
			Amount: m.Amount,
			Team:   r.rtm.prevTeam,
		})
		r.broadcastExcept(winnerOwner, types.ServerMessage{
			Type:   types.EvtRTMOverlay,
			Show:   true,
			Player: r.auction.Player,
			Team:   r.rtm.winner,
			Amount: m.Amount,
		})
		r.rtmGen++
		r.after(r.opts.RTMTimeout, rtmTimeoutMsg{gen: r.rtmGen})

	case types.MsgRTMBuyerOK, types.MsgRTMBuyerNo:
		if r.rtm.phase != "buyer" || p.team != r.rtm.winner {
			return
		}
		if m.Kind == types.MsgRTMBuyerOK {
			// The counter was validated against the prior team's purse,
			// not the winner's; a winner who cannot cover it falls back
			// to the pre-RTM outcome.
			if r.purse[r.rtm.winner] < r.rtm.counter {
				r.finishRTMToWinner()
				return
			}
			r.commitSale(r.rtm.winner, r.rtm.counter, true)
			return
		}
		// Buyer cedes: the prior team matches at the counter amount,
		// consuming one RTM token.
		r.rtmLeft[r.rtm.prevTeam]--
		r.commitSale(r.rtm.prevTeam, r.rtm.counter, true)
	}
}

func (r *Room) handleRTMTimeout(m rtmTimeoutMsg) {
	if m.gen != r.rtmGen || r.rtm == nil {
		return
	}
	// Timeouts always resolve to the pre-RTM outcome.
	r.finishRTMToWinner()
}

func (r *Room) finishRTMToWinner() {
	r.commitSale(r.rtm.winner, r.auction.Bid, false)
}

// commitSale is the single terminal path for a sold player: stamp the price
// once, debit exactly one purse, broadcast and persist once, then move on.
func (r *Room) commitSale(team string, price float64, viaRTM bool) {
	if r.rtm != nil {
		r.rtm = nil
		r.rtmGen++
		r.broadcast(types.ServerMessage{Type: types.EvtRTMOverlay, Show: false})
	}

	player := *r.auction.Player
	player.Price = engine.RoundBid(price)
	player.RTM = viaRTM
	r.squads[team] = append(r.squads[team], player)
	r.purse[team] = engine.RoundBid(r.purse[team] - player.Price)
	// A team with a purchase is in active use and can no longer be claimed.
	delete(r.availableTeams, team)

	r.auction.Player = nil
	r.tickGen++

	r.logf("%s sold to %s for %.2f", player.Name, team, player.Price)
	r.broadcast(types.ServerMessage{
		Type:   types.EvtSold,
		Player: &player,
		Team:   team,
		Price:  player.Price,
		Purse:  r.purse[team],
	})
	r.persist()
	r.drawNext()
}

// endAuction is terminal: no further bids, draws or RTM are accepted.
func (r *Room) endAuction() {
	if r.auctionEnded {
		return
	}
	r.auctionEnded = true
	r.auction.Live = false
	r.auction.Paused = false
	r.auction.Player = nil
	r.rtm = nil
	r.tickGen++
	r.rtmGen++
	r.logf("auction ended")
	r.broadcast(types.ServerMessage{Type: types.EvtAuctionEnded})
	r.broadcast(types.ServerMessage{Type: types.EvtLeaderboard, Leaderboard: r.leaderboard()})
	if r.onEnded != nil {
		r.onEnded(r.Code)
	}
	r.persist()
}

func (r *Room) handleSubmitXI(m SubmitXI) {
	p, ok := r.users[m.ConnID]
	if !ok {
		return
	}
	if p.team == "" {
		r.send(p, types.ServerMessage{Type: types.EvtError, Error: "no team assigned"})
		return
	}
	if !r.auctionEnded {
		r.send(p, types.ServerMessage{Type: types.EvtError, Error: "auction still in progress"})
		return
	}
	if err := engine.ValidateXI(r.squads[p.team], m.Names, r.rules); err != nil {
		r.send(p, types.ServerMessage{Type: types.EvtError, Error: err.Error()})
		return
	}
	r.playingXI[p.team] = append([]string(nil), m.Names...)
	r.logf("%s submitted a playing XI", p.team)
	r.broadcast(types.ServerMessage{Type: types.EvtLeaderboard, Leaderboard: r.leaderboard()})
	r.persist()
}

// leaderboard ranks teams by submitted-XI rating, ties broken by remaining
// purse. Teams without an XI trail with rating zero.
func (r *Room) leaderboard() []types.TeamResult {
	results := make([]types.TeamResult, 0, len(TeamCodes))
	for _, team := range TeamCodes {
		row := types.TeamResult{
			Team:  team,
			Purse: r.purse[team],
			Squad: len(r.squads[team]),
		}
		for _, p := range r.users {
			if p.team == team && !p.isKicked {
				row.Owner = p.name
			}
		}
		if xi, ok := r.playingXI[team]; ok {
			row.HasXI = true
			row.Rating = engine.XIRating(r.squads[team], xi)
		}
		results = append(results, row)
	}
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Rating != results[j].Rating {
			return results[i].Rating > results[j].Rating
		}
		return results[i].Purse > results[j].Purse
	})
	return results
}
