package room

import (
	"context"
	"fmt"
	"time"

	"github.com/crichub/auction-backend/internal/engine"
	"github.com/crichub/auction-backend/internal/types"
)

func (r *Room) handleJoin(m Join) {
	if r.closedConns[m.ConnID] {
		// The room already cut this connection loose; its outbox is
		// closed and must never be written again.
		return
	}
	if p, ok := r.users[m.ConnID]; ok {
		// Duplicate join from a registered connection: resend state.
		r.sendJoined(p)
		return
	}

	existing := r.findByName(m.Name)
	switch {
	case existing == nil:
		r.admitFresh(m)

	case existing.isKicked:
		// Explicit re-entry path: kicked names come back as spectators.
		delete(r.users, existing.connID)
		r.admitFresh(m)

	case existing.connected && !existing.isAway:
		r.startChallenge(m, existing)

	default:
		r.reattach(m, existing)
	}
}

func (r *Room) admitFresh(m Join) {
	p := &participant{
		name:      m.Name,
		connID:    m.ConnID,
		connected: true,
		outbox:    m.Outbox,
	}
	r.users[m.ConnID] = p
	r.afterAttach(p)
	r.logf("%s joined", p.name)
	r.broadcastExcept(p, types.ServerMessage{Type: types.EvtUserJoined, User: p.name})
	r.persist()
}

// reattach binds a returning connection to its existing participant record,
// restoring team, host status and RTM history, and cancels the pending
// removal timer.
func (r *Room) reattach(m Join, p *participant) {
	wasAdmin := p.connID == r.admin
	delete(r.users, p.connID)
	if p.outbox != nil {
		close(p.outbox)
	}
	p.connID = m.ConnID
	p.outbox = m.Outbox
	p.connected = true
	p.isAway = false
	p.graceGen++ // cancel the pending kick
	r.users[m.ConnID] = p
	if wasAdmin {
		r.admin = m.ConnID
	}
	r.afterAttach(p)
	r.logf("%s reconnected", p.name)
	r.broadcastExcept(p, types.ServerMessage{Type: types.EvtUserJoined, User: p.name})
}

// afterAttach runs the common post-admission steps: host reclaim while the
// seat is vacant, empty-room timer cancellation, and the join snapshot.
func (r *Room) afterAttach(p *participant) {
	if r.admin == "" && p.name == r.adminUser {
		r.admin = p.connID
		r.broadcast(types.ServerMessage{Type: types.EvtHostChanged, Host: p.name})
	}
	r.emptyGen++ // the room is occupied again
	r.sendJoined(p)
}

func (r *Room) sendJoined(p *participant) {
	r.send(p, types.ServerMessage{Type: types.EvtJoinedRoom, Code: r.Code, Snapshot: r.snapshot()})
	if r.auctionEnded {
		r.send(p, types.ServerMessage{Type: types.EvtLeaderboard, Leaderboard: r.leaderboard()})
	}
}

func (r *Room) broadcastExcept(skip *participant, msg types.ServerMessage) {
	for _, p := range r.users {
		if p != skip {
			r.send(p, msg)
		}
	}
}

// startChallenge handles a second live connection claiming an in-use name.
// The old session displays a short code; the new one must echo it within
// the challenge window to take the session over.
func (r *Room) startChallenge(m Join, old *participant) {
	code := fmt.Sprintf("%04d", r.rnd.Intn(10000))
	ch := &challenge{code: code, newConnID: m.ConnID, newOutbox: m.Outbox}
	if prev := r.challenges[m.Name]; prev != nil {
		ch.gen = prev.gen + 1
		if prev.newConnID != m.ConnID {
			// A newer challenger supersedes the pending one.
			r.dropChallenger(prev)
		}
	}
	r.challenges[m.Name] = ch

	r.send(old, types.ServerMessage{Type: types.EvtIdentityShow, Code: code})
	r.sendTo(m.Outbox, types.ServerMessage{Type: types.EvtIdentityInput, User: m.Name})
	r.after(r.opts.ChallengeTimeout, challengeExpiredMsg{name: m.Name, gen: ch.gen})
}

func (r *Room) handleVerify(m VerifyIdentity) {
	if r.closedConns[m.ConnID] {
		return
	}
	ch := r.challenges[m.Name]
	if ch == nil || ch.newConnID != m.ConnID {
		if p, ok := r.users[m.ConnID]; ok {
			r.send(p, types.ServerMessage{Type: types.EvtIdentityFailed, Reason: "no pending challenge"})
		} else {
			r.sendTo(m.Outbox, types.ServerMessage{Type: types.EvtIdentityFailed, Reason: "no pending challenge"})
		}
		return
	}
	delete(r.challenges, m.Name)
	if ch.code != m.Code {
		r.sendTo(m.Outbox, types.ServerMessage{Type: types.EvtIdentityFailed, Reason: "code mismatch"})
		r.dropChallenger(ch)
		return
	}

	old := r.findByName(m.Name)
	if old == nil || old.isKicked {
		// Old session vanished mid-challenge; admit as fresh.
		r.admitFresh(Join{ConnID: m.ConnID, Name: m.Name, Outbox: m.Outbox})
		return
	}

	// Transfer the session and cut the old connection loose.
	delete(r.users, old.connID)
	wasAdmin := old.connID == r.admin
	if old.outbox != nil {
		r.sendTo(old.outbox, types.ServerMessage{Type: types.EvtKicked, Reason: "session transferred"})
		close(old.outbox)
		old.outbox = nil
		r.closedConns[old.connID] = true
	}
	old.connID = m.ConnID
	old.outbox = m.Outbox
	old.connected = true
	old.isAway = false
	old.graceGen++
	r.users[m.ConnID] = old
	if wasAdmin {
		r.admin = m.ConnID
	}
	r.logf("%s transferred session to a new device", old.name)
	r.sendJoined(old)
}

func (r *Room) handleChallengeExpired(m challengeExpiredMsg) {
	ch := r.challenges[m.name]
	if ch == nil || ch.gen != m.gen {
		return
	}
	delete(r.challenges, m.name)
	r.sendTo(ch.newOutbox, types.ServerMessage{Type: types.EvtIdentityFailed, Reason: "challenge timed out"})
	r.dropChallenger(ch)
}

// dropChallenger closes a rejected challenger's outbox so its writer
// goroutine exits, and remembers the connection so late frames from it are
// dropped instead of written to the closed channel.
func (r *Room) dropChallenger(ch *challenge) {
	if ch.newOutbox != nil {
		close(ch.newOutbox)
		ch.newOutbox = nil
	}
	r.closedConns[ch.newConnID] = true
}

func (r *Room) handleLeave(m Leave) {
	delete(r.closedConns, m.ConnID)
	p, ok := r.users[m.ConnID]
	if !ok {
		// Maybe a challenger whose transport dropped mid-challenge.
		for name, ch := range r.challenges {
			if ch.newConnID == m.ConnID {
				if ch.newOutbox != nil {
					close(ch.newOutbox)
					ch.newOutbox = nil
				}
				delete(r.challenges, name)
			}
		}
		return
	}
	if p.isAway || p.isKicked {
		return
	}
	r.detach(p)
}

// detach marks a participant away and arms the removal grace timer.
func (r *Room) detach(p *participant) {
	if p.outbox != nil {
		close(p.outbox)
		p.outbox = nil
	}
	p.connected = false
	p.isAway = true
	p.disconnectTime = r.clock.Now()
	p.graceGen++
	r.after(r.opts.GraceTimeout, graceMsg{name: p.name, gen: p.graceGen})
	r.logf("%s disconnected", p.name)
	r.broadcast(types.ServerMessage{Type: types.EvtUserLeft, User: p.name})
}

func (r *Room) handleGraceExpired(m graceMsg) {
	p := r.findByName(m.name)
	if p == nil || p.graceGen != m.gen || !p.isAway || p.isKicked {
		return
	}
	r.kick(p)
}

// kick removes a participant's seat: team released (unless the team has
// already purchased), host failover if they were hosting.
func (r *Room) kick(p *participant) {
	p.isKicked = true
	p.isAway = false
	p.connected = false
	if p.outbox != nil {
		close(p.outbox)
		p.outbox = nil
	}
	team := p.team
	p.team = ""
	if team != "" && len(r.squads[team]) == 0 {
		r.availableTeams[team] = true
	}
	r.logf("%s was removed from the room", p.name)
	r.broadcast(types.ServerMessage{Type: types.EvtKicked, User: p.name, Team: team, Teams: r.remainingTeams()})

	if p.connID == r.admin {
		r.failoverHost()
	}
	if len(r.activeParticipants()) == 0 {
		r.armEmptyTimer()
	}
	r.persist()
}

// failoverHost hands the host role to a random active participant, or
// vacates it and starts the empty-room clock so the original host's name
// can reclaim on rejoin.
func (r *Room) failoverHost() {
	active := r.activeParticipants()
	if len(active) == 0 {
		r.admin = ""
		r.armEmptyTimer()
		return
	}
	next := active[r.rnd.Intn(len(active))]
	r.admin = next.connID
	r.adminUser = next.name
	r.logf("host transferred to %s", next.name)
	r.broadcast(types.ServerMessage{Type: types.EvtHostChanged, Host: next.name})
}

func (r *Room) armEmptyTimer() {
	r.emptyGen++
	r.after(r.opts.EmptyTimeout, emptyRoomMsg{gen: r.emptyGen})
}

// handleEmptyExpired deletes an abandoned room. Returns true when the room
// goroutine should exit.
func (r *Room) handleEmptyExpired(m emptyRoomMsg) bool {
	if m.gen != r.emptyGen || len(r.activeParticipants()) > 0 {
		return false
	}
	r.logger.Info("room expired while empty")
	if r.onRemove != nil {
		r.onRemove(r.Code)
	}
	if r.store != nil && !r.auctionEnded {
		code := r.Code
		st := r.store
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			// Best effort; an orphan row is harmless.
			_ = st.Delete(ctx, code)
		}()
	}
	r.shutdown()
	return true
}

func (r *Room) handleSelectTeam(m SelectTeam) {
	p, ok := r.users[m.ConnID]
	if !ok {
		return
	}
	if p.team != "" {
		if p.team == m.Team {
			// Idempotent re-select.
			r.send(p, types.ServerMessage{Type: types.EvtTeamPicked, Team: p.team, User: p.name, Teams: r.remainingTeams()})
		} else {
			r.send(p, types.ServerMessage{Type: types.EvtError, Error: "you already own a team"})
		}
		return
	}
	if !r.availableTeams[m.Team] {
		r.send(p, types.ServerMessage{Type: types.EvtError, Error: engine.ErrTeamTaken.Error()})
		return
	}
	delete(r.availableTeams, m.Team)
	p.team = m.Team
	r.logf("%s picked %s", p.name, m.Team)
	r.broadcast(types.ServerMessage{Type: types.EvtTeamPicked, Team: m.Team, User: p.name, Teams: r.remainingTeams()})
	r.persist()
}

func (r *Room) handleSetRules(m SetRules) {
	p, ok := r.users[m.ConnID]
	if !ok || m.ConnID != r.admin {
		r.send(p, types.ServerMessage{Type: types.EvtError, Error: "only the host can change rules"})
		return
	}
	if r.auctionStarted {
		r.send(p, types.ServerMessage{Type: types.EvtError, Error: "auction already started"})
		return
	}
	r.rules = m.Rules
	for _, t := range TeamCodes {
		r.purse[t] = m.Rules.Purse
		r.rtmLeft[t] = m.Rules.RTMPerTeam
	}
	rules := m.Rules
	r.broadcast(types.ServerMessage{Type: types.EvtRulesUpdated, Rules: &rules, Teams: r.remainingTeams()})
	r.persist()
}

func (r *Room) handleChat(m ChatMessage) {
	p, ok := r.users[m.ConnID]
	if !ok || m.Text == "" {
		return
	}
	r.chat = append(r.chat, types.ChatLine{User: p.name, Message: m.Text})
	if len(r.chat) > maxChat {
		r.chat = r.chat[len(r.chat)-maxChat:]
	}
	r.broadcast(types.ServerMessage{Type: types.EvtChat, User: p.name, Message: m.Text})
}
