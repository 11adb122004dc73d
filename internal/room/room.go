package room

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/crichub/auction-backend/internal/engine"
	"github.com/crichub/auction-backend/internal/store"
	"github.com/crichub/auction-backend/internal/types"
)

// TeamCodes is the fixed list of claimable franchise teams.
var TeamCodes = []string{"CSK", "MI", "RCB", "KKR", "SRH", "DC", "RR", "PBKS", "GT", "LSG"}

const (
	maxLogs = 100
	maxChat = 200
)

// Options holds the room's timing knobs. Tests shrink these to drive the
// state machine with a real clock.
type Options struct {
	CountdownSeconds int
	TickInterval     time.Duration
	GraceTimeout     time.Duration
	RTMTimeout       time.Duration
	EmptyTimeout     time.Duration
	ChallengeTimeout time.Duration
}

func DefaultOptions() Options {
	return Options{
		CountdownSeconds: 10,
		TickInterval:     time.Second,
		GraceTimeout:     90 * time.Second,
		RTMTimeout:       15 * time.Second,
		EmptyTimeout:     2 * time.Minute,
		ChallengeTimeout: 30 * time.Second,
	}
}

// Config wires a new room.
type Config struct {
	Code     string
	HostName string
	IsPublic bool
	Players  []engine.Player
	Rules    engine.Rules
	Clock    clockwork.Clock
	Logger   *zap.Logger
	Store    store.SnapshotStore
	Opts     Options
	// OnRemove tells the registry to forget the room once the empty-room
	// timer expires. May be nil.
	OnRemove func(code string)
	// OnEnded tells the registry the auction reached its terminal state.
	// May be nil.
	OnEnded func(code string)
}

type participant struct {
	name           string
	connID         string
	team           string
	connected      bool
	isAway         bool
	disconnectTime time.Time
	isKicked       bool
	graceGen       int
	outbox         chan types.ServerMessage
}

type challenge struct {
	code      string
	newConnID string
	newOutbox chan types.ServerMessage
	gen       int
}

type rtmState struct {
	phase    string // "offer" | "buyer"
	winner   string
	prevTeam string
	counter  float64
}

// Room is one auction session. All fields below inbox are owned by the
// room goroutine and must only be touched from handlers.
type Room struct {
	Code string

	inbox    chan Msg
	clock    clockwork.Clock
	logger   *zap.Logger
	store    store.SnapshotStore
	opts     Options
	onRemove func(code string)
	onEnded  func(code string)
	ctx      context.Context
	cancel   context.CancelFunc
	rnd      *rand.Rand

	isPublic       bool
	admin          string // connID of current host, "" when unclaimed
	adminUser      string // host name, survives admin disconnection
	users          map[string]*participant
	challenges     map[string]*challenge
	closedConns    map[string]bool
	availableTeams map[string]bool
	squads         map[string][]engine.Player
	purse          map[string]float64
	rtmLeft        map[string]int
	sets           []engine.Set
	currentSet     int
	playingXI      map[string][]string
	rules          engine.Rules
	auctionStarted bool
	auctionEnded   bool
	auction        engine.Auction
	rtm            *rtmState
	logs           []string
	chat           []types.ChatLine

	tickGen  int
	rtmGen   int
	emptyGen int
}

// New builds the room state for a fixed team list and starts its goroutine.
func New(parent context.Context, cfg Config) *Room {
	ctx, cancel := context.WithCancel(parent)
	if cfg.Opts == (Options{}) {
		cfg.Opts = DefaultOptions()
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	r := &Room{
		Code:           cfg.Code,
		inbox:          make(chan Msg, 256),
		clock:          cfg.Clock,
		logger:         cfg.Logger.With(zap.String("room", cfg.Code)),
		store:          cfg.Store,
		opts:           cfg.Opts,
		onRemove:       cfg.OnRemove,
		onEnded:        cfg.OnEnded,
		ctx:            ctx,
		cancel:         cancel,
		rnd:            rand.New(rand.NewSource(time.Now().UnixNano())),
		isPublic:       cfg.IsPublic,
		adminUser:      cfg.HostName,
		users:          make(map[string]*participant),
		challenges:     make(map[string]*challenge),
		closedConns:    make(map[string]bool),
		availableTeams: make(map[string]bool, len(TeamCodes)),
		squads:         make(map[string][]engine.Player, len(TeamCodes)),
		purse:          make(map[string]float64, len(TeamCodes)),
		rtmLeft:        make(map[string]int, len(TeamCodes)),
		sets:           engine.BuildSets(cfg.Players),
		playingXI:      make(map[string][]string),
		rules:          cfg.Rules,
	}
	for _, t := range TeamCodes {
		r.availableTeams[t] = true
		r.squads[t] = nil
		r.purse[t] = cfg.Rules.Purse
		r.rtmLeft[t] = cfg.Rules.RTMPerTeam
	}

	// A room nobody ever joins must still expire; the first attach cancels
	// this via the generation bump.
	r.armEmptyTimer()

	go r.loop()
	return r
}

// Inbox exposes the message channel to the transport layer and tests.
func (r *Room) Inbox() chan<- Msg { return r.inbox }

func (r *Room) loop() {
	for {
		select {
		case <-r.ctx.Done():
			r.shutdown()
			return

		case m := <-r.inbox:
			switch msg := m.(type) {
			case Join:
				r.handleJoin(msg)
			case VerifyIdentity:
				r.handleVerify(msg)
			case Leave:
				r.handleLeave(msg)
			case SelectTeam:
				r.handleSelectTeam(msg)
			case SetRules:
				r.handleSetRules(msg)
			case AdminAction:
				r.handleAdminAction(msg)
			case PlaceBid:
				r.handleBid(msg)
			case RTMAction:
				r.handleRTMAction(msg)
			case ChatMessage:
				r.handleChat(msg)
			case SubmitXI:
				r.handleSubmitXI(msg)
			case tickMsg:
				r.handleTick(msg)
			case graceMsg:
				r.handleGraceExpired(msg)
			case rtmTimeoutMsg:
				r.handleRTMTimeout(msg)
			case emptyRoomMsg:
				if r.handleEmptyExpired(msg) {
					return
				}
			case challengeExpiredMsg:
				r.handleChallengeExpired(msg)
			case GetState:
				msg.Reply <- r.view()
			case Shutdown:
				r.shutdown()
				return
			}
		}
	}
}

func (r *Room) shutdown() {
	for _, p := range r.users {
		if p.outbox != nil {
			close(p.outbox)
			p.outbox = nil
		}
	}
	for _, ch := range r.challenges {
		if ch.newOutbox != nil {
			close(ch.newOutbox)
			ch.newOutbox = nil
		}
	}
	r.cancel()
}

// after schedules a timer fire as an inbox message. The send blocks the
// timer goroutine, never the room loop.
func (r *Room) after(d time.Duration, m Msg) {
	r.clock.AfterFunc(d, func() {
		select {
		case r.inbox <- m:
		case <-r.ctx.Done():
		}
	})
}

func (r *Room) send(p *participant, msg types.ServerMessage) {
	if p == nil || p.outbox == nil {
		return
	}
	select {
	case p.outbox <- msg:
	default:
		// Slow client: treat like a transport drop.
		r.logger.Warn("dropping slow client", zap.String("user", p.name))
		r.detach(p)
	}
}

func (r *Room) sendTo(out chan types.ServerMessage, msg types.ServerMessage) {
	if out == nil {
		return
	}
	select {
	case out <- msg:
	default:
	}
}

func (r *Room) broadcast(msg types.ServerMessage) {
	for _, p := range r.users {
		r.send(p, msg)
	}
}

func (r *Room) findByName(name string) *participant {
	for _, p := range r.users {
		if p.name == name {
			return p
		}
	}
	return nil
}

// teamOwner returns the actively connected participant holding the team.
func (r *Room) teamOwner(team string) *participant {
	for _, p := range r.users {
		if p.team == team && p.connected && !p.isAway && !p.isKicked {
			return p
		}
	}
	return nil
}

func (r *Room) activeParticipants() []*participant {
	var out []*participant
	for _, p := range r.users {
		if p.connected && !p.isAway && !p.isKicked {
			out = append(out, p)
		}
	}
	return out
}

func (r *Room) logf(format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	r.logs = append(r.logs, line)
	if len(r.logs) > maxLogs {
		r.logs = r.logs[len(r.logs)-maxLogs:]
	}
	r.logger.Debug(line)
}

func (r *Room) remainingTeams() []string {
	out := make([]string, 0, len(r.availableTeams))
	for _, t := range TeamCodes {
		if r.availableTeams[t] {
			out = append(out, t)
		}
	}
	return out
}

func (r *Room) snapshot() *types.RoomSnapshot {
	snap := &types.RoomSnapshot{
		Code:           r.Code,
		IsPublic:       r.isPublic,
		Host:           r.adminUser,
		AvailableTeams: r.remainingTeams(),
		Squads:         make(map[string][]engine.Player, len(r.squads)),
		Purse:          make(map[string]float64, len(r.purse)),
		RTMLeft:        make(map[string]int, len(r.rtmLeft)),
		Rules:          r.rules,
		AuctionStarted: r.auctionStarted,
		AuctionEnded:   r.auctionEnded,
		Auction:        r.auction,
		PlayingXI:      make(map[string][]string, len(r.playingXI)),
		Logs:           append([]string(nil), r.logs...),
		Chat:           append([]types.ChatLine(nil), r.chat...),
	}
	for t, sq := range r.squads {
		snap.Squads[t] = append([]engine.Player(nil), sq...)
	}
	for t, v := range r.purse {
		snap.Purse[t] = v
	}
	for t, v := range r.rtmLeft {
		snap.RTMLeft[t] = v
	}
	for t, xi := range r.playingXI {
		snap.PlayingXI[t] = append([]string(nil), xi...)
	}
	for _, p := range r.users {
		if p.isKicked {
			continue
		}
		snap.Users = append(snap.Users, types.UserView{
			Name:      p.name,
			Team:      p.team,
			Connected: p.connected && !p.isAway,
			IsAway:    p.isAway,
			IsHost:    p.connID == r.admin && r.admin != "",
		})
	}
	for i := r.currentSet; i < len(r.sets); i++ {
		snap.Sets = append(snap.Sets, r.sets[i].Name)
	}
	if r.currentSet < len(r.sets) {
		snap.CurrentSet = r.sets[r.currentSet].Name
	}
	return snap
}

// persist writes a snapshot without blocking the event loop. Failures are
// logged and otherwise ignored; memory stays authoritative.
func (r *Room) persist() {
	if r.store == nil {
		return
	}
	snap := r.snapshot()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := r.store.Save(ctx, snap.Code, snap); err != nil {
			r.logger.Warn("snapshot save failed", zap.Error(err))
		}
	}()
}

func (r *Room) view() View {
	v := View{
		AdminUser:      r.adminUser,
		Users:          make(map[string]UserInfo, len(r.users)),
		AvailableTeams: make(map[string]bool, len(r.availableTeams)),
		Squads:         make(map[string][]engine.Player, len(r.squads)),
		Purse:          make(map[string]float64, len(r.purse)),
		RTMLeft:        make(map[string]int, len(r.rtmLeft)),
		Rules:          r.rules,
		Auction:        r.auction,
		AuctionStarted: r.auctionStarted,
		AuctionEnded:   r.auctionEnded,
		PlayingXI:      make(map[string][]string, len(r.playingXI)),
	}
	if p, ok := r.users[r.admin]; ok {
		v.Host = p.name
	}
	if r.rtm != nil {
		v.RTMPhase = r.rtm.phase
	}
	for _, p := range r.users {
		v.Users[p.name] = UserInfo{Team: p.team, Connected: p.connected, IsAway: p.isAway, IsKicked: p.isKicked}
	}
	for t, ok := range r.availableTeams {
		v.AvailableTeams[t] = ok
	}
	for t, sq := range r.squads {
		v.Squads[t] = append([]engine.Player(nil), sq...)
	}
	for t, val := range r.purse {
		v.Purse[t] = val
	}
	for t, val := range r.rtmLeft {
		v.RTMLeft[t] = val
	}
	for t, xi := range r.playingXI {
		v.PlayingXI[t] = append([]string(nil), xi...)
	}
	for i := r.currentSet; i < len(r.sets); i++ {
		v.SetsRemaining += len(r.sets[i].Players)
	}
	return v
}
