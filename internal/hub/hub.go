// Package hub owns the registry of live rooms. It is a single actor: all
// map access happens on the hub goroutine, so room creation and lookup
// never race.
package hub

import (
	"context"
	"crypto/rand"
	"math/big"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/crichub/auction-backend/internal/engine"
	"github.com/crichub/auction-backend/internal/pool"
	"github.com/crichub/auction-backend/internal/room"
	"github.com/crichub/auction-backend/internal/store"
)

type Msg interface{ isHubMsg() }

// CreateRoom allocates a fresh room for a host.
type CreateRoom struct {
	HostName string
	IsPublic bool
	PoolID   string
	Reply    chan CreateResult
}

type CreateResult struct {
	Room *room.Room
	Code string
	Err  error
}

type GetRoom struct {
	Code  string
	Reply chan *room.Room
}

type RemoveRoom struct{ Code string }

// MarkEnded records that a room's auction reached its terminal state, so
// the public directory stops advertising it.
type MarkEnded struct{ Code string }

// ListPublic returns codes of public rooms still accepting joins.
type ListPublic struct {
	Reply chan []string
}

type Shutdown struct{}

func (CreateRoom) isHubMsg() {}
func (GetRoom) isHubMsg()    {}
func (RemoveRoom) isHubMsg() {}
func (MarkEnded) isHubMsg()  {}
func (ListPublic) isHubMsg() {}
func (Shutdown) isHubMsg()   {}

// Config wires a hub and everything it hands down to rooms.
type Config struct {
	Pools    pool.Provider
	Store    store.SnapshotStore
	Logger   *zap.Logger
	Clock    clockwork.Clock
	RoomOpts room.Options
}

type entry struct {
	room     *room.Room
	isPublic bool
	ended    bool
}

type Hub struct {
	inbox  chan Msg
	rooms  map[string]entry
	cfg    Config
	ctx    context.Context
	cancel context.CancelFunc
}

func New(parent context.Context, cfg Config) *Hub {
	ctx, cancel := context.WithCancel(parent)
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.RoomOpts == (room.Options{}) {
		cfg.RoomOpts = room.DefaultOptions()
	}
	h := &Hub{
		inbox:  make(chan Msg, 64),
		rooms:  make(map[string]entry),
		cfg:    cfg,
		ctx:    ctx,
		cancel: cancel,
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- Msg { return h.inbox }

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case CreateRoom:
				msg.Reply <- h.create(msg)

			case GetRoom:
				if e, ok := h.rooms[msg.Code]; ok {
					msg.Reply <- e.room
				} else {
					msg.Reply <- nil
				}

			case RemoveRoom:
				delete(h.rooms, msg.Code)

			case MarkEnded:
				if e, ok := h.rooms[msg.Code]; ok {
					e.ended = true
					h.rooms[msg.Code] = e
				}

			case ListPublic:
				var codes []string
				for code, e := range h.rooms {
					if e.isPublic && !e.ended {
						codes = append(codes, code)
					}
				}
				msg.Reply <- codes

			case Shutdown:
				h.shutdown()
				return
			}
		}
	}
}

func (h *Hub) shutdown() {
	for _, e := range h.rooms {
		e.room.Inbox() <- room.Shutdown{}
	}
	clear(h.rooms)
	h.cancel()
}

func (h *Hub) create(m CreateRoom) CreateResult {
	players, err := h.cfg.Pools.Load(m.PoolID)
	if err != nil {
		return CreateResult{Err: err}
	}

	var code string
	for {
		c, err := generateCode()
		if err != nil {
			return CreateResult{Err: err}
		}
		if _, taken := h.rooms[c]; !taken {
			code = c
			break
		}
		h.cfg.Logger.Warn("room code collision, regenerating", zap.String("code", c))
	}

	rm := room.New(h.ctx, room.Config{
		Code:     code,
		HostName: m.HostName,
		IsPublic: m.IsPublic,
		Players:  players,
		Rules:    engine.DefaultRules(),
		Clock:    h.cfg.Clock,
		Logger:   h.cfg.Logger,
		Store:    h.cfg.Store,
		Opts:     h.cfg.RoomOpts,
		OnRemove: func(code string) {
			select {
			case h.inbox <- RemoveRoom{Code: code}:
			case <-h.ctx.Done():
			}
		},
		OnEnded: func(code string) {
			select {
			case h.inbox <- MarkEnded{Code: code}:
			case <-h.ctx.Done():
			}
		},
	})
	h.rooms[code] = entry{room: rm, isPublic: m.IsPublic}
	h.cfg.Logger.Info("room created", zap.String("code", code), zap.String("host", m.HostName))
	return CreateResult{Room: rm, Code: code}
}

const codeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// generateCode returns a 5-character room code. Practically unique among
// live rooms; the caller retries on collision.
func generateCode() (string, error) {
	code := make([]byte, 5)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeCharset))))
		if err != nil {
			return "", err
		}
		code[i] = codeCharset[n.Int64()]
	}
	return string(code), nil
}
