package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/crichub/auction-backend/internal/hub"
	"github.com/crichub/auction-backend/internal/room"
	"github.com/crichub/auction-backend/internal/types"
)

const (
	writeTimeout = 3 * time.Second
	readTimeout  = 5 * time.Minute
)

// Handler upgrades a connection and bridges it to the room actor: frames
// from the client become inbox messages, and the room's outbox channel is
// drained by a writer goroutine.
func Handler(h *hub.Hub, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "missing code", http.StatusBadRequest)
			return
		}

		reply := make(chan *room.Room, 1)
		h.Inbox() <- hub.GetRoom{Code: code, Reply: reply}
		rm := <-reply
		if rm == nil {
			http.Error(w, "room not found", http.StatusNotFound)
			return
		}

		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		connID := uuid.NewString()
		out := make(chan types.ServerMessage, 32)
		defer func() { rm.Inbox() <- room.Leave{ConnID: connID} }()

		// Writer: the room owns closing the outbox. A closed outbox means
		// the room cut this session loose, so drop the transport too and
		// let the read loop unblock.
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			defer conn.Close(websocket.StatusNormalClosure, "session closed")
			for msg := range out {
				payload, err := json.Marshal(msg)
				if err != nil {
					continue
				}
				ctx, cancel := context.WithTimeout(writeCtx, writeTimeout)
				_ = conn.Write(ctx, websocket.MessageText, payload)
				cancel()
			}
		}()

		for {
			ctx, cancel := context.WithTimeout(r.Context(), readTimeout)
			_, data, err := conn.Read(ctx)
			cancel()
			if err != nil {
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				_ = conn.Write(r.Context(), websocket.MessageText,
					[]byte(`{"type":"error","error":"bad json"}`))
				continue
			}

			msg, ok := toRoomMsg(cm, connID, out)
			if !ok {
				_ = conn.Write(r.Context(), websocket.MessageText,
					[]byte(`{"type":"error","error":"unknown type"}`))
				continue
			}
			select {
			case rm.Inbox() <- msg:
			case <-r.Context().Done():
				return
			}
		}
	}
}

func toRoomMsg(m types.ClientMessage, connID string, out chan types.ServerMessage) (room.Msg, bool) {
	switch m.Type {
	case types.MsgJoinRoom, types.MsgReconnectUser:
		if m.User == "" {
			return nil, false
		}
		return room.Join{ConnID: connID, Name: m.User, Outbox: out}, true
	case types.MsgVerifyCode:
		return room.VerifyIdentity{ConnID: connID, Name: m.User, Code: m.Code, Outbox: out}, true
	case types.MsgSelectTeam:
		return room.SelectTeam{ConnID: connID, Team: m.Team}, true
	case types.MsgSetRules:
		if m.Rules == nil {
			return nil, false
		}
		return room.SetRules{ConnID: connID, Rules: *m.Rules}, true
	case types.MsgAdminAction:
		return room.AdminAction{ConnID: connID, Action: m.Action, Target: m.Target}, true
	case types.MsgBid:
		return room.PlaceBid{ConnID: connID}, true
	case types.MsgChat:
		return room.ChatMessage{ConnID: connID, Text: m.Message}, true
	case types.MsgRTMAccept, types.MsgRTMReject, types.MsgRTMBuyerOK, types.MsgRTMBuyerNo:
		return room.RTMAction{ConnID: connID, Kind: m.Type, Amount: m.Amount}, true
	case types.MsgSubmitXI:
		return room.SubmitXI{ConnID: connID, Names: m.XI}, true
	default:
		return nil, false
	}
}
