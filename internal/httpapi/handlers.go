package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/crichub/auction-backend/internal/hub"
	"github.com/crichub/auction-backend/internal/room"
	"github.com/crichub/auction-backend/internal/store"
)

type createRoomRequest struct {
	User     string `json:"user"`
	IsPublic bool   `json:"isPublic"`
	PoolID   string `json:"poolId"`
}

// CreateRoom allocates a room and returns its code. The creator becomes
// host when their websocket joins under the same name.
func CreateRoom(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createRoomRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.User == "" {
			http.Error(w, "user is required", http.StatusBadRequest)
			return
		}

		reply := make(chan hub.CreateResult, 1)
		h.Inbox() <- hub.CreateRoom{HostName: req.User, IsPublic: req.IsPublic, PoolID: req.PoolID, Reply: reply}
		res := <-reply
		if res.Err != nil {
			http.Error(w, res.Err.Error(), http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(struct {
			Code string `json:"code"`
		}{Code: res.Code})
	}
}

// GetRoom reports whether a room code is live, falling back to the
// snapshot store so ended auctions stay retrievable read-only.
func GetRoom(h *hub.Hub, st store.SnapshotStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := chi.URLParam(r, "code")

		reply := make(chan *room.Room, 1)
		h.Inbox() <- hub.GetRoom{Code: code, Reply: reply}
		if rm := <-reply; rm != nil {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(struct {
				Code string `json:"code"`
				Live bool   `json:"live"`
			}{Code: code, Live: true})
			return
		}

		if st != nil {
			snap, err := st.Load(r.Context(), code)
			if err == nil && snap.AuctionEnded {
				w.Header().Set("Content-Type", "application/json")
				_ = json.NewEncoder(w).Encode(snap)
				return
			}
			if err != nil && !errors.Is(err, store.ErrNotFound) {
				http.Error(w, "snapshot lookup failed", http.StatusInternalServerError)
				return
			}
		}
		http.Error(w, "room not found", http.StatusNotFound)
	}
}

// ListRooms lists public room codes.
func ListRooms(h *hub.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reply := make(chan []string, 1)
		h.Inbox() <- hub.ListPublic{Reply: reply}
		codes := <-reply
		if codes == nil {
			codes = []string{}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(struct {
			Rooms []string `json:"rooms"`
		}{Rooms: codes})
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
