package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/crichub/auction-backend/internal/hub"
	"github.com/crichub/auction-backend/internal/store"
	"github.com/crichub/auction-backend/internal/ws"
)

func SetupRoutes(h *hub.Hub, st store.SnapshotStore, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Post("/rooms", CreateRoom(h))
	r.Get("/rooms", ListRooms(h))
	r.Get("/rooms/{code}", GetRoom(h, st))
	r.Get("/healthz", Healthz)
	r.Get("/ws", ws.Handler(h, logger))
	return r
}
