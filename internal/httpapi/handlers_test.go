package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/crichub/auction-backend/internal/engine"
	"github.com/crichub/auction-backend/internal/hub"
	"github.com/crichub/auction-backend/internal/pool"
	"github.com/crichub/auction-backend/internal/store"
	"github.com/crichub/auction-backend/internal/types"
)

func testServer(t *testing.T) (http.Handler, *store.MemoryStore) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	st := store.NewMemoryStore()
	h := hub.New(ctx, hub.Config{
		Pools: &pool.StaticProvider{Pools: map[string][]engine.Player{
			"default": {{Name: "p1", Role: engine.RoleBat, Rating: 9.0}},
		}},
		Store: st,
	})
	return SetupRoutes(h, st, zap.NewNop()), st
}

func TestCreateRoom(t *testing.T) {
	srv, _ := testServer(t)

	req := httptest.NewRequest(http.MethodPost, "/rooms", strings.NewReader(`{"user":"alice","isPublic":true}`))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body.Code) != 5 {
		t.Fatalf("bad room code %q", body.Code)
	}

	// The fresh room resolves as live.
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/rooms/"+body.Code, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for live room, got %d", rec.Code)
	}
	var live struct {
		Live bool `json:"live"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &live); err != nil {
		t.Fatal(err)
	}
	if !live.Live {
		t.Fatalf("room should report live: %s", rec.Body.String())
	}
}

func TestCreateRoom_RequiresUser(t *testing.T) {
	srv, _ := testServer(t)
	for _, body := range []string{`{}`, `{"user":""}`, `not json`} {
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/rooms", strings.NewReader(body)))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %q: expected 400, got %d", body, rec.Code)
		}
	}
}

func TestListRooms_PublicOnly(t *testing.T) {
	srv, _ := testServer(t)

	for _, body := range []string{`{"user":"alice","isPublic":true}`, `{"user":"bob"}`} {
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/rooms", strings.NewReader(body)))
		if rec.Code != http.StatusCreated {
			t.Fatalf("create failed: %d", rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/rooms", nil))
	var list struct {
		Rooms []string `json:"rooms"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatal(err)
	}
	if len(list.Rooms) != 1 {
		t.Fatalf("expected one public room, got %v", list.Rooms)
	}
}

func TestGetRoom_EndedSnapshotFallback(t *testing.T) {
	srv, st := testServer(t)

	snap := &types.RoomSnapshot{Code: "OLD42", Host: "alice", AuctionEnded: true}
	if err := st.Save(context.Background(), snap.Code, snap); err != nil {
		t.Fatal(err)
	}
	// A snapshot of a still-running room must not leak through.
	if err := st.Save(context.Background(), "RUN11", &types.RoomSnapshot{Code: "RUN11"}); err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/rooms/OLD42", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("ended room should be retrievable, got %d", rec.Code)
	}
	var got types.RoomSnapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Host != "alice" || !got.AuctionEnded {
		t.Fatalf("unexpected snapshot: %+v", got)
	}

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/rooms/RUN11", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("non-ended snapshot must 404, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/rooms/NOPE9", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown code must 404, got %d", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	srv, _ := testServer(t)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
