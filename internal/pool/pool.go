package pool

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/crichub/auction-backend/internal/engine"
)

// Provider supplies named player pools.
type Provider interface {
	Load(id string) ([]engine.Player, error)
}

// FileProvider loads pools from <dir>/<id>.json files.
type FileProvider struct {
	Dir string
}

func NewFileProvider(dir string) *FileProvider {
	return &FileProvider{Dir: dir}
}

func (f *FileProvider) Load(id string) ([]engine.Player, error) {
	if id == "" {
		id = "default"
	}
	if strings.ContainsAny(id, `/\.`) {
		return nil, fmt.Errorf("invalid pool id %q", id)
	}

	data, err := os.ReadFile(filepath.Join(f.Dir, id+".json"))
	if err != nil {
		return nil, fmt.Errorf("read pool %q: %w", id, err)
	}

	var players []engine.Player
	if err := json.Unmarshal(data, &players); err != nil {
		return nil, fmt.Errorf("parse pool %q: %w", id, err)
	}
	if len(players) == 0 {
		return nil, fmt.Errorf("pool %q is empty", id)
	}
	for i, p := range players {
		if p.Name == "" {
			return nil, fmt.Errorf("pool %q: player %d has no name", id, i)
		}
		if !engine.ValidRole(p.Role) {
			return nil, fmt.Errorf("pool %q: player %s has unknown role %q", id, p.Name, p.Role)
		}
	}
	return players, nil
}

// StaticProvider serves pools from memory. Used in tests and as a fallback
// when no pool directory is configured.
type StaticProvider struct {
	Pools map[string][]engine.Player
}

func (s *StaticProvider) Load(id string) ([]engine.Player, error) {
	if id == "" {
		id = "default"
	}
	players, ok := s.Pools[id]
	if !ok {
		return nil, fmt.Errorf("unknown pool %q", id)
	}
	out := make([]engine.Player, len(players))
	copy(out, players)
	return out, nil
}
