package engine

import "sort"

// Set is one auction batch. Players are drawn from it in random order but
// the slice itself is kept rating-sorted for presentation.
type Set struct {
	Name    string   `json:"name"`
	Players []Player `json:"players"`
}

// SetOrder is the fixed presentation order of auction sets.
var SetOrder = []string{
	SetMarquee,
	SetCappedBat,
	SetCappedWK,
	SetCappedAll,
	SetCappedBowl,
	SetUncappedBat,
	SetUncappedWK,
	SetUncappedBowl,
	SetUncappedAll,
}

const (
	SetMarquee      = "Marquee"
	SetCappedBat    = "Capped Batters"
	SetCappedWK     = "Capped Wicket-Keepers"
	SetCappedAll    = "Capped All-Rounders"
	SetCappedBowl   = "Capped Bowlers"
	SetUncappedBat  = "Uncapped Batters"
	SetUncappedWK   = "Uncapped Wicket-Keepers"
	SetUncappedBowl = "Uncapped Bowlers"
	SetUncappedAll  = "Uncapped All-Rounders"
)

var knownSets = func() map[string]bool {
	m := make(map[string]bool, len(SetOrder))
	for _, name := range SetOrder {
		m[name] = true
	}
	return m
}()

// classify maps a player to a set name. Players with a recognized tag go
// where the tag says; everything else falls back to a rating heuristic so
// no player is ever dropped from the auction.
func classify(p Player) string {
	if knownSets[p.Tag] {
		return p.Tag
	}
	switch {
	case p.Rating >= 9.5:
		return SetMarquee
	case p.Rating < 7.5:
		return SetUncappedBat
	default:
		return SetCappedBat
	}
}

// BuildSets partitions a pool into auction sets in SetOrder, each sorted by
// descending rating. Empty sets are omitted.
func BuildSets(players []Player) []Set {
	buckets := make(map[string][]Player, len(SetOrder))
	for _, p := range players {
		name := classify(p)
		buckets[name] = append(buckets[name], p)
	}

	sets := make([]Set, 0, len(SetOrder))
	for _, name := range SetOrder {
		group := buckets[name]
		if len(group) == 0 {
			continue
		}
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].Rating > group[j].Rating
		})
		sets = append(sets, Set{Name: name, Players: group})
	}
	return sets
}
