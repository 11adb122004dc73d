package engine

import "fmt"

// ValidateXI checks a submitted playing eleven against the squad that owns
// it and the room's role quotas. Names must be unique members of the squad.
func ValidateXI(squad []Player, names []string, rules Rules) error {
	if len(names) != 11 {
		return fmt.Errorf("playing XI needs 11 players, got %d", len(names))
	}

	owned := make(map[string]Player, len(squad))
	for _, p := range squad {
		owned[p.Name] = p
	}

	var bat, bowl, wk, all, spin, foreign int
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if seen[name] {
			return fmt.Errorf("%s appears twice in the XI", name)
		}
		seen[name] = true
		p, ok := owned[name]
		if !ok {
			return fmt.Errorf("%s is not in the squad", name)
		}
		if p.Foreign {
			foreign++
		}
		switch p.Role {
		case RoleBat:
			bat++
		case RoleWK:
			wk++
		case RoleAll:
			all++
		case RoleSpin:
			spin++
			bowl++
		case RoleBowl, RolePace:
			bowl++
		}
	}

	if foreign > rules.MaxForeignXI {
		return fmt.Errorf("XI has %d overseas players, max is %d", foreign, rules.MaxForeignXI)
	}
	if bat < rules.MinBat {
		return fmt.Errorf("XI needs at least %d batters, got %d", rules.MinBat, bat)
	}
	if bowl < rules.MinBowl {
		return fmt.Errorf("XI needs at least %d bowlers, got %d", rules.MinBowl, bowl)
	}
	if wk < rules.MinWK {
		return fmt.Errorf("XI needs at least %d wicket-keepers, got %d", rules.MinWK, wk)
	}
	if all < rules.MinAll {
		return fmt.Errorf("XI needs at least %d all-rounders, got %d", rules.MinAll, all)
	}
	if spin < rules.MinSpin {
		return fmt.Errorf("XI needs at least %d spinners, got %d", rules.MinSpin, spin)
	}
	return nil
}

// XIRating sums the ratings of the named players out of a squad. Names not
// found contribute nothing; callers validate first.
func XIRating(squad []Player, names []string) float64 {
	byName := make(map[string]float64, len(squad))
	for _, p := range squad {
		byName[p.Name] = p.Rating
	}
	var total float64
	for _, name := range names {
		total += byName[name]
	}
	return total
}
