package engine

// Role is a player's primary on-field role.
type Role string

const (
	RoleBat  Role = "BAT"
	RoleBowl Role = "BOWL"
	RolePace Role = "PACE"
	RoleSpin Role = "SPIN"
	RoleWK   Role = "WK"
	RoleAll  Role = "ALL"
)

// ValidRole reports whether r is one of the known roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleBat, RoleBowl, RolePace, RoleSpin, RoleWK, RoleAll:
		return true
	}
	return false
}

// Player is a catalog entry in an auction pool. Price and RTM are zero
// until the player is sold; they are stamped exactly once at resolution.
type Player struct {
	Name     string  `json:"name"`
	Role     Role    `json:"role"`
	Rating   float64 `json:"rating"`
	Foreign  bool    `json:"foreign"`
	Tag      string  `json:"tag,omitempty"`
	PrevTeam string  `json:"pteam,omitempty"`
	Price    float64 `json:"price,omitempty"`
	RTM      bool    `json:"rtm,omitempty"`
}

// Rules is the per-room auction configuration.
type Rules struct {
	Purse        float64 `json:"purse"`
	MaxPlayers   int     `json:"maxPlayers"`
	MinSquadSize int     `json:"minSquadSize"`
	MaxForeign   int     `json:"maxForeign"`
	MinBat       int     `json:"minBat"`
	MinBowl      int     `json:"minBowl"`
	MinWK        int     `json:"minWK"`
	MinAll       int     `json:"minAll"`
	MinSpin      int     `json:"minSpin"`
	MaxForeignXI int     `json:"maxForeignXI"`
	RTMEnabled   bool    `json:"rtmEnabled"`
	RTMPerTeam   int     `json:"rtmPerTeam"`
}

// DefaultRules mirrors a standard season auction setup.
func DefaultRules() Rules {
	return Rules{
		Purse:        120,
		MaxPlayers:   25,
		MinSquadSize: 18,
		MaxForeign:   8,
		MinBat:       3,
		MinBowl:      3,
		MinWK:        1,
		MinAll:       1,
		MinSpin:      1,
		MaxForeignXI: 4,
		RTMEnabled:   true,
		RTMPerTeam:   2,
	}
}
