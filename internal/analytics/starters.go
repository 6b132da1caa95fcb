package analytics

// Role is a player's inferred starter classification
type Role int

const (
	// RoleUnknown means too few sampled games to classify
	RoleUnknown Role = iota
	RoleBench
	RoleStarter
)

func (r Role) String() string {
	switch r {
	case RoleStarter:
		return "starter"
	case RoleBench:
		return "bench"
	default:
		return "unknown"
	}
}

// Tally counts a player's appearances and starts in the sampled games
type Tally struct {
	Started int
	Total   int
}

// Observe records one appearance.
func (t *Tally) Observe(started bool) {
	t.Total++
	if started {
		t.Started++
	}
}

// Ratio returns the share of appearances that were starts.
func (t Tally) Ratio() float64 {
	if t.Total == 0 {
		return 0
	}
	return float64(t.Started) / float64(t.Total)
}

// StarterRule classifies a tally as starter when it has at least MinGames
// appearances and a start ratio of at least Threshold.
type StarterRule struct {
	MinGames  int
	Threshold float64
}

// DefaultStarterRule is three games at a 70% start rate.
func DefaultStarterRule() StarterRule {
	return StarterRule{MinGames: 3, Threshold: 0.70}
}

const ratioTolerance = 1e-9

// Classify applies the rule to t.
func (r StarterRule) Classify(t Tally) Role {
	if t.Total < r.MinGames || t.Total == 0 {
		return RoleUnknown
	}
	if t.Ratio() >= r.Threshold-ratioTolerance {
		return RoleStarter
	}
	return RoleBench
}
