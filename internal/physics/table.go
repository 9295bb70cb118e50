package physics

// Sync is the data synchronization strategy of an action.
type Sync string

const (
	Optimistic  Sync = "optimistic"
	Pessimistic Sync = "pessimistic"
	Immediate   Sync = "immediate"
)

// Behavioral describes how an action commits its change.
type Behavioral struct {
	Sync                 Sync `json:"sync" toml:"sync"`
	TimingMs             int  `json:"timing_ms" toml:"timing_ms"`
	ConfirmationRequired bool `json:"confirmation_required" toml:"confirmation_required"`
}

// Animation describes the motion that accompanies an action.
type Animation struct {
	Easing     string `json:"easing" toml:"easing"`
	DurationMs int    `json:"duration_ms" toml:"duration_ms"`
}

// Material describes the surface an action is rendered on.
type Material struct {
	Surface string `json:"surface" toml:"surface"`
	Shadow  string `json:"shadow" toml:"shadow"`
}

// Physics is the full expected profile for one effect.
type Physics struct {
	Behavioral Behavioral `json:"behavioral"`
	Animation  Animation  `json:"animation"`
	Material   Material   `json:"material"`
}

const effectCount = 7

// Array length must equal effectCount; either mismatch fails to compile.
var (
	_ [len(table) - effectCount]struct{}
	_ [effectCount - len(table)]struct{}
)

// table is indexed by Effect.ordinal. Every effect has an entry.
var table = [...]Physics{
	{ // financial
		Behavioral: Behavioral{Sync: Pessimistic, TimingMs: 800, ConfirmationRequired: true},
		Animation:  Animation{Easing: "ease-out", DurationMs: 800},
		Material:   Material{Surface: "elevated", Shadow: "soft"},
	},
	{ // destructive
		Behavioral: Behavioral{Sync: Pessimistic, TimingMs: 600, ConfirmationRequired: true},
		Animation:  Animation{Easing: "ease-out", DurationMs: 600},
		Material:   Material{Surface: "elevated", Shadow: "medium"},
	},
	{ // soft-delete
		Behavioral: Behavioral{Sync: Optimistic, TimingMs: 200},
		Animation:  Animation{Easing: "spring(400, 30)", DurationMs: 200},
		Material:   Material{Surface: "flat", Shadow: "none"},
	},
	{ // standard
		Behavioral: Behavioral{Sync: Optimistic, TimingMs: 200},
		Animation:  Animation{Easing: "spring(500, 30)", DurationMs: 200},
		Material:   Material{Surface: "flat", Shadow: "soft"},
	},
	{ // local
		Behavioral: Behavioral{Sync: Immediate, TimingMs: 100},
		Animation:  Animation{Easing: "spring(700, 35)", DurationMs: 100},
		Material:   Material{Surface: "flat", Shadow: "none"},
	},
	{ // navigation
		Behavioral: Behavioral{Sync: Immediate, TimingMs: 150},
		Animation:  Animation{Easing: "ease-in-out", DurationMs: 150},
		Material:   Material{Surface: "flat", Shadow: "none"},
	},
	{ // query
		Behavioral: Behavioral{Sync: Optimistic, TimingMs: 150},
		Animation:  Animation{Easing: "ease-out", DurationMs: 150},
		Material:   Material{Surface: "flat", Shadow: "none"},
	},
}

// Expected returns the expected physics for e. Unknown effects get the
// Standard profile.
func Expected(e Effect) Physics {
	i := e.ordinal()
	if i < 0 {
		i = Standard.ordinal()
	}
	return table[i]
}
