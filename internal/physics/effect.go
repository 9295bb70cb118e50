package physics

import "strings"

// Effect is the coarse risk category of a user action.
type Effect string

const (
	Financial   Effect = "financial"
	Destructive Effect = "destructive"
	SoftDelete  Effect = "soft-delete"
	Standard    Effect = "standard"
	Local       Effect = "local"
	Navigation  Effect = "navigation"
	Query       Effect = "query"
)

// AllEffects returns every effect in canonical order.
func AllEffects() []Effect {
	return []Effect{Financial, Destructive, SoftDelete, Standard, Local, Navigation, Query}
}

// Valid reports whether e is one of the known effects.
func (e Effect) Valid() bool {
	return e.ordinal() >= 0
}

func (e Effect) String() string {
	return string(e)
}

// ParseEffect resolves a name to an effect. Unknown names yield Standard
// and false.
func ParseEffect(s string) (Effect, bool) {
	e := Effect(strings.ToLower(strings.TrimSpace(s)))
	if e == "softdelete" || e == "soft_delete" {
		e = SoftDelete
	}
	if !e.Valid() {
		return Standard, false
	}
	return e, true
}

func (e Effect) ordinal() int {
	switch e {
	case Financial:
		return 0
	case Destructive:
		return 1
	case SoftDelete:
		return 2
	case Standard:
		return 3
	case Local:
		return 4
	case Navigation:
		return 5
	case Query:
		return 6
	default:
		return -1
	}
}
