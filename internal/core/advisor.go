package core

// Suggestion holds the advisor's proposed contribution amounts for a
// goal: the full remaining balance, half of it, and an equal split of the
// remainder over participants who have not yet contributed.
type Suggestion struct {
	EqualSplit Money
	Half       Money
	Full       Money
}

// Suggest computes suggested amounts from the goal's current ledger
// state. It is a pure function and is recomputed fresh on every call:
// each accepted contribution changes both the remainder and the set of
// non-contributors, so nothing here may be cached.
//
// EqualSplit divides the remainder by the number of participants with
// zero contributions so far, rounding up to the next cent to avoid
// under-suggesting. When everyone has already contributed it falls back
// to the full remainder.
func Suggest(g Goal) Suggestion {
	full := g.Remaining()
	half := Money{Cents: full.Cents / 2}

	r := int64(0)
	for _, p := range g.Participants {
		if !hasContributed(g, p.Name) {
			r++
		}
	}
	equal := full
	if r > 0 {
		equal = Money{Cents: (full.Cents + r - 1) / r}
	}
	return Suggestion{EqualSplit: equal, Half: half, Full: full}
}

func hasContributed(g Goal, name string) bool {
	for _, c := range g.Contributions {
		if c.Name == name {
			return true
		}
	}
	return false
}
