package scorer

// State is the four accumulating sets plus the curse-count multiset that
// the optimizer threads through a vessel's slots while scoring
// a plain struct of four sets and a curse-count map.
type State struct {
	PlacedEffects      map[uint32]bool
	Exclusivity        map[int64]bool
	NoStackExclusivity map[int64]bool
	NoStackCompat      map[int64]bool
	CurseCounts        map[uint32]int
}

// NewState returns an empty accumulation state.
func NewState() *State {
	return &State{
		PlacedEffects:      make(map[uint32]bool),
		Exclusivity:        make(map[int64]bool),
		NoStackExclusivity: make(map[int64]bool),
		NoStackCompat:      make(map[int64]bool),
		CurseCounts:        make(map[uint32]int),
	}
}

// Clone returns a deep copy, used by the branch-and-bound solver to try a
// candidate without mutating the caller's state.
func (st *State) Clone() *State {
	out := NewState()

	for k, v := range st.PlacedEffects {
		out.PlacedEffects[k] = v
	}

	for k, v := range st.Exclusivity {
		out.Exclusivity[k] = v
	}

	for k, v := range st.NoStackExclusivity {
		out.NoStackExclusivity[k] = v
	}

	for k, v := range st.NoStackCompat {
		out.NoStackCompat[k] = v
	}

	for k, v := range st.CurseCounts {
		out.CurseCounts[k] = v
	}

	return out
}
