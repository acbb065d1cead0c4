package relic

// RemapPins translates a build's pinned relic handles from an old inventory
// snapshot to the matching handles in a freshly parsed one, using each
// relic's content fingerprint as the stable identity. Relics sharing a
// fingerprint are paired in encounter order: the k-th such relic in old
// maps to the k-th such relic in newInv. A pin with no
// fingerprint match in the new inventory is dropped silently; callers
// that need to report drops should diff the returned slice's length
// against the input.
func RemapPins(old, newInv []OwnedRelic, pins []uint64) []uint64 {
	newByFingerprint := make(map[Fingerprint][]uint64, len(newInv))
	for _, r := range newInv {
		fp := r.Fingerprint()
		newByFingerprint[fp] = append(newByFingerprint[fp], uint64(r.Handle))
	}

	oldToNew := make(map[uint64]uint64, len(old))
	for _, r := range old {
		fp := r.Fingerprint()
		if queue := newByFingerprint[fp]; len(queue) > 0 {
			oldToNew[uint64(r.Handle)] = queue[0]
			newByFingerprint[fp] = queue[1:]
		}
	}

	out := make([]uint64, 0, len(pins))

	for _, pin := range pins {
		if handle, ok := oldToNew[pin]; ok {
			out = append(out, handle)
		}
	}

	return out
}
