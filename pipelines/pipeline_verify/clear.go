package pipeline_verify

// ClearIdentifier drops tracked state for one identifier and evicts the
// cache entries its path table references. The cache has no reverse index
// from entry to manifest, so coordinated invalidation has to happen here.
func (v *Verifier) ClearIdentifier(identifier string) {
	state := v.Tracker.GetState(identifier)
	if state != nil {
		ids := make([]string, 0, len(state.PathIndex)+1)
		for _, txId := range state.PathIndex {
			ids = append(ids, txId)
		}
		if state.TxId != "" {
			ids = append(ids, state.TxId)
		}
		v.Cache.ClearForManifest(ids)
	}
	v.Tracker.Clear(identifier)
}

// ClearAll wipes every cached resource and all tracked state.
func (v *Verifier) ClearAll() {
	v.Cache.Clear()
	v.Tracker.ClearAll()
}
