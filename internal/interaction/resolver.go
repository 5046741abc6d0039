package interaction

// Snapshot is a full set of lock and capture values from one source.
type Snapshot struct {
	Locks    map[string]bool `json:"locks"`
	Captures map[string]bool `json:"captures"`
}

// Source says where a resolved value came from.
type Source string

const (
	SourceRemote  Source = "remote"
	SourceCache   Source = "cache"
	SourceDefault Source = "default"
)

type Resolution struct {
	Value  bool   `json:"value"`
	Source Source `json:"source"`
}

// ResolveLocked picks a coin's lock state: the remote snapshot when it has a
// value for id, otherwise the cache, otherwise not locked.
func ResolveLocked(remote *Snapshot, cache *Cache, id string) Resolution {
	var remoteMap map[string]bool
	if remote != nil {
		remoteMap = remote.Locks
	}
	var cached Lookup
	if cache != nil {
		cached = cache.CachedLock
	}
	return Resolve(remoteMap, cached, id)
}

// ResolveCaptured is ResolveLocked for monster captures.
func ResolveCaptured(remote *Snapshot, cache *Cache, id string) Resolution {
	var remoteMap map[string]bool
	if remote != nil {
		remoteMap = remote.Captures
	}
	var cached Lookup
	if cache != nil {
		cached = cache.CachedCapture
	}
	return Resolve(remoteMap, cached, id)
}

// Lookup reports a cached value and whether one exists.
type Lookup func(id string) (bool, bool)

// Resolve applies the precedence remote, then cache, then false.
func Resolve(remote map[string]bool, cached Lookup, id string) Resolution {
	if v, ok := remote[id]; ok {
		return Resolution{Value: v, Source: SourceRemote}
	}
	if cached != nil {
		if v, ok := cached(id); ok {
			return Resolution{Value: v, Source: SourceCache}
		}
	}
	return Resolution{Value: false, Source: SourceDefault}
}
