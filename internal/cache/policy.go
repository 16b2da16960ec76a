package cache

import "time"

// Entry describes an existing cache file as seen by a Policy.
type Entry struct {
	Path    string
	ModTime time.Time
	// Record is nil when the file predates the manifest.
	Record *Record
}

// FetchedAt returns the recorded fetch time, falling back to the file mtime.
func (e Entry) FetchedAt() time.Time {
	if e.Record != nil && !e.Record.FetchedAt.IsZero() {
		return e.Record.FetchedAt
	}
	return e.ModTime
}

// Policy decides whether an existing cache file may be served for a request
// with the given params.
type Policy interface {
	Valid(e Entry, params string, now time.Time) bool
}

// PolicyFunc adapts a function to Policy.
type PolicyFunc func(e Entry, params string, now time.Time) bool

func (f PolicyFunc) Valid(e Entry, params string, now time.Time) bool { return f(e, params, now) }

// Exists accepts any file that is present.
func Exists() Policy {
	return PolicyFunc(func(Entry, string, time.Time) bool { return true })
}

// MaxAge accepts files fetched no longer than d ago.
func MaxAge(d time.Duration) Policy {
	return PolicyFunc(func(e Entry, _ string, now time.Time) bool {
		return now.Sub(e.FetchedAt()) <= d
	})
}

// MatchParams rejects files recorded with different request params. Files
// without a manifest record are accepted.
func MatchParams() Policy {
	return PolicyFunc(func(e Entry, params string, _ time.Time) bool {
		return e.Record == nil || e.Record.Params == params
	})
}

// All accepts a file only when every policy does.
func All(policies ...Policy) Policy {
	return PolicyFunc(func(e Entry, params string, now time.Time) bool {
		for _, p := range policies {
			if !p.Valid(e, params, now) {
				return false
			}
		}
		return true
	})
}

// NewPolicy builds the policy selected by configuration. A zero ttl never
// expires files.
func NewPolicy(ttl time.Duration, matchParams bool) Policy {
	policies := []Policy{Exists()}
	if ttl > 0 {
		policies = append(policies, MaxAge(ttl))
	}
	if matchParams {
		policies = append(policies, MatchParams())
	}
	if len(policies) == 1 {
		return policies[0]
	}
	return All(policies...)
}
