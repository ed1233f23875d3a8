package models

import "sync/atomic"

// Reply is one retained comment on a Thread, in source-provided order.
type Reply struct {
	Author string
	Score  int
	Body   string
}

// Thread is a single forum post plus its retained top replies, the unit
// of collection. A Thread with zero retained replies is never persisted.
type Thread struct {
	ID          string
	Title       string
	Body        string
	Score       int
	CreatedUTC  int64
	NumComments int
	Community   string
	Replies     []Reply

	// CollectedUTC is stamped at merge time, not collection time.
	CollectedUTC int64
}

// Window is an inclusive unix-seconds time range.
type Window struct {
	Start int64
	End   int64
}

// Contains reports whether ts falls inside the window.
func (w Window) Contains(ts int64) bool {
	return ts >= w.Start && ts <= w.End
}

// Counters tracks collection outcomes. All fields are updated atomically
// so community workers can share one instance.
type Counters struct {
	TotalFetched       atomic.Int64
	FilteredByTime     atomic.Int64
	FilteredByComments atomic.Int64
	FilteredByLanguage atomic.Int64
	CommentsSkipped    atomic.Int64
	ValidStored        atomic.Int64
}

// CounterSnapshot is a plain-value copy of Counters for logging and
// persistence.
type CounterSnapshot struct {
	TotalFetched       int64 `yaml:"total_posts_fetched"`
	FilteredByTime     int64 `yaml:"posts_filtered_time"`
	FilteredByComments int64 `yaml:"posts_filtered_comments"`
	FilteredByLanguage int64 `yaml:"posts_filtered_language"`
	CommentsSkipped    int64 `yaml:"comments_skipped"`
	ValidStored        int64 `yaml:"valid_posts_stored"`
}

// Snapshot returns a point-in-time copy of the counter values.
func (c *Counters) Snapshot() CounterSnapshot {
	return CounterSnapshot{
		TotalFetched:       c.TotalFetched.Load(),
		FilteredByTime:     c.FilteredByTime.Load(),
		FilteredByComments: c.FilteredByComments.Load(),
		FilteredByLanguage: c.FilteredByLanguage.Load(),
		CommentsSkipped:    c.CommentsSkipped.Load(),
		ValidStored:        c.ValidStored.Load(),
	}
}
