package fiber

import (
	"fmt"
	"time"
)

// CommitRecord describes one commit.
type CommitRecord struct {
	RootID      string        `json:"rootId"`
	Sequence    uint64        `json:"sequence"`
	Lane        string        `json:"lane"`
	Placed      []string      `json:"placed,omitempty"`
	Placements  int           `json:"placements"`
	Updates     int           `json:"updates"`
	Deletions   int           `json:"deletions"`
	Duration    time.Duration `json:"durationNs"`
	CommittedAt time.Time     `json:"committedAt"`
}

// CommitObserver is notified after every commit. root.Current is already
// the committed tree, so the observer may take a Snapshot.
type CommitObserver func(root *FiberRootNode, rec CommitRecord)

func (r *Reconciler) notifyCommit(root *FiberRootNode, lane Lane, d time.Duration) {
	r.commitSeq++
	if len(r.observers) == 0 {
		return
	}
	stats := root.session.stats
	rec := CommitRecord{
		RootID:      root.ID,
		Sequence:    r.commitSeq,
		Lane:        LaneName(lane),
		Placed:      stats.placed,
		Placements:  len(stats.placed),
		Updates:     stats.updates,
		Deletions:   stats.deletions,
		Duration:    d,
		CommittedAt: time.Now(),
	}
	for _, observe := range r.observers {
		observe(root, rec)
	}
}

// fiberLabel names a fiber with its key, e.g. "li[3]".
func fiberLabel(f *Fiber) string {
	if f.Key == "" {
		return f.Name()
	}
	return fmt.Sprintf("%s[%s]", f.Name(), f.Key)
}
