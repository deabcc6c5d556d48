package monitoring

import (
	"sync"
	"time"
)

// A ProgressBar is a tracker of the replay progress.
type ProgressBar struct {
	sync.Mutex
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	StartTime time.Time `json:"start_time"`
	Total     uint64    `json:"total"`
	Finished  uint64    `json:"finished"`
}

// IncrementFinished adds a certain amount to the finished element count.
func (b *ProgressBar) IncrementFinished(amount uint64) {
	b.Lock()
	defer b.Unlock()

	b.Finished += amount
}

// FinishedCount returns the number of finished elements.
func (b *ProgressBar) FinishedCount() uint64 {
	b.Lock()
	defer b.Unlock()

	return b.Finished
}
