package task

import (
	"strconv"
	"sync/atomic"
)

// TaskID identifies a task for the lifetime of the kernel. IDs are only
// compared for equality and used as map keys.
type TaskID uint64

var nextTaskID atomic.Uint64

// NewTaskID returns a fresh ID, strictly greater than every ID issued before.
// The first ID is 1, so the zero TaskID never names a task.
func NewTaskID() TaskID {
	return TaskID(nextTaskID.Add(1))
}

func (id TaskID) String() string {
	return "task#" + strconv.FormatUint(uint64(id), 10)
}
