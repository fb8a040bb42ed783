package pool

import (
	"github.com/Jeffail/tunny"
)

const minWorkers = 1
const maxWorkers = 20
const defaultWorkers = 10

// Queue is a bounded worker pool. Submitting more tasks than there are
// workers blocks until one frees up, which is exactly the admission control
// verification fan-out needs: a bounded pool, not a global barrier.
type Queue struct {
	pool *tunny.Pool
}

func NewQueue(workers int) *Queue {
	p := tunny.NewFunc(ClampWorkers(workers), func(i interface{}) interface{} {
		return i.(func() interface{})()
	})
	return &Queue{pool: p}
}

func (q *Queue) Process(task func() interface{}) interface{} {
	return q.pool.Process(task)
}

func (q *Queue) Close() {
	q.pool.Close()
}

func ClampWorkers(workers int) int {
	if workers == 0 {
		return defaultWorkers
	}
	if workers < minWorkers {
		return minWorkers
	}
	if workers > maxWorkers {
		return maxWorkers
	}
	return workers
}
