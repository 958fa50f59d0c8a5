package snowflake

import (
	"sync"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestProperty_IDsUnique(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("a burst of IDs contains no duplicate", prop.ForAll(
		func(count int) bool {
			g, err := NewGenerator(Config{WorkerID: 1})
			if err != nil {
				return false
			}
			seen := make(map[int64]bool, count)
			for range count {
				id, err := g.NextID()
				if err != nil || seen[id] {
					return false
				}
				seen[id] = true
			}
			return len(seen) == count
		},
		gen.IntRange(100, 1000),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_IDsUniqueAcrossGoroutines(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("concurrent callers never observe a duplicate", prop.ForAll(
		func(goroutines int, perWorker int) bool {
			g, err := NewGenerator(Config{WorkerID: 1})
			if err != nil {
				return false
			}

			ids := make(chan int64, goroutines*perWorker)
			var wg sync.WaitGroup
			for range goroutines {
				wg.Go(func() {
					for range perWorker {
						id, err := g.NextID()
						if err != nil {
							return
						}
						ids <- id
					}
				})
			}
			wg.Wait()
			close(ids)

			seen := make(map[int64]bool, goroutines*perWorker)
			for id := range ids {
				if seen[id] {
					return false
				}
				seen[id] = true
			}
			return len(seen) == goroutines*perWorker
		},
		gen.IntRange(2, 16),
		gen.IntRange(50, 200),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_WorkersNeverCollide(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("generators with distinct worker IDs mint disjoint IDs", prop.ForAll(
		func(worker1, worker2 int64, count int) bool {
			if worker1 == worker2 {
				return true
			}

			g1, err := NewGenerator(Config{WorkerID: worker1})
			if err != nil {
				return false
			}
			g2, err := NewGenerator(Config{WorkerID: worker2})
			if err != nil {
				return false
			}

			seen := make(map[int64]bool, count*2)
			for range count {
				for _, g := range []*Generator{g1, g2} {
					id, err := g.NextID()
					if err != nil || seen[id] {
						return false
					}
					seen[id] = true
				}
			}
			return len(seen) == count*2
		},
		gen.Int64Range(0, 1023),
		gen.Int64Range(0, 1023),
		gen.IntRange(50, 200),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_IDsIncrease(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("IDs from one generator increase strictly", prop.ForAll(
		func(count int) bool {
			g, err := NewGenerator(Config{WorkerID: 1})
			if err != nil {
				return false
			}

			var last int64
			for i := range count {
				id, err := g.NextID()
				if err != nil {
					return false
				}
				if i > 0 && id <= last {
					return false
				}
				last = id
			}
			return true
		},
		gen.IntRange(100, 1000),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_ParseRoundTrip(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("Parse recovers the worker and a sequence within range", prop.ForAll(
		func(workerBits, seqBits uint8, worker int64) bool {
			if workerBits == 0 || seqBits == 0 || int(workerBits)+int(seqBits) > 22 {
				return true
			}
			maxWorker := int64(1)<<workerBits - 1
			if worker < 0 || worker > maxWorker {
				return true
			}

			g, err := NewGenerator(Config{
				WorkerID:     worker,
				WorkerIDBits: workerBits,
				SequenceBits: seqBits,
			})
			if err != nil {
				return false
			}

			maxSeq := int64(1)<<seqBits - 1
			for range 10 {
				id, err := g.NextID()
				if err != nil {
					return false
				}
				parts := g.Parse(id)
				if parts.WorkerID != worker {
					return false
				}
				if parts.Sequence < 0 || parts.Sequence > maxSeq {
					return false
				}
				now := time.Now().UnixMilli()
				if parts.Timestamp < now-2000 || parts.Timestamp > now+2000 {
					return false
				}
			}
			return true
		},
		gen.UInt8Range(1, 15),
		gen.UInt8Range(1, 15),
		gen.Int64Range(0, 1023),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
