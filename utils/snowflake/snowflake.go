package snowflake

import (
	"errors"
	"sync"
	"time"
)

const (
	// Epoch is the instant IDs count milliseconds from
	// (2024-01-01T00:00:00Z).
	Epoch int64 = 1704067200000

	// The defaults split the payload 10/12: up to 1024 workers, 4096
	// IDs per worker per millisecond.
	DefaultWorkerIDBits uint8 = 10
	DefaultSequenceBits uint8 = 12

	// The timestamp takes 41 bits and the sign bit stays clear, so
	// worker and sequence share the remaining 22.
	maxPayloadBits = 22
)

var (
	ErrInvalidWorkerID      = errors.New("worker ID exceeds maximum value")
	ErrClockMovedBackwards  = errors.New("clock moved backwards")
	ErrInvalidBitAllocation = errors.New("worker and sequence bits must not exceed 22")
)

// Generator hands out unique, time-ordered int64 IDs. One generator
// serves the whole process; it is safe for concurrent use.
type Generator struct {
	mu sync.Mutex

	epoch        int64
	workerID     int64
	workerIDBits uint8
	sequenceBits uint8

	workerIDShift  uint8
	timestampShift uint8
	workerIDMask   int64
	sequenceMask   int64

	sequence      int64
	lastTimestamp int64
}

// Config configures a Generator. Zero fields fall back to the package
// defaults (Epoch, DefaultWorkerIDBits, DefaultSequenceBits).
type Config struct {
	Epoch        int64
	WorkerID     int64
	WorkerIDBits uint8
	SequenceBits uint8
}

// NewGenerator validates the bit layout and returns a ready Generator.
func NewGenerator(config Config) (*Generator, error) {
	if config.WorkerIDBits == 0 {
		config.WorkerIDBits = DefaultWorkerIDBits
	}
	if config.SequenceBits == 0 {
		config.SequenceBits = DefaultSequenceBits
	}
	if config.Epoch == 0 {
		config.Epoch = Epoch
	}

	if int(config.WorkerIDBits)+int(config.SequenceBits) > maxPayloadBits {
		return nil, ErrInvalidBitAllocation
	}

	g := &Generator{
		epoch:        config.Epoch,
		workerID:     config.WorkerID,
		workerIDBits: config.WorkerIDBits,
		sequenceBits: config.SequenceBits,
	}

	g.workerIDShift = g.sequenceBits
	g.timestampShift = g.sequenceBits + g.workerIDBits
	g.workerIDMask = -1 ^ (-1 << g.workerIDBits)
	g.sequenceMask = -1 ^ (-1 << g.sequenceBits)

	if g.workerID < 0 || g.workerID > g.workerIDMask {
		return nil, ErrInvalidWorkerID
	}

	return g, nil
}

// NextID returns the next ID. It fails only when the wall clock runs
// behind the last timestamp it observed.
func (g *Generator) NextID() (int64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := time.Now().UnixMilli()
	if now < g.lastTimestamp {
		return 0, ErrClockMovedBackwards
	}

	if now == g.lastTimestamp {
		g.sequence = (g.sequence + 1) & g.sequenceMask
		if g.sequence == 0 {
			// Sequence exhausted within this millisecond.
			for now <= g.lastTimestamp {
				now = time.Now().UnixMilli()
			}
		}
	} else {
		g.sequence = 0
	}

	g.lastTimestamp = now

	id := (now-g.epoch)<<g.timestampShift |
		g.workerID<<g.workerIDShift |
		g.sequence
	return id, nil
}

// Parts is an ID decomposed into its fields. Timestamp is milliseconds
// since the Unix epoch.
type Parts struct {
	Timestamp int64
	WorkerID  int64
	Sequence  int64
}

// Parse splits id according to the generator's bit layout.
func (g *Generator) Parse(id int64) Parts {
	return Parts{
		Timestamp: (id >> g.timestampShift) + g.epoch,
		WorkerID:  (id >> g.workerIDShift) & g.workerIDMask,
		Sequence:  id & g.sequenceMask,
	}
}

// Time returns the instant id was generated, at millisecond precision.
func (g *Generator) Time(id int64) time.Time {
	return time.UnixMilli((id >> g.timestampShift) + g.epoch)
}
