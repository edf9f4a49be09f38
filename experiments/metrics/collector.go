package metrics

import (
	"sync/atomic"
	"time"
)

type SearchMetric struct {
	Goroutines   int
	Duration     time.Duration
	Episodes     int
	Cutoff       int
	Repetitions  int
	FullPlayouts int
	RootVisits   int
	Children     int
	IsTreeReset  bool
}

type MoveMetric struct {
	Step   int
	Player int // Index of the agent that moved
	Move   string
	SearchMetric
}

type GameMetric struct {
	StartingPlayer int
	Outcome        string // From the starting state's perspective
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
	TotalMoves     int
}

type Collector interface {
	Start(goroutines, cutoff, repetitions int)
	SetTreeReset(value bool)
	AddFullPlayout()
	AddEpisode()
	Complete(rootVisits, children int) SearchMetric
}

type collector struct {
	goroutines   int
	cutoff       int
	repetitions  int
	startTime    time.Time
	episodes     atomic.Int32
	fullPlayouts atomic.Int32
	isTreeReset  atomic.Bool
}

func NewCollector() Collector {
	return &collector{}
}

func (m *collector) SetTreeReset(value bool) {
	m.isTreeReset.Store(value)
}

// Start resets the counters for a new search.
func (m *collector) Start(goroutines, cutoff, repetitions int) {
	m.startTime = time.Now()
	m.goroutines = goroutines
	m.cutoff = cutoff
	m.repetitions = repetitions
	m.episodes.Store(0)
	m.fullPlayouts.Store(0)
}

func (m *collector) AddFullPlayout() {
	m.fullPlayouts.Add(1)
}

func (m *collector) AddEpisode() {
	m.episodes.Add(1)
}

func (m *collector) Complete(rootVisits, children int) SearchMetric {
	return SearchMetric{
		Goroutines:   m.goroutines,
		Duration:     time.Since(m.startTime),
		Episodes:     int(m.episodes.Load()),
		FullPlayouts: int(m.fullPlayouts.Load()),
		Cutoff:       m.cutoff,
		Repetitions:  m.repetitions,
		RootVisits:   rootVisits,
		Children:     children,
		IsTreeReset:  m.isTreeReset.Load(),
	}
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start(goroutines, cutoff, repetitions int)      {}
func (m *dummyCollector) SetTreeReset(value bool)                        {}
func (m *dummyCollector) AddFullPlayout()                                {}
func (m *dummyCollector) AddEpisode()                                    {}
func (m *dummyCollector) Complete(rootVisits, children int) SearchMetric { return SearchMetric{} }
