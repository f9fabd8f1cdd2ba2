package cia

import "time"

// Status is the engine's terminal (or running) state, spec.md section 4.4.
type Status int

const (
	StatusRunning       Status = 1
	StatusOptimal       Status = 2
	StatusIterLimit     Status = 3
	StatusTimeLimit     Status = 4
	StatusUserInterrupt Status = 5
)

func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusOptimal:
		return "optimal"
	case StatusIterLimit:
		return "iter_limit"
	case StatusTimeLimit:
		return "time_limit"
	case StatusUserInterrupt:
		return "user_interrupt"
	default:
		return "unknown"
	}
}

// Config collects the run-time configuration keys of spec.md section 6. The
// zero value is a valid Config: every field has a documented "unset"
// meaning the engine applies a default for, the same zero-value-is-a-
// default idiom the teacher's DynamicConfig (internal/parallel/pool.go)
// uses for its scaling knobs.
type Config struct {
	strategy string

	maxIter     int
	maxCPUTime  time.Duration
	verbosity   int

	vbcFile         string
	vbcTiming       bool
	vbcTimingSet    bool
	vbcTimeDilation float64
}

// Option configures a Config. Constructed via the With* functions below and
// applied left to right, so a later option overrides an earlier one.
type Option func(*Config)

// WithStrategy selects the queue strategy by name ("dfs", "bfs", "btd",
// "dbt"). An empty or unrecognized name is resolved by NewQueue, which
// falls back to the registry default and reports unknown names as errors.
func WithStrategy(name string) Option {
	return func(c *Config) { c.strategy = name }
}

// WithMaxIter caps the number of branch-and-bound iterations. n <= 0 means
// unbounded.
func WithMaxIter(n int) Option {
	return func(c *Config) { c.maxIter = n }
}

// WithMaxCPUTime caps wall-clock time spent in Run, measured from entry.
// d <= 0 means unbounded.
func WithMaxCPUTime(d time.Duration) Option {
	return func(c *Config) { c.maxCPUTime = d }
}

// WithVerbosity sets the logging level: 0 silent (errors only), 1 a line
// per improving incumbent plus a final summary line, 2 additionally a line
// per branched node.
func WithVerbosity(level int) Option {
	return func(c *Config) { c.verbosity = level }
}

// WithVBCFile enables the tree recorder, writing the VBC-format trace
// described in spec.md section 6 to path. An empty path disables it.
func WithVBCFile(path string) Option {
	return func(c *Config) { c.vbcFile = path }
}

// WithVBCTiming toggles timed-mode output (HH:MM:SS.ff node events) versus
// untimed mode. Defaults to true when a vbc file is configured.
func WithVBCTiming(enabled bool) Option {
	return func(c *Config) {
		c.vbcTiming = enabled
		c.vbcTimingSet = true
	}
}

// WithVBCTimeDilation scales the steady-clock timestamps the tree recorder
// writes in timed mode. Must be positive; non-positive values are ignored.
func WithVBCTimeDilation(factor float64) Option {
	return func(c *Config) {
		if factor > 0 {
			c.vbcTimeDilation = factor
		}
	}
}

// resolved fills in the documented defaults for any field an Option left
// at its zero value.
func resolved(opts []Option) Config {
	c := Config{vbcTimeDilation: 1}
	for _, opt := range opts {
		opt(&c)
	}
	if !c.vbcTimingSet {
		c.vbcTiming = true
	}
	if c.vbcTimeDilation <= 0 {
		c.vbcTimeDilation = 1
	}
	return c
}
