package match

import "time"

// Config holds the match loop timing and win constants
type Config struct {
	// TickInterval is the period of the fixed-rate simulation loop
	TickInterval time.Duration

	// StaleTickThreshold is the elapsed time beyond which a tick is
	// skipped instead of advancing physics by a huge synthetic step
	StaleTickThreshold time.Duration

	// WinScore is the score at which a player wins the match
	WinScore int

	// ScoreResumeDelay is the grace period after a point before per-tick
	// broadcasting resumes
	ScoreResumeDelay time.Duration

	// FinishDelay is the grace period between the winning point and the
	// transition to finished, so observers can render the scoring moment
	FinishDelay time.Duration
}

// DefaultConfig returns the standard match loop configuration: a 60 Hz
// tick, first to 5 points wins.
func DefaultConfig() Config {
	return Config{
		TickInterval:       time.Second / 60,
		StaleTickThreshold: 100 * time.Millisecond,
		WinScore:           5,
		ScoreResumeDelay:   2 * time.Second,
		FinishDelay:        1500 * time.Millisecond,
	}
}
