package config

import "time"

// SeatLookupConfig configures the live seat lookup against the
// registration system and the circuit breaker around it.
//
// URLTemplate receives the item number and the quarter code, in that
// order, via fmt.Sprintf.  Selector locates the element whose text holds
// the open seat count.
type SeatLookupConfig struct {
	Enabled     bool
	URLTemplate string
	Selector    string
	Timeout     time.Duration
	UserAgent   string

	BreakerMaxRequests  uint32
	BreakerInterval     time.Duration
	BreakerTimeout      time.Duration
	BreakerFailureRatio float64

	// LockTTL bounds how long one refresh may hold the per-section lock.
	LockTTL time.Duration
}

// LoadSeatLookupConfig reads SEAT_LOOKUP_* variables.
func LoadSeatLookupConfig() SeatLookupConfig {
	return SeatLookupConfig{
		Enabled:             envBool("SEAT_LOOKUP_ENABLED", true),
		URLTemplate:         envStr("SEAT_LOOKUP_URL", "https://www.ctc.edu/cgi-bin/rq080?item=%s&yrq=%s"),
		Selector:            envStr("SEAT_LOOKUP_SELECTOR", "td.seats-available"),
		Timeout:             envDur("SEAT_LOOKUP_TIMEOUT", 5*time.Second),
		UserAgent:           envStr("SEAT_LOOKUP_USER_AGENT", "class-schedule/1.0"),
		BreakerMaxRequests:  uint32(envInt("SEAT_BREAKER_MAX_REQUESTS", 1)),
		BreakerInterval:     envDur("SEAT_BREAKER_INTERVAL", time.Minute),
		BreakerTimeout:      envDur("SEAT_BREAKER_TIMEOUT", 30*time.Second),
		BreakerFailureRatio: envFloat("SEAT_BREAKER_FAILURE_RATIO", 0.6),
		LockTTL:             envDur("SEAT_LOCK_TTL", 10*time.Second),
	}
}
