package cache

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// TTL bounds and defaults.
const (
	// DefaultTTLSeconds keeps scroll positions for a week.
	DefaultTTLSeconds = 7 * 24 * 3600
	MinTTLSeconds     = 60
	MaxTTLSeconds     = 90 * 24 * 3600

	minutesPerHour = 60
	hoursPerDay    = 24
)

// Environment overrides, applied on top of the config file.
const (
	EnvTTLSeconds   = "VGRID_CACHE_TTL_SECONDS"
	EnvCacheEnabled = "VGRID_CACHE_ENABLED"
	EnvCacheDir     = "VGRID_CACHE_DIR"
)

// ErrInvalidTTL is returned for a TTL outside [MinTTLSeconds, MaxTTLSeconds].
var ErrInvalidTTL = fmt.Errorf("TTL must be between %d and %d seconds", MinTTLSeconds, MaxTTLSeconds)

// Settings configure a FileStore.
type Settings struct {
	Enabled    bool
	Directory  string
	TTLSeconds int
}

// WithEnv returns s with the environment overrides applied. Unparseable or
// out-of-range values are ignored.
func (s Settings) WithEnv() Settings {
	if v := os.Getenv(EnvCacheEnabled); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			s.Enabled = enabled
		}
	}
	if v := os.Getenv(EnvCacheDir); v != "" {
		s.Directory = v
	}
	if v := os.Getenv(EnvTTLSeconds); v != "" {
		if ttl, err := ParseTTL(v); err == nil {
			s.TTLSeconds = ttl
		}
	}
	if s.TTLSeconds <= 0 {
		s.TTLSeconds = DefaultTTLSeconds
	}
	return s
}

// FormatDuration renders d compactly: "45s", "5m", "2h30m", "3d2h".
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%.0fs", d.Seconds())
	case d < time.Hour:
		return fmt.Sprintf("%.0fm", d.Minutes())
	case d < hoursPerDay*time.Hour:
		hours := int(d.Hours())
		if minutes := int(d.Minutes()) % minutesPerHour; minutes != 0 {
			return fmt.Sprintf("%dh%dm", hours, minutes)
		}
		return fmt.Sprintf("%dh", hours)
	}
	days := int(d.Hours()) / hoursPerDay
	if hours := int(d.Hours()) % hoursPerDay; hours != 0 {
		return fmt.Sprintf("%dd%dh", days, hours)
	}
	return fmt.Sprintf("%dd", days)
}

// ParseTTL accepts integer seconds ("3600") or a Go duration ("36h").
func ParseTTL(s string) (int, error) {
	seconds, err := strconv.Atoi(s)
	if err != nil {
		d, durErr := time.ParseDuration(s)
		if durErr != nil {
			return 0, fmt.Errorf("invalid TTL format: %w", durErr)
		}
		seconds = int(d.Seconds())
	}
	if seconds < MinTTLSeconds || seconds > MaxTTLSeconds {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidTTL, seconds)
	}
	return seconds, nil
}
