// Package config loads the scheduler's tunable constants, in the style
// of sigmaos's kernel/param.go: a small YAML-decoded struct with
// compiled-in defaults for every field a deployment doesn't override.
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ParkedCoreId is the sentinel core id written to a thread's coreId field
// while it sits on the parked queue rather than any core's ready queue.
const ParkedCoreId uint8 = 0xFF

// Duration wraps time.Duration so config files can write "3ms" rather
// than a raw nanosecond count.
type Duration time.Duration

func (d Duration) Duration() time.Duration { return time.Duration(d) }

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Config holds the scheduler's deployment-wide constants.
type Config struct {
	// NumCores is the fixed number of virtual cores the scheduler
	// multiplexes guest threads onto.
	NumCores uint8 `yaml:"numCores"`

	// PreemptiveTimeslice is how long a thread occupying its core's
	// preemption-priority band may run before a timer-driven YieldSignal
	// forces a rotate.
	PreemptiveTimeslice Duration `yaml:"preemptiveTimeslice"`

	// PreemptionPriority is, per core id, the priority band at which a
	// resident thread is preemptively timed. Cores not present in this
	// map use DefaultPreemptionPriority.
	PreemptionPriority map[uint8]int8 `yaml:"preemptionPriority"`

	// DefaultPreemptionPriority is used for any core absent from
	// PreemptionPriority.
	DefaultPreemptionPriority int8 `yaml:"defaultPreemptionPriority"`
}

// Default returns the compiled-in configuration: 4 cores, a few
// milliseconds of preemptive timeslice, and every core preempting at
// priority 0, matching the constants spec.md cites as typical.
func Default() *Config {
	return &Config{
		NumCores:                  4,
		PreemptiveTimeslice:       Duration(3 * time.Millisecond),
		PreemptionPriority:        map[uint8]int8{},
		DefaultPreemptionPriority: 0,
	}
}

// Load decodes a YAML configuration file at pn, filling in any field the
// file leaves unset with the compiled-in default. An empty pn returns the
// compiled-in default unchanged.
func Load(pn string) (*Config, error) {
	c := Default()
	if pn == "" {
		return c, nil
	}
	f, err := os.Open(pn)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	d := yaml.NewDecoder(f)
	if err := d.Decode(c); err != nil {
		return nil, err
	}
	if c.PreemptionPriority == nil {
		c.PreemptionPriority = map[uint8]int8{}
	}
	return c, nil
}

// PreemptionPriorityFor returns the preemption-priority band configured
// for core id, falling back to DefaultPreemptionPriority.
func (c *Config) PreemptionPriorityFor(id uint8) int8 {
	if p, ok := c.PreemptionPriority[id]; ok {
		return p
	}
	return c.DefaultPreemptionPriority
}
