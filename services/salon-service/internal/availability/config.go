package availability

const (
	DefaultSlotIntervalMinutes = 30
	DefaultBufferMinutes       = 15
	DefaultMaxAdvanceMonths    = 5
	DefaultMinAdvanceHours     = 4
)

// Config tunes the slot walk. The zero value is usable: a non-positive
// interval falls back to the default and a negative buffer counts as none.
type Config struct {
	SlotIntervalMinutes int
	BufferMinutes       int
}

func DefaultConfig() Config {
	return Config{
		SlotIntervalMinutes: DefaultSlotIntervalMinutes,
		BufferMinutes:       DefaultBufferMinutes,
	}
}

func (c Config) normalized() Config {
	if c.SlotIntervalMinutes <= 0 {
		c.SlotIntervalMinutes = DefaultSlotIntervalMinutes
	}
	if c.BufferMinutes < 0 {
		c.BufferMinutes = 0
	}
	return c
}
