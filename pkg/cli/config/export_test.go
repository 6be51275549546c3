package config

import "time"

// NewBusForTest returns Bus flags holding the given values
func NewBusForTest(retention time.Duration, importanceFloor int, safetyWindow, pruneInterval time.Duration, cacheSize int, cacheTTL time.Duration) *Bus {
	return &Bus{
		retention:       retention,
		importanceFloor: importanceFloor,
		safetyWindow:    safetyWindow,
		pruneInterval:   pruneInterval,
		cacheSize:       cacheSize,
		cacheTTL:        cacheTTL,
	}
}
