package services

import (
	"fmt"
	"log"
	"sort"
	"strings"
)

// EventLogger receives structured domain events (xp_granted, level_up,
// badge_awarded, ...) from the gamification core. Injected so tests can
// assert on emitted events instead of scraping stdout.
type EventLogger interface {
	Event(name string, fields map[string]interface{})
}

// logEmitter is the default EventLogger, writing through the standard
// logger.
type logEmitter struct{}

func NewLogEmitter() EventLogger {
	return logEmitter{}
}

func (logEmitter) Event(name string, fields map[string]interface{}) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, fields[k])
	}
	log.Printf("🎮 [%s]%s", name, b.String())
}
