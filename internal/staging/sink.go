// SPDX-License-Identifier: MIT
package staging

import (
	"strings"
	"sync"

	applog "algcore/internal/log"
	"algcore/internal/port"
)

// LoggingSink logs every result and remembers the latest one.
type LoggingSink struct {
	mu   sync.Mutex
	last Result
}

var _ port.Sink[Result] = (*LoggingSink)(nil)

func (s *LoggingSink) Consume(r Result) {
	s.mu.Lock()
	s.last = r
	s.mu.Unlock()

	applog.Infof("Online staging: %s", formatStages(r.Stages))
}

// Last returns the most recent result.
func (s *LoggingSink) Last() Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

func formatStages(stages []StagedEpoch) string {
	parts := make([]string, len(stages))
	for i, e := range stages {
		parts[i] = e.Stage.String()
	}
	return strings.Join(parts, " ")
}
