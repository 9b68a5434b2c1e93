// SPDX-License-Identifier: MIT
package daemon

import (
	"fmt"

	applog "algcore/internal/log"
	"algcore/internal/metric"
	"algcore/internal/signal"
)

// Named is implemented by algorithms that want a stable label in logs and
// metrics.
type Named interface {
	Name() string
}

func algorithmName(alg signal.Algorithm) string {
	if n, ok := alg.(Named); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", alg)
}

// guarded isolates the daemon from a failing algorithm. A panic is logged and
// counted; the algorithm is still stepped on later frames.
type guarded struct {
	alg     signal.Algorithm
	name    string
	metrics *metric.Metrics
}

func (g *guarded) ResetState() {
	g.call("ResetState", g.alg.ResetState)
}

func (g *guarded) ProcessInput(v signal.View) {
	if g.metrics != nil {
		g.metrics.AlgorithmSteps.WithLabelValues(g.name).Inc()
	}
	g.call("ProcessInput", func() { g.alg.ProcessInput(v) })
}

func (g *guarded) EndStreaming(v signal.View) {
	g.call("EndStreaming", func() { g.alg.EndStreaming(v) })
}

func (g *guarded) call(op string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			applog.Errorf("Algorithm %s panicked in %s: %v", g.name, op, r)
			if g.metrics != nil {
				g.metrics.AlgorithmPanics.WithLabelValues(g.name).Inc()
			}
		}
	}()
	fn()
}
