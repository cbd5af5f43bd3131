package providers

import (
	"time"

	"rpc-gateway.backend/internal/domain/entities"
)

const (
	// throttleCooldownFloor seeds the backoff after a rate-limited call.
	throttleCooldownFloor = 1 * time.Second
	// transportCooldownFloor is the longer floor for network failures and
	// upstream 5xx, which tend to persist longer than throttle windows.
	transportCooldownFloor = 5 * time.Second
	// cooldownCap bounds the exponential backoff.
	cooldownCap = 5 * time.Minute
)

type weightKey struct {
	kind  entities.ProviderKind
	chain entities.Caip2
}

// weight is the mutable health state for one (provider, chain) cell.
// A CooldownUntil in the future makes the cell ineligible but never
// removes it from the pool.
type weight struct {
	Priority            entities.Priority
	ConsecutiveFailures uint32
	CooldownUntil       time.Time
}

func (w *weight) eligible(now time.Time) bool {
	return w.Priority != entities.PriorityDisabled && !w.CooldownUntil.After(now)
}

// applyOutcome mutates the cell for one proxy outcome.
func (w *weight) applyOutcome(outcome entities.CallOutcome, httpStatus int, now time.Time) {
	switch outcome {
	case entities.OutcomeSuccess:
		w.ConsecutiveFailures = 0
		w.CooldownUntil = time.Time{}
	case entities.OutcomeRateLimited:
		w.ConsecutiveFailures++
		w.CooldownUntil = now.Add(backoff(throttleCooldownFloor, w.ConsecutiveFailures))
	case entities.OutcomeTransportError:
		w.ConsecutiveFailures++
		w.CooldownUntil = now.Add(backoff(transportCooldownFloor, w.ConsecutiveFailures))
	case entities.OutcomeHTTPError:
		// 4xx is the client's fault and says nothing about provider health.
		if httpStatus >= 500 {
			w.ConsecutiveFailures++
			w.CooldownUntil = now.Add(backoff(transportCooldownFloor, w.ConsecutiveFailures))
		}
	}
}

// backoff returns floor * 2^(failures-1), capped.
func backoff(floor time.Duration, failures uint32) time.Duration {
	d := floor
	for i := uint32(1); i < failures; i++ {
		d *= 2
		if d >= cooldownCap {
			return cooldownCap
		}
	}
	if d > cooldownCap {
		return cooldownCap
	}
	return d
}
