package gateways

import (
	"sync"

	"github.com/rubyist/circuitbreaker"
	"github.com/verityio/wayverify/util"
)

var breakers = &sync.Map{}

func (c *Client) getBreaker(gateway string) *circuit.Breaker {
	hostname := util.GetHostname(gateway)

	var cb *circuit.Breaker
	cbRaw, hasCb := breakers.Load(hostname)
	if !hasCb {
		backoffAt := c.BackoffAt
		if backoffAt <= 0 {
			backoffAt = 10 // default to 10 for those who don't have this set
		}
		cb = circuit.NewConsecutiveBreaker(backoffAt)
		breakers.Store(hostname, cb)
	} else {
		cb = cbRaw.(*circuit.Breaker)
	}
	return cb
}

// ResetBreakers drops all per-host breakers. Paired with clearing the health
// blacklist when every candidate appears unhealthy.
func ResetBreakers() {
	breakers = &sync.Map{}
}
