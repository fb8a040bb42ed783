package gateway_health

import (
	"time"

	"github.com/verityio/wayverify/common/config"
)

var Gateways *HealthTracker

func Init() {
	Gateways = New(time.Duration(config.Get().Health.BlacklistMinutes) * time.Minute)
}

func AdjustSize() {
	Gateways.Resize(time.Duration(config.Get().Health.BlacklistMinutes) * time.Minute)
}
