package verified_cache

import (
	"github.com/verityio/wayverify/common/config"
)

var Resources *VerifiedCache

func Init() {
	Resources = New(config.Get().Cache.MaxSizeBytes)
}

func AdjustSize() {
	Resources.Resize(config.Get().Cache.MaxSizeBytes)
}
