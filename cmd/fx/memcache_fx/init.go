package memcache_fx

import (
	"go.uber.org/fx"

	mem "learnez/pkg/memcache"
)

var Module = fx.Provide(
	mem.NewKeyedLocks,
	mem.NewInflightTracker)
