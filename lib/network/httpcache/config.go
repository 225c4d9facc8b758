package httpcache

import (
	"errors"

	"pollpulse.io/pollpulse/lib/common"
)

func NewAdapter(conf common.Config) (Adapter, error) {
	switch conf.HTTPCacheAdapter {
	case common.HTTPCacheMemoryAdapterName:
		size := conf.HTTPCachePoolSize
		adapter := NewMemCacheAdapter(size)
		return adapter, nil
	default:
		return nil, errors.New("adapter not found")
	}
}
