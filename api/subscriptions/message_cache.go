// Copyright (c) 2025 The Rotor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"encoding/json"
	"fmt"

	"github.com/rotorchain/rotor/cache"
	"github.com/rotorchain/rotor/registry"
)

// messageCache shares marshaled event frames between subscribers, so a busy
// event is encoded once however many connections stream it.
type messageCache struct {
	cache *cache.LRU
}

func newMessageCache(size int) *messageCache {
	c, err := cache.NewLRU(size)
	if err != nil {
		// cache.NewLRU only fails on a non-positive size
		panic(fmt.Errorf("create message cache: %v", err))
	}
	return &messageCache{c}
}

// GetOrAdd returns the marshaled form of the event, encoding and caching it
// on first use. Event contents are immutable once emitted, so the sequence
// number is a sufficient key.
func (mc *messageCache) GetOrAdd(ev *registry.Event) ([]byte, error) {
	v, err := mc.cache.GetOrLoad(ev.Seq, func(any) (any, error) {
		return json.Marshal(ev)
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}
