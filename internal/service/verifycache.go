package service

import (
	"encoding/json"

	"github.com/bradfitz/gomemcache/memcache"

	"github.com/bergason/inventory"
)

// VerificationCache keeps verification records for locked inventories in
// memcached. A locked record never changes, so there is no invalidation
// story to get wrong; the TTL only bounds memory.
type VerificationCache struct {
	mc  *memcache.Client
	ttl int32
}

func NewVerificationCache(mc *memcache.Client, ttlSeconds int32) *VerificationCache {
	return &VerificationCache{mc: mc, ttl: ttlSeconds}
}

func (c *VerificationCache) Get(token string) (inventory.VerificationRecord, bool) {
	item, err := c.mc.Get(inventory.TokenCacheKey("verify", token))
	if err != nil {
		return inventory.VerificationRecord{}, false
	}

	var rec inventory.VerificationRecord
	if err := json.Unmarshal(item.Value, &rec); err != nil {
		return inventory.VerificationRecord{}, false
	}
	return rec, true
}

func (c *VerificationCache) Set(token string, rec inventory.VerificationRecord) {
	if !rec.Locked {
		return
	}

	value, err := json.Marshal(rec)
	if err != nil {
		return
	}

	// Best effort; a miss just falls through to the database.
	_ = c.mc.Set(&memcache.Item{
		Key:        inventory.TokenCacheKey("verify", token),
		Value:      value,
		Expiration: c.ttl,
	})
}
