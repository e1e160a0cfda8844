package handlers

import (
	"userhub/internal/cache"
	"userhub/internal/domain/user"
)

const usersListCacheKey = "users:list"

// listCache is the typed view over the shared TTL cache for the /users
// listing. Handlers never touch the untyped cache entry directly; a stored
// value of the wrong shape reads as a miss.
type listCache struct {
	c *cache.Cache
}

func newListCache(c *cache.Cache) listCache {
	return listCache{c: c}
}

func (lc listCache) get() ([]user.User, bool) {
	v, ok := lc.c.Get(usersListCacheKey)

	if !ok {
		return nil, false
	}

	users, ok := v.([]user.User)

	return users, ok
}

func (lc listCache) set(users []user.User) {
	lc.c.Set(usersListCacheKey, users)
}

func (lc listCache) invalidate() {
	lc.c.Delete(usersListCacheKey)
}
