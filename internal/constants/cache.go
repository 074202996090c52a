package constants

import "time"

const (
	UserCachePrefix   = "user"         // Single cache by user ID (key is prefix:id)
	UserCacheExpiry   = 24 * time.Hour // Tokens outlive this, so entries are refreshed on access
	ProviderCacheHash = "tmdb"         // Hash holding provider responses keyed by path and query
)
