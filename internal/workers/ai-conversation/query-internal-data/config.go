package queryinternaldata

import "time"

// CachePrefix namespaces dispatch results in Redis.
const CachePrefix = "erp:dispatch:"

type Config struct {
	QueryTimeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		QueryTimeout: 10 * time.Second,
	}
}
