package config

import (
	"time"

	"github.com/spf13/viper"
)

// CacheConfig defines the lifetimes of the catalog caches used by the tool
// handlers.  Restaurant identity changes rarely, so it lives longer than
// menu and item data.  SweepInterval controls how often expired entries
// are purged in the background.
type CacheConfig struct {
	RestaurantTTL time.Duration
	MenuTTL       time.Duration
	ItemTTL       time.Duration
	SweepInterval time.Duration
}

// LoadCacheConfig reads CACHE_* variables.  Defaults are used when
// variables are not set.
func LoadCacheConfig(v *viper.Viper) CacheConfig {
	v.SetDefault("CACHE_RESTAURANT_TTL", time.Hour)
	v.SetDefault("CACHE_MENU_TTL", 30*time.Minute)
	v.SetDefault("CACHE_ITEM_TTL", 30*time.Minute)
	v.SetDefault("CACHE_SWEEP_INTERVAL", 2*time.Minute)
	return CacheConfig{
		RestaurantTTL: v.GetDuration("CACHE_RESTAURANT_TTL"),
		MenuTTL:       v.GetDuration("CACHE_MENU_TTL"),
		ItemTTL:       v.GetDuration("CACHE_ITEM_TTL"),
		SweepInterval: v.GetDuration("CACHE_SWEEP_INTERVAL"),
	}
}
