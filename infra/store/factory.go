package store

import (
	"github.com/kilianp07/gridstatus/core/factory"
	corestore "github.com/kilianp07/gridstatus/core/store"
)

// init registers the built-in stores.
func init() {
	_ = corestore.RegisterStore("memory", func(map[string]any) (corestore.Store, error) {
		return NewMemoryStore(), nil
	})

	_ = corestore.RegisterStore("sqlite", func(conf map[string]any) (corestore.Store, error) {
		var c struct {
			Path string `json:"path"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if c.Path == "" {
			c.Path = "gridstatus.db"
		}
		return NewSQLiteStore(c.Path)
	})

	_ = corestore.RegisterStore("jsonl", func(conf map[string]any) (corestore.Store, error) {
		var c struct {
			Path       string `json:"path"`
			MaxSizeMB  int    `json:"max_size_mb"`
			MaxBackups int    `json:"max_backups"`
			MaxAgeDays int    `json:"max_age_days"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if c.Path == "" {
			c.Path = "observations.jsonl"
		}
		return NewRotatingJSONLStore(c.Path, c.MaxSizeMB, c.MaxBackups, c.MaxAgeDays)
	})
}
