package config

import (
	"fmt"

	"github.com/kilianp07/gridstatus/auth"
)

// ISOConfig holds per-operator settings, keyed by ISO id in Config.ISOs.
type ISOConfig struct {
	// Auth authenticates requests to the operator, e.g. a subscription key
	// header for gated data portals.
	Auth auth.Conf `json:"auth"`
}

// Validate checks the authenticator can be built.
func (c ISOConfig) Validate() error {
	if _, err := auth.New(c.Auth); err != nil {
		return err
	}
	return nil
}

func validateISOs(m map[string]ISOConfig) error {
	for id, c := range m {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("isos.%s: %w", id, err)
		}
	}
	return nil
}
