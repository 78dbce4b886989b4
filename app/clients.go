package app

import (
	"fmt"

	"github.com/kilianp07/gridstatus/auth"
	"github.com/kilianp07/gridstatus/config"
	"github.com/kilianp07/gridstatus/core/iso"
	"github.com/kilianp07/gridstatus/infra/eia"
	"github.com/kilianp07/gridstatus/infra/httpx"
	"github.com/kilianp07/gridstatus/infra/logger"

	// Register the built-in operators.
	_ "github.com/kilianp07/gridstatus/infra/miso"
)

// NewISO builds the operator client registered under id. observer may be nil.
func NewISO(cfg *config.Config, id string, observer httpx.RequestObserver) (iso.ISO, error) {
	log := logger.New(id)
	opts := []httpx.Option{httpx.WithLogger(log)}
	if observer != nil {
		opts = append(opts, httpx.WithObserver(observer))
	}
	a, err := auth.New(cfg.ISOs[id].Auth)
	if err != nil {
		return nil, fmt.Errorf("%s auth: %w", id, err)
	}
	if a != nil {
		opts = append(opts, httpx.WithAuthorizer(a))
	}
	client := httpx.New(cfg.HTTP, opts...)
	return iso.New(id, iso.Options{
		Fetcher:        client,
		Logger:         log,
		MaxConcurrency: client.MaxConcurrency(),
	})
}

// NewISOs builds every registered operator, sorted by id.
func NewISOs(cfg *config.Config, observer httpx.RequestObserver) ([]iso.ISO, error) {
	var out []iso.ISO
	for _, id := range iso.IDs() {
		i, err := NewISO(cfg, id, observer)
		if err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, nil
}

// NewEIA builds the EIA client. It fails when no API key is configured.
func NewEIA(cfg *config.Config, observer httpx.RequestObserver) (*eia.Client, error) {
	var opts []httpx.Option
	if observer != nil {
		opts = append(opts, httpx.WithObserver(observer))
	}
	return eia.New(cfg.EIA, cfg.HTTP, opts...)
}
