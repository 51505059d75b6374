package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/pe-research/internal/refdata"
	"github.com/sells-group/pe-research/internal/research"
	"github.com/sells-group/pe-research/internal/store"
	"github.com/sells-group/pe-research/internal/webcontent"
	"github.com/sells-group/pe-research/pkg/anthropic"
	"github.com/sells-group/pe-research/pkg/yahoo"
)

// initEngine wires the research engine from config. A missing Anthropic key
// is a supported mode: the engine then runs deterministic fallbacks only.
func initEngine() (*research.Engine, error) {
	tables, err := refdata.LoadFiles(cfg.Refdata.TickersPath, cfg.Refdata.CompetitorsPath)
	if err != nil {
		return nil, eris.Wrap(err, "load reference data")
	}

	var gen research.TextGenerator
	if cfg.Anthropic.Key != "" {
		client := anthropic.NewClient(cfg.Anthropic.Key)
		gen = research.NewAnthropicGenerator(client, cfg.Anthropic.Model, cfg.Anthropic.Timeout())
	} else {
		gen = research.NewUnavailableGenerator()
	}

	provider := research.NewYahooProvider(yahoo.NewClient(
		yahoo.WithBaseURL(cfg.Market.BaseURL),
		yahoo.WithSeedURL(cfg.Market.SeedURL),
	))

	return research.NewEngine(gen, provider, webcontent.NewExtractor(), tables, cfg.Web.BaseURL), nil
}

// initStore opens the session store named by config and runs migrations.
func initStore(ctx context.Context) (store.Store, error) {
	var (
		st  store.Store
		err error
	)
	switch cfg.Store.Driver {
	case "postgres":
		st, err = store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	case "sqlite", "":
		st, err = store.NewSQLite(cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
	if err != nil {
		return nil, eris.Wrap(err, "open store")
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	zap.L().Debug("store ready", zap.String("driver", cfg.Store.Driver))
	return st, nil
}
