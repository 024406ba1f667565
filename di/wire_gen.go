//go:build !wireinject

// This file was hand-written to the shape `wire gen ./di` would
// produce from wire.go's SuperSet, since no go generate/toolchain run
// is available in this environment. Regenerate with `wire gen ./di`
// once wire.go's provider set changes; until then, keep this file's
// call sequence in sync with SuperSet by hand.

package di

import (
	"graphfacade/schema"
)

// InitializeContainer builds a fully wired Container from raw schema,
// in the dependency order SuperSet implies: logger and config have no
// dependencies; the schema depends on raw only; the provider depends
// on logger only; the database depends on raw, provider, config and
// logger.
func InitializeContainer(raw schema.RawSchema) (*Container, error) {
	logger, err := ProvideLogger()
	if err != nil {
		return nil, err
	}
	cfg := ProvideConfig()

	parsed, err := ProvideSchema(raw)
	if err != nil {
		return nil, err
	}

	p := ProvideProvider(logger)

	db, err := ProvideDatabase(raw, p, cfg, logger)
	if err != nil {
		return nil, err
	}

	return &Container{
		Config:   cfg,
		Logger:   logger,
		Schema:   parsed,
		Provider: p,
		Database: db,
	}, nil
}
