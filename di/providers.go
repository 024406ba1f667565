// Package di wires the façade's dependency graph at compile time,
// mirroring the teacher's infrastructure/di package: a //go:build
// wireinject injector file (wire.go) that documents the provider set
// for `wire gen`, plus a checked-in wire_gen.go with the generated
// wiring. No go generate/toolchain run is available in this
// environment, so wire_gen.go here is hand-written to the same shape
// `wire gen` would emit for this provider set.
package di

import (
	"go.uber.org/zap"

	"graphfacade/config"
	"graphfacade/facade"
	"graphfacade/memprovider"
	"graphfacade/provider"
	"graphfacade/schema"
)

// Container holds the fully wired dependency graph, mirroring the
// teacher's infrastructure/di/wire.go Container.
type Container struct {
	Config   *config.Config
	Logger   *zap.Logger
	Schema   schema.ParsedSchema
	Provider provider.Provider
	Database *facade.Database
}

// ProvideLogger builds the default production logger, mirroring the
// teacher's infrastructure/di/wire.go ProvideLogger provider.
func ProvideLogger() (*zap.Logger, error) {
	return zap.NewProduction()
}

// ProvideConfig supplies config.DefaultConfig() absent an override.
func ProvideConfig() *config.Config {
	return config.DefaultConfig()
}

// ProvideSchema parses raw into the resolved schema the rest of the
// container depends on.
func ProvideSchema(raw schema.RawSchema) (schema.ParsedSchema, error) {
	return schema.Parse(raw)
}

// ProvideProvider constructs the in-memory reference provider. A
// caller wiring a different back end supplies provider.Provider
// directly to facade.New rather than going through this container.
func ProvideProvider(logger *zap.Logger) provider.Provider {
	return memprovider.New(memprovider.WithLogger(logger))
}

// ProvideDatabase binds the parsed schema and chosen provider into a
// facade.Database, configured from the container's Config/Logger.
func ProvideDatabase(raw schema.RawSchema, p provider.Provider, cfg *config.Config, logger *zap.Logger) (*facade.Database, error) {
	return facade.New(raw, p, facade.WithConfig(cfg), facade.WithLogger(logger))
}
