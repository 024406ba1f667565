//go:build wireinject

// This file is the wire injector: `wire gen ./di` reads SuperSet and
// rewrites InitializeContainer's body into the real call chain,
// replacing the stub below. It is never compiled into the module
// directly (the wireinject build tag excludes it); wire_gen.go is the
// generated file this environment actually builds, hand-written to
// the shape `wire gen` would have produced, since no go generate run
// is available here. Mirrors the teacher's infrastructure/di/wire.go.
package di

import (
	"github.com/google/wire"

	"graphfacade/schema"
)

// SuperSet is the provider set InitializeContainer resolves against.
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideConfig,
	ProvideSchema,
	ProvideProvider,
	ProvideDatabase,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer builds a fully wired Container from raw schema.
func InitializeContainer(raw schema.RawSchema) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil
}
