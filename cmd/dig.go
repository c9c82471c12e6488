package cmd

import (
	"context"

	logger "github.com/sirupsen/logrus"
	"go.uber.org/dig"

	"github.com/monover/monover/application"
	"github.com/monover/monover/domain"
	adapterPkg "github.com/monover/monover/infrastructure/adapter"
	cargoAdapter "github.com/monover/monover/infrastructure/adapter/cargo"
	gomodAdapter "github.com/monover/monover/infrastructure/adapter/gomod"
	gradleAdapter "github.com/monover/monover/infrastructure/adapter/gradle"
	"github.com/monover/monover/infrastructure/changelog"
	gitCollector "github.com/monover/monover/infrastructure/collector/git"
)

// buildContainer wires the whole pipeline bottom-up: logger, registries,
// collector, engine, service.
func buildContainer() *dig.Container {
	container := dig.New()

	providers := []any{
		func() logger.FieldLogger { return logger.StandardLogger() },
		buildAdapterRegistry,
		gitCollector.New,
		changelog.NewWriter,
		application.NewEngine,
		application.NewReleaseService,
	}

	for _, provide := range providers {
		if err := container.Provide(provide); err != nil {
			panic(err)
		}
	}

	return container
}

// injectReleaseService resolves the fully wired release service.
func injectReleaseService() *application.ReleaseService {
	container := buildContainer()

	var svc *application.ReleaseService
	if err := container.Invoke(func(s *application.ReleaseService) {
		svc = s
	}); err != nil {
		panic(err)
	}

	return svc
}

// buildAdapterRegistry registers all build-system adapters. Registration
// order decides auto-detection precedence.
func buildAdapterRegistry() *adapterPkg.Registry {
	reg := adapterPkg.NewRegistry()
	reg.Register(gradleAdapter.New())
	reg.Register(gomodAdapter.New())
	reg.Register(cargoAdapter.New())
	return reg
}

// resolveAdapter picks the adapter pinned by name, or auto-detects one.
func resolveAdapter(
	ctx context.Context,
	registry *adapterPkg.Registry,
	dir, name string,
) (domain.Adapter, error) {
	if name != "" {
		return registry.Get(name)
	}
	return registry.Detect(ctx, dir)
}
