package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/scenekit/internal/config"
	"github.com/zeusync/scenekit/internal/core/assets/library"
	"github.com/zeusync/scenekit/internal/core/ecs"
	"github.com/zeusync/scenekit/internal/core/events/bus"
	"github.com/zeusync/scenekit/internal/core/observability/log"
	"github.com/zeusync/scenekit/internal/core/scene"
)

// Toolkit is everything a scene load needs, built from one Config.
type Toolkit struct {
	Config   config.Config
	Logger   log.Log
	Store    *ecs.Store
	Graphics *library.Memory
	Cache    *library.Cache
	Bus      bus.EventBus
	Loader   *scene.Loader
}

var ProviderSet = wire.NewSet(
	ProvideLogger,
	ecs.NewStore,
	library.NewMemory,
	wire.Bind(new(library.Graphics), new(*library.Memory)),
	ProvideCache,
	bus.New,
	ProvideLoader,
	wire.Struct(new(Toolkit), "*"),
)

func ProvideLogger(cfg config.Config) log.Log {
	return log.New(cfg.Level())
}

func ProvideCache(cfg config.Config, gfx library.Graphics, logger log.Log) *library.Cache {
	return library.NewCache(gfx,
		library.WithRoot(cfg.AssetRoot),
		library.WithCaching(cfg.Cache.Enabled),
		library.WithLogger(logger.Named("library")),
	)
}

func ProvideLoader(cfg config.Config, store *ecs.Store, cache *library.Cache, events bus.EventBus, logger log.Log) *scene.Loader {
	return scene.NewLoader(store, cache,
		scene.WithLogger(logger.Named("scene")),
		scene.WithEventBus(events),
		scene.WithDefaultShader(scene.Shader{
			Name:     cfg.DefaultShader.Name,
			Vertex:   cfg.DefaultShader.Vertex,
			Fragment: cfg.DefaultShader.Fragment,
		}),
	)
}
