package main

import (
	"context"
	"log/slog"
	"os"

	"skycast/config"
	"skycast/internal/delivery"
	"skycast/internal/delivery/http"
	"skycast/internal/delivery/http/middleware"
	"skycast/internal/delivery/http/router/handler"
	"skycast/internal/infra/geocode"
	logs "skycast/internal/infra/log"
	"skycast/internal/infra/persistence/postgres"
	"skycast/internal/infra/persistence/snapshot"
	"skycast/internal/infra/poi"
	"skycast/internal/infra/weather"
	"skycast/internal/usecase"
	"skycast/internal/usecase/impl"

	"go.uber.org/fx"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		injectInfra(),
		injectRepo(),
		injectService(),
		injectUsecase(),
		injectDelivery(),
		injectMiddleware(),
		injectHandler(),
		fx.Invoke(
			bootstrapDashboard,
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		context.Background,
		postgres.New,
	)
}

func injectRepo() fx.Option {
	return fx.Options(
		fx.Provide(
			postgres.NewPlaceRepository,
			snapshot.New,
		),
	)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			weather.New,
			geocode.New,
			poi.New,
		),
	)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.New,
		),
	)
}

func injectMiddleware() fx.Option {
	return fx.Options(
		fx.Provide(
			middleware.NewErrorMiddleware,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewDashboardHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				http.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

// bootstrapDashboard replays the flat snapshot into an empty structured store
// and loads the default location so the first render is never blank.
func bootstrapDashboard(ctx context.Context, lc fx.Lifecycle, uc usecase.DashboardUsecase) {
	lc.Append(fx.Hook{
		OnStart: func(startCtx context.Context) error {
			if err := uc.Bootstrap(startCtx); err != nil {
				return err
			}
			go uc.LoadDefault(ctx)

			return nil
		},
	})
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))
				os.Exit(1)
			}
		}()
	}
}
