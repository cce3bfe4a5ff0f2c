package main

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	catalogx "github.com/tiendita-labs/tiendita/agent/catalog"
	handlerx "github.com/tiendita-labs/tiendita/agent/handlers"
	llmx "github.com/tiendita-labs/tiendita/agent/llm"
	"github.com/tiendita-labs/tiendita/agent/orchestrator"
	promptx "github.com/tiendita-labs/tiendita/agent/prompt"
	routerx "github.com/tiendita-labs/tiendita/agent/router"
	statex "github.com/tiendita-labs/tiendita/agent/state"
	configx "github.com/tiendita-labs/tiendita/pkg/config"
	_ "github.com/tiendita-labs/tiendita/pkg/logger/autoload"
	"github.com/tiendita-labs/tiendita/pkg/mercadopago"
	"github.com/tiendita-labs/tiendita/server"
)

type AppConfig struct {
	ContextTTL            time.Duration `envconfig:"CONTEXT_TTL" split_words:"true" default:"30m"`
	EvictionSweepInterval time.Duration `envconfig:"EVICTION_SWEEP_INTERVAL" split_words:"true" default:"5m"`
	DurableContext        bool          `envconfig:"DURABLE_CONTEXT" split_words:"true" default:"false"`
}

func main() {
	appCfg := configx.MustNew[AppConfig]("")

	llmCfg := configx.MustNew[llmx.Config]("OPENROUTER")
	if err := llmCfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid llm config")
	}

	routerLLM, err := llmx.NewForRole(*llmCfg, llmx.RoleRouter)
	if err != nil {
		log.Fatal().Err(err).Msg("build router llm client")
	}
	generalLLM, err := llmx.NewForRole(*llmCfg, llmx.RoleGeneral)
	if err != nil {
		log.Fatal().Err(err).Msg("build general llm client")
	}
	salesLLM, err := llmx.NewForRole(*llmCfg, llmx.RoleSales)
	if err != nil {
		log.Fatal().Err(err).Msg("build sales llm client")
	}

	catalog, err := catalogx.New(*configx.MustNew[catalogx.Config]("CATALOG"))
	if err != nil {
		log.Fatal().Err(err).Msg("open catalog")
	}

	payments := mercadopago.MustNew(*configx.MustNew[mercadopago.Config]("MERCADOPAGO"))

	var durable statex.DurableStore
	if appCfg.DurableContext {
		durable, err = statex.NewUpstashRedisStore(
			*configx.MustNew[statex.UpstashRedisConfig]("UPSTASH_REDIS"),
			statex.WithTTL(appCfg.ContextTTL),
		)
		if err != nil {
			log.Fatal().Err(err).Msg("build durable context store")
		}
	}

	prompts := promptx.LoadPromptSet()

	handlers := handlerx.NewSet(
		handlerx.NewGeneral(generalLLM, catalog, prompts.General),
		handlerx.NewSales(salesLLM, catalog, payments, prompts.SalesParser),
		handlerx.NewProduct(catalog),
	)

	store := statex.NewContextStore(appCfg.ContextTTL)

	orch, err := orchestrator.New(
		store,
		routerx.New(routerLLM, prompts.Router),
		handlers,
		durable,
		orchestrator.Config{SweepInterval: appCfg.EvictionSweepInterval},
	)
	if err != nil {
		log.Fatal().Err(err).Msg("build orchestrator")
	}

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go orch.RunEvictionSweeper(sweepCtx)

	serverCfg := configx.MustNew[server.Config]("SERVER")
	srv := server.New(orch, *serverCfg)

	log.Info().Str("addr", serverCfg.Addr).Msg("starting server")
	if err := srv.Run(serverCfg.Addr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
