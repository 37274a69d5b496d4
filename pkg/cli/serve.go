package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/topicscout/topicscout/pkg/cli/config"
	httpctrl "github.com/topicscout/topicscout/pkg/controller/http"
	"github.com/topicscout/topicscout/pkg/service/worker"
	"github.com/topicscout/topicscout/pkg/usecase"
	"github.com/topicscout/topicscout/pkg/utils/logging"
	"github.com/topicscout/topicscout/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var addr string
	var apiToken string
	var interval time.Duration
	var runOnStart bool
	var repoCfg config.Repository
	var pipeline pipelineConfig
	var input researchInputConfig

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("TOPICSCOUT_ADDR"),
			Destination: &addr,
		},
		&cli.StringFlag{
			Name:        "api-token",
			Usage:       "Bearer token required by the /api endpoints (disabled when empty)",
			Sources:     cli.EnvVars("TOPICSCOUT_API_TOKEN"),
			Destination: &apiToken,
		},
		&cli.DurationFlag{
			Name:        "research-interval",
			Usage:       "Run research periodically at this interval (disabled when 0)",
			Category:    "Research",
			Sources:     cli.EnvVars("TOPICSCOUT_RESEARCH_INTERVAL"),
			Destination: &interval,
		},
		&cli.BoolFlag{
			Name:        "research-on-start",
			Usage:       "Run research once right after the server starts (requires --research-interval)",
			Category:    "Research",
			Sources:     cli.EnvVars("TOPICSCOUT_RESEARCH_ON_START"),
			Destination: &runOnStart,
		},
	}
	flags = append(flags, input.Flags()...)
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, pipeline.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start the HTTP API server and the optional research worker",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer safe.Close(ctx, repo)

			// Without AI or video credentials the server still serves stored topics
			researchUC, err := pipeline.Build(ctx, repo)
			switch {
			case errors.Is(err, config.ErrMissingCredentials):
				logger.Warn("Research disabled, serving stored topics only", "reason", err.Error())
				researchUC = nil
			case err != nil:
				return goerr.Wrap(err, "failed to build research pipeline")
			}

			competitorUC, err := buildCompetitors(ctx, &pipeline.research, &pipeline.youtube)
			switch {
			case errors.Is(err, config.ErrMissingCredentials):
				logger.Warn("Competitor analysis disabled", "reason", err.Error())
				competitorUC = nil
			case err != nil:
				return goerr.Wrap(err, "failed to build competitor analysis")
			}

			var ucOpts []usecase.Option
			httpOpts := []httpctrl.Options{}
			if competitorUC != nil {
				httpOpts = append(httpOpts, httpctrl.WithCompetitors(competitorUC))
			}
			if researchUC != nil {
				ucOpts = append(ucOpts, usecase.WithResearch(researchUC))
				httpOpts = append(httpOpts, httpctrl.WithResearch(researchUC, input.Input()))
			}
			if apiToken != "" {
				httpOpts = append(httpOpts, httpctrl.WithAPIToken(apiToken))
			}
			uc := usecase.New(repo, ucOpts...)

			var researchWorker *worker.ResearchWorker
			if researchUC != nil && interval > 0 {
				var workerOpts []worker.WorkerOption
				if runOnStart {
					workerOpts = append(workerOpts, worker.WithRunOnStart())
				}
				researchWorker = worker.NewResearchWorker(uc.Research, input.Input(), interval, workerOpts...)
				if err := researchWorker.Start(ctx); err != nil {
					return goerr.Wrap(err, "failed to start research worker")
				}
			}

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(uc.Topic, httpOpts...),
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logger.Info("Starting HTTP server", "addr", addr, "research", researchUC != nil, "interval", interval)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logger.Info("Received shutdown signal", "signal", sig)

				if researchWorker != nil {
					researchWorker.Stop()
				}

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logger.Info("Server shutdown completed")
				return nil
			}
		},
	}
}
