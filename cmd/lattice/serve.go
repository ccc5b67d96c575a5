package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/driftml/lattice"
	httpAdapter "github.com/driftml/lattice/internal/adapters/http"
	"github.com/driftml/lattice/internal/adapters/memory"
	redisAdapter "github.com/driftml/lattice/internal/adapters/redis"
	"github.com/driftml/lattice/pkg/observability"
	"github.com/driftml/lattice/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP search server",
	Long:  `Starts the lattice engine in server mode, exposing search runs as a JSON API over HTTP. Runs are stored in memory unless a Redis address is given.`,
	Run: func(cmd *cobra.Command, args []string) {
		port, _ := cmd.Flags().GetString("port")
		redisAddr, _ := cmd.Flags().GetString("redis-addr")
		redisPassword, _ := cmd.Flags().GetString("redis-password")
		redisDB, _ := cmd.Flags().GetInt("redis-db")

		logger := newLogger(cmd)
		registry := prometheus.NewRegistry()
		metrics := observability.NewMetrics(registry)

		engine, err := lattice.Open(tablePath(cmd, args),
			lattice.WithLogger(logger),
			lattice.WithStepObserver(metrics.Observer()),
		)
		if err != nil {
			fmt.Printf("Error initializing lattice: %v\n", err)
			os.Exit(1)
		}

		var store ports.RunStore
		if redisAddr != "" {
			store = redisAdapter.New(redisAddr, redisPassword, redisDB)
			logger.Info("using redis run store", "addr", redisAddr, "db", redisDB)
		} else {
			store = memory.New()
			logger.Info("using in-memory run store")
		}

		handler, err := httpAdapter.NewHandler(engine, store,
			httpAdapter.WithLogger(logger),
			httpAdapter.WithMetricsRegistry(registry),
		)
		if err != nil {
			fmt.Printf("Error building handler: %v\n", err)
			os.Exit(1)
		}

		srv := &http.Server{
			Addr:    ":" + port,
			Handler: handler,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			fmt.Printf("Starting Lattice Server on %s\n", srv.Addr)
			fmt.Printf("Serving table: %s\n", engine.Table().Name())
			serverErrors <- srv.ListenAndServe()
		}()

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		// Blocking main and waiting for shutdown.
		select {
		case err := <-serverErrors:
			// Error when starting HTTP server.
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)

		case sig := <-shutdown:
			fmt.Printf("\nStart shutdown... Signal: %v\n", sig)

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			// Asking listener to shut down and shed load.
			if err := srv.Shutdown(ctx); err != nil {
				fmt.Printf("Graceful shutdown did not complete in %v: %v\n", 5*time.Second, err)
				if err := srv.Close(); err != nil {
					fmt.Printf("Error killing server: %v\n", err)
				}
			}
			fmt.Println("Lattice Server stopped gracefully")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	serveCmd.Flags().String("redis-addr", "", "Redis address for run storage, e.g. localhost:6379")
	serveCmd.Flags().String("redis-password", "", "Redis password")
	serveCmd.Flags().Int("redis-db", 0, "Redis database index")
}
