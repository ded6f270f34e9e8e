package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hazriqpedia/waybill"
	"github.com/hazriqpedia/waybill/internal/cli"
	httpAdapter "github.com/hazriqpedia/waybill/pkg/adapters/http"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serves the assistant over HTTP. Requests are validated against the
embedded OpenAPI document, served at /openapi.yaml. Metrics are at /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		profile, _ := cmd.Flags().GetString("profile")

		stack, err := loadStack(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer stack.Close()

		opts := []httpAdapter.Option{
			httpAdapter.WithGatherer(stack.Registry),
			httpAdapter.WithLogger(stack.Logger),
		}
		var assistant *waybill.Assistant
		switch profile {
		case cli.ProfileShipment:
			a, svc, err := stack.ShipmentAssistant()
			if err != nil {
				return err
			}
			assistant = a
			opts = append(opts, httpAdapter.WithShipments(svc))
		case cli.ProfileResearch:
			if assistant, err = stack.ResearchAssistant(); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unknown profile %q", profile)
		}
		opts = append(opts, httpAdapter.WithSessions(assistant.Sessions()))

		handler, err := httpAdapter.NewHandler(assistant, opts...)
		if err != nil {
			return err
		}

		srv := &http.Server{
			Addr:              stack.Config.Server.Addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		serverErrors := make(chan error, 1)
		go func() {
			stack.Logger.Info("starting waybill server", "addr", srv.Addr, "profile", profile, "model", stack.Config.LLM.Model)
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(shutdown)

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server error: %w", err)

		case sig := <-shutdown:
			stack.Logger.Info("shutting down", "signal", sig.String())

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				stack.Logger.Error("graceful shutdown did not complete", "err", err)
				return srv.Close()
			}
			stack.Logger.Info("waybill server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", "", "Address to listen on (default :8080)")
	serveCmd.Flags().String("profile", cli.ProfileShipment, "Assistant to serve: shipment or research")
	_ = v.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
}
