package main

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"questsolver/internal/transport/ws"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve SOLVE requests over websocket at /v1/ws",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				a.cfg.Server.Addr = addr
			}
			// Fail fast on a bad theme or preset instead of on every request.
			if _, err := a.options(); err != nil {
				return err
			}
			rec := a.recorder()
			defer func() {
				if err := rec.Close(); err != nil {
					a.log.Warn("close recorder", zap.Error(err))
				}
			}()

			srv := ws.NewServer(a.cfg, a.rules, a.catalog, rec, a.log)
			mux := http.NewServeMux()
			mux.HandleFunc("/v1/ws", srv.Handler())
			mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
				rw.Header().Set("Content-Type", "application/json")
				_ = json.NewEncoder(rw).Encode(map[string]any{"ok": true})
			})
			mux.HandleFunc("/metrics", func(rw http.ResponseWriter, r *http.Request) {
				var st any
				if rec != nil {
					st = rec.Index.Stats()
				}
				rw.Header().Set("Content-Type", "application/json")
				_ = json.NewEncoder(rw).Encode(map[string]any{"index": st})
			})

			ctx := cmd.Context()
			hs := &http.Server{
				Addr:              a.cfg.Server.Addr,
				Handler:           mux,
				ReadHeaderTimeout: 5 * time.Second,
				BaseContext:       func(net.Listener) context.Context { return ctx },
			}
			errCh := make(chan error, 1)
			go func() {
				a.log.Info("listening", zap.String("addr", hs.Addr))
				errCh <- hs.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
			case <-ctx.Done():
				a.log.Info("shutting down")
				shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				_ = hs.Shutdown(shutCtx)
				srv.Wait()
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}
