package main

import (
	"fmt"
	"net"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/danielpatrickdp/multimodal-planner/internal/executor"
)

// #region serve-sim-cmd

func newServeSimCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve-sim",
		Short: "Run a simulated executor bridge that logs every command",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr == "" {
				addr = a.cfg.Executor.Addr
			}
			lis, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("listen %s: %w", addr, err)
			}

			srv := grpc.NewServer()
			executor.Register(srv, executor.HandlerServer{Handle: executor.LogHandler(a.log.Named("sim"))})

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			go func() {
				<-ctx.Done()
				srv.GracefulStop()
			}()

			a.log.Info("simulated executor listening", zap.String("addr", lis.Addr().String()))
			return srv.Serve(lis)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, defaults to executor.addr")
	return cmd
}

// #endregion serve-sim-cmd
