package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	cmd "github.com/dicomkit/dicomkit/cmd/dcmctl/cmd"
)

var GitSHA = "NA"

func main() {
	ctx, cnc := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cnc()
	go func() {
		defer cnc()
		<-ctx.Done()
	}()

	if err := cmd.NewRoot(ctx, GitSHA).ExecuteContext(ctx); err != nil {
		slog.Error("dcmctl failed", "error", err)
		os.Exit(1)
	}
}
