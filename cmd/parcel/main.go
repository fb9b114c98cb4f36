// Package main is the entry point for the parcel content cache client.
package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/grindlemire/graft"
	"go.trai.ch/parcel/cmd/parcel/commands"
	"go.trai.ch/parcel/internal/app"
	"go.trai.ch/parcel/internal/core/domain"
	_ "go.trai.ch/parcel/internal/wiring"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	// 0. Context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// 1. Initialize application components
	components, _, err := graft.ExecuteFor[*app.Components](ctx)
	if err != nil {
		// Logger is not available yet if initialization failed
		_, _ = io.WriteString(stderr, "Error: "+err.Error()+"\n")
		return 1
	}
	defer func() { _ = components.App.Shutdown(context.Background()) }()

	if l, ok := components.Logger.(interface{ SetOutput(w io.Writer) }); ok {
		l.SetOutput(stderr)
	}

	// 2. Interface - CLI
	cli := commands.New(components, stdout, stderr)
	cli.SetArgs(args)

	// 3. Execution
	if err := cli.Execute(ctx); err != nil {
		if domain.IsCancelled(err) {
			return 130
		}
		components.Logger.Error(err)
		return 1
	}
	return 0
}
