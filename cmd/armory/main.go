package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	armorycmd "github.com/emberforge/armory/internal/cmd/armory"
)

func main() {
	cfg, err := armorycmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix("[ARMORY] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := armorycmd.Run(ctx, cfg); err != nil {
		log.Fatalf("failed to serve: %v", err)
	}
}
