// Command shardkv-server is the process bootstrap spec.md §6 describes:
// it parses configuration, opens the listen socket with SO_REUSEADDR and
// (where available) SO_REUSEPORT, constructs the store and client
// registry, and spawns one goroutine per accepted connection until told
// to shut down.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/saqif-community/shardkv/internal/client"
	"github.com/saqif-community/shardkv/internal/command"
	"github.com/saqif-community/shardkv/internal/config"
	"github.com/saqif-community/shardkv/internal/logx"
	"github.com/saqif-community/shardkv/internal/resp"
	"github.com/saqif-community/shardkv/internal/store"
)

// listenBacklog is not passed to the listener: net.ListenConfig takes no
// backlog argument, so the listen queue length is the operating system's
// default.
const listenBacklog = 128

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(argv []string) error {
	cfg, err := config.Parse(argv)
	if err != nil {
		return fmt.Errorf("shardkv-server: %w", err)
	}

	if err := logx.SetLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("shardkv-server: %w", err)
	}
	log := logx.Named("server")
	defer logx.Sync()

	s, err := store.New(cfg.Segments)
	if err != nil {
		return fmt.Errorf("shardkv-server: %w", err)
	}
	registry := client.NewRegistry()

	lc := net.ListenConfig{Control: reuseAddrAndPort}
	ln, err := lc.Listen(context.Background(), "tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("shardkv-server: listen on %s: %w", cfg.Addr, err)
	}
	log.Infof("listening on %s with %d segments", cfg.Addr, cfg.Segments)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		log.Infof("shutting down")
		ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			log.Errorf("accept: %v", err)
			return fmt.Errorf("shardkv-server: accept: %w", err)
		}
		go serveConn(conn, s, registry, log)
	}
}

func serveConn(conn net.Conn, s *store.Store, registry *client.Registry, log logx.Logger) {
	defer conn.Close()

	c := registry.RegisterConnection()
	defer func() {
		registry.DropConnection(c.ID)
		c.Release()
	}()

	r := resp.NewReader(conn)
	w := resp.NewWriter(conn)

	for {
		if !command.Dispatch(r, w, s, registry, c, log) {
			return
		}
	}
}
