package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/kardianos/service"
	"golang.org/x/sync/errgroup"

	httpadapter "github.com/aegis/userkit/internal/adapter/http"
	"github.com/aegis/userkit/internal/adapter/storage"
	"github.com/aegis/userkit/internal/app"
	"github.com/aegis/userkit/internal/config"
	"github.com/aegis/userkit/internal/port"
	"github.com/aegis/userkit/internal/usecase/account"
)

const shutdownTimeout = 10 * time.Second

// server runs the user API; it implements service.Interface.
// Start opens the store and binds the listener before returning, so startup
// failures reach the caller.
type server struct {
	cfg    config.Config
	ln     net.Listener
	cancel context.CancelFunc
	done   chan error
	exited chan struct{} // closed when serve returns
}

func (p *server) Start(s service.Service) error {
	repo, err := storage.Open(p.cfg.Storage.URL)
	if err != nil {
		return fmt.Errorf("open storage %s: %w", p.cfg.Storage.URL, err)
	}
	ln, err := net.Listen("tcp", p.cfg.Server.Listen)
	if err != nil {
		repo.Close()
		return fmt.Errorf("listen %s: %w", p.cfg.Server.Listen, err)
	}
	p.ln = ln

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan error, 1)
	p.exited = make(chan struct{})
	go func() {
		defer close(p.exited)
		err := serve(ctx, ln, repo)
		repo.Close()
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("Server stopped: %v", err)
		}
		p.done <- err
	}()
	return nil
}

func (p *server) Stop(s service.Service) error {
	if p.cancel == nil {
		return nil
	}
	p.cancel()
	err := <-p.done
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// wait blocks until a signal arrives or the server exits on its own
func (p *server) wait(sig <-chan os.Signal) {
	select {
	case s := <-sig:
		log.Printf("Received %v", s)
	case <-p.exited:
	}
}

// runForeground runs p outside any service manager
func runForeground(p *server, sig <-chan os.Signal) error {
	if err := p.Start(nil); err != nil {
		return err
	}
	p.wait(sig)
	return p.Stop(nil)
}

func notifySignals() <-chan os.Signal {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	return ch
}

func runService(action, cfgPath string, cfg config.Config) error {
	prg := &server{cfg: cfg}
	if action == "serve" && service.Interactive() {
		return runForeground(prg, notifySignals())
	}

	absCfg, err := filepath.Abs(cfgPath)
	if err != nil {
		return err
	}
	svc, err := service.New(prg, &service.Config{
		Name:        cfg.Service.Name,
		DisplayName: cfg.Service.DisplayName,
		Description: cfg.Service.Description,
		Arguments:   []string{"serve", "-config", absCfg},
		Option: service.KeyValue{
			// Run returns Stop's error once the server dies, so the manager sees the failure
			"RunWait": func() { prg.wait(notifySignals()) },
		},
	})
	if err != nil {
		return fmt.Errorf("create service: %w", err)
	}

	switch action {
	case "serve":
		return svc.Run()
	case "install", "uninstall":
		if err := service.Control(svc, action); err != nil {
			return fmt.Errorf("%s service %s: %w", action, cfg.Service.Name, err)
		}
		log.Printf("Service %s: %s done", cfg.Service.Name, action)
		return nil
	}
	return fmt.Errorf("unknown service action %q", action)
}

// serve runs the HTTP API on ln until ctx is cancelled or the server fails
func serve(ctx context.Context, ln net.Listener, repo port.UserRepository) error {
	state := &app.State{}
	state.Init()
	defer state.Teardown()

	h := httpadapter.NewHandler(account.NewService(repo, state), repo)
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	srv := &http.Server{
		Handler:           httpadapter.Logging(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Printf("=== userkit %s listening on %s ===", config.APIVersion, ln.Addr())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Printf("Shutting down, %d users registered this run", state.Count())
		return srv.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
