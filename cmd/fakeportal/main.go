// Command fakeportal serves the demo backend used for local development of
// the e-Doctorat client.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-edoctorat/internal/config"
	"github.com/jrsteele09/go-edoctorat/internal/fakeportal"
	"github.com/jrsteele09/go-edoctorat/internal/logging"
	"github.com/rs/zerolog/log"
)

func main() {
	for {
		if err := run(); err != nil {
			log.Error().Err(err).Msg("Error running server")
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Info().Msg("Server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Msgf("Recovered from panic: %v", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	logging.Init(logging.Config{Level: config.GetEnv("LOG_LEVEL", "info"), Format: c.GetLogFormat()})
	displayAppname(c.GetAppName() + " demo")

	handler, err := newPortal(c)
	if err != nil {
		return err
	}
	server := &http.Server{Addr: config.GetEnv("FAKEPORTAL_ADDR", ":8000"), Handler: handler}
	errs := make(chan error, 1)
	go func() { errs <- listenAndServe(server) }()
	select {
	case err := <-errs:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(server)
}

// newPortal builds the demo backend. Google sign-in is mounted under /oidc
// when a client id is configured.
func newPortal(c config.Config) (*fakeportal.Portal, error) {
	opts := []fakeportal.Option{fakeportal.WithDataset(fakeportal.DemoDataset())}
	if clientID := c.GetGoogleClientID(); clientID != "" {
		idp, err := fakeportal.NewIdentityProvider(clientID, config.GetEnv("FAKEPORTAL_GOOGLE_EMAIL", "s.bennani@uae.ac.ma"))
		if err != nil {
			return nil, fmt.Errorf("fakeportal.NewIdentityProvider: %w", err)
		}
		opts = append(opts, fakeportal.WithIdentityProvider(idp))
	}
	p, err := fakeportal.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("fakeportal.New: %w", err)
	}
	if err := p.Seed(fakeportal.DemoAccounts()); err != nil {
		return nil, fmt.Errorf("fakeportal.Seed: %w", err)
	}
	for _, account := range fakeportal.DemoAccounts() {
		log.Info().Str("email", account.User.Email).Strs("roles", account.User.Roles).Msg("demo account")
	}
	return p, nil
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("Server listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
