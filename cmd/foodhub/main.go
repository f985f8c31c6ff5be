package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"foodhub/internal/adapter/backend"
	boltrepo "foodhub/internal/adapter/repository"
	"foodhub/internal/domain/repository"
	"foodhub/internal/infrastructure/chathub"
	"foodhub/internal/usecase"
	"foodhub/pkg/config"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "foodhub",
	Short: "FoodHub - campus food ordering from your terminal",
	Long: `FoodHub is the command line client for the FoodHub campus food
ordering marketplace: manage your cart, keep it in sync with the backend,
and chat with sellers in realtime.`,
	SilenceUsage: true,
}

// app wires the subsystems the way the UI tree would: one store, one
// session, one cart engine, one chat client per process.
type app struct {
	cfg      *config.Config
	store    *boltrepo.Store
	sessions repository.SessionRepository
	cart     *usecase.CartUseCase
	chat     *chathub.Client
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	store, err := boltrepo.NewStore(cfg.DataDir)
	if err != nil {
		return nil, err
	}

	sessions := boltrepo.NewBoltSessionRepository(store)
	localCart := boltrepo.NewBoltCartRepository(store)
	cartAPI := backend.NewCartClient(cfg.APIBaseURL, cfg.HTTPTimeout)

	return &app{
		cfg:      cfg,
		store:    store,
		sessions: sessions,
		cart:     usecase.NewCartUseCase(cartAPI, localCart, sessions),
		chat: chathub.NewClient(chathub.Options{
			HubURL:               cfg.ChatHubURL,
			MaxReconnectAttempts: cfg.ReconnectMaxAttempts,
			ReconnectBaseDelay:   cfg.ReconnectBaseDelay,
			ReconnectMaxDelay:    cfg.ReconnectMaxDelay,
		}),
	}, nil
}

func (a *app) close() {
	a.chat.Disconnect()
	a.store.Close()
}

func init() {
	rootCmd.AddCommand(loginCmd, logoutCmd, cartCmd, chatCmd)
}
