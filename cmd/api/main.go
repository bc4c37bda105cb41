package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/recyclehub/recyclehub/internal/collection"
	collectionStore "github.com/recyclehub/recyclehub/internal/collection/store"
	"github.com/recyclehub/recyclehub/internal/config"
	recycleHttp "github.com/recyclehub/recyclehub/internal/http"
	authHandler "github.com/recyclehub/recyclehub/internal/http/auth"
	collectionHandler "github.com/recyclehub/recyclehub/internal/http/collection"
	pointsHandler "github.com/recyclehub/recyclehub/internal/http/points"
	voucherHandler "github.com/recyclehub/recyclehub/internal/http/voucher"
	"github.com/recyclehub/recyclehub/internal/identity"
	"github.com/recyclehub/recyclehub/internal/photo"
	"github.com/recyclehub/recyclehub/internal/points"
	pointsStore "github.com/recyclehub/recyclehub/internal/points/store"
	"github.com/recyclehub/recyclehub/internal/storage"
	"github.com/recyclehub/recyclehub/internal/user"
	userStore "github.com/recyclehub/recyclehub/internal/user/store"
	"github.com/recyclehub/recyclehub/internal/voucher"
	voucherStore "github.com/recyclehub/recyclehub/internal/voucher/store"
	"github.com/recyclehub/recyclehub/internal/workflow"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	store, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		slog.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	var (
		pointsService     = points.NewService(pointsStore.New(store), cfg.Points.PerKg, cfg.Points.Tiers)
		collectionService = collection.NewService(collectionStore.New(store), pointsService)
		userService       = user.NewService(userStore.New(store))
		voucherIssuer     = voucher.NewIssuer(pointsService, voucherStore.New(store), cfg.Voucher.Validity)
		flow              = workflow.New(collectionService)
		sessions          = identity.NewManager(cfg.Auth.Secret, cfg.Auth.TokenTTL)
		ingestor          = photo.NewIngestor(cfg.Photo.MaxBytes)
	)

	if err := seedCollectors(context.Background(), userService); err != nil {
		slog.Error("failed to seed collector accounts", "error", err)
		os.Exit(1)
	}

	validate := validator.New()

	var (
		authH       = authHandler.NewHandler(userService, sessions, validate)
		collectionH = collectionHandler.NewHandler(flow, ingestor, validate)
		pointsH     = pointsHandler.NewHandler(pointsService)
		voucherH    = voucherHandler.NewHandler(voucherIssuer, userService, validate)
	)

	router := recycleHttp.New(sessions, authH, collectionH, pointsH, voucherH)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	slog.Info("starting server", "port", port)

	if err := http.ListenAndServe(port, router); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

// seedCollectors provisions the collector accounts on first boot. Collectors
// cannot self-register; the demo ships with a fixed crew.
func seedCollectors(ctx context.Context, users *user.Service) error {
	seeds := []user.RegisterParams{
		{
			FirstName: "Karim",
			LastName:  "Alaoui",
			Email:     "karim.collecteur@recyclehub.ma",
			Password:  "collecteur1",
			City:      "Marrakech",
			Role:      user.RoleCollector,
		},
		{
			FirstName: "Samira",
			LastName:  "Bennis",
			Email:     "samira.collecteur@recyclehub.ma",
			Password:  "collecteur2",
			City:      "Casablanca",
			Role:      user.RoleCollector,
		},
	}

	for _, seed := range seeds {
		if _, err := users.Register(ctx, seed); err != nil && !errors.Is(err, user.ErrEmailTaken) {
			return err
		}
	}

	return nil
}
