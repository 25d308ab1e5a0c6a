package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"storefront-backend/internal/config"
	"storefront-backend/internal/db"
	"storefront-backend/internal/filestore"
	"storefront-backend/internal/httpserver"
	cartrepo "storefront-backend/internal/repository/cart"
	categoryrepo "storefront-backend/internal/repository/category"
	orderrepo "storefront-backend/internal/repository/order"
	productrepo "storefront-backend/internal/repository/product"
	refreshrepo "storefront-backend/internal/repository/refreshtoken"
	subcategoryrepo "storefront-backend/internal/repository/subcategory"
	userrepo "storefront-backend/internal/repository/user"
	authsvc "storefront-backend/internal/service/auth"
	cartsvc "storefront-backend/internal/service/cart"
	catalogsvc "storefront-backend/internal/service/catalog"
	ordersvc "storefront-backend/internal/service/order"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	files, err := filestore.New(cfg.UploadDir, logger)
	if err != nil {
		logger.Fatalf("init filestore: %v", err)
	}

	categoryRepo := categoryrepo.NewPostgres(dbpool)
	subcategoryRepo := subcategoryrepo.NewPostgres(dbpool)
	productRepo := productrepo.NewPostgres(dbpool, logger)
	cartRepo := cartrepo.NewPostgres(dbpool)
	orderRepo := orderrepo.NewPostgres(dbpool, logger)
	userRepo := userrepo.NewPostgres(dbpool, logger)
	refreshRepo := refreshrepo.NewPostgres(dbpool)

	catalogService := catalogsvc.New(categoryRepo, subcategoryRepo, productRepo, files)
	cartService := cartsvc.New(cartRepo)
	orderService := ordersvc.New(orderRepo)
	authService := authsvc.New(userRepo, refreshRepo, cfg.JWTSecret, cfg.JWTExpiry)

	srv := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		Auth:        authService,
		Catalog:     catalogService,
		Cart:        cartService,
		Orders:      orderService,
		Files:       files,
		FileURLHost: cfg.FileURLHost,
		CORSOrigins: cfg.CORSOrigins,
	})

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}
