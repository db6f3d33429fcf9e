package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/poku-e/hanover/internal/admin"
	"github.com/poku-e/hanover/internal/cart"
	"github.com/poku-e/hanover/internal/catalog"
	"github.com/poku-e/hanover/internal/view"
)

// ---------- Main ----------

func main() {
	var (
		addr          string
		apiURL        string
		dbPath        string
		adminID       string
		adminPassword string
		developer     string
		fetchTimeout  time.Duration
		sessionTTL    time.Duration
	)

	flag.StringVar(&addr, "addr", ":8080", "Listen address")
	flag.StringVar(&apiURL, "api", catalog.DefaultEndpoint, "Menu endpoint (JSON array or menu HTML page)")
	flag.StringVar(&dbPath, "db", "cart.db", "Path to the SQLite cart database")
	flag.StringVar(&adminID, "admin-id", "iits", "Admin ID")
	flag.StringVar(&adminPassword, "admin-password", "23", "Admin password")
	flag.StringVar(&developer, "developer", "Abdullah Al Mamun", "Name shown in the page footer")
	flag.DurationVar(&fetchTimeout, "fetch-timeout", 25*time.Second, "Timeout for the initial menu fetch")
	flag.DurationVar(&sessionTTL, "session-ttl", 30*time.Minute, "Admin session lifetime")
	flag.Parse()

	if !filepath.IsAbs(dbPath) {
		if abs, err := filepath.Abs(dbPath); err == nil {
			dbPath = abs
		}
	}

	logger := log.New(os.Stdout, "[menu] ", log.LstdFlags)

	storage, err := cart.OpenSQLite(dbPath)
	if err != nil {
		logger.Fatalf("open cart db: %v", err)
	}
	defer storage.Close()

	store := catalog.NewStore(&catalog.HTTPSource{
		URL:    apiURL,
		Client: catalog.NewHTTPClient(fetchTimeout),
	})

	srv := &server{
		store:     store,
		renderer:  view.Must(),
		cart:      cart.NewCounter(storage),
		auth:      admin.StaticCredentials{ID: adminID, Password: adminPassword},
		sessions:  admin.NewSessions(sessionTTL),
		logger:    logger,
		developer: developer,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Requests served before this finishes see an empty menu.
	go loadCatalog(ctx, store, logger, apiURL)

	logger.Printf("cart db: %s", dbPath)
	if err := serve(ctx, addr, srv.routes(), logger); err != nil {
		logger.Fatal(err)
	}
}

// loadCatalog performs the one startup fetch. Failures are logged and
// swallowed: the page stays usable and shows "Nothing Found".
func loadCatalog(ctx context.Context, store *catalog.Store, logger *log.Logger, apiURL string) {
	if err := store.Load(ctx); err != nil {
		logger.Printf("load menu from %s: %v", apiURL, err)
		return
	}
	logger.Printf("menu items: %d | categories: %v", store.Len(), store.Categories())
}

func serve(ctx context.Context, addr string, h http.Handler, logger *log.Logger) error {
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Printf("listening on %s", addr)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	logger.Printf("shutting down")
	return httpSrv.Shutdown(shutdownCtx)
}
