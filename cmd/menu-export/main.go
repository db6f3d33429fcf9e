// menu-export fetches the remote menu and writes it to a spreadsheet.
//
// Usage examples:
//
//	go run ./cmd/menu-export --out menu.csv
//	go run ./cmd/menu-export --out menu.xlsx --category coffee
//	go run ./cmd/menu-export --url "http://localhost:8080/" --out menu.xlsx --q latte
//
// A JSON endpoint and a rendered menu page are both accepted as --url.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/poku-e/hanover/internal/catalog"
	"github.com/poku-e/hanover/internal/export"
)

// ---------- Main ----------
func main() {
	var (
		pageURL  string
		outPath  string
		category string
		query    string
	)
	flag.StringVar(&pageURL, "url", catalog.DefaultEndpoint, "Menu endpoint or page to fetch")
	flag.StringVar(&outPath, "out", "", "Output file path (.csv or .xlsx) (required)")
	flag.StringVar(&category, "category", catalog.CategoryAll, "Only export this category")
	flag.StringVar(&query, "q", "", "Only export items whose name contains this text")
	flag.Parse()

	if outPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	n, err := run(ctx, &catalog.HTTPSource{
		URL:      pageURL,
		Client:   catalog.NewHTTPClient(25 * time.Second),
		Backoffs: catalog.RetryBackoffs,
	}, outPath, category, query)
	if err != nil {
		fatal(err)
	}
	fmt.Printf("OK: %d items -> %s\n", n, outPath)
}

func run(ctx context.Context, src catalog.Source, outPath, category, query string) (int, error) {
	store := catalog.NewStore(src)
	if err := store.Load(ctx); err != nil {
		return 0, err
	}
	if store.Len() == 0 {
		return 0, errors.New("fetched 0 items; check the url")
	}
	items := catalog.Search(store.FilterByCategory(category), query)
	if err := export.Write(outPath, items); err != nil {
		return 0, err
	}
	return len(items), nil
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
	os.Exit(1)
}
