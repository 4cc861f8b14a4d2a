// Command catalog-fetch looks up tracks and artists in the catalog API and
// prints them, optionally saving them to the library or serving lookups over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	nested "github.com/antonfisher/nested-logrus-formatter"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/justestif/go-spotify-catalog/internal/auth"
	"github.com/justestif/go-spotify-catalog/internal/catalog"
	"github.com/justestif/go-spotify-catalog/internal/model"
	"github.com/justestif/go-spotify-catalog/internal/store"
	librarysync "github.com/justestif/go-spotify-catalog/internal/sync"
	"github.com/justestif/go-spotify-catalog/internal/web"
)

// Tracks fetched when no ids are given on the command line.
const defaultTrack = "0871AdnvzzSGr5XdTJaDHC"

var defaultBatch = []string{
	"3mXLyNsVeLelMakgpGUp1f",
	"367IrkRR4wk5WtSL41rONn",
	"1GxzaUNoSvzNqL4JB9ztXq",
}

type options struct {
	artist  string
	market  string
	save    bool
	serve   bool
	sync    bool
	addr    string
	noCache bool
	verbose bool
	ids     []string
}

func main() {
	var opts options
	flag.StringVar(&opts.artist, "artist", "", "print details of this artist instead of fetching tracks")
	flag.StringVar(&opts.market, "market", "", "ISO 3166-1 country code used for track relinking")
	flag.BoolVar(&opts.save, "save", false, "save fetched entities to the library (requires DATABASE_URL)")
	flag.BoolVar(&opts.serve, "serve", false, "serve lookups over HTTP instead of printing")
	flag.BoolVar(&opts.sync, "sync", false, "fetch stale partial library entries again and save them as full (requires DATABASE_URL)")
	flag.StringVar(&opts.addr, "addr", web.DefaultAddr, "listen address for -serve")
	flag.BoolVar(&opts.noCache, "no-cache", false, "do not read or write the token cache")
	flag.BoolVar(&opts.verbose, "v", false, "enable debug logging")
	flag.Parse()
	opts.ids = flag.Args()

	log := newLogger(os.Stderr, opts.verbose)

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warnf("Error loading .env file: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, os.Stdout, log); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func newLogger(out io.Writer, verbose bool) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetFormatter(&nested.Formatter{
		HideKeys:        true,
		FieldsOrder:     []string{"module", "path"},
		TimestampFormat: "15:04:05",
	})
	if verbose {
		l.SetLevel(logrus.DebugLevel)
	}
	return l
}

func run(ctx context.Context, opts options, out io.Writer, log *logrus.Logger) error {
	authCfg, err := auth.LoadConfig()
	if err != nil {
		return err
	}
	catalogCfg, err := catalog.LoadConfig()
	if err != nil {
		return err
	}

	authOpts := []auth.Option{auth.WithLogger(log)}
	if !opts.noCache {
		cache, err := auth.DefaultTokenCache()
		if err != nil {
			return fmt.Errorf("creating token cache: %w", err)
		}
		authOpts = append(authOpts, auth.WithTokenCache(cache))
	}
	httpClient, err := auth.New(authCfg, authOpts...).Authenticate(ctx)
	if err != nil {
		return fmt.Errorf("authenticating: %w", err)
	}
	client := catalog.New(httpClient, catalogCfg, catalog.WithLogger(log))

	var library *store.LibraryRepository
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" && (opts.save || opts.serve || opts.sync) {
		db, err := store.New(ctx, dbURL)
		if err != nil {
			return fmt.Errorf("opening library: %w", err)
		}
		defer db.Close()
		if err := db.Migrate(ctx); err != nil {
			return err
		}
		library = db.Library()
	} else if opts.save || opts.sync {
		return errors.New("-save and -sync require DATABASE_URL")
	}

	if opts.sync {
		results, err := librarysync.New(library, client, librarysync.WithLogger(log)).SyncAll(ctx)
		if err != nil {
			return fmt.Errorf("syncing library: %w", err)
		}
		for _, r := range results {
			fmt.Fprintf(out, "%-8s checked %d, upgraded %d, missing %d\n", r.Kind, r.Checked, r.Upgraded, r.Missing)
		}
		return nil
	}

	if opts.serve {
		cfg := web.ServerConfig{Addr: opts.addr, Catalog: client, Logger: log}
		if library != nil {
			cfg.Library = library
		}
		return web.NewServer(cfg).Run(ctx)
	}

	if opts.artist != "" {
		if library == nil {
			artist, err := client.Artist(ctx, opts.artist)
			if err != nil {
				return err
			}
			printArtist(out, artist)
			return nil
		}

		artists, err := librarysync.New(library, client, librarysync.WithLogger(log)).CachedArtists(ctx, []string{opts.artist})
		if err != nil {
			return err
		}
		if len(artists) == 0 {
			return fmt.Errorf("artist %s: %w", opts.artist, catalog.ErrNotFound)
		}
		printArtist(out, artists[0])
		return nil
	}

	var reqOpts []catalog.RequestOption
	if opts.market != "" {
		reqOpts = append(reqOpts, catalog.WithMarket(opts.market))
	}

	first, batch := defaultTrack, defaultBatch
	if len(opts.ids) > 0 {
		first, batch = opts.ids[0], opts.ids[1:]
	}

	track, err := client.Track(ctx, first, reqOpts...)
	if err != nil {
		return err
	}
	tracks := []model.Track{track}

	if len(batch) > 0 {
		more, err := client.Tracks(ctx, batch, reqOpts...)
		if err != nil {
			return err
		}
		tracks = append(tracks, more...)
	}

	for _, t := range tracks {
		fmt.Fprintln(out, formatTrack(t))
		if library != nil {
			if _, err := library.SaveTrack(ctx, t); err != nil {
				return err
			}
		}
	}
	return nil
}
