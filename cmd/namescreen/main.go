package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/pedrohavay/namescreen/api"
	"github.com/pedrohavay/namescreen/config"
	"github.com/pedrohavay/namescreen/internal/logging"
	"github.com/pedrohavay/namescreen/internal/report"
	"github.com/pedrohavay/namescreen/screen"
	"github.com/pedrohavay/namescreen/watchlist"
)

// Usage:
//   namescreen preprocess [name...]            < names.txt
//   namescreen verify -watchlist list.jsonl [name...]
//   namescreen ingest -watchlist list.jsonl    < names.txt
//   namescreen import-ftm -watchlist list.jsonl < entities.jsonl
//   namescreen convert -in list.csv -out list.msgpack
//   namescreen serve -config namescreen.yaml

// exitMatched is returned by verify when at least one name hit the watchlist.
const exitMatched = 3

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	cmd, args := os.Args[1], os.Args[2:]
	var err error
	switch cmd {
	case "preprocess":
		err = preprocess(args, os.Stdin, os.Stdout)
	case "verify":
		var matched bool
		matched, err = verify(args, os.Stdin, os.Stdout)
		if err == nil && matched {
			os.Exit(exitMatched)
		}
	case "ingest":
		err = ingest(args, os.Stdin, os.Stderr)
	case "import-ftm":
		err = importFtM(args, os.Stdin, os.Stderr)
	case "convert":
		err = convert(args)
	case "serve":
		err = serve(args)
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "namescreen commands: preprocess | verify | ingest | import-ftm | convert | serve\n")
}

// names returns args, or the non-blank lines of r when args is empty.
func names(args []string, r io.Reader) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			out = append(out, line)
		}
	}
	return out, sc.Err()
}

type watchlistFlags struct {
	path   *string
	format *string
	key    *string
}

func addWatchlistFlags(fs *flag.FlagSet) watchlistFlags {
	return watchlistFlags{
		path:   fs.String("watchlist", "watchlist.jsonl", "watchlist snapshot file"),
		format: fs.String("format", "", "snapshot format: jsonl, csv, msgpack or yaml (default: from extension)"),
		key:    fs.String("key", "", "HMAC key entries are signed with"),
	}
}

func (wf watchlistFlags) open() (*watchlist.FileStore, error) {
	f, err := formatOf(*wf.format, *wf.path)
	if err != nil {
		return nil, err
	}
	return watchlist.OpenFile(*wf.path, f, watchlist.NewSigner(*wf.key), nil)
}

// errKeyRequired stops a keyless run from mixing unsigned entries into a
// signed snapshot, which the next keyed load would reject.
var errKeyRequired = errors.New("watchlist entries are signed: pass -key to modify it")

// openWritable opens the watchlist for commands that save it back.
func (wf watchlistFlags) openWritable() (*watchlist.FileStore, error) {
	store, err := wf.open()
	if err != nil {
		return nil, err
	}
	if store.Signed() && !store.Signer().Enabled() {
		return nil, errKeyRequired
	}
	return store, nil
}

func preprocess(args []string, stdin io.Reader, stdout io.Writer) error {
	in, err := names(args, stdin)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(stdout)
	defer bw.Flush()
	for _, n := range in {
		fmt.Fprintln(bw, screen.Preprocess(n))
	}
	return nil
}

func verify(args []string, stdin io.Reader, stdout *os.File) (bool, error) {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	wf := addWatchlistFlags(fs)
	asJSON := fs.Bool("json", false, "print one JSON result per line")
	noColor := fs.Bool("no-color", false, "disable coloured output")
	_ = fs.Parse(args)

	store, err := wf.open()
	if err != nil {
		return false, err
	}
	in, err := names(fs.Args(), stdin)
	if err != nil {
		return false, err
	}
	return verifyNames(in, store.Candidates(), stdout, *asJSON, *noColor || !term.IsTerminal(int(stdout.Fd())))
}

func verifyNames(in []string, candidates []screen.Candidate, w io.Writer, asJSON, noColor bool) (bool, error) {
	rw := report.NewWriter(w, asJSON, noColor)
	matched := false
	for _, n := range in {
		res := screen.Verify(n, candidates)
		matched = matched || res.IsSanctioned
		if err := rw.Write(n, res); err != nil {
			return matched, err
		}
	}
	return matched, nil
}

func ingest(args []string, stdin io.Reader, stderr io.Writer) error {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	wf := addWatchlistFlags(fs)
	_ = fs.Parse(args)

	store, err := wf.openWritable()
	if err != nil {
		return err
	}
	in, err := names(fs.Args(), stdin)
	if err != nil {
		return err
	}
	added := addNames(store.Store, in, stderr)
	if err := store.Save(); err != nil {
		return err
	}
	fmt.Fprintf(stderr, "%d names added, %d total\n", added, store.Len())
	return nil
}

// addNames stores every valid name and reports the rest on stderr.
func addNames(store *watchlist.Store, in []string, stderr io.Writer) int {
	added := 0
	for _, n := range in {
		if _, err := store.Add(n); err != nil {
			fmt.Fprintf(stderr, "skipping %q: %v\n", n, err)
			continue
		}
		added++
	}
	return added
}

func importFtM(args []string, stdin io.Reader, stderr io.Writer) error {
	fs := flag.NewFlagSet("import-ftm", flag.ExitOnError)
	wf := addWatchlistFlags(fs)
	in := fs.String("in", "", "FtM entities JSON lines file (default: stdin)")
	_ = fs.Parse(args)

	store, err := wf.openWritable()
	if err != nil {
		return err
	}
	r := stdin
	if *in != "" {
		f, err := os.Open(*in)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	added, err := importEntities(store.Store, r, stderr)
	if err != nil {
		return err
	}
	if err := store.Save(); err != nil {
		return err
	}
	fmt.Fprintf(stderr, "%d names imported, %d total\n", added, store.Len())
	return nil
}

func importEntities(store *watchlist.Store, r io.Reader, stderr io.Writer) (int, error) {
	added := 0
	err := watchlist.ReadFtMNames(r, func(entityID, name string) error {
		if _, err := store.Add(name); err != nil {
			if errors.Is(err, watchlist.ErrInvalidName) {
				fmt.Fprintf(stderr, "skipping %s: %v\n", entityID, err)
				return nil
			}
			return err
		}
		added++
		return nil
	})
	return added, err
}

func convert(args []string) error {
	fs := flag.NewFlagSet("convert", flag.ExitOnError)
	in := fs.String("in", "", "source snapshot")
	out := fs.String("out", "", "destination snapshot")
	inFormat := fs.String("in-format", "", "source format (default: from extension)")
	outFormat := fs.String("out-format", "", "destination format (default: from extension)")
	key := fs.String("key", "", "HMAC key the source entries are signed with")
	sign := fs.String("sign", "", "re-sign entries with this HMAC key")
	_ = fs.Parse(args)
	if *in == "" || *out == "" {
		return errors.New("convert needs -in and -out")
	}
	src, err := formatOf(*inFormat, *in)
	if err != nil {
		return err
	}
	dst, err := formatOf(*outFormat, *out)
	if err != nil {
		return err
	}

	if _, err := os.Stat(*in); err != nil {
		return err
	}
	store, err := watchlist.OpenFile(*in, src, watchlist.NewSigner(*key), nil)
	if err != nil {
		return err
	}
	entries := store.All()
	if *sign != "" {
		s := watchlist.NewSigner(*sign)
		for i := range entries {
			entries[i] = s.Sign(entries[i])
		}
	}
	f, err := os.Create(*out)
	if err != nil {
		return err
	}
	if err := watchlist.Write(f, dst, entries); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func formatOf(explicit, path string) (watchlist.Format, error) {
	if explicit != "" {
		return watchlist.ParseFormat(explicit)
	}
	return watchlist.ParseFormat(path)
}

func serve(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	cfgPath := fs.String("config", "", "YAML config file (default: $"+config.EnvPath+")")
	addr := fs.String("addr", "", "listen address, overrides the config")
	_ = fs.Parse(args)

	var cfg *config.Config
	var err error
	if *cfgPath != "" {
		cfg, err = config.Load(*cfgPath)
	} else {
		cfg, err = config.Default()
	}
	if err != nil {
		return err
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	logger, err := logging.New(logging.Options{
		File:  cfg.Log.File,
		JSON:  cfg.Log.JSON,
		Async: cfg.Log.Async,
		Level: cfg.LogLevel(),
	})
	if err != nil {
		return err
	}
	defer logger.Close()

	format, err := cfg.WatchlistFormat()
	if err != nil {
		return err
	}
	store, err := watchlist.OpenFile(cfg.Watchlist.Path, format, watchlist.NewSigner(cfg.Watchlist.SigningKey), logger)
	if err != nil {
		return err
	}
	store.Autosave = cfg.Watchlist.Autosave
	if store.Autosave && store.Signed() && !store.Signer().Enabled() {
		return fmt.Errorf("autosave: %w", errKeyRequired)
	}
	if store.Len() == 0 && len(cfg.Seed) > 0 {
		n := addNames(store.Store, cfg.Seed, os.Stderr)
		logger.Info("Watchlist seeded", "entries", n)
		if store.Autosave {
			if err := store.Save(); err != nil {
				return err
			}
		}
	}

	srv := api.NewServer(store, logger, api.Options{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		MaxBodySize:  cfg.Server.MaxBodySize,
		MaxConns:     cfg.Server.MaxConns,
		Trace:        cfg.Log.Trace,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := srv.ListenAndServe(ctx, cfg.Server.Addr); err != nil {
		logger.Error("Server failed", "error", err)
		return err
	}
	logger.Info("Server stopped")
	return nil
}
