package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/mmcdole/kiosk/internal/adapter"
	"github.com/mmcdole/kiosk/internal/adapter/offline"
	"github.com/mmcdole/kiosk/internal/adapter/remote"
	"github.com/mmcdole/kiosk/internal/clock"
	"github.com/mmcdole/kiosk/internal/debounce"
	"github.com/mmcdole/kiosk/internal/domain"
	"github.com/mmcdole/kiosk/internal/obs"
	"github.com/mmcdole/kiosk/internal/service"
	"github.com/mmcdole/kiosk/internal/store"
	"github.com/mmcdole/kiosk/internal/tui"
)

// Version is set at build time via -ldflags
var Version = "dev"

const usage = `Usage: kiosk [flags] [command]

Commands:
  (none)    start the terminal UI
  init      write a default config file
  login     sign in from the command line
  logout    remove stored tokens
  whoami    show the signed-in user
  list      print one catalog page

Flags:
`

func main() {
	var (
		showVersion bool
		offlineMode bool
	)
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.BoolVar(&offlineMode, "offline", false, "use the built-in demo catalog")
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if showVersion {
		fmt.Printf("kiosk %s\n", Version)
		return
	}

	if err := run(flag.Args(), offlineMode); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, offlineMode bool) error {
	cmd := ""
	if len(args) > 0 {
		cmd = args[0]
		args = args[1:]
	}

	if cmd == "init" {
		return runInit()
	}

	cfg, err := adapter.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if offlineMode {
		cfg.Catalog.Offline = true
	}

	logger, closer, err := adapter.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = adapter.NullLogger()
	} else {
		defer closer.Close()
	}
	slog.SetDefault(logger)

	logger.Info("starting kiosk", "version", Version, "command", cmd, "offline", cfg.Catalog.Offline)

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	switch cmd {
	case "":
		return a.runTUI()
	case "login":
		return a.runLogin(args)
	case "logout":
		return a.runLogout()
	case "whoami":
		return a.runWhoami()
	case "list":
		return a.runList(args)
	default:
		flag.Usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// app holds the wired controllers shared by every command
type app struct {
	cfg      *adapter.Config
	logger   *slog.Logger
	tier     *store.BoltTier
	metrics  *obs.Metrics
	server   *http.Server
	notifier *service.Notifier
	session  *service.SessionController
	catalog  *service.CatalogController
	editor   *service.ProductEditor
}

func newApp(cfg *adapter.Config, logger *slog.Logger) (*app, error) {
	tier, err := store.OpenBoltTier(cfg.Storage.Path, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open credential store: %w", err)
	}
	creds := store.NewCredentials(tier, store.NewMemoryTier(), logger)

	a := &app{cfg: cfg, logger: logger, tier: tier}

	if cfg.Metrics.Addr != "" {
		a.metrics = obs.NewMetrics()
		a.serveMetrics()
	}

	var (
		auth     domain.AuthGateway
		products domain.ProductGateway
	)
	if cfg.Catalog.Offline {
		auth = offline.NewAuthGateway(offline.DefaultSecret, time.Duration(cfg.Auth.ExpiresInMins)*time.Minute, clock.Real(), logger)
		products = offline.NewProductGateway(nil, logger)
	} else {
		opts := []remote.Option{
			remote.WithTimeout(cfg.API.Timeout),
			remote.WithRateLimit(cfg.API.RateLimit, cfg.API.RateBurst),
		}
		if a.metrics != nil {
			opts = append(opts, remote.WithMetrics(a.metrics))
		}
		client := remote.NewClient(cfg.API.BaseURL, logger, opts...)
		auth = remote.NewAuthGateway(client, cfg.Auth.ExpiresInMins)
		products = remote.NewProductGateway(client)
	}

	a.notifier = service.NewNotifier(cfg.UI.NotifyDuration, nil)
	a.session = service.NewSessionController(auth, creds, a.notifier, logger,
		service.WithTokenExpiry(remote.TokenExpiry))
	a.catalog = service.NewCatalogController(products, cfg.Catalog.PageSize, logger)
	a.editor = service.NewProductEditor(a.catalog, a.notifier, logger)
	return a, nil
}

// serveMetrics exposes Prometheus metrics until Close
func (a *app) serveMetrics() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", a.metrics.Handler())
	a.server = &http.Server{
		Addr:              a.cfg.Metrics.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("metrics server failed", "addr", a.cfg.Metrics.Addr, "error", err)
		}
	}()
	a.logger.Info("serving metrics", "addr", a.cfg.Metrics.Addr)
}

func (a *app) Close() error {
	if a.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = a.server.Shutdown(ctx)
	}
	return a.tier.Close()
}

func (a *app) runTUI() error {
	model := tui.NewModel(tui.Deps{
		Session:   a.session,
		Catalog:   a.catalog,
		Editor:    a.editor,
		Notifier:  a.notifier,
		Debouncer: debounce.New(a.cfg.UI.SearchDebounce, nil),
		Logger:    a.logger,
	})

	p := tea.NewProgram(model, tea.WithAltScreen())

	a.logger.Info("starting TUI")

	if _, err := p.Run(); err != nil {
		a.logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	a.logger.Info("shutting down")
	return nil
}

func (a *app) runLogin(args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	remember := fs.Bool("remember", false, "keep the session after this terminal closes")
	if err := fs.Parse(args); err != nil {
		return err
	}

	reader := bufio.NewReader(os.Stdin)
	fmt.Print("Login: ")
	login, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to read login: %w", err)
	}
	login = strings.TrimSpace(login)

	// Prompt for password (hidden input)
	fmt.Print("Password: ")
	passwordBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	fmt.Println()

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.API.Timeout)
	defer cancel()

	if err := a.session.Login(ctx, login, string(passwordBytes), *remember); err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			return verr
		}
		return errors.New(domain.UserMessage(err))
	}

	s := a.session.Session()
	fmt.Printf("✓ Signed in as %s\n", s.Login)
	if !*remember {
		fmt.Println("  The session ends with this process; pass -remember to keep it.")
	}
	return nil
}

func (a *app) runLogout() error {
	if err := a.session.Logout(); err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}
	fmt.Println("✓ Logged out")
	return nil
}

// restore validates stored credentials or fails with a hint to log in
func (a *app) restore() (domain.Session, error) {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.API.Timeout)
	defer cancel()

	s := a.session.Validate(ctx)
	if !s.IsAuthenticated() {
		return s, fmt.Errorf("%w (run kiosk login -remember)", domain.ErrNotAuthenticated)
	}
	return s, nil
}

func (a *app) runWhoami() error {
	s, err := a.restore()
	if err != nil {
		return err
	}
	fmt.Printf("%s (id %s)\n", s.Login, s.UserID)
	if !s.ExpiresAt.IsZero() {
		fmt.Printf("access token expires %s\n", s.ExpiresAt.Local().Format(time.RFC1123))
	}
	return nil
}

func (a *app) runList(args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	page := fs.Int("page", 1, "page number")
	search := fs.String("search", "", "search text")
	sortBy := fs.String("sort", "", "sort field (name, price, rating, vendor, sku)")
	desc := fs.Bool("desc", false, "sort descending")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if _, err := a.restore(); err != nil {
		return err
	}

	switch {
	case *search != "":
		a.catalog.SetSearch(*search)
	case *sortBy != "":
		dir := domain.SortAsc
		if *desc {
			dir = domain.SortDesc
		}
		a.catalog.SetSort(domain.SortField(*sortBy), dir)
	}
	a.catalog.SetPage(*page)

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.API.Timeout)
	defer cancel()
	if err := a.catalog.Refetch(ctx); err != nil {
		return errors.New(domain.UserMessage(err))
	}

	st := a.catalog.State()
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tPRICE\tVENDOR\tSKU\tRATING")
	for _, p := range st.Items {
		fmt.Fprintf(w, "%s\t%s\t%.2f\t%s\t%s\t%.1f\n", p.ID, p.Name, p.Price, p.Vendor, p.SKU, p.Rating)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\npage %d/%d · %d products\n", st.Query.Page, max(st.PageCount(), 1), st.Total)
	return nil
}

func runInit() error {
	path, err := adapter.SaveConfig(adapter.DefaultConfig(), adapter.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	fmt.Printf("✓ Wrote %s\n", path)
	return nil
}
