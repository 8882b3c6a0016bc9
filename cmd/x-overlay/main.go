package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/ItsNotGoodName/x-overlay/internal/api"
	"github.com/ItsNotGoodName/x-overlay/internal/build"
	"github.com/ItsNotGoodName/x-overlay/internal/config"
	"github.com/ItsNotGoodName/x-overlay/internal/console"
	"github.com/ItsNotGoodName/x-overlay/internal/core"
	"github.com/ItsNotGoodName/x-overlay/internal/monitor"
	"github.com/ItsNotGoodName/x-overlay/internal/overlay"
	"github.com/ItsNotGoodName/x-overlay/internal/slots"
	"github.com/ItsNotGoodName/x-overlay/internal/theme"
	"github.com/ItsNotGoodName/x-overlay/pkg/sutureext"
	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/joho/godotenv"
	"github.com/k0kubun/pp"
	consoleslog "github.com/phsym/console-slog"
	"github.com/spf13/cobra"
)

type Options struct {
	Debug    bool   `doc:"enable debug"`
	Host     string `doc:"host to listen on"`
	Port     int    `doc:"port to listen on" default:"8080"`
	Config   string `doc:"settings file (.yaml, .yml, .toml or .json)" default:".x-overlay.yaml"`
	ThemeDir string `doc:"directory with additional themes"`
	Target   string `doc:"title of the target window" default:"TEKKEN 8"`
	Stdin    bool   `doc:"forward stdin to the writable overlays"`
}

func main() {
	godotenv.Load()

	cli := humacli.New(func(hooks humacli.Hooks, options *Options) {
		level := logLevel(options.Debug)
		InitLogger(level)

		OnServe(hooks, func(ctx context.Context) error {
			a, err := newApp(options)
			if err != nil {
				return err
			}

			forwarder := console.NewForwarder(a.manager, console.DefaultQueueSize)
			InitLogger(level, forwarder)

			publisher := monitor.NewPublisher()

			super := sutureext.New("root")
			sutureext.Add(super, forwarder)
			sutureext.Add(super, slots.NewService(a.manager, publisher))
			sutureext.Add(super, monitor.NewX11(options.Target, publisher))
			sutureext.Add(super, config.NewWatcher(a.configPath, config.DefaultDebounce, func() {
				if err := a.reload(); err != nil {
					slog.Error("Failed to reload settings", "error", err)
					return
				}
				slog.Info("Reloaded settings", "file", a.configPath)
			}))
			if options.Stdin {
				sutureext.Add(super, console.Reader{Name: "stdin", R: os.Stdin, W: a.manager})
			}
			sutureext.Add(super, api.NewServer(options.Host, options.Port, api.NewRouter(api.NewHandler(a.manager, a.catalog, a.store))))

			return super.Serve(ctx)
		})
	})

	cli.Root().Version = build.Current.String()
	cli.Root().AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Load the settings and print the resulting overlays",
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, options *Options) {
			a, err := newApp(options)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			pp.Println(a.manager.Snapshot())
		}),
	})

	cli.Run()
}

type app struct {
	configPath string
	catalog    *theme.Catalog
	store      config.Store
	manager    *slots.Manager
}

func newApp(options *Options) (app, error) {
	configPath, err := filepath.Abs(options.Config)
	if err != nil {
		return app{}, err
	}

	catalog, err := loadCatalog(options.ThemeDir)
	if err != nil {
		return app{}, err
	}

	driver, err := config.NewDriver(configPath)
	if err != nil {
		return app{}, err
	}

	store, err := config.NewStore(driver)
	if err != nil {
		return app{}, err
	}

	a := app{
		configPath: configPath,
		catalog:    catalog,
		store:      store,
		manager:    slots.New(overlay.NewFactory(time.Now), catalog),
	}
	if err := a.reload(); err != nil {
		return app{}, err
	}

	return a, nil
}

func (a app) reload() error {
	settings, err := a.store.GetSettings()
	if err != nil {
		return err
	}
	return a.manager.Reload(settings)
}

func loadCatalog(themeDir string) (*theme.Catalog, error) {
	if themeDir == "" {
		return theme.Default()
	}

	exists, err := core.FileExists(themeDir)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("theme directory not found: %s", themeDir)
	}

	return theme.Default(os.DirFS(themeDir))
}

func logLevel(debug bool) slog.Level {
	if debug {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

// InitLogger logs to stderr and, without colors, to each writer in tees.
func InitLogger(level slog.Level, tees ...io.Writer) {
	handler := console.TeeHandler{
		consoleslog.NewHandler(os.Stderr, &consoleslog.HandlerOptions{
			Level: level,
		}),
	}
	for _, w := range tees {
		handler = append(handler, consoleslog.NewHandler(w, &consoleslog.HandlerOptions{
			Level:   slog.LevelInfo,
			NoColor: true,
		}))
	}
	slog.SetDefault(slog.New(handler))
}

func OnServe(hooks humacli.Hooks, serveFn func(ctx context.Context) error) {
	stopC := make(chan struct{})
	hooks.OnStart(func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		errC := make(chan error, 1)

		go func() { errC <- serveFn(ctx) }()

		select {
		case <-stopC:
			cancel()
		case err := <-errC:
			if err != nil && !errors.Is(err, context.Canceled) {
				log.Fatal(err)
			}
			return
		}

		<-errC
		<-stopC
	})
	hooks.OnStop(func() {
		stopC <- struct{}{}
		stopC <- struct{}{}
	})
}
