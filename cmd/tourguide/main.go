// Package main provides the tour player entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"

	"github.com/jscyril/tourguide/internal/audio"
	"github.com/jscyril/tourguide/internal/catalog"
	"github.com/jscyril/tourguide/internal/config"
	"github.com/jscyril/tourguide/internal/logger"
	"github.com/jscyril/tourguide/internal/player"
	"github.com/jscyril/tourguide/internal/ui"
	"github.com/jscyril/tourguide/internal/ui/components"
)

var (
	app        = kingpin.New("tourguide", "Terminal audio tour player")
	configPath = app.Flag("config", "Config file path").Envar("TOURGUIDE_CONFIG").String()
	verbose    = app.Flag("verbose", "Enable debug logging").Short('v').Bool()
	logFile    = app.Flag("logfile", "Log file path").String()

	// play command
	playCmd = app.Command("play", "Play the tour").Default()

	// list command
	listCmd = app.Command("list", "List the tour stops").Alias("ls")

	// import command
	importCmd     = app.Command("import", "Build a tour catalog from a directory of audio files")
	importDir     = importCmd.Arg("dir", "Directory to scan").Required().ExistingDir()
	importOut     = importCmd.Flag("out", "Output catalog file (stdout when empty)").Short('o').String()
	importTitle   = importCmd.Flag("title", "Tour title").Default("Audio Tour").String()
	importWorkers = importCmd.Flag("workers", "Concurrent file readers").Default("4").Int()
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	if err := run(command); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if hint := errors.FlattenHints(err); hint != "" {
			fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
		}
		os.Exit(1)
	}
}

func run(command string) error {
	path := *configPath
	if path == "" {
		path = config.GetConfigPath()
	}
	cfg, err := config.LoadOrCreate(path)
	if err != nil {
		return errors.Wrap(err, "load config")
	}

	logCfg := logger.Config{
		Output:  cfg.Log.Output,
		Level:   cfg.Log.Level,
		File:    cfg.Log.File,
		Session: uuid.NewString(),
	}
	if *verbose {
		logCfg.Level = "debug"
	}
	if *logFile != "" {
		logCfg.Output = "file"
		logCfg.File = *logFile
	}
	closer, err := logger.Init(logCfg)
	if err != nil {
		return errors.Wrap(err, "init logger")
	}
	defer closer.Close()

	zlog.Info().Str("command", command).Str("config", path).Msg("starting tourguide")

	// Setup context with graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	switch command {
	case listCmd.FullCommand():
		return list(cfg)
	case importCmd.FullCommand():
		return importCatalog(ctx)
	default:
		return play(ctx, cfg)
	}
}

func loadCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	if cfg.CatalogPath == "" {
		return catalog.Default(), nil
	}
	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return nil, errors.Wrapf(err, "load catalog %s", cfg.CatalogPath)
	}
	return cat, nil
}

func play(ctx context.Context, cfg *config.Config) error {
	cat, err := loadCatalog(cfg)
	if err != nil {
		return err
	}
	zlog.Info().Str("tour", cat.Title()).Int("tracks", cat.Len()).Msg("catalog loaded")

	engine := audio.NewEngine(audio.Config{
		ProgressInterval: cfg.Playback.ProgressInterval(),
		Buffer:           cfg.Playback.Buffer(),
	}, audio.NewSourceLoader(cfg.Playback.FetchTimeout()), audio.SpeakerOutput{})
	engine.Start(ctx)

	ctrl, err := player.NewController(cat, engine)
	if err != nil {
		return errors.Wrap(err, "create controller")
	}

	if err := ui.Run(ctx, ctrl, engine.Events(), cfg); err != nil {
		return errors.Wrap(err, "run ui")
	}
	zlog.Info().Msg("tourguide stopped")
	return nil
}

func list(cfg *config.Config) error {
	cat, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	fmt.Printf("\n=== %s ===\n\n", cat.Title())
	for _, t := range cat.Tracks() {
		audioNote := ""
		if !t.Audio.Available() {
			audioNote = "  (no audio)"
		}
		fmt.Printf("%3d. %-40s %6s%s\n", t.ID, t.Title, components.FormatDuration(t.Duration), audioNote)
		if t.Subtitle != "" {
			fmt.Printf("     %s\n", t.Subtitle)
		}
	}
	fmt.Println()
	return nil
}

func importCatalog(ctx context.Context) error {
	cat, err := catalog.NewImporter(*importWorkers).Import(ctx, *importDir, *importTitle)
	if err != nil {
		return errors.Wrapf(err, "import %s", *importDir)
	}

	out := os.Stdout
	if *importOut != "" {
		f, err := os.Create(*importOut)
		if err != nil {
			return errors.Wrap(err, "create catalog file")
		}
		defer f.Close()
		out = f
	}

	if err := cat.Encode(out); err != nil {
		return errors.Wrap(err, "write catalog")
	}
	zlog.Info().Int("tracks", cat.Len()).Str("dir", *importDir).Msg("catalog imported")
	return nil
}
