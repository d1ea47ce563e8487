package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/google/uuid"

	"github.com/aydinterzi/sisyphus-game/internal/camera"
	"github.com/aydinterzi/sisyphus-game/internal/character"
	"github.com/aydinterzi/sisyphus-game/internal/config"
	"github.com/aydinterzi/sisyphus-game/internal/debug"
	"github.com/aydinterzi/sisyphus-game/internal/event"
	"github.com/aydinterzi/sisyphus-game/internal/game"
	"github.com/aydinterzi/sisyphus-game/internal/input"
	"github.com/aydinterzi/sisyphus-game/internal/logger"
	"github.com/aydinterzi/sisyphus-game/internal/scene"
	"github.com/aydinterzi/sisyphus-game/internal/schedule"
	"github.com/aydinterzi/sisyphus-game/internal/view"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to the YAML config")
	mode := flag.String("mode", "", "front end, view or console (overrides the config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			slog.Error("Failed to load config", "path", *configPath, "error", err)
			os.Exit(1)
		}
		cfg = config.Default()
	}
	if *mode != "" {
		cfg.Mode = *mode
		if err := cfg.Validate(); err != nil {
			slog.Error("Invalid mode", "error", err)
			os.Exit(1)
		}
	}

	// Both front ends own the terminal, so logs only go to a file.
	if err := logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: io.Discard,
		File:   cfg.Logging.File,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "logging disabled: %v\n", err)
	}
	defer logger.Close()
	log := logger.L().With("run", uuid.NewString())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("Exited with error", "error", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	params, err := cfg.Controller.Params()
	if err != nil {
		return err
	}
	keys, err := cfg.Input.Keymap()
	if err != nil {
		return err
	}
	sc, err := scene.Build(cfg.Scene.Scene())
	if err != nil {
		return err
	}

	bus := event.NewBus()
	logEvents(bus, log)

	clock := schedule.New()
	roster := character.New(sc.Physics, clock,
		character.WithParams(params),
		character.WithBus(bus),
		character.WithLogger(log),
	)
	player, err := roster.Spawn(sc.Player)
	if err != nil {
		return fmt.Errorf("spawn player: %w", err)
	}

	cam := camera.New(cfg.Camera.StartPosition(), cfg.Camera.FOV)
	pulser := input.NewPulser(cfg.Input.Pulse)
	loop := game.New(clock, pulser, roster, sc.Physics, cam,
		game.WithTickRate(cfg.Loop.TickRate),
		game.WithLogger(log),
	)
	loop.Observe(func(f game.Frame) {
		c, ok := roster.Get(player.Name)
		if !ok || !sc.OutOfBounds(c.Body.Position()) {
			return
		}
		log.Info("Character fell out of the arena", "character", c.Name, "at", f.Now)
		if err := roster.Respawn(c.Name); err != nil {
			log.Warn("Respawn failed", "character", c.Name, "error", err)
		}
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	loopErr := make(chan error, 1)
	go func() { loopErr <- loop.Run(ctx) }()

	log.Info("Started", "mode", cfg.Mode, "tick_rate", cfg.Loop.TickRate, "player", player.Name)

	var frontErr error
	switch cfg.Mode {
	case config.ModeConsole:
		frontErr = debug.NewConsole(loop, roster, pulser, keys, player.Name).Start(ctx)
	default:
		screen, err := tcell.NewScreen()
		if err != nil {
			frontErr = fmt.Errorf("open terminal: %w", err)
			break
		}
		frontErr = view.New(screen, loop, roster, pulser, keys, player.Name).Run(ctx)
	}

	cancel()
	if err := <-loopErr; err != nil {
		return err
	}
	log.Info("Stopped", "frames", loop.Ticks())
	return frontErr
}

func logEvents(bus *event.Bus, log *slog.Logger) {
	for _, name := range []string{
		event.EventCharacterSpawn,
		event.EventCharacterDespawn,
		event.EventCharacterJump,
		event.EventCharacterDash,
		event.EventCharacterDashReady,
		event.EventCharacterLand,
		event.EventCharacterAirborne,
	} {
		bus.Subscribe(name, func(raw any) {
			evt, ok := raw.(event.CharacterEvent)
			if !ok {
				return
			}
			log.Debug("Character event", "event", name, "character", evt.Name, "at", evt.At, "position", evt.Position)
		})
	}
}
