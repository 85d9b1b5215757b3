// SPDX-FileCopyrightText: 2025 The Arch Manager Authors
// SPDX-License-Identifier: EUPL-1.2

// Package cli wires the command tree onto the application services.
package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"

	"github.com/mttk2004/arch-manager/internal/adapters/arch"
	"github.com/mttk2004/arch-manager/internal/adapters/platform"
	"github.com/mttk2004/arch-manager/internal/application"
	"github.com/mttk2004/arch-manager/internal/batch"
	"github.com/mttk2004/arch-manager/internal/bridge"
	"github.com/mttk2004/arch-manager/internal/catalog"
	"github.com/mttk2004/arch-manager/internal/config"
	"github.com/mttk2004/arch-manager/internal/console"
	"github.com/mttk2004/arch-manager/internal/privilege"
	"github.com/mttk2004/arch-manager/internal/protocol"
)

// App owns the command tree and the service graph built for one run.
type App struct {
	cmd *cli.Command

	verbose bool
	json    bool
	dryRun  bool
	timeout time.Duration

	cfg        *config.Config
	session    *privilege.Session
	packages   *application.PackageService
	fonts      *application.FontService
	maint      *application.MaintenanceService
	dispatcher *bridge.Dispatcher
	printer    *console.Printer
}

// New creates the CLI application.
func New() *App {
	app := &App{}

	app.cmd = &cli.Command{
		Name:    "arch-manager",
		Usage:   "Manage Arch Linux packages, fonts, and system maintenance",
		Suggest: true,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "verbose",
				Aliases:     []string{"v"},
				Usage:       "echo every external command to stderr",
				Destination: &app.verbose,
			},
			&cli.BoolFlag{
				Name:        "json",
				Aliases:     []string{"j"},
				Usage:       "output structured JSON envelopes",
				Destination: &app.json,
			},
			&cli.BoolFlag{
				Name:        "dry-run",
				Usage:       "log commands without executing them",
				Destination: &app.dryRun,
			},
			&cli.DurationFlag{
				Name:        "timeout",
				Usage:       "per-command deadline (0 = config default)",
				Destination: &app.timeout,
			},
		},
		Before: app.initialize,
		After: func(_ context.Context, _ *cli.Command) error {
			if app.session != nil {
				app.session.Shutdown()
			}

			return nil
		},
		Commands: app.commands(),
	}

	return app
}

// Run executes the application.
func (app *App) Run(ctx context.Context, args []string) error {
	return app.cmd.Run(ctx, args)
}

// initialize loads the configuration and builds the service graph. Flags
// have been parsed by the time this runs.
func (app *App) initialize(ctx context.Context, _ *cli.Command) (context.Context, error) {
	cfg, err := config.Load(config.Path())
	if err != nil {
		return ctx, fmt.Errorf("configuration: %w", err)
	}

	app.cfg = cfg

	timeout := cfg.Timeout()
	if app.timeout > 0 {
		timeout = app.timeout
	}

	app.session = privilege.NewSession(privilege.SudoElevator{})
	runner := platform.NewRunner(app.session, timeout, app.verbose, app.dryRun)

	pacman := arch.NewPacman(runner, cfg.PacmanBin, cfg.AURHelper)
	cache := catalog.New(pacman)

	app.packages = application.NewPackageService(pacman, cache)
	app.fonts = application.NewFontService(pacman, arch.NewFontConfig(runner), arch.FontSets(), cache)
	app.maint = application.NewMaintenanceService(arch.NewMaintenance(runner, cfg.PacmanBin), cache)
	app.dispatcher = bridge.NewDispatcher(app.packages, app.fonts, app.maint)
	app.printer = console.NewPrinter(app.json)

	return ctx, nil
}

// elevate acquires the privilege session once and keeps it warm for the
// rest of the run.
func (app *App) elevate(ctx context.Context) error {
	if app.dryRun {
		return nil
	}

	if err := app.session.Acquire(ctx); err != nil {
		return err
	}

	app.session.StartKeepalive(app.cfg.KeepaliveInterval())

	return nil
}

// emit prints an envelope. Failures reported inside an envelope are part of
// the protocol, not process errors, so the exit code stays zero.
func (app *App) emit(env *protocol.Envelope) error {
	return app.printer.Print(env)
}

// observer returns a per-item progress callback, or nil when a progress bar
// would pollute the output.
func (app *App) observer(operation string, total int) application.BatchObserver {
	if app.json || app.verbose || total == 0 {
		return nil
	}

	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(operation),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionShowCount(),
	)

	return func(_ string, _ batch.Class) {
		_ = bar.Add(1)
	}
}

func (app *App) commands() []*cli.Command {
	return []*cli.Command{
		app.installCommand(),
		app.removeCommand(),
		app.searchCommand(),
		app.infoCommand(),
		app.listCommand(),
		app.updateCommand(),
		app.checkUpdatesCommand(),
		app.cleanCommand(),
		app.orphansCommand(),
		app.checkCommand(),
		app.mirrorsCommand(),
		app.fontCommand(),
		app.bridgeCommand(),
	}
}

func (app *App) installCommand() *cli.Command {
	return &cli.Command{
		Name:      "install",
		Usage:     "Install packages",
		ArgsUsage: "<package>...",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			names := cmd.Args().Slice()
			// Empty input is a usage error; never prompt for a password over it.
			if len(names) == 0 {
				return app.emit(app.packages.Install(ctx, names))
			}

			if err := app.elevate(ctx); err != nil {
				return app.emit(protocol.FromError(err))
			}

			app.packages.Observer = app.observer("installing", len(names))

			return app.emit(app.packages.Install(ctx, names))
		},
	}
}

func (app *App) removeCommand() *cli.Command {
	return &cli.Command{
		Name:      "remove",
		Aliases:   []string{"rm"},
		Usage:     "Remove packages",
		ArgsUsage: "<package>...",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			names := cmd.Args().Slice()
			if len(names) == 0 {
				return app.emit(app.packages.Remove(ctx, names))
			}

			if err := app.elevate(ctx); err != nil {
				return app.emit(protocol.FromError(err))
			}

			app.packages.Observer = app.observer("removing", len(names))

			return app.emit(app.packages.Remove(ctx, names))
		},
	}
}

func (app *App) searchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search the repositories",
		ArgsUsage: "<query>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "aur",
				Usage: "include AUR results (requires a configured helper)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return app.emit(app.packages.Search(ctx, cmd.Args().First(), cmd.Bool("aur")))
		},
	}
}

func (app *App) infoCommand() *cli.Command {
	return &cli.Command{
		Name:      "info",
		Usage:     "Show details for one package",
		ArgsUsage: "<package>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return app.emit(app.packages.Info(ctx, cmd.Args().First()))
		},
	}
}

func (app *App) listCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List packages",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "explicit",
				Aliases: []string{"e"},
				Usage:   "only explicitly installed packages",
			},
			&cli.BoolFlag{
				Name:  "available",
				Usage: "names of every installable package",
			},
			&cli.BoolFlag{
				Name:  "names",
				Usage: "installed package names only",
			},
			&cli.BoolFlag{
				Name:  "refresh",
				Usage: "bypass the name cache",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			switch {
			case cmd.Bool("available"):
				return app.emit(app.packages.AvailableNames(ctx, cmd.Bool("refresh")))
			case cmd.Bool("names"):
				return app.emit(app.packages.InstalledNames(ctx, cmd.Bool("refresh")))
			default:
				return app.emit(app.packages.ListInstalled(ctx, cmd.Bool("explicit")))
			}
		},
	}
}

func (app *App) updateCommand() *cli.Command {
	return &cli.Command{
		Name:  "update",
		Usage: "Upgrade every installed package",
		Action: func(ctx context.Context, _ *cli.Command) error {
			if err := app.elevate(ctx); err != nil {
				return app.emit(protocol.FromError(err))
			}

			return app.emit(app.packages.UpdateSystem(ctx))
		},
	}
}

func (app *App) checkUpdatesCommand() *cli.Command {
	return &cli.Command{
		Name:  "check-updates",
		Usage: "List pending updates without installing them",
		Action: func(ctx context.Context, _ *cli.Command) error {
			return app.emit(app.packages.CheckUpdates(ctx))
		},
	}
}

func (app *App) cleanCommand() *cli.Command {
	return &cli.Command{
		Name:  "clean",
		Usage: "Prune the package cache",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "keep",
				Aliases: []string{"k"},
				Usage:   "package versions to keep",
				Value:   config.DefaultCacheKeepVersions,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := app.elevate(ctx); err != nil {
				return app.emit(protocol.FromError(err))
			}

			return app.emit(app.maint.CleanCache(ctx, cmd.Int("keep")))
		},
	}
}

func (app *App) orphansCommand() *cli.Command {
	return &cli.Command{
		Name:  "orphans",
		Usage: "Remove packages nothing depends on",
		Action: func(ctx context.Context, _ *cli.Command) error {
			if err := app.elevate(ctx); err != nil {
				return app.emit(protocol.FromError(err))
			}

			return app.emit(app.maint.RemoveOrphans(ctx))
		},
	}
}

func (app *App) checkCommand() *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "Verify the local package database",
		Action: func(ctx context.Context, _ *cli.Command) error {
			return app.emit(app.maint.CheckBroken(ctx))
		},
	}
}

func (app *App) mirrorsCommand() *cli.Command {
	return &cli.Command{
		Name:  "mirrors",
		Usage: "Regenerate the mirror list, fastest first",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "country",
				Aliases: []string{"c"},
				Usage:   "restrict mirrors to one country",
			},
			&cli.IntFlag{
				Name:    "count",
				Aliases: []string{"n"},
				Usage:   "mirrors to keep",
				Value:   config.DefaultMirrorCount,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			country := cmd.String("country")
			if country == "" {
				country = app.cfg.MirrorCountry
			}

			if err := app.elevate(ctx); err != nil {
				return app.emit(protocol.FromError(err))
			}

			return app.emit(app.maint.UpdateMirrors(ctx, country, cmd.Int("count")))
		},
	}
}

func (app *App) fontCommand() *cli.Command {
	return &cli.Command{
		Name:  "font",
		Usage: "Install font sets and inspect installed families",
		Commands: []*cli.Command{
			{
				Name:      "install",
				Usage:     "Install a font set, or named packages from it",
				ArgsUsage: "<set> [package...]",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					args := cmd.Args().Slice()
					if len(args) == 0 {
						return app.emit(app.fonts.InstallSet(ctx, "", nil))
					}

					if err := app.elevate(ctx); err != nil {
						return app.emit(protocol.FromError(err))
					}

					app.fonts.Observer = app.observer("installing fonts", len(args)-1)

					return app.emit(app.fonts.InstallSet(ctx, args[0], args[1:]))
				},
			},
			{
				Name:      "remove",
				Usage:     "Remove a font set, or named packages from it",
				ArgsUsage: "<set> [package...]",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					args := cmd.Args().Slice()
					if len(args) == 0 {
						return app.emit(app.fonts.RemoveSet(ctx, "", nil))
					}

					if err := app.elevate(ctx); err != nil {
						return app.emit(protocol.FromError(err))
					}

					app.fonts.Observer = app.observer("removing fonts", len(args)-1)

					return app.emit(app.fonts.RemoveSet(ctx, args[0], args[1:]))
				},
			},
			{
				Name:  "list",
				Usage: "List installed font families",
				Action: func(ctx context.Context, _ *cli.Command) error {
					return app.emit(app.fonts.ListFamilies(ctx))
				},
			},
			{
				Name:      "search",
				Usage:     "Search installed font families",
				ArgsUsage: "<pattern>",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return app.emit(app.fonts.SearchFamilies(ctx, cmd.Args().First()))
				},
			},
			{
				Name:  "sets",
				Usage: "Show the available font sets",
				Action: func(_ context.Context, _ *cli.Command) error {
					sets := app.fonts.Sets()
					data := make([]map[string]any, 0, len(sets))

					for _, set := range sets {
						data = append(data, map[string]any{
							"name":        set.Name,
							"description": set.Description,
							"packages":    set.Packages,
						})
					}

					return app.emit(protocol.Success(
						fmt.Sprintf("%d font sets available", len(sets)),
						map[string]any{"sets": data, "count": len(sets)},
					))
				},
			},
			{
				Name:  "refresh",
				Usage: "Rebuild the fontconfig cache",
				Action: func(ctx context.Context, _ *cli.Command) error {
					return app.emit(app.fonts.UpdateCache(ctx))
				},
			},
		},
	}
}

// privilegedActions are the bridge actions that mutate the system and need
// an elevated session before dispatch.
var privilegedActions = map[string]bool{
	"install":        true,
	"remove":         true,
	"update_system":  true,
	"clean_cache":    true,
	"remove_orphans": true,
	"update_mirrors": true,
	"font_install":   true,
	"font_remove":    true,
}

// itemActions are the privileged actions that require at least one argument.
var itemActions = map[string]bool{
	"install":      true,
	"remove":       true,
	"font_install": true,
	"font_remove":  true,
}

func missingItems(action string, args []string) bool {
	return itemActions[action] && len(args) == 0
}

func (app *App) bridgeCommand() *cli.Command {
	return &cli.Command{
		Name:      "bridge",
		Usage:     "Run one action and print its JSON envelope",
		ArgsUsage: "<action> [argument...]",
		Description: `Machine interface for front ends. Every invocation writes exactly one
JSON envelope to stdout, whatever happens. Run without arguments to get
the recognized action list.`,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			printer := console.NewPrinter(true)
			args := cmd.Args().Slice()

			if len(args) == 0 {
				actions := app.dispatcher.Actions()

				return printer.Print(protocol.Info(
					fmt.Sprintf("%d actions recognized", len(actions)),
					map[string]any{"actions": actions},
				))
			}

			action := args[0]
			// An action missing its arguments yields a usage envelope from
			// the dispatcher; elevating first would prompt for a password
			// over a request that can never run.
			if privilegedActions[action] && !missingItems(action, args[1:]) {
				if err := app.elevate(ctx); err != nil {
					return printer.Print(protocol.FromError(err))
				}
			}

			app.packages.Observer = nil
			app.fonts.Observer = nil

			return printer.Print(app.dispatcher.Dispatch(ctx, action, args[1:]))
		},
	}
}
