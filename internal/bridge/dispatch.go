// SPDX-FileCopyrightText: 2025 The Arch Manager Authors
// SPDX-License-Identifier: EUPL-1.2

// Package bridge maps action names plus positional arguments onto the
// application services and returns a response envelope for every call.
package bridge

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/mttk2004/arch-manager/internal/application"
	"github.com/mttk2004/arch-manager/internal/domain"
	"github.com/mttk2004/arch-manager/internal/protocol"
)

// handler executes one action against its positional arguments.
type handler struct {
	usage string
	run   func(ctx context.Context, args []string) *protocol.Envelope
}

// Dispatcher routes actions. The recognized-action list is derived from the
// dispatch table itself, so discoverability can never drift from what is
// implemented.
type Dispatcher struct {
	handlers map[string]handler
}

// NewDispatcher builds the dispatch table over the services.
func NewDispatcher(packages *application.PackageService, fonts *application.FontService, maint *application.MaintenanceService) *Dispatcher {
	d := &Dispatcher{handlers: map[string]handler{}}

	d.handlers["install"] = handler{
		usage: "install <package>...",
		run: func(ctx context.Context, args []string) *protocol.Envelope {
			return packages.Install(ctx, args)
		},
	}
	d.handlers["remove"] = handler{
		usage: "remove <package>...",
		run: func(ctx context.Context, args []string) *protocol.Envelope {
			return packages.Remove(ctx, args)
		},
	}
	d.handlers["search"] = handler{
		usage: "search <query>",
		run: func(ctx context.Context, args []string) *protocol.Envelope {
			if len(args) != 1 {
				return usageError("search", "search <query>")
			}

			return packages.Search(ctx, args[0], true)
		},
	}
	d.handlers["info"] = handler{
		usage: "info <package>",
		run: func(ctx context.Context, args []string) *protocol.Envelope {
			if len(args) != 1 {
				return usageError("info", "info <package>")
			}

			return packages.Info(ctx, args[0])
		},
	}
	d.handlers["list_installed"] = handler{
		usage: "list_installed",
		run: func(ctx context.Context, _ []string) *protocol.Envelope {
			return packages.ListInstalled(ctx, false)
		},
	}
	d.handlers["list_explicit"] = handler{
		usage: "list_explicit",
		run: func(ctx context.Context, _ []string) *protocol.Envelope {
			return packages.ListInstalled(ctx, true)
		},
	}
	d.handlers["list_available"] = handler{
		usage: "list_available",
		run: func(ctx context.Context, _ []string) *protocol.Envelope {
			return packages.AvailableNames(ctx, false)
		},
	}
	d.handlers["list_installed_names"] = handler{
		usage: "list_installed_names",
		run: func(ctx context.Context, _ []string) *protocol.Envelope {
			return packages.InstalledNames(ctx, false)
		},
	}
	d.handlers["update_system"] = handler{
		usage: "update_system",
		run: func(ctx context.Context, _ []string) *protocol.Envelope {
			return packages.UpdateSystem(ctx)
		},
	}
	d.handlers["check_updates"] = handler{
		usage: "check_updates",
		run: func(ctx context.Context, _ []string) *protocol.Envelope {
			return packages.CheckUpdates(ctx)
		},
	}
	d.handlers["clean_cache"] = handler{
		usage: "clean_cache <keep:int>",
		run: func(ctx context.Context, args []string) *protocol.Envelope {
			if len(args) != 1 {
				return usageError("clean_cache", "clean_cache <keep:int>")
			}

			keep, err := strconv.Atoi(args[0])
			if err != nil {
				return protocol.Failure(domain.CodeValidationError,
					fmt.Sprintf("keep must be an integer, got %q", args[0]), nil)
			}

			return maint.CleanCache(ctx, keep)
		},
	}
	d.handlers["remove_orphans"] = handler{
		usage: "remove_orphans",
		run: func(ctx context.Context, _ []string) *protocol.Envelope {
			return maint.RemoveOrphans(ctx)
		},
	}
	d.handlers["check_broken"] = handler{
		usage: "check_broken",
		run: func(ctx context.Context, _ []string) *protocol.Envelope {
			return maint.CheckBroken(ctx)
		},
	}
	d.handlers["update_mirrors"] = handler{
		usage: "update_mirrors <country?> <count:int>",
		run: func(ctx context.Context, args []string) *protocol.Envelope {
			country, count, env := parseMirrorArgs(args)
			if env != nil {
				return env
			}

			return maint.UpdateMirrors(ctx, country, count)
		},
	}
	d.handlers["font_install"] = handler{
		usage: "font_install <set> [package...]",
		run: func(ctx context.Context, args []string) *protocol.Envelope {
			if len(args) < 1 {
				return usageError("font_install", "font_install <set> [package...]")
			}

			return fonts.InstallSet(ctx, args[0], args[1:])
		},
	}
	d.handlers["font_remove"] = handler{
		usage: "font_remove <set> [package...]",
		run: func(ctx context.Context, args []string) *protocol.Envelope {
			if len(args) < 1 {
				return usageError("font_remove", "font_remove <set> [package...]")
			}

			return fonts.RemoveSet(ctx, args[0], args[1:])
		},
	}
	d.handlers["font_list"] = handler{
		usage: "font_list",
		run: func(ctx context.Context, _ []string) *protocol.Envelope {
			return fonts.ListFamilies(ctx)
		},
	}
	d.handlers["font_search"] = handler{
		usage: "font_search <pattern>",
		run: func(ctx context.Context, args []string) *protocol.Envelope {
			if len(args) != 1 {
				return usageError("font_search", "font_search <pattern>")
			}

			return fonts.SearchFamilies(ctx, args[0])
		},
	}
	d.handlers["font_update_cache"] = handler{
		usage: "font_update_cache",
		run: func(ctx context.Context, _ []string) *protocol.Envelope {
			return fonts.UpdateCache(ctx)
		},
	}

	return d
}

// Actions returns the sorted recognized-action list.
func (d *Dispatcher) Actions() []string {
	actions := make([]string, 0, len(d.handlers))
	for name := range d.handlers {
		actions = append(actions, name)
	}

	sort.Strings(actions)

	return actions
}

// Dispatch runs one action. Unknown actions yield an INVALID_ACTION
// envelope enumerating the recognized set.
func (d *Dispatcher) Dispatch(ctx context.Context, action string, args []string) *protocol.Envelope {
	h, ok := d.handlers[action]
	if !ok {
		actions := d.Actions()

		return protocol.Failure(domain.CodeInvalidAction,
			fmt.Sprintf("unknown action %q, recognized actions: %s", action, strings.Join(actions, ", ")),
			map[string]any{"action": action, "recognized": actions})
	}

	return h.run(ctx, args)
}

func parseMirrorArgs(args []string) (string, int, *protocol.Envelope) {
	var (
		country  string
		countArg string
	)

	switch len(args) {
	case 1:
		countArg = args[0]
	case 2:
		country, countArg = args[0], args[1]
	default:
		return "", 0, usageError("update_mirrors", "update_mirrors <country?> <count:int>")
	}

	count, err := strconv.Atoi(countArg)
	if err != nil {
		return "", 0, protocol.Failure(domain.CodeValidationError,
			fmt.Sprintf("count must be an integer, got %q", countArg), nil)
	}

	return country, count, nil
}

func usageError(action, usage string) *protocol.Envelope {
	return protocol.Failure(domain.CodeValidationError,
		fmt.Sprintf("invalid arguments for %s, usage: %s", action, usage),
		map[string]any{"usage": usage})
}
