// SPDX-FileCopyrightText: 2025 The Arch Manager Authors
// SPDX-License-Identifier: EUPL-1.2

package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()

	app := New()

	require.NotNil(t, app)
	require.NotNil(t, app.cmd)
	require.Equal(t, "arch-manager", app.cmd.Name)
	require.NotEmpty(t, app.cmd.Usage)
	require.NotEmpty(t, app.cmd.Commands)
}

func TestNew_RegistersEveryCommand(t *testing.T) {
	t.Parallel()

	app := New()

	commandNames := make(map[string]bool)
	for _, cmd := range app.cmd.Commands {
		commandNames[cmd.Name] = true
	}

	expected := []string{
		"install", "remove", "search", "info", "list",
		"update", "check-updates", "clean", "orphans", "check",
		"mirrors", "font", "bridge",
	}
	for _, name := range expected {
		require.True(t, commandNames[name], "command %s should exist", name)
	}
}

func TestNew_FontSubcommands(t *testing.T) {
	t.Parallel()

	app := New()

	for _, cmd := range app.cmd.Commands {
		if cmd.Name != "font" {
			continue
		}

		names := make(map[string]bool)
		for _, sub := range cmd.Commands {
			names[sub.Name] = true
		}

		for _, expected := range []string{"install", "remove", "list", "search", "sets", "refresh"} {
			assert.True(t, names[expected], "font subcommand %s should exist", expected)
		}

		return
	}

	t.Fatal("font command not registered")
}

func TestPrivilegedActions_CoverOnlyMutatingBridgeActions(t *testing.T) {
	t.Parallel()

	for _, action := range []string{"search", "info", "list_installed", "check_updates", "check_broken", "font_list"} {
		assert.False(t, privilegedActions[action], "%s must not require elevation", action)
	}

	for _, action := range []string{"install", "remove", "update_system", "clean_cache", "remove_orphans", "update_mirrors", "font_install", "font_remove"} {
		assert.True(t, privilegedActions[action], "%s must require elevation", action)
	}
}

func TestInstallRemove_EmptyArgsNeverAcquireTheSession(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	for _, command := range []string{"install", "remove"} {
		t.Run(command, func(t *testing.T) {
			app := New()

			// The VALIDATION_ERROR envelope is a transmitted result, so the
			// run exits cleanly and no password prompt ever fires.
			err := app.Run(context.Background(), []string{"arch-manager", "--json", command})

			require.NoError(t, err)
			assert.False(t, app.session.Authenticated())
		})
	}
}

func TestMissingItems_GuardsElevationForArgumentlessItemActions(t *testing.T) {
	t.Parallel()

	// Actions over item lists are usage errors without arguments; the
	// session must not be acquired for a request that can never run.
	for _, action := range []string{"install", "remove", "font_install", "font_remove"} {
		assert.True(t, missingItems(action, nil), "%s without items must skip elevation", action)
		assert.False(t, missingItems(action, []string{"vim"}), "%s with items must elevate", action)
	}

	for _, action := range []string{"update_system", "clean_cache", "remove_orphans", "update_mirrors"} {
		assert.False(t, missingItems(action, nil), "%s takes no required items", action)
	}
}
