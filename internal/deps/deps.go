// Package deps installs a checkout's package dependencies before its docs are built.
package deps

import (
	"context"
	"log/slog"
	"path/filepath"

	"git.home.luguber.info/inful/docversions/internal/config"
	ferrors "git.home.luguber.info/inful/docversions/internal/foundation/errors"
	"git.home.luguber.info/inful/docversions/internal/fsutil"
	"git.home.luguber.info/inful/docversions/internal/logfields"
	"git.home.luguber.info/inful/docversions/internal/runner"
)

// Profile describes how one package manager installs dependencies.
type Profile struct {
	Manager   config.PackageManager
	Manifest  string
	LockFiles []string
	// Locked is the argv used when a lock artifact is present.
	Locked []string
	// Resolving is the argv used otherwise.
	Resolving []string
}

var builtinProfiles = map[config.PackageManager]Profile{
	config.PackageManagerNPM: {
		LockFiles: []string{"package-lock.json", "npm-shrinkwrap.json"},
		Locked:    []string{"npm", "ci"},
		Resolving: []string{"npm", "install"},
	},
	config.PackageManagerPNPM: {
		LockFiles: []string{"pnpm-lock.yaml"},
		Locked:    []string{"pnpm", "install", "--frozen-lockfile"},
		Resolving: []string{"pnpm", "install"},
	},
	config.PackageManagerYarn: {
		LockFiles: []string{"yarn.lock"},
		Locked:    []string{"yarn", "install", "--frozen-lockfile"},
		Resolving: []string{"yarn", "install"},
	},
	config.PackageManagerBun: {
		LockFiles: []string{"bun.lockb", "bun.lock"},
		Locked:    []string{"bun", "install", "--frozen-lockfile"},
		Resolving: []string{"bun", "install"},
	},
}

// ProfileFor resolves the profile for cfg. Configured argv overrides replace the built-in ones.
func ProfileFor(cfg config.PackagesConfig, manifestFile string) Profile {
	manager := cfg.Manager
	if manager == "" {
		manager = config.PackageManagerNPM
	}
	p := builtinProfiles[manager]
	p.Manager = manager
	p.Manifest = manifestFile
	if p.Manifest == "" {
		p.Manifest = config.DefaultManifestFile
	}
	if len(cfg.InstallLocked) > 0 {
		p.Locked = cfg.InstallLocked
	}
	if len(cfg.Install) > 0 {
		p.Resolving = cfg.Install
	}
	return p
}

// HasManifest reports whether dir declares dependencies.
func (p Profile) HasManifest(dir string) bool {
	return fsutil.Exists(filepath.Join(dir, p.Manifest))
}

// HasLock reports whether dir carries one of the profile's lock artifacts.
func (p Profile) HasLock(dir string) bool {
	for _, lock := range p.LockFiles {
		if fsutil.Exists(filepath.Join(dir, lock)) {
			return true
		}
	}
	return false
}

// Installer runs the package manager inside checkouts.
type Installer struct {
	runner  runner.Runner
	profile Profile
	logger  *slog.Logger
}

// NewInstaller creates an installer for profile.
func NewInstaller(r runner.Runner, profile Profile, logger *slog.Logger) *Installer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Installer{runner: r, profile: profile, logger: logger}
}

// Install installs dependencies at root when it has a manifest, locked when a lock
// artifact is present. When nested is a different directory with both a manifest and a
// lock artifact, a second locked install runs there. The first failure is returned.
func (i *Installer) Install(ctx context.Context, root, nested string) error {
	if i.profile.HasManifest(root) {
		argv := i.profile.Resolving
		if i.profile.HasLock(root) {
			argv = i.profile.Locked
		}
		if err := i.run(ctx, root, argv); err != nil {
			return err
		}
	} else {
		i.logger.Debug("No dependency manifest, skipping install", logfields.Path(root))
	}

	if nested == "" || filepath.Clean(nested) == filepath.Clean(root) {
		return nil
	}
	if i.profile.HasManifest(nested) && i.profile.HasLock(nested) {
		return i.run(ctx, nested, i.profile.Locked)
	}
	return nil
}

func (i *Installer) run(ctx context.Context, dir string, argv []string) error {
	cmd := runner.Command{Dir: dir, Name: argv[0], Args: argv[1:], Stream: true}
	i.logger.Info("Installing dependencies", logfields.Command(cmd.String()), logfields.Path(dir))

	if _, err := i.runner.Run(ctx, cmd); err != nil {
		return ferrors.CommandError("dependency installation failed").
			WithCause(err).
			WithContext("command", cmd.String()).
			WithContext("path", dir).
			Build()
	}
	return nil
}
