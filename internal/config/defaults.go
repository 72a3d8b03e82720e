package config

// Default values applied when the configuration leaves a field empty.
const (
	DefaultRemote       = "origin"
	DefaultCurrentLabel = "current"
	DefaultContentDir   = "content"
	DefaultArtifactDir  = "dist"
	DefaultManifestFile = "package.json"
	DefaultOutputDir    = "versions"
	DefaultManifestPath = "src/generated/versions.ts"
	DefaultExportName   = "builtVersions"
)

func applyDefaults(cfg *Config) {
	if cfg.Version == "" {
		cfg.Version = CurrentVersion
	}
	if cfg.Mode == "" {
		cfg.Mode = ModeAuto
	}

	v := &cfg.Versions
	if v.Remote == "" {
		v.Remote = DefaultRemote
	}
	if v.CurrentLabel == "" {
		v.CurrentLabel = DefaultCurrentLabel
	}
	if v.OnNoMatch == "" {
		v.OnNoMatch = NoMatchFail
	}

	if cfg.Packages.Manager == "" {
		cfg.Packages.Manager = PackageManagerNPM
	}

	b := &cfg.Build
	if len(b.Command) == 0 {
		b.Command = []string{string(cfg.Packages.Manager), "run", "build"}
	}
	if b.ContentDir == "" {
		b.ContentDir = DefaultContentDir
	}
	if b.ArtifactDir == "" {
		b.ArtifactDir = DefaultArtifactDir
	}
	if b.ManifestFile == "" {
		b.ManifestFile = DefaultManifestFile
	}

	o := &cfg.Output
	if o.Directory == "" {
		o.Directory = DefaultOutputDir
	}
	if o.Manifest == "" {
		o.Manifest = DefaultManifestPath
	}
	if o.ExportName == "" {
		o.ExportName = DefaultExportName
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = LogLevelInfo
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = LogFormatText
	}
}
