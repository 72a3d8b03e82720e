package commands

import (
	"context"
	"fmt"
	"strings"

	"git.home.luguber.info/inful/docversions/internal/build"
	"git.home.luguber.info/inful/docversions/internal/config"
	"git.home.luguber.info/inful/docversions/internal/logfields"
	"git.home.luguber.info/inful/docversions/internal/metrics"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Versions    string `help:"Comma-separated semver ranges or exact tags to build in addition to the current label" placeholder:"SPEC" xor:"versions"`
	NoVersions  bool   `name:"no-versions" help:"Build only the current label, ignoring versions.spec from the config file. An empty --versions keeps the configured spec." xor:"versions"`
	Branch      string `help:"Default branch; required in production mode"`
	Mode        string `help:"Run mode (auto|development|pullRequest|production). Precedence: --mode > DOCVERSIONS_MODE > config." placeholder:"MODE"`
	Output      string `short:"o" help:"Output directory for built versions"`
	Manifest    string `help:"Path of the generated version manifest (.ts, .js, .json, .yaml)"`
	OnNoMatch   string `name:"on-no-match" help:"What to do when --versions matches no tags (fail|fallback)"`
	MetricsFile string `name:"metrics-file" help:"Write Prometheus metrics for this run to FILE" placeholder:"FILE"`
}

func (b *BuildCmd) overrides() config.Overrides {
	return config.Overrides{
		Versions:      b.Versions,
		ClearVersions: b.NoVersions,
		Branch:        b.Branch,
		Output:        b.Output,
		Manifest:      b.Manifest,
		OnNoMatch:     b.OnNoMatch,
		MetricsFile:   b.MetricsFile,
	}
}

func (b *BuildCmd) Run(ctx context.Context, g *Global, root *CLI) error {
	app, err := root.load(b.overrides())
	if err != nil {
		return err
	}
	mode, err := app.ResolveMode(b.Mode)
	if err != nil {
		return err
	}

	var recorder metrics.Recorder = metrics.NoopRecorder{}
	var prom *metrics.PrometheusRecorder
	if app.Config.Metrics.Textfile != "" {
		prom = metrics.NewPrometheusRecorder(nil)
		recorder = prom
	}

	result, runErr := app.BuildService(recorder).Run(ctx, app.Request(mode))

	if prom != nil {
		path := app.Env.Resolve(app.Config.Metrics.Textfile)
		if err := prom.WriteTextfile(path); err != nil {
			app.Logger.Warn("Failed to write metrics textfile", logfields.Path(path), logfields.Error(err))
		}
	}
	if runErr != nil {
		return runErr
	}

	printResult(g, result)
	return nil
}

func printResult(g *Global, result *build.BuildResult) {
	out := g.out()
	st := newStyler(out)
	noun := "versions"
	if len(result.Labels) == 1 {
		noun = "version"
	}
	_, _ = fmt.Fprintf(out, "%s %d %s: %s\n",
		st.success("Built"), len(result.Labels), noun, strings.Join(result.Labels, ", "))
	_, _ = fmt.Fprintf(out, "%s %s\n", st.muted("Manifest:"), result.ManifestPath)
	if result.Fallback {
		_, _ = fmt.Fprintln(out, st.muted("No tags matched the version spec; only the current label was built."))
	}
}
