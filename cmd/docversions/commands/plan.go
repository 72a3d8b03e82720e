package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"text/tabwriter"

	"git.home.luguber.info/inful/docversions/internal/config"
	"git.home.luguber.info/inful/docversions/internal/metrics"
)

// PlanCmd implements the 'plan' command.
type PlanCmd struct {
	Versions   string `help:"Version spec" placeholder:"SPEC" xor:"versions"`
	NoVersions bool   `name:"no-versions" help:"Plan only the current label, ignoring versions.spec from the config file" xor:"versions"`
	Branch     string `help:"Default branch; required in production mode"`
	Mode       string `help:"Run mode (auto|development|pullRequest|production)" placeholder:"MODE"`
	OnNoMatch  string `name:"on-no-match" help:"What to do when --versions matches no tags (fail|fallback)"`
}

func (p *PlanCmd) overrides() config.Overrides {
	return config.Overrides{Versions: p.Versions, ClearVersions: p.NoVersions, Branch: p.Branch, OnNoMatch: p.OnNoMatch}
}

func (p *PlanCmd) Run(ctx context.Context, g *Global, root *CLI) error {
	app, err := root.load(p.overrides())
	if err != nil {
		return err
	}
	mode, err := app.ResolveMode(p.Mode)
	if err != nil {
		return err
	}

	plan, err := app.BuildService(metrics.NoopRecorder{}).Plan(ctx, app.Request(mode))
	if err != nil {
		return err
	}

	out := g.out()
	_, _ = fmt.Fprintf(out, "Mode: %s\n", plan.Mode)
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "LABEL\tSOURCE\tREF\tOUTPUT")
	for _, t := range plan.Targets {
		ref := t.Ref
		if ref == "" {
			ref = "-"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", t.Label, t.Source, ref, relative(app.Env.WorkDir, t.OutputDir))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(out, "Manifest: %s\n", relative(app.Env.WorkDir, plan.ManifestPath))
	if plan.Fallback {
		_, _ = fmt.Fprintln(out, "No tags matched the version spec; only the current label would be built.")
	}
	return nil
}

func relative(base, path string) string {
	if rel, err := filepath.Rel(base, path); err == nil {
		return rel
	}
	return path
}
