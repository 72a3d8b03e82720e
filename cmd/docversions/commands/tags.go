package commands

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/docversions/internal/config"
	ferrors "git.home.luguber.info/inful/docversions/internal/foundation/errors"
	"git.home.luguber.info/inful/docversions/internal/versioning"
)

// TagsCmd implements the 'tags' command.
type TagsCmd struct {
	Versions string `help:"Version spec; all version tags are listed when empty" placeholder:"SPEC"`
}

func (t *TagsCmd) Run(ctx context.Context, g *Global, root *CLI) error {
	app, err := root.load(config.Overrides{Versions: t.Versions})
	if err != nil {
		return err
	}

	tags, err := app.Git.ListTags(ctx)
	if err != nil {
		return err
	}

	matcher := versioning.NewMatcher(app.Logger)
	spec, err := versioning.ParseSpec(app.Config.Versions.Spec)
	var selected []string
	switch {
	case err == nil:
		selected = matcher.MatchSpec(spec, tags)
		if len(selected) == 0 {
			return ferrors.ValidationError("cannot select versions").
				WithCause(versioning.ErrNoTagsMatched).
				WithContext("spec", spec.String()).
				Build()
		}
	default:
		for _, tag := range tags {
			if versioning.IsVersionTag(tag) {
				selected = append(selected, tag)
			}
		}
		versioning.SortDescending(selected)
	}

	for _, tag := range selected {
		_, _ = fmt.Fprintln(g.out(), tag)
	}
	return nil
}
