package build

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docversions/internal/config"
	"git.home.luguber.info/inful/docversions/internal/docsbuild"
	"git.home.luguber.info/inful/docversions/internal/metrics"
)

type fakeRepo struct {
	tags      []string
	branch    string
	refs      map[string]bool
	paths     map[string]bool
	fetchErr  error
	fetched   []string
	pathCalls []string
}

func (f *fakeRepo) ListTags(context.Context) ([]string, error) { return f.tags, nil }
func (f *fakeRepo) CurrentBranch() (string, error)             { return f.branch, nil }
func (f *fakeRepo) RefExists(ref string) bool                  { return f.refs[ref] }

func (f *fakeRepo) PathExistsInRef(ref, p string) (bool, error) {
	f.pathCalls = append(f.pathCalls, ref+":"+p)
	return f.paths[p], nil
}

func (f *fakeRepo) Fetch(_ context.Context, remote, branch string) error {
	f.fetched = append(f.fetched, remote+"/"+branch)
	return f.fetchErr
}

// fakeCheckouts hands each callback a fresh directory and records the order of events.
type fakeCheckouts struct {
	t      *testing.T
	events *[]string
	roots  map[string]string
	err    error
}

func (f *fakeCheckouts) WithCheckout(_ context.Context, ref, label string, fn func(string) error) error {
	if f.err != nil {
		return f.err
	}
	root := filepath.Join(f.t.TempDir(), label)
	require.NoError(f.t, os.MkdirAll(root, 0o750))
	if f.roots == nil {
		f.roots = map[string]string{}
	}
	f.roots[label] = root
	*f.events = append(*f.events, "checkout "+ref)
	defer func() { *f.events = append(*f.events, "release "+ref) }()
	return fn(root)
}

type fakeInstaller struct {
	events *[]string
	calls  [][2]string
	err    error
}

func (f *fakeInstaller) Install(_ context.Context, root, nested string) error {
	f.calls = append(f.calls, [2]string{root, nested})
	*f.events = append(*f.events, "install")
	return f.err
}

type fakeBuilder struct {
	events   *[]string
	requests []docsbuild.Request
	failOn   map[string]error // keyed by output dir base name
}

func (f *fakeBuilder) Build(_ context.Context, req docsbuild.Request) error {
	f.requests = append(f.requests, req)
	label := filepath.Base(req.OutputDir)
	*f.events = append(*f.events, "build "+label)
	return f.failOn[label]
}

type fakeManifest struct {
	path   string
	labels []string
	writes int
	err    error
}

func (f *fakeManifest) Write(path string, labels []string) error {
	f.writes++
	f.path = path
	f.labels = append([]string(nil), labels...)
	return f.err
}

type countingRecorder struct {
	metrics.NoopRecorder
	outcomes map[metrics.ResultLabel]int
	versions map[string]int
	stages   map[string]int
	built    int
}

func (c *countingRecorder) IncRunOutcome(o metrics.ResultLabel) { c.outcomes[o]++ }
func (c *countingRecorder) IncVersionResult(source string, r metrics.ResultLabel) {
	c.versions[fmt.Sprintf("%s/%s", source, r)]++
}
func (c *countingRecorder) IncStageResult(stage string, r metrics.ResultLabel) {
	c.stages[fmt.Sprintf("%s/%s", stage, r)]++
}
func (c *countingRecorder) SetVersionsBuilt(n int) { c.built = n }

type harness struct {
	cfg       *config.Config
	env       *config.Environment
	repo      *fakeRepo
	checkouts *fakeCheckouts
	installer *fakeInstaller
	builder   *fakeBuilder
	manifest  *fakeManifest
	recorder  *countingRecorder
	events    []string
}

func newHarness(t *testing.T, workspaceRel string) *harness {
	t.Helper()
	cfg, err := config.Default()
	require.NoError(t, err)

	repoRoot := t.TempDir()
	workDir := filepath.Join(repoRoot, workspaceRel)
	env, err := config.NewEnvironment(workDir, repoRoot, nil)
	require.NoError(t, err)

	h := &harness{
		cfg:      cfg,
		env:      env,
		repo:     &fakeRepo{refs: map[string]bool{}, paths: map[string]bool{}},
		manifest: &fakeManifest{},
		recorder: &countingRecorder{
			outcomes: map[metrics.ResultLabel]int{},
			versions: map[string]int{},
			stages:   map[string]int{},
		},
	}
	h.checkouts = &fakeCheckouts{t: t, events: &h.events}
	h.installer = &fakeInstaller{events: &h.events}
	h.builder = &fakeBuilder{events: &h.events, failOn: map[string]error{}}
	return h
}

func (h *harness) service() *DefaultBuildService {
	svc := NewBuildService(Dependencies{
		Config:    h.cfg,
		Env:       h.env,
		Repo:      h.repo,
		Checkouts: h.checkouts,
		Installer: h.installer,
		Builder:   h.builder,
		Manifest:  h.manifest,
	})
	return svc.WithRecorder(h.recorder).WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}
