package runner

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/ryoqun/cargo-hack/internal/process"
	"github.com/ryoqun/cargo-hack/internal/testutil"
	"github.com/ryoqun/cargo-hack/internal/ui"
	"github.com/ryoqun/cargo-hack/internal/workspace"
)

// fakeRunner records invocations instead of spawning processes.
type fakeRunner struct {
	calls  [][]string
	failAt int // 1-based call index to fail at; 0 means never
	onCall func(bin string, args []string)
}

func (f *fakeRunner) Run(bin string, args []string) error {
	f.calls = append(f.calls, append([]string{bin}, args...))
	if f.onCall != nil {
		f.onCall(bin, args)
	}
	if f.failAt == len(f.calls) {
		return errors.New("exit status 101")
	}
	return nil
}

func selectAll(t *testing.T, members ...testutil.Member) []*workspace.Package {
	t.Helper()
	_, meta := testutil.Workspace(t, members...)
	log := ui.NewLogger(&bytes.Buffer{}, ui.ColorNever)
	pkgs, err := workspace.Select(meta, nil, workspace.SelectOpts{Workspace: true, IgnorePrivate: true}, log)
	if err != nil {
		t.Fatal(err)
	}
	return pkgs
}

func readManifest(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestRun_failFastRestoresEarlierManifests(t *testing.T) {
	pkgs := selectAll(t, testutil.Member{Name: "a"}, testutil.Member{Name: "b"}, testutil.Member{Name: "c"})
	originals := make(map[string]string, len(pkgs))
	for _, p := range pkgs {
		originals[p.ManifestPath] = readManifest(t, p.ManifestPath)
	}

	fake := &fakeRunner{failAt: 2}
	log := ui.NewLogger(&bytes.Buffer{}, ui.ColorNever)
	r := New(Options{Subcommand: "check", NoDevDeps: true}, fake, log)

	err := r.Run(process.NewBuilder("cargo", "check"), pkgs)
	if err == nil {
		t.Fatal("expected the second package's failure to propagate")
	}
	if !strings.Contains(err.Error(), "failed on b") {
		t.Errorf("error should name the failing package: %v", err)
	}
	if len(fake.calls) != 2 {
		t.Fatalf("invocations = %d, want 2 (fail-fast must skip c)", len(fake.calls))
	}
	for path, want := range originals {
		if got := readManifest(t, path); got != want {
			t.Errorf("manifest %s not restored\ngot:\n%s\nwant:\n%s", path, got, want)
		}
	}
}

func TestRun_noDevDepsMutatesDuringInvocation(t *testing.T) {
	pkgs := selectAll(t, testutil.Member{Name: "a"})
	path := pkgs[0].ManifestPath
	original := readManifest(t, path)
	if !strings.Contains(original, "[dev-dependencies]") {
		t.Fatal("fixture manifest should declare dev-dependencies")
	}

	var seen string
	fake := &fakeRunner{onCall: func(string, []string) {
		seen = readManifest(t, path)
	}}
	log := ui.NewLogger(&bytes.Buffer{}, ui.ColorNever)
	r := New(Options{Subcommand: "check", NoDevDeps: true}, fake, log)

	if err := r.Run(process.NewBuilder("cargo", "check"), pkgs); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(seen, "dev-dependencies") {
		t.Errorf("manifest seen by the invocation still has dev-dependencies:\n%s", seen)
	}
	if got := readManifest(t, path); got != original {
		t.Errorf("manifest not restored after success\ngot:\n%s\nwant:\n%s", got, original)
	}
}

func TestRun_withoutSuppressionNeverTouchesManifest(t *testing.T) {
	pkgs := selectAll(t, testutil.Member{Name: "a"})
	path := pkgs[0].ManifestPath
	original := readManifest(t, path)

	var seen string
	fake := &fakeRunner{onCall: func(string, []string) {
		seen = readManifest(t, path)
	}}
	log := ui.NewLogger(&bytes.Buffer{}, ui.ColorNever)
	r := New(Options{Subcommand: "check"}, fake, log)

	if err := r.Run(process.NewBuilder("cargo", "check"), pkgs); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seen != original {
		t.Errorf("manifest should be untouched during plain runs\ngot:\n%s", seen)
	}
}

func TestRun_skipsPrivatePackages(t *testing.T) {
	pkgs := selectAll(t,
		testutil.Member{Name: "pub"},
		testutil.Member{Name: "priv", Private: true},
	)

	fake := &fakeRunner{}
	var buf bytes.Buffer
	log := ui.NewLogger(&buf, ui.ColorNever)
	r := New(Options{Subcommand: "check"}, fake, log)

	if err := r.Run(process.NewBuilder("cargo", "check"), pkgs); err != nil {
		t.Fatalf("a private package must not fail the run: %v", err)
	}
	if len(fake.calls) != 1 {
		t.Fatalf("invocations = %d, want 1 (private package skipped)", len(fake.calls))
	}
	if !strings.Contains(buf.String(), "skipped running on private package priv") {
		t.Errorf("expected a skip message naming priv, got: %s", buf.String())
	}
	if strings.Contains(strings.Join(fake.calls[0], " "), "priv") {
		t.Errorf("private package leaked into an invocation: %v", fake.calls[0])
	}
}

func TestRun_removeDevDepsPersists(t *testing.T) {
	pkgs := selectAll(t, testutil.Member{Name: "a"}, testutil.Member{Name: "b"})

	fake := &fakeRunner{}
	log := ui.NewLogger(&bytes.Buffer{}, ui.ColorNever)
	r := New(Options{RemoveDevDeps: true}, fake, log)

	if err := r.Run(process.NewBuilder("cargo"), pkgs); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fake.calls) != 0 {
		t.Fatalf("invocations = %d, want 0 for --remove-dev-deps without a subcommand", len(fake.calls))
	}
	for _, p := range pkgs {
		if got := readManifest(t, p.ManifestPath); strings.Contains(got, "dev-dependencies") {
			t.Errorf("manifest %s should keep the rewrite:\n%s", p.ManifestPath, got)
		}
	}
}

func TestRun_eachFeature(t *testing.T) {
	pkgs := selectAll(t, testutil.Member{Name: "a", Features: []string{"default", "x", "y"}})

	fake := &fakeRunner{}
	var buf bytes.Buffer
	log := ui.NewLogger(&buf, ui.ColorNever)
	r := New(Options{Subcommand: "check", EachFeature: true}, fake, log)

	if err := r.Run(process.NewBuilder("cargo", "check"), pkgs); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fake.calls) != 3 {
		t.Fatalf("invocations = %d, want 3 (normal + per feature, default excluded)", len(fake.calls))
	}

	second := strings.Join(fake.calls[1], " ")
	if !strings.Contains(second, "--no-default-features") || !strings.Contains(second, "--features x") {
		t.Errorf("per-feature invocation args = %q", second)
	}
	if !strings.Contains(buf.String(), "(3/3)") {
		t.Errorf("progress total should count every invocation: %s", buf.String())
	}
}

func TestRun_eachFeatureFailFast(t *testing.T) {
	pkgs := selectAll(t, testutil.Member{Name: "a", Features: []string{"x", "y"}})

	fake := &fakeRunner{failAt: 2}
	log := ui.NewLogger(&bytes.Buffer{}, ui.ColorNever)
	r := New(Options{Subcommand: "check", EachFeature: true}, fake, log)

	if err := r.Run(process.NewBuilder("cargo", "check"), pkgs); err == nil {
		t.Fatal("expected failure to propagate")
	}
	if len(fake.calls) != 2 {
		t.Errorf("invocations = %d, want 2", len(fake.calls))
	}
}

func TestRun_ignoreUnknownFeatures(t *testing.T) {
	pkgs := selectAll(t, testutil.Member{Name: "a", Features: []string{"known"}})

	fake := &fakeRunner{}
	var buf bytes.Buffer
	log := ui.NewLogger(&buf, ui.ColorNever)
	r := New(Options{
		Subcommand:            "check",
		Features:              []string{"known", "nope"},
		IgnoreUnknownFeatures: true,
	}, fake, log)

	if err := r.Run(process.NewBuilder("cargo", "check"), pkgs); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	call := strings.Join(fake.calls[0], " ")
	if !strings.Contains(call, "--features known") {
		t.Errorf("known feature should be forwarded: %q", call)
	}
	if strings.Contains(call, "nope") {
		t.Errorf("unknown feature should be dropped: %q", call)
	}
	if !strings.Contains(buf.String(), "unknown feature `nope`") {
		t.Errorf("expected a warning for the dropped feature: %s", buf.String())
	}
}

func TestRun_manifestPathAppended(t *testing.T) {
	pkgs := selectAll(t, testutil.Member{Name: "a"})

	fake := &fakeRunner{}
	log := ui.NewLogger(&bytes.Buffer{}, ui.ColorNever)
	r := New(Options{Subcommand: "check"}, fake, log)

	if err := r.Run(process.NewBuilder("cargo", "check"), pkgs); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	call := strings.Join(fake.calls[0], " ")
	if !strings.Contains(call, "--manifest-path "+pkgs[0].ManifestPath) {
		t.Errorf("invocation should target the package manifest: %q", call)
	}
}

func TestRun_panicsWithoutSubcommandOrFlag(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for missing subcommand and suppression flag")
		}
	}()
	log := ui.NewLogger(&bytes.Buffer{}, ui.ColorNever)
	New(Options{}, &fakeRunner{}, log).Run(process.NewBuilder("cargo"), nil)
}
