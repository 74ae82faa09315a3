package domain

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"refdiff.dev/pkg/refdiff/internal/adapter"
	"refdiff.dev/pkg/refdiff/internal/controller"
	m "refdiff.dev/pkg/refdiff/internal/model"
	"refdiff.dev/pkg/refdiff/pkg"
)

// reportPrefix names saved reports: <prefix><fingerprint[:12]>.yaml.
const reportPrefix = "refdiff-"

// DiffArgs contains the arguments for comparing two source trees.
type DiffArgs struct {
	Before  m.Path
	After   m.Path
	Exclude []string
	Reports m.Path
	Threads uint
}

// CommitArgs contains the arguments for comparing a commit with its parent.
type CommitArgs struct {
	Repository string
	Revision   string
	Exclude    []string
	Reports    m.Path
	Threads    uint
}

// ViewArgs contains the arguments for displaying a saved report.
type ViewArgs struct {
	Report m.Path
}

// Workflow drives a refactoring detection run from inputs to displayed report.
type Workflow interface {
	Diff(ctx context.Context, args DiffArgs) (*m.Report, error)
	Commit(ctx context.Context, args CommitArgs) (*m.Report, error)
	View(ctx context.Context, args ViewArgs) error
}

type workflow struct {
	adapter.SourceFSAdapter
	adapter.ReportStore
	adapter.GitAdapter
	controller.UI

	sources adapter.ClassSources
	differ  ClassDiffer
}

// NewWorkflow creates a new Workflow instance with the provided dependencies.
func NewWorkflow(
	fsAdapter adapter.SourceFSAdapter,
	reportStore adapter.ReportStore,
	gitAdapter adapter.GitAdapter,
	ui controller.UI,
	sources adapter.ClassSources,
	differ ClassDiffer,
) Workflow {
	return &workflow{
		SourceFSAdapter: fsAdapter,
		ReportStore:     reportStore,
		GitAdapter:      gitAdapter,
		UI:              ui,
		sources:         sources,
		differ:          differ,
	}
}

// snapshot is one parsed version of a source tree.
type snapshot struct {
	files   []m.File
	classes []*m.Class
}

// classPair is one unit of work for the class differ.
type classPair struct {
	before *m.Class
	after  *m.Class
}

// Diff compares the source trees (or single files) at args.Before and args.After.
func (w *workflow) Diff(ctx context.Context, args DiffArgs) (*m.Report, error) {
	before, err := w.loadTree(args.Before, args.Exclude)
	if err != nil {
		slog.Error("Failed to load before snapshot", "path", args.Before, "error", err)
		return nil, fmt.Errorf("load snapshot %s: %w", args.Before, err)
	}

	after, err := w.loadTree(args.After, args.Exclude)
	if err != nil {
		slog.Error("Failed to load after snapshot", "path", args.After, "error", err)
		return nil, fmt.Errorf("load snapshot %s: %w", args.After, err)
	}

	return w.compare(ctx, string(args.Before), string(args.After), before, after, args.Reports, args.Threads)
}

// Commit compares args.Revision with its first parent in args.Repository.
func (w *workflow) Commit(ctx context.Context, args CommitArgs) (*m.Report, error) {
	include := func(path m.Path) bool {
		return w.sources.Supports(path) && !adapter.MatchesAny(args.Exclude, string(path))
	}

	changes, err := w.CommitChanges(ctx, args.Repository, args.Revision, include)
	if err != nil {
		slog.Error("Failed to read commit", "revision", args.Revision, "error", err)
		return nil, fmt.Errorf("read commit: %w", err)
	}

	before, err := w.parseFiles(changes.Before)
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", changes.Parent, err)
	}

	after, err := w.parseFiles(changes.After)
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", changes.Commit, err)
	}

	return w.compare(ctx, changes.Parent, changes.Commit, before, after, args.Reports, args.Threads)
}

// View displays a previously saved report.
func (w *workflow) View(ctx context.Context, args ViewArgs) error {
	report, err := w.LoadReport(args.Report)
	if err != nil {
		slog.Error("Failed to load report", "path", args.Report, "error", err)
		return fmt.Errorf("load report: %w", err)
	}

	return w.display(ctx, report)
}

func (w *workflow) compare(ctx context.Context, beforeName, afterName string, before, after *snapshot, reports m.Path, threads uint) (*m.Report, error) {
	pairs := pairClasses(before.classes, after.classes)

	classes, err := w.diffPairs(ctx, pairs, threads)
	if err != nil {
		return nil, fmt.Errorf("diff classes: %w", err)
	}

	report := &m.Report{
		Before:      beforeName,
		After:       afterName,
		Fingerprint: adapter.TreeFingerprint(append(slices.Clone(before.files), after.files...)),
		CreatedAt:   time.Now().UTC(),
		Classes:     classes,
	}

	if reports != "" {
		path := w.JoinPath(string(reports), reportPrefix+report.Fingerprint[:12]+".yaml")
		if err := w.SaveReport(path, report); err != nil {
			slog.Error("Failed to save report", "path", path, "error", err)
			return nil, fmt.Errorf("save report: %w", err)
		}

		slog.Info("saved report", "path", path)
	}

	if err := w.display(ctx, report); err != nil {
		return nil, err
	}

	return report, nil
}

func (w *workflow) display(ctx context.Context, report *m.Report) error {
	if err := w.Start(ctx); err != nil {
		slog.Error("Failed to start workflow UI", "error", err)
		return err
	}

	if err := w.DisplayReport(ctx, report); err != nil {
		w.Close(ctx)
		slog.Error("Failed to display report", "error", err)

		return fmt.Errorf("display: %w", err)
	}

	// Wait for UI to be closed by user (press 'q')
	w.Wait(ctx)
	w.Close(ctx)

	return nil
}

// diffPairs runs the class differ over pairs with at most threads workers.
// Each worker owns the ClassDiffState of its pair; reports are spilled as they
// complete and returned sorted by (file, class).
func (w *workflow) diffPairs(ctx context.Context, pairs []classPair, threads uint) ([]m.ClassReport, error) {
	spill, err := pkg.NewFileSpill[m.ClassReport]("")
	if err != nil {
		return nil, err
	}

	defer func() {
		if err := spill.Remove(); err != nil {
			slog.Warn("failed to remove class report spill", "path", spill.Path(), "error", err)
		}
	}()

	group, groupCtx := errgroup.WithContext(ctx)
	if threads > 0 {
		group.SetLimit(int(threads))
	}

	for _, pair := range pairs {
		currentPair := pair

		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}

			diff := w.differ.Diff(currentPair.before, currentPair.after)
			if diff.IsEmpty() {
				return nil
			}

			return spill.Append(m.NewClassReport(diff))
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	classes := make([]m.ClassReport, 0, spill.Len())

	err = spill.Range(func(_ uint64, item m.ClassReport) error {
		classes = append(classes, item)
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(classes, func(a, b m.ClassReport) int {
		if c := strings.Compare(string(a.File), string(b.File)); c != 0 {
			return c
		}

		return strings.Compare(a.Class, b.Class)
	})

	return classes, nil
}

// pairClasses pairs classes by (file, name), falling back to a name that is
// unique on both sides so that classes survive a file rename. Classes without
// a counterpart are not compared.
func pairClasses(before, after []*m.Class) []classPair {
	type key struct {
		file m.Path
		name string
	}

	byKey := make(map[key]*m.Class, len(before))
	for _, c := range before {
		byKey[key{c.File, c.Name}] = c
	}

	used := make(map[*m.Class]bool)

	var (
		pairs    []classPair
		unpaired []*m.Class
	)

	for _, a := range after {
		if b, ok := byKey[key{a.File, a.Name}]; ok && !used[b] {
			used[b] = true
			pairs = append(pairs, classPair{before: b, after: a})

			continue
		}

		unpaired = append(unpaired, a)
	}

	for _, a := range unpaired {
		var candidates []*m.Class

		for _, b := range before {
			if !used[b] && b.Name == a.Name {
				candidates = append(candidates, b)
			}
		}

		if len(candidates) != 1 || countNamed(unpaired, a.Name) != 1 {
			slog.Debug("class has no counterpart", "class", a.Name, "file", a.File)
			continue
		}

		used[candidates[0]] = true
		pairs = append(pairs, classPair{before: candidates[0], after: a})
	}

	return pairs
}

func countNamed(classes []*m.Class, name string) int {
	n := 0

	for _, c := range classes {
		if c.Name == name {
			n++
		}
	}

	return n
}

// loadTree parses root, which may be a single file or a directory. Paths are
// recorded relative to root (or to the file's directory) so that two trees
// at different locations pair up.
func (w *workflow) loadTree(root m.Path, exclude []string) (*snapshot, error) {
	info, err := w.FileInfo(root)
	if err != nil {
		return nil, fmt.Errorf("root path error: %w", err)
	}

	base := root
	if !info.IsDir() {
		base = m.Path(filepath.Dir(string(root)))
	}

	var files []adapter.SourceFile

	err = w.Walk(root, true, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		rel, err := w.RelPath(base, m.Path(path))
		if err != nil {
			return err
		}

		if rel != "." && adapter.MatchesAny(exclude, string(rel)) {
			if info.IsDir() {
				return filepath.SkipDir
			}

			return nil
		}

		if info.IsDir() || !w.sources.Supports(rel) {
			return nil
		}

		content, err := w.ReadFile(m.Path(path))
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}

		files = append(files, adapter.SourceFile{Path: rel, Content: content})

		return nil
	})
	if err != nil {
		return nil, err
	}

	return w.parseFiles(files)
}

func (w *workflow) parseFiles(files []adapter.SourceFile) (*snapshot, error) {
	out := &snapshot{}

	for _, f := range files {
		classes, err := w.sources.Classes(f.Path, f.Content)
		if err != nil {
			return nil, fmt.Errorf("parse error in %s: %w", f.Path, err)
		}

		out.files = append(out.files, m.File{
			Path:     f.Path,
			Hash:     adapter.HashBytes(f.Content),
			Language: w.sources.LanguageOf(f.Path),
		})
		out.classes = append(out.classes, classes...)
	}

	return out, nil
}
