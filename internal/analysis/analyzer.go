// SPDX-License-Identifier: MPL-2.0

package analysis

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/clonescan/clonescan/internal/fingerprint"
	"github.com/clonescan/clonescan/internal/resolver"
	"github.com/clonescan/clonescan/internal/toolchain"
	"github.com/clonescan/clonescan/pkg/platform"
	"github.com/clonescan/clonescan/pkg/workspace"
)

const (
	// DefaultParallelism is the number of modules of one level processed at once.
	DefaultParallelism = 1
	// DefaultHashWorkers is the number of goroutines hashing one module's callables.
	DefaultHashWorkers = 4
)

type (
	// Resolver binds a library reference for a requesting platform.
	Resolver interface {
		Resolve(ctx context.Context, ref resolver.Reference, requester platform.Moniker, loaded *resolver.LookupSet) (resolver.Binary, error)
	}

	// Options configures an Analyzer. Zero values select the defaults.
	Options struct {
		Parallelism  int
		HashWorkers  int
		Logger       *log.Logger
		OnTransition func(Transition)
	}

	// Analyzer runs the duplicate-detection pipeline. It holds no per-run
	// state and may be reused for several runs.
	Analyzer struct {
		compiler  toolchain.Compiler
		extractor toolchain.Extractor
		resolver  Resolver
		opts      Options
		logger    *log.Logger
	}

	// run is the state of one Run call.
	run struct {
		*Analyzer
		loaded *resolver.LookupSet
		index  *fingerprint.Index
		report *Report

		transitionMu sync.Mutex
	}

	// moduleWork carries one module through a level.
	moduleWork struct {
		module     workspace.Module
		unit       *toolchain.Unit
		unresolved []Unresolved
		failure    *Failure
		warnings   []ExtractionWarning
		prepared   []fingerprint.Prepared
	}
)

// New creates an Analyzer.
func New(compiler toolchain.Compiler, extractor toolchain.Extractor, res Resolver, opts Options) *Analyzer {
	if opts.Parallelism < 1 {
		opts.Parallelism = DefaultParallelism
	}
	if opts.HashWorkers < 1 {
		opts.HashWorkers = DefaultHashWorkers
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{
			Prefix: "analyze",
			Level:  log.WarnLevel,
		})
	}
	return &Analyzer{
		compiler:  compiler,
		extractor: extractor,
		resolver:  res,
		opts:      opts,
		logger:    logger,
	}
}

// Run analyzes every module of the graph and returns the report.
//
// A cyclic graph or a canceled context aborts the run: no report is returned.
// Every other failure is recorded in the report.
func (a *Analyzer) Run(ctx context.Context, graph *workspace.Graph) (*Report, error) {
	r := &run{
		Analyzer: a,
		loaded:   resolver.NewLookupSet(),
		index:    fingerprint.New(),
		report:   &Report{Workspace: graph.Name()},
	}
	r.transition(Transition{State: StateInit})

	report, err := r.walk(ctx, graph)
	if err != nil {
		r.transition(Transition{State: StateAborted})
		return nil, err
	}
	r.transition(Transition{State: StateDone})
	return report, nil
}

func (r *run) walk(ctx context.Context, graph *workspace.Graph) (*Report, error) {
	r.transition(Transition{State: StateWalking})
	levels, err := graph.Levels()
	if err != nil {
		return nil, err
	}
	r.report.Stats.Modules = graph.Len()
	r.logger.Info("analyzing workspace", "modules", graph.Len(), "levels", len(levels))

	for _, level := range levels {
		if err := r.processLevel(ctx, level); err != nil {
			return nil, err
		}
	}

	r.transition(Transition{State: StateReporting})
	r.report.Duplicates = r.index.Duplicates()
	stats := r.index.Stats()
	r.report.Stats.Callables = stats.Observed
	r.report.Stats.Absent = stats.Absent
	r.report.Stats.Unique = stats.Unique
	r.report.Stats.Duplicates = len(r.report.Duplicates)
	return r.report, nil
}

// processLevel compiles the level's modules in walk order, extracts and
// hashes them concurrently, then commits them in walk order.
func (r *run) processLevel(ctx context.Context, level []workspace.Module) error {
	work := make([]*moduleWork, len(level))
	for i, m := range level {
		w, err := r.compile(ctx, m)
		if err != nil {
			return err
		}
		work[i] = w
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Parallelism)
	for _, w := range work {
		if w.unit == nil {
			continue
		}
		g.Go(func() error {
			return r.extract(gctx, w)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, w := range work {
		r.commit(w)
	}
	return nil
}

func (r *run) compile(ctx context.Context, m workspace.Module) (*moduleWork, error) {
	w := &moduleWork{module: m}
	r.transition(Transition{State: StateCompiling, Module: m.Name})

	resolve := func(ctx context.Context, ref workspace.Reference) (string, error) {
		r.transition(Transition{State: StateResolving, Module: m.Name, Library: ref.Name})
		bin, err := r.resolver.Resolve(ctx, resolver.Reference{Library: ref.Name, Version: ref.Version}, m.Target, r.loaded)
		if err != nil {
			var unresolved *resolver.UnresolvedError
			if errors.As(err, &unresolved) {
				w.unresolved = append(w.unresolved, Unresolved{
					Module:  m.Name,
					Library: ref.Name,
					Version: ref.Version,
					Reason:  unresolved.Reason,
					Detail:  errorDetail(unresolved.Err),
				})
				r.logger.Warn("unresolved reference", "module", m.Name, "library", ref.Name, "version", ref.Version, "reason", unresolved.Reason)
			}
			return "", err
		}
		r.logger.Debug("resolved reference", "module", m.Name, "library", ref.Name, "path", bin.Path)
		return bin.Path, nil
	}

	unit, err := r.compiler.Compile(ctx, m, resolve)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("analysis canceled while compiling %s: %w", m.Name, ctxErr)
	}
	if err != nil {
		w.failure = &Failure{Module: m.Name, Reason: err.Error()}
		r.logger.Warn("module failed to compile", "module", m.Name, "error", err)
		return w, nil
	}

	w.unit = unit
	r.loaded.Add(resolver.Binary{Library: m.Name, Moniker: m.Target, Path: unit.Path})
	return w, nil
}

func (r *run) extract(ctx context.Context, w *moduleWork) error {
	name := w.module.Name
	r.transition(Transition{State: StateExtracting, Module: name})

	extraction, err := r.extractor.Extract(ctx, w.unit)
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("analysis canceled while extracting %s: %w", name, ctxErr)
	}
	if err != nil {
		w.failure = &Failure{Module: name, Reason: err.Error()}
		r.logger.Warn("module output could not be read", "module", name, "error", err)
		return nil
	}
	for _, te := range extraction.TypeErrors {
		w.warnings = append(w.warnings, ExtractionWarning{Module: name, Type: te.Type, Reason: errorDetail(te.Err)})
		r.logger.Warn("skipped declaring type", "module", name, "type", te.Type, "error", te.Err)
	}

	r.transition(Transition{State: StateFingerprinting, Module: name})
	w.prepared, err = fingerprint.Prepare(ctx, extraction.Callables, r.opts.HashWorkers)
	return err
}

func (r *run) commit(w *moduleWork) {
	rep := r.report
	rep.Unresolved = append(rep.Unresolved, w.unresolved...)
	if w.failure != nil {
		rep.Failures = append(rep.Failures, *w.failure)
		return
	}
	rep.Stats.Compiled++
	rep.ExtractionWarnings = append(rep.ExtractionWarnings, w.warnings...)

	dups := r.index.Commit(w.prepared)
	r.logger.Info("module analyzed", "module", w.module.Name, "callables", len(w.prepared), "duplicates", len(dups))
	w.prepared = nil
}

func (r *run) transition(t Transition) {
	if r.opts.OnTransition == nil {
		return
	}
	r.transitionMu.Lock()
	defer r.transitionMu.Unlock()
	r.opts.OnTransition(t)
}

func errorDetail(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
