// Package pipeline wires the lexical parser, AST builder, rewriter, and
// validator into the single entry point callers actually use:
// Run(ctx, queryText, cfg).
package pipeline

import (
	"context"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/sirupsen/logrus"

	"github.com/cyquery/frontend/ast"
	"github.com/cyquery/frontend/build"
	"github.com/cyquery/frontend/errctx"
	"github.com/cyquery/frontend/params"
	"github.com/cyquery/frontend/parser"
	"github.com/cyquery/frontend/registry"
	"github.com/cyquery/frontend/rewrite"
	"github.com/cyquery/frontend/validate"
)

// Config carries the knobs a caller may set. The timeout/cap/pool fields
// are accepted and stored only — the front-end does not enforce them,
// matching spec.md §6's "tunable knobs are configuration, not interpreted
// here" requirement.
type Config struct {
	// QueryTimeout bounds how long a downstream executor should run the
	// validated query for. Unused by this package.
	QueryTimeout time.Duration
	// ResultSetCap bounds the number of rows a downstream executor should
	// materialize. Unused by this package.
	ResultSetCap int
	// MemoryCapBytes bounds per-query memory for a downstream executor.
	// Unused by this package.
	MemoryCapBytes int64
	// WorkerPoolSize sizes a downstream executor's worker pool. Unused by
	// this package.
	WorkerPoolSize int
	// CacheSize sizes a downstream plan/metadata cache. Unused by this
	// package.
	CacheSize int

	// Logger receives one Debug entry per phase, and a Warn entry when a
	// phase fails. Defaults to logrus.StandardLogger().
	Logger *logrus.Logger
	// Tracer wraps each phase in a span. Defaults to the global no-op
	// tracer, so the pipeline costs nothing when the caller installs none.
	Tracer opentracing.Tracer

	Procedures *registry.Procedures
	Functions  *registry.Functions

	// Filename labels positions in diagnostics; purely cosmetic.
	Filename string
}

func (c Config) logger() *logrus.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return logrus.StandardLogger()
}

func (c Config) tracer() opentracing.Tracer {
	if c.Tracer != nil {
		return c.Tracer
	}
	return opentracing.GlobalTracer()
}

// Result is what a successful run hands the caller: the validated (and
// possibly rewritten) AST handle plus how many rewrite passes it took to
// reach a fixpoint.
type Result struct {
	Handle        *ast.Handle
	Params        map[string]any
	RewritePasses int
}

// Run drives Params -> Parse -> Build -> Rewrite -> Validate, logging and
// tracing each phase, and stops at the first failing phase.
func Run(ctx context.Context, queryText string, cfg Config) (*Result, error) {
	log := cfg.logger()
	tracer := cfg.tracer()

	var paramValues map[string]any
	paramsOut, err := runPhase(ctx, tracer, log, "params", nil, func() (*phaseOut, error) {
		values, rest, err := params.Strip(queryText)
		if err != nil {
			return nil, err
		}
		return &phaseOut{remainder: rest, params: values}, nil
	})
	if err != nil {
		return nil, err
	}
	paramValues = paramsOut.params

	parseRes, err := runPhase(ctx, tracer, log, "parse", nil, func() (*phaseOut, error) {
		res, err := build.Parse(cfg.Filename, []byte(paramsOut.remainder))
		if err != nil {
			return nil, err
		}
		return &phaseOut{parseResult: res}, nil
	})
	if err != nil {
		return nil, err
	}

	buildOut, err := runPhase(ctx, tracer, log, "build", nil, func() (*phaseOut, error) {
		handle, err := build.Build(parseRes.parseResult)
		if err != nil {
			return nil, err
		}
		return &phaseOut{handle: handle}, nil
	})
	if err != nil {
		return nil, err
	}
	handle := buildOut.handle

	rewriter := rewrite.New()
	passes := 0
	_, err = runPhase(ctx, tracer, log, "rewrite", map[string]any{"clause_count": clauseCount(handle.Root())}, func() (*phaseOut, error) {
		for i := 0; i < 8; i++ {
			if !rewriter.Rewrite(handle.Root()) {
				break
			}
			passes++
		}
		return &phaseOut{}, nil
	})
	if err != nil {
		return nil, err
	}

	_, err = runPhase(ctx, tracer, log, "validate", map[string]any{"clause_count": clauseCount(handle.Root())}, func() (*phaseOut, error) {
		ectx := errctx.New("validate")
		procs := cfg.Procedures
		if procs == nil {
			procs = registry.NewProcedures()
		}
		funcs := cfg.Functions
		if funcs == nil {
			funcs = registry.NewFunctions()
		}
		v := validate.New(ectx, handle.Context(), procs, funcs)
		if verr := v.Validate(handle.Root()); verr != nil {
			return nil, verr
		}
		return &phaseOut{}, nil
	})
	if err != nil {
		return nil, err
	}

	return &Result{Handle: handle, Params: paramValues, RewritePasses: passes}, nil
}

type phaseOut struct {
	remainder   string
	params      map[string]any
	parseResult *parser.Result
	handle      *ast.Handle
}

func runPhase(ctx context.Context, tracer opentracing.Tracer, log *logrus.Logger, phase string, fields logrus.Fields, fn func() (*phaseOut, error)) (*phaseOut, error) {
	span := tracer.StartSpan(phase)
	defer span.Finish()

	entry := log.WithField("phase", phase)
	for k, v := range fields {
		entry = entry.WithField(k, v)
	}
	entry.Debug("running pipeline phase")

	out, err := fn()
	if err != nil {
		entry.WithError(err).Warn("pipeline phase failed")
		return nil, err
	}
	return out, nil
}

func clauseCount(q *ast.Query) int {
	n := 0
	for _, sq := range q.Single {
		n += len(sq.Clauses)
	}
	return n
}
