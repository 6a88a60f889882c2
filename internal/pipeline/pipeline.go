// Package pipeline runs the district ETL end to end: load and clean the four
// sources, merge them, write the final table and summarize it.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/district-etl/internal/clean"
	"github.com/sells-group/district-etl/internal/config"
	"github.com/sells-group/district-etl/internal/export"
	"github.com/sells-group/district-etl/internal/merge"
	"github.com/sells-group/district-etl/internal/model"
	"github.com/sells-group/district-etl/internal/report"
	"github.com/sells-group/district-etl/internal/source"
	"github.com/sells-group/district-etl/internal/summary"
)

// Options configures a run. Paths are resolved before the run starts.
type Options struct {
	// Inputs maps each source name to its file.
	Inputs             map[string]string
	Candidates         clean.Candidates
	ExpectedExclusions []string
	OutputPath         string
	Encoding           export.Encoding
	Sinks              []export.Sink
}

// OptionsFromConfig resolves every path and name a run needs from cfg.
// Sinks are left to the caller because they hold connections.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	candidates, err := clean.ParseCandidates(cfg.Vote.Candidates)
	if err != nil {
		return Options{}, err
	}
	enc, err := export.ParseEncoding(cfg.Output.Encoding)
	if err != nil {
		return Options{}, err
	}

	return Options{
		Inputs: map[string]string{
			clean.SourceVote:       cfg.Data.Resolve(cfg.Data.VoteFile),
			clean.SourcePopulation: cfg.Data.Resolve(cfg.Data.PopulationFile),
			clean.SourceRevenue:    cfg.Data.Resolve(cfg.Data.RevenueFile),
			clean.SourceEducation:  cfg.Data.Resolve(cfg.Data.EducationFile),
		},
		Candidates:         candidates,
		ExpectedExclusions: cfg.Merge.ExpectedExclusions,
		OutputPath:         cfg.OutputPath(),
		Encoding:           enc,
	}, nil
}

// Run executes the whole pipeline and returns its report. Any I/O failure
// or missing required column aborts the run.
func Run(ctx context.Context, opts Options) (*report.Report, error) {
	start := time.Now()
	rep := &report.Report{
		RunID:     uuid.New().String(),
		StartedAt: start.UTC(),
	}
	log := zap.L().With(zap.String("run_id", rep.RunID))
	log.Info("pipeline: starting run")

	reg := clean.NewRegistry(opts.Candidates)
	results, err := LoadAll(ctx, reg, opts.Inputs)
	if err != nil {
		return nil, err
	}

	for i, name := range reg.AllNames() {
		rep.Inputs = append(rep.Inputs, report.Input{Source: name, Path: opts.Inputs[name]})
		rep.Sources = append(rep.Sources, results[i].Stats)
	}

	merged, err := merge.Merge(merge.Inputs{
		Vote:       results[0].Table,
		Population: results[1].Table,
		Revenue:    results[2].Table,
		Education:  results[3].Table,
	}, merge.Options{
		Candidates:         opts.Candidates,
		ExpectedExclusions: opts.ExpectedExclusions,
	})
	if err != nil {
		return nil, err
	}
	rep.Merge = &merged.Report

	if err := export.WriteFile(opts.OutputPath, merged.Table, opts.Encoding); err != nil {
		return nil, err
	}
	rep.Output = opts.OutputPath
	rep.Encoding = opts.Encoding
	log.Info("pipeline: final table written",
		zap.String("path", opts.OutputPath),
		zap.String("encoding", string(opts.Encoding)),
	)

	for _, s := range opts.Sinks {
		n, err := s.Write(ctx, merged.Table)
		if err != nil {
			return nil, eris.Wrapf(err, "pipeline: sink %s", s.Name())
		}
		rep.Sinks = append(rep.Sinks, export.SinkResult{Sink: s.Name(), Target: s.Target(), Rows: n})
	}

	rep.Summary = summary.Summarize(merged.Table, opts.Candidates)
	rep.DurationMs = time.Since(start).Milliseconds()

	log.Info("pipeline: run complete",
		zap.Int("districts", merged.Table.Len()),
		zap.Int64("duration_ms", rep.DurationMs),
	)
	return rep, nil
}

// LoadAll reads and cleans every registered source concurrently. Results
// are returned in registry order regardless of completion order.
func LoadAll(ctx context.Context, reg *clean.Registry, inputs map[string]string) ([]*clean.Result, error) {
	cleaners := reg.All()
	for _, c := range cleaners {
		if _, ok := inputs[c.Name()]; !ok {
			return nil, eris.Errorf("pipeline: no input configured for %s", c.Name())
		}
	}

	results := make([]*clean.Result, len(cleaners))
	g, gCtx := errgroup.WithContext(ctx)
	for i, c := range cleaners {
		path := inputs[c.Name()]
		g.Go(func() error {
			res, err := LoadSource(gCtx, c, path)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// LoadSource reads one file and runs its cleaner.
func LoadSource(ctx context.Context, c clean.Cleaner, path string) (*clean.Result, error) {
	raw, err := source.Read(ctx, c.Name(), path)
	if err != nil {
		return nil, err
	}
	return c.Clean(raw)
}

// LoadFinal reads a final table CSV back. District and Winner stay text,
// blank cells are missing and every other cell is parsed as a number.
func LoadFinal(ctx context.Context, path string) (*model.Table, error) {
	raw, err := source.Read(ctx, merge.FinalName, path)
	if err != nil {
		return nil, err
	}
	if _, ok := raw.ColumnIndex()[model.KeyColumn]; !ok {
		return nil, eris.Wrapf(clean.ErrMissingColumn, "pipeline: %s: %q", path, model.KeyColumn)
	}

	t := model.NewTable(merge.FinalName, raw.Header...)
	for _, rec := range raw.Records {
		row := make(model.Row, len(raw.Header))
		for i, col := range raw.Header {
			var cell string
			if i < len(rec) {
				cell = rec[i]
			}
			switch col {
			case model.KeyColumn:
				row[col] = model.Text(clean.District(cell))
			case clean.ColWinner:
				row[col] = model.Text(cell)
			default:
				row[col] = clean.ParseNumber(cell)
			}
		}
		t.Append(row)
	}
	return t, nil
}
