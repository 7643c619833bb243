package main

import (
	"context"
	"path/filepath"
	"strings"

	"auditfix/internal/audit"
	"auditfix/internal/obs"
	"auditfix/internal/ops"
	"auditfix/internal/schema"
	"auditfix/internal/store"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
)

const summarySuffix = ".summary.json"

// pipeline converts one audit file at a time: decode, write csv, summarize,
// then the optional exports.
type pipeline struct {
	decoder *audit.Decoder
	writer  *schema.Writer
	topN    int
	store   *store.Store
}

func newPipeline(loaded ops.Loaded) (*pipeline, error) {
	decoder, err := audit.NewDecoder(loaded.Decoder)
	if err != nil {
		return nil, errors.Wrap(err, "create decoder")
	}
	writer, err := schema.NewWriter(loaded.Writer)
	if err != nil {
		return nil, errors.Wrap(err, "create writer")
	}
	p := &pipeline{decoder: decoder, writer: writer, topN: loaded.TopSymbols}
	if loaded.StoreEnabled() {
		s, err := store.New(loaded.Store)
		if err != nil {
			return nil, errors.Wrap(err, "connect store")
		}
		p.store = s
	}
	return p, nil
}

func (p *pipeline) Close() {
	if err := p.store.Close(); err != nil {
		logs.Errorf("close store: %+v", err)
	}
}

func (p *pipeline) convertFile(ctx context.Context, input, output, summaryPath string) error {
	if abs, err := filepath.Abs(input); err == nil {
		input = abs
	}
	if output == "" {
		output = audit.OutputPath(input)
	}

	records, _, err := p.decoder.DecodeFile(ctx, input)
	if err != nil {
		return err
	}
	if _, err := p.writer.WriteFile(output, records); err != nil {
		return err
	}

	summary := obs.Summarize(records, p.topN)
	summary.Log()

	if summaryPath != "" {
		if err := obs.WriteSummaryJSON(summaryPath, summary); err != nil {
			return err
		}
		logs.Infof("summary written to %s", summaryPath)
	}

	if p.store != nil {
		if _, err := p.store.SaveRecords(ctx, runName(input), records); err != nil {
			return err
		}
	}
	return nil
}

// convertDir converts every matching file in dir. A failing file does not
// stop the others; the run fails at the end if any file failed.
func (p *pipeline) convertDir(ctx context.Context, dir, suffix, outDir, summaryDir string) error {
	files, err := audit.CollectFiles(dir, suffix)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		logs.Infof("no %s files in %s", suffix, dir)
		return nil
	}

	failed := 0
	for i, file := range files {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logs.Infof("[%d/%d] %s", i+1, len(files), file)

		output := audit.OutputPath(file)
		if outDir != "" {
			output = filepath.Join(outDir, filepath.Base(output))
		}
		summaryPath := ""
		if summaryDir != "" {
			summaryPath = filepath.Join(summaryDir, runName(file)+summarySuffix)
		}

		if err := p.convertFile(ctx, file, output, summaryPath); err != nil {
			if ctx.Err() != nil {
				return err
			}
			logs.Errorf("convert %s: %+v", file, err)
			failed++
		}
	}

	if failed != 0 {
		return errors.Errorf("%d of %d files failed", failed, len(files))
	}
	return nil
}

// runName identifies the records of one input file, e.g. "2026-01-30" for
// ".../2026-01-30.tmp".
func runName(input string) string {
	base := filepath.Base(input)
	if ext := filepath.Ext(base); ext != base {
		base = strings.TrimSuffix(base, ext)
	}
	return base
}
