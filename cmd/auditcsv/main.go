package main

import (
	"context"
	"flag"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"auditfix/internal/audit"
	"auditfix/internal/ops"

	pyroscope "github.com/grafana/pyroscope-go"
	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
)

const usageExamples = `
Examples:
  # Convert an audit file to csv next to it
  auditcsv -input /data/audit_reports/2026-01-30.tmp

  # Choose the output file
  auditcsv -input audit.tmp -output orders.csv

  # Convert every .tmp file in a directory
  auditcsv -input-dir /data/audit_reports
`

type options struct {
	input       string
	output      string
	inputDir    string
	suffix      string
	configPath  string
	summaryJSON string
	pgDSN       string
	pgTable     string
	profileAddr string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stderr); err != nil {
		if err == flag.ErrHelp {
			return
		}
		logs.Errorf("auditcsv: %+v", err)
		stop()
		os.Exit(1)
	}
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opt options
	fs := flag.NewFlagSet("auditcsv", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opt.input, "input", "", "Path to the audit trail xml file (.tmp)")
	fs.StringVar(&opt.input, "i", "", "Shorthand for -input")
	fs.StringVar(&opt.output, "output", "", "Output csv path (default: input path with .csv); output directory with -input-dir")
	fs.StringVar(&opt.output, "o", "", "Shorthand for -output")
	fs.StringVar(&opt.inputDir, "input-dir", "", "Convert every file with -suffix in this directory")
	fs.StringVar(&opt.suffix, "suffix", audit.DefaultInputSuffix, "Input file suffix for -input-dir")
	fs.StringVar(&opt.configPath, "config", "", "Path to JSON config")
	fs.StringVar(&opt.summaryJSON, "summary-json", "", "Write the summary as JSON (a directory with -input-dir)")
	fs.StringVar(&opt.pgDSN, "pg-dsn", "", "Also store records in PostgreSQL (overrides config store.dsn)")
	fs.StringVar(&opt.pgTable, "pg-table", "", "PostgreSQL table (default: audit_records)")
	fs.StringVar(&opt.profileAddr, "profile-addr", "", "Pyroscope server address, e.g. http://localhost:4040")
	fs.Usage = func() {
		_, _ = io.WriteString(stderr, "Convert audit trail xml files into csv\n\nUsage of auditcsv:\n")
		fs.PrintDefaults()
		_, _ = io.WriteString(stderr, usageExamples)
	}
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	opt.input = strings.TrimSpace(opt.input)
	opt.inputDir = strings.TrimSpace(opt.inputDir)
	switch {
	case opt.input == "" && opt.inputDir == "":
		fs.Usage()
		return options{}, errors.New("missing input; use -input or -input-dir")
	case opt.input != "" && opt.inputDir != "":
		return options{}, errors.New("-input and -input-dir are mutually exclusive")
	}
	return opt, nil
}

func run(ctx context.Context, args []string, stderr io.Writer) error {
	opt, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	loaded, err := ops.Load(opt.configPath)
	if err != nil {
		return errors.Wrap(err, "load config")
	}
	if opt.pgDSN != "" {
		loaded.Store.ConnString = opt.pgDSN
	}
	if opt.pgTable != "" {
		loaded.Store.Table = opt.pgTable
	}

	if opt.profileAddr != "" {
		profiler, err := startProfiler(opt.profileAddr)
		if err != nil {
			return err
		}
		defer func() {
			_ = profiler.Stop()
		}()
	}

	p, err := newPipeline(loaded)
	if err != nil {
		return err
	}
	defer p.Close()

	if opt.inputDir != "" {
		return p.convertDir(ctx, opt.inputDir, opt.suffix, opt.output, opt.summaryJSON)
	}
	return p.convertFile(ctx, opt.input, opt.output, opt.summaryJSON)
}

func startProfiler(addr string) (*pyroscope.Profiler, error) {
	profiler, err := pyroscope.Start(pyroscope.Config{
		ApplicationName: "auditfix.auditcsv",
		ServerAddress:   addr,
		Logger:          profilerLogger{},
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseSpace,
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "start profiler").With("addr", addr)
	}
	logs.Infof("profiling to %s", addr)
	return profiler, nil
}

type profilerLogger struct{}

func (profilerLogger) Infof(format string, args ...interface{}) {
	logs.Infof(format, args...)
}

func (profilerLogger) Debugf(_ string, _ ...interface{}) {}

func (profilerLogger) Errorf(format string, args ...interface{}) {
	logs.Errorf(format, args...)
}
