// Command aozan runs a recipe over the sequencing runs found by its
// providers.
//
//	aozan -conf aozan.conf -recipe sync.yaml [-s key=value]... [-list] [run id]...
//
// Without run ids every available run is processed. When aozan.report.dir is
// set, the execution report is kept there.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/GenomiqueENS/aozan-sub001/config"
	"github.com/GenomiqueENS/aozan-sub001/logging"
	"github.com/GenomiqueENS/aozan-sub001/mail"
	"github.com/GenomiqueENS/aozan-sub001/processor"
	"github.com/GenomiqueENS/aozan-sub001/provider"
	"github.com/GenomiqueENS/aozan-sub001/recipe"
	"github.com/GenomiqueENS/aozan-sub001/reports"
)

const (
	exitSuccess           = 0
	exitFailure           = 1
	exitInvalidInvocation = 2
)

// settings collects repeated -s key=value flags.
type settings struct {
	conf *config.Configuration
}

func (s *settings) String() string {
	if s.conf == nil {
		return ""
	}
	return s.conf.String()
}

func (s *settings) Set(v string) error {
	if !strings.Contains(v, "=") {
		return fmt.Errorf("setting %q is not of the form key=value", v)
	}
	s.conf.ParseAndSet(v)
	return nil
}

type invocation struct {
	confPath   string
	recipePath string
	list       bool
	overrides  *config.Configuration
	runIDs     []string
}

func parseInvocation(args []string) (invocation, error) {
	fs := flag.NewFlagSet("aozan", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	inv := invocation{overrides: config.New(nil)}
	fs.StringVar(&inv.confPath, "conf", "", "Aozan configuration file (key=value).")
	fs.StringVar(&inv.recipePath, "recipe", "", "Recipe file (YAML). Required.")
	fs.BoolVar(&inv.list, "list", false, "List the available runs and exit.")
	fs.Var(&settings{conf: inv.overrides}, "s", "Override a configuration setting (key=value). Repeatable.")

	if err := fs.Parse(args); err != nil {
		return invocation{}, err
	}
	if inv.recipePath == "" {
		return invocation{}, errors.New("-recipe is required")
	}
	inv.runIDs = fs.Args()
	if inv.list && len(inv.runIDs) > 0 {
		return invocation{}, errors.New("-list does not take run ids")
	}
	return inv, nil
}

func main() {
	if err := registerBuiltins(processor.DefaultRegistry, provider.DefaultRegistry); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitFailure)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	inv, err := parseInvocation(args)
	if err != nil {
		fmt.Fprintf(stderr, "aozan: %v\n", err)
		fmt.Fprintln(stderr, "usage: aozan -recipe file [-conf file] [-s key=value]... [-list] [run id]...")
		return exitInvalidInvocation
	}

	conf := config.New(nil)
	if inv.confPath != "" {
		if conf, err = config.Load(inv.confPath); err != nil {
			fmt.Fprintf(stderr, "aozan: failed to load configuration: %v\n", err)
			return exitFailure
		}
	}
	conf.Merge(inv.overrides)

	logger, closer, err := logging.New(conf)
	if err != nil {
		fmt.Fprintf(stderr, "aozan: %v\n", err)
		return exitFailure
	}
	defer closer.Close()

	mailer, err := mail.NewMailer(conf, &mail.LogTransport{Logger: logger}, logger, mail.Options{Stdout: stdout, Stderr: stderr})
	if err != nil {
		logger.Error("invalid mail configuration", "error", err)
		return exitFailure
	}

	r, err := loadRecipe(inv, conf, logger, mailer)
	if err != nil {
		return fail(logger, mailer, err)
	}

	store, err := openReportStore(conf, logger)
	if err != nil {
		return fail(logger, mailer, err)
	}

	if inv.list {
		ids, err := r.AvailableRuns(ctx)
		if err != nil {
			return fail(logger, mailer, err)
		}
		for _, id := range ids {
			fmt.Fprintln(stdout, id)
		}
		return exitSuccess
	}

	var report *recipe.Report
	if len(inv.runIDs) > 0 {
		report, err = r.ExecuteRuns(ctx, inv.runIDs)
	} else {
		report, err = r.Execute(ctx)
	}
	if store != nil {
		if path, serr := store.Save(report); serr != nil {
			logger.Warn("failed to save report", "error", serr)
		} else {
			logger.Debug("report saved", "path", path)
		}
	}
	if err != nil {
		return fail(logger, mailer, err)
	}

	logger.Info("recipe executed", "recipe", r.Name(), "report", report.ID, "processed", report.ProcessedRuns())
	return exitSuccess
}

func loadRecipe(inv invocation, conf *config.Configuration, logger *slog.Logger, sender mail.Sender) (*recipe.Recipe, error) {
	def, err := recipe.LoadFile(inv.recipePath)
	if err != nil {
		return nil, err
	}
	b, err := def.Build(conf, recipe.Options{Logger: logger, Sender: sender})
	if err != nil {
		return nil, err
	}
	if err := b.SetOverrides(inv.overrides); err != nil {
		return nil, err
	}
	return b.Init()
}

// fail logs err and mails it unless it is a programming error.
func fail(logger *slog.Logger, sender mail.Sender, err error) int {
	logger.Error("aozan failed", "error", err)
	if !recipe.IsContractViolation(err) {
		sender.SendError(err)
	}
	return exitFailure
}

// openReportStore returns nil when aozan.report.dir is not set.
func openReportStore(conf *config.Configuration, logger *slog.Logger) (*reports.Store, error) {
	cfg, err := reports.ConfigFrom(conf)
	if err != nil || cfg.Directory == "" {
		return nil, err
	}
	return reports.NewStore(cfg, logger)
}
