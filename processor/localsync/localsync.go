// Package localsync copies run directories from one storage to another on
// the same machine.
package localsync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/GenomiqueENS/aozan-sub001/config"
	"github.com/GenomiqueENS/aozan-sub001/datatype"
	"github.com/GenomiqueENS/aozan-sub001/logging"
	"github.com/GenomiqueENS/aozan-sub001/mail"
	"github.com/GenomiqueENS/aozan-sub001/processor"
	"github.com/GenomiqueENS/aozan-sub001/rundata"
	"github.com/GenomiqueENS/aozan-sub001/storage"
)

// Name is the registry name of the processor.
const Name = "local_sync"

const (
	KeyPartialSync     = "partial.sync"
	KeyDataDescription = "data.description"
	KeyInputCategory   = "sync.input.category"
	KeyInputTechnology = "sync.input.technology"

	tmpSuffix = ".tmp"
)

var ErrSameStorage = errors.New("input and output storage are the same")

// Processor synchronizes the only run data of its input to the output
// storage. With partial.sync it copies in-progress runs to "<run id>.tmp"
// and may be called again as the run grows.
type Processor struct {
	output      storage.DataStorage
	partial     bool
	description string
	inputFilter datatype.And
	logger      *slog.Logger
	now         func() time.Time
}

var _ processor.DataProcessor = &Processor{}

// New is a processor.Factory.
func New(conf *config.Configuration, logger *slog.Logger) (processor.DataProcessor, error) {
	output, err := processor.WritableOutputStorage(conf)
	if err != nil {
		return nil, err
	}
	partial, err := conf.Bool(KeyPartialSync, false)
	if err != nil {
		return nil, err
	}
	category, err := datatype.ParseCategory(conf.GetString(KeyInputCategory, string(datatype.Raw)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalidValue, err)
	}
	technology, err := datatype.ParseTechnology(conf.GetString(KeyInputTechnology, string(datatype.Illumina)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalidValue, err)
	}

	return &Processor{
		output:      output,
		partial:     partial,
		description: conf.GetString(KeyDataDescription, "no description"),
		inputFilter: datatype.All(
			datatype.CategoryIs{Category: category},
			datatype.TechnologyIs{Technology: technology},
			datatype.PartialIs{Partial: partial},
		),
		logger: logging.OrDiscard(logger).With("processor", Name),
		now:    time.Now,
	}, nil
}

func (p *Processor) Name() string { return Name }

func (p *Processor) InputRequirements() []datatype.Filter {
	return []datatype.Filter{p.inputFilter}
}

func (p *Processor) Process(ctx context.Context, input *rundata.InputData, runConf *config.RunConfiguration) (*processor.Result, error) {
	in, err := input.TheOnlyElement()
	if err != nil {
		return nil, err
	}
	out, err := p.sync(ctx, in)
	if err != nil {
		return nil, rundata.WrapRunError(in.RunID, err)
	}
	return out, nil
}

func (p *Processor) sync(ctx context.Context, in rundata.RunData) (*processor.Result, error) {
	logger := logging.ForRun(p.logger, in.RunID)
	inputLocation := in.Location
	finalLocation := p.output.NewLocation(in.RunID.ID)

	if p.output.SamePath(inputLocation.Storage) {
		return nil, fmt.Errorf("%w: %s", ErrSameStorage, p.output)
	}
	if err := inputLocation.CheckReadableDirectory("input synchronization"); err != nil {
		return nil, err
	}
	if err := finalLocation.CheckIfNotExists("Output synchronization directory already exists"); err != nil {
		return nil, err
	}

	outputLocation := finalLocation
	if p.partial {
		outputLocation = p.output.NewLocation(in.RunID.ID + tmpSuffix)
	}
	if err := os.MkdirAll(outputLocation.Path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := outputLocation.CheckWritableDirectory(p.description + " output"); err != nil {
		return nil, err
	}

	inputSize, err := inputLocation.DiskUsage()
	if err != nil {
		return nil, err
	}
	outputSize, err := outputLocation.DiskUsage()
	if err != nil {
		return nil, err
	}
	if err := p.output.CheckIfEnoughSpace(inputSize-outputSize, "Not enough space on "+p.description+" output"); err != nil {
		return nil, err
	}

	start := p.now()
	logger.Info("starting synchronization", "from", inputLocation, "to", outputLocation, "partial", p.partial)
	if err := copyTree(ctx, inputLocation.Path, outputLocation.Path); err != nil {
		return nil, fmt.Errorf("synchronization of %s failed: %w", inputLocation, err)
	}
	end := p.now()

	if p.partial {
		logger.Info("partial synchronization done", "duration", end.Sub(start))
		return processor.NewResult(mail.NoMessage(), in.WithLocation(outputLocation))
	}

	outputSize, err = outputLocation.DiskUsage()
	if err != nil {
		return nil, err
	}
	free, err := p.output.UsableSpace()
	if err != nil {
		return nil, err
	}
	logger.Info("output disk free after synchronization", "free", humanize.IBytes(free))
	logger.Info("space used by synchronization", "size", humanize.IBytes(uint64(outputSize)))

	subject := fmt.Sprintf("Ending synchronization for run %s on %s", in.RunID.ID, in.Source)
	content := endMessage(in.RunID, outputLocation, start, end, outputSize, free)
	return processor.NewResult(mail.NewMessage(subject, content),
		in.WithLocation(outputLocation).WithPartial(false))
}

func endMessage(id rundata.RunID, location storage.DataLocation, start, end time.Time, size int64, free uint64) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Ending synchronization for run %s.\n", id.ID)
	fmt.Fprintf(&sb, "Job started on %s and finished on %s.\n",
		start.Format(time.RFC1123), end.Format(time.RFC1123))
	fmt.Fprintf(&sb, "Duration: %s\n\n", end.Sub(start).Round(time.Second))
	fmt.Fprintf(&sb, "Run output files can be found in the following directory:\n  %s\n\n", location)
	fmt.Fprintf(&sb, "Space used by the run: %s\n", humanize.IBytes(uint64(size)))
	fmt.Fprintf(&sb, "Space available on the output storage: %s\n", humanize.IBytes(free))
	return sb.String()
}
