package tempd

import (
	"io"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/alecthomas/kong"

	"github.com/juanrh/tempd/internal/meter"
)

type BuildInfo struct {
	Version string
	Commit  string
	Date    string
	BuiltBy string
}

var buildInfo BuildInfo

type CLI struct {
	Measure  MeasureCmd `cmd:"" default:"withargs" help:"Print a measurement line once per period until terminated."`
	Version  VersionCmd `cmd:"" help:"Show version information."`
	LogLevel string     `help:"Logging level (debug, info, warn, error)." env:"TEMPD_LOG_LEVEL" default:"info"`
}

type MeasureCmd struct {
	Period  time.Duration `help:"Pause between measurement lines." env:"TEMPD_PERIOD" default:"${default_period}"`
	Message string        `help:"Line written on every measurement." env:"TEMPD_MESSAGE" default:"${default_message}"`
}

type VersionCmd struct{}

func parseLevel(levelStr string) slog.Level {
	switch levelStr {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// setupLogger installs the default logger. Logs never go to stdout, which is
// reserved for measurement lines.
func setupLogger(levelStr string, w io.Writer) {
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: parseLevel(levelStr),
	}))
	slog.SetDefault(logger)
}

func newParser(cli *CLI) (*kong.Kong, error) {
	return kong.New(cli,
		kong.Name("tempd"),
		kong.Description("Temperature measurement agent."),
		kong.UsageOnError(),
		kong.Vars{
			"default_period":  meter.DefaultPeriod.String(),
			"default_message": meter.DefaultMessage,
		},
	)
}

func Run(bi BuildInfo) {
	buildInfo = bi

	var cli CLI
	parser, err := newParser(&cli)
	if err != nil {
		log.Fatalf("failed to build command line parser: %v", err)
	}
	ctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	setupLogger(cli.LogLevel, os.Stderr)

	switch ctx.Command() {
	case "measure":
		runMeasure(cli.Measure)
	case "version":
		runVersion()
	default:
		log.Fatalf("Unknown command: %s", ctx.Command())
	}
}
