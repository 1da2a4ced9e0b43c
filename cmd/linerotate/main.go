// Command linerotate appends lines read from stdin to a file, rotating it
// into numbered backups once it reaches a size limit.
//
//	<process that outputs to stdout> | linerotate [options] [DIR]
//
// Options come from linerotate.ini, environment variables and flags. The INI
// file is searched for in the directory linerotate is started in, before it
// changes into DIR.
package main

import (
	"context"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/kei2100/linerotate"
	mbp "github.com/kei2100/linerotate/internal/mainboilerplate"
	"github.com/kei2100/linerotate/metrics"
)

const iniFilename = "linerotate.ini"

// Config is the top-level configuration object of linerotate.
var Config = new(struct {
	Rotate struct {
		LockFile       string `long:"lock-file" env:"LOCK_FILE" default:"lock" description:"Advisory lock file, relative to DIR"`
		OutputFile     string `long:"output-file" env:"OUTPUT_FILE" default:"output" description:"Active output file, relative to DIR"`
		MaxSize        string `long:"max-size" env:"MAX_SIZE" default:"1MiB" description:"Size at which the output file is rotated"`
		MaxFiles       int    `long:"max-files" env:"MAX_FILES" default:"10" description:"Generations retained, the active file included"`
		LockBestEffort bool   `long:"lock-best-effort" env:"LOCK_BEST_EFFORT" description:"Keep running when the lock file cannot be locked"`
	} `group:"Rotation" namespace:"rotate" env-namespace:"ROTATE"`

	Log     mbp.LogConfig     `group:"Logging" namespace:"log" env-namespace:"LOG"`
	Metrics mbp.MetricsConfig `group:"Metrics" namespace:"metrics" env-namespace:"METRICS"`

	Args struct {
		Dir string `positional-arg-name:"DIR" description:"Directory to change into before anything else"`
	} `positional-args:"yes"`
})

func main() {
	var parser = flags.NewParser(Config, flags.Default)
	parser.Usage = "[OPTIONS] [DIR] < input"
	// linerotate.ini is looked up before the chdir, so it resolves against
	// the directory linerotate was started in, not DIR.
	mbp.MustParseConfig(parser, iniFilename)
	mbp.InitLog(Config.Log)

	if dir := Config.Args.Dir; dir != "" {
		log.WithField("dir", dir).Debug("changing working directory")
		mbp.Must(os.Chdir(dir), "failed to change working directory", "dir", dir)
	}

	maxSize, err := humanize.ParseBytes(Config.Rotate.MaxSize)
	mbp.Must(err, "invalid --rotate.max-size", "value", Config.Rotate.MaxSize)

	var policy = linerotate.LockRequired
	if Config.Rotate.LockBestEffort {
		policy = linerotate.LockBestEffort
	}

	var registry = prometheus.NewRegistry()
	mbp.Must(metrics.Register(registry), "failed to register metrics")
	ln, err := mbp.ListenMetrics(Config.Metrics)
	mbp.Must(err, "failed to listen for metrics", "addr", Config.Metrics.Addr)

	// Metrics are served while waiting on the lock file, and stop once the
	// writer returns.
	ctx, cancel := context.WithCancel(context.Background())
	var eg, egCtx = errgroup.WithContext(ctx)
	eg.Go(func() error { return mbp.ServeMetrics(egCtx, ln, Config.Metrics, registry) })

	w, err := linerotate.NewWriter(".",
		linerotate.WithLockFile(Config.Rotate.LockFile),
		linerotate.WithOutputFile(Config.Rotate.OutputFile),
		linerotate.WithMaxFileSize(int64(maxSize)),
		linerotate.WithMaxOutputFiles(Config.Rotate.MaxFiles),
		linerotate.WithLockPolicy(policy),
	)
	if err != nil {
		cancel()
		eg.Wait()
		mbp.Must(err, "failed to start writer")
	}

	eg.Go(func() error {
		defer cancel()
		return w.Run(os.Stdin)
	})
	err = eg.Wait()
	var closeErr = w.Close()

	mbp.Must(err, "writer failed")
	mbp.Must(closeErr, "failed to close writer")
}
