package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/docvault/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   gRPC bind address (e.g., ":50051")
//	-d string   PostgreSQL DSN
//	-s string   access token HMAC secret
//	-k string   key encryption master secret
//	-l string   log level
//	-n int      default page size
//	-m int      max page size
//	-w int      task workers
//	-q int      task queue size
//	-t int      task timeout, seconds
//	-r int      update retry attempts
//
// os.Args is first filtered with flagx.FilterArgs so that the -c/-config
// flag handled by parseJson does not trip the parser.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-k", "-l", "-n", "-m", "-w", "-q", "-t", "-r"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "access token secret key")
	fs.StringVar(&config.KeyEncryptionSecret, "k", config.KeyEncryptionSecret, "key encryption secret")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.IntVar(&config.DefaultPageSize, "n", config.DefaultPageSize, "default page size")
	fs.IntVar(&config.MaxPageSize, "m", config.MaxPageSize, "max page size")
	fs.IntVar(&config.TaskWorkers, "w", config.TaskWorkers, "task workers")
	fs.IntVar(&config.TaskQueueSize, "q", config.TaskQueueSize, "task queue size")

	taskTimeout := fs.Int("t", int(config.TaskTimeout.Seconds()), "task timeout (in seconds)")

	fs.IntVar(&config.UpdateRetryAttempts, "r", config.UpdateRetryAttempts, "update retry attempts")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.TaskTimeout = time.Duration(*taskTimeout) * time.Second
}
