package cmd

import (
	"fmt"
	"os"
	"time"

	logging "github.com/inconshreveable/log15"
	"github.com/mattn/go-isatty"
	"github.com/oklog/run"
	"github.com/spf13/cobra"
	"github.com/ulule/limiter/v3"
	"golang.org/x/net/http2"

	cmdcommon "pollpulse.io/pollpulse/cmd/pollpulse/common"
	"pollpulse.io/pollpulse/lib/common"
	"pollpulse.io/pollpulse/lib/metrics"
	"pollpulse.io/pollpulse/lib/network"
	"pollpulse.io/pollpulse/lib/poll"
	"pollpulse.io/pollpulse/lib/runner"
)

const defaultNetwork string = "http"
const defaultPort int = 12345
const defaultHost string = "0.0.0.0"
const defaultLogLevel logging.Lvl = logging.LvlInfo

var (
	flagLogLevel       string = common.GetENVValue("POLLPULSE_LOG_LEVEL", defaultLogLevel.String())
	flagLogOutput      string = common.GetENVValue("POLLPULSE_LOG_OUTPUT", "")
	flagVerbose        bool   = common.GetENVValue("POLLPULSE_VERBOSE", "0") == "1"
	flagEndpointString string = common.GetENVValue(
		"POLLPULSE_ENDPOINT",
		fmt.Sprintf("%s://%s:%d", defaultNetwork, defaultHost, defaultPort),
	)
	flagTLSCertFile      string = common.GetENVValue("POLLPULSE_TLS_CERT", "pollpulse.crt")
	flagTLSKeyFile       string = common.GetENVValue("POLLPULSE_TLS_KEY", "pollpulse.key")
	flagVoteLimit        string = common.GetENVValue("POLLPULSE_VOTE_LIMIT", "")
	flagVoteWindow       string = common.GetENVValue("POLLPULSE_VOTE_WINDOW", "")
	flagRateLimitAPI     string = common.GetENVValue("POLLPULSE_RATE_LIMIT_API", common.FormatRateLimitRate(common.RateLimitAPI))
	flagHTTPCacheAdapter string = common.GetENVValue("POLLPULSE_HTTP_CACHE_ADAPTER", common.HTTPCacheMemoryAdapterName)
	flagDebugPProf       bool   = common.GetENVValue("POLLPULSE_DEBUG_PPROF", "0") == "1"
)

var (
	runCmd *cobra.Command

	serviceEndpoint *common.Endpoint
	rateLimitAPI    limiter.Rate
	logLevel        logging.Lvl
	log             logging.Logger
)

func init() {
	runCmd = &cobra.Command{
		Use:   "run",
		Short: "Run pollpulse server",
		Run: func(c *cobra.Command, args []string) {
			parseFlagsRun()

			runServer()
			return
		},
	}

	runCmd.Flags().StringVar(&flagLogLevel, "log-level", flagLogLevel, "log level, {crit, error, warn, info, debug}")
	runCmd.Flags().StringVar(&flagLogOutput, "log-output", flagLogOutput, "set log output file")
	runCmd.Flags().BoolVar(&flagVerbose, "verbose", flagVerbose, "verbose")
	runCmd.Flags().StringVar(&flagEndpointString, "endpoint", flagEndpointString, "endpoint uri to listen on ('http://0.0.0.0:12345')")
	runCmd.Flags().StringVar(&flagTLSCertFile, "tls-cert", flagTLSCertFile, "tls certificate file")
	runCmd.Flags().StringVar(&flagTLSKeyFile, "tls-key", flagTLSKeyFile, "tls key file")
	runCmd.Flags().StringVar(&flagVoteLimit, "vote-limit", flagVoteLimit, "votes allowed per fingerprint in one window")
	runCmd.Flags().StringVar(&flagVoteWindow, "vote-window", flagVoteWindow, "vote rate limit window ('60s')")
	runCmd.Flags().StringVar(&flagRateLimitAPI, "rate-limit-api", flagRateLimitAPI, "rate limit of api: '<limit>-<period>', ex) '300-M'")
	runCmd.Flags().StringVar(&flagHTTPCacheAdapter, "http-cache-adapter", flagHTTPCacheAdapter, "http cache adapter: 'mem', '' disables")
	runCmd.Flags().BoolVar(&flagDebugPProf, "debug-pprof", flagDebugPProf, "set debug pprof")

	rootCmd.AddCommand(runCmd)
}

func parseFlagsRun() {
	var err error

	if p, err := common.ParseEndpoint(flagEndpointString); err != nil {
		cmdcommon.PrintFlagsError(runCmd, "--endpoint", err)
	} else {
		serviceEndpoint = p
		flagEndpointString = serviceEndpoint.String()
	}

	if serviceEndpoint.Scheme == "https" {
		if _, err = os.Stat(flagTLSCertFile); os.IsNotExist(err) {
			cmdcommon.PrintFlagsError(runCmd, "--tls-cert", err)
		}
		if _, err = os.Stat(flagTLSKeyFile); os.IsNotExist(err) {
			cmdcommon.PrintFlagsError(runCmd, "--tls-key", err)
		}
	}

	queries := serviceEndpoint.Query()
	queries.Add("TLSCertFile", flagTLSCertFile)
	queries.Add("TLSKeyFile", flagTLSKeyFile)
	queries.Add("IdleTimeout", "3s")
	serviceEndpoint.RawQuery = queries.Encode()

	if rateLimitAPI, err = common.ParseRateLimitRate(flagRateLimitAPI); err != nil {
		cmdcommon.PrintFlagsError(runCmd, "--rate-limit-api", err)
	}

	if logLevel, err = logging.LvlFromString(flagLogLevel); err != nil {
		cmdcommon.PrintFlagsError(runCmd, "--log-level", err)
	}

	var logHandler logging.Handler

	var formatter logging.Format
	if isatty.IsTerminal(os.Stdout.Fd()) {
		formatter = logging.TerminalFormat()
	} else {
		formatter = common.JsonFormatEx(false, true)
	}
	logHandler = logging.StreamHandler(os.Stdout, formatter)

	if len(flagLogOutput) < 1 {
		flagLogOutput = "<stdout>"
	} else {
		if logHandler, err = logging.FileHandler(flagLogOutput, common.JsonFormatEx(false, true)); err != nil {
			cmdcommon.PrintFlagsError(runCmd, "--log-output", err)
		}
	}

	log = logging.New("module", "main")
	log.SetHandler(logging.LvlFilterHandler(logLevel, logHandler))
	poll.SetLogging(logLevel, logHandler)
	network.SetLogging(logLevel, logHandler)
	runner.SetLogging(logLevel, logHandler)

	log.Info("Starting Pollpulse")

	// print flags
	parsedFlags := []interface{}{}
	parsedFlags = append(parsedFlags, "\n\tendpoint", flagEndpointString)
	parsedFlags = append(parsedFlags, "\n\ttls-cert", flagTLSCertFile)
	parsedFlags = append(parsedFlags, "\n\ttls-key", flagTLSKeyFile)
	parsedFlags = append(parsedFlags, "\n\tlog-level", flagLogLevel)
	parsedFlags = append(parsedFlags, "\n\tlog-output", flagLogOutput)
	parsedFlags = append(parsedFlags, "\n\tvote-limit", flagVoteLimit)
	parsedFlags = append(parsedFlags, "\n\tvote-window", flagVoteWindow)
	parsedFlags = append(parsedFlags, "\n\trate-limit-api", flagRateLimitAPI)
	parsedFlags = append(parsedFlags, "\n\thttp-cache-adapter", flagHTTPCacheAdapter)

	log.Debug("parsed flags:", parsedFlags...)

	if flagVerbose {
		http2.VerboseLogs = true
	}
}

func newConfig() (conf common.Config, err error) {
	conf = common.NewConfig()

	if len(flagVoteLimit) > 0 {
		var limit int
		if _, err = fmt.Sscanf(flagVoteLimit, "%d", &limit); err != nil {
			return
		}
		conf.VoteRateLimit = limit
	}
	if len(flagVoteWindow) > 0 {
		var window time.Duration
		if window, err = time.ParseDuration(flagVoteWindow); err != nil {
			return
		}
		conf.VoteRateWindow = window
	}

	conf.RateLimitRuleAPI = common.NewRateLimitRule(rateLimitAPI)
	conf.HTTPCacheAdapter = flagHTTPCacheAdapter

	return
}

func runServer() {
	conf, err := newConfig()
	if err != nil {
		cmdcommon.PrintFlagsError(runCmd, "--vote-limit", err)
	}

	serverConfig, err := network.NewServerConfigFromEndpoint("pollpulse", serviceEndpoint)
	if err != nil {
		log.Crit("failed to create server config", "error", err)

		os.Exit(1)
	}
	n := network.NewServer(serverConfig)

	metrics.InitPrometheusMetrics()
	metrics.SetVersion()

	runner.DebugPProf = flagDebugPProf

	// Execution group.
	var g run.Group
	{
		r, err := runner.NewRunner(n, conf)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}

		g.Add(func() error {
			if err := r.Start(); err != nil {
				log.Crit("failed to start server", "error", err)
				return err
			}
			return nil
		}, func(error) {
			r.Stop()
		})
	}
	{
		cancel := make(chan struct{})
		g.Add(func() error {
			return cmdcommon.Interrupt(cancel)
		}, func(error) {
			close(cancel)
		})
	}

	if err := g.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
