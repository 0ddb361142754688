package flags

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/ruteri/aoss-provisioner/awsauth"
	"github.com/ruteri/aoss-provisioner/common"
	"github.com/ruteri/aoss-provisioner/provisioner"
	"github.com/urfave/cli/v2"
)

func SetupLogger(cCtx *cli.Context) (log *slog.Logger) {
	logJSON := cCtx.Bool(LogJsonFlag.Name)
	logDebug := cCtx.Bool(LogDebugFlag.Name)
	logUID := cCtx.Bool(LogUidFlag.Name)
	logService := cCtx.String(LogServiceFlag.Name)

	logger := common.SetupLogger(&common.LoggingOpts{
		Debug:   logDebug,
		JSON:    logJSON,
		Service: logService,
		Version: common.Version,
	})

	if logUID {
		id := uuid.Must(uuid.NewRandom())
		logger = logger.With("uid", id.String())
	}
	return logger
}

// AWSOptions collects the identity flags.
func AWSOptions(cCtx *cli.Context) awsauth.Options {
	return awsauth.Options{
		Region:   cCtx.String(RegionFlag.Name),
		Profile:  cCtx.String(ProfileFlag.Name),
		Endpoint: cCtx.String(ControlPlaneEndpointFlag.Name),
	}
}

// DryRunPollInterval replaces the default poll interval on dry runs.
const DryRunPollInterval = 100 * time.Millisecond

// PollOptions collects the readiness poller flags. A dry run polls every
// DryRunPollInterval unless --poll-interval is set.
func PollOptions(cCtx *cli.Context) provisioner.PollOptions {
	interval := cCtx.Duration(PollIntervalFlag.Name)
	if cCtx.Bool(DryRunFlag.Name) && !cCtx.IsSet(PollIntervalFlag.Name) {
		interval = DryRunPollInterval
	}
	return provisioner.PollOptions{
		Interval:    interval,
		MaxAttempts: cCtx.Int(PollMaxAttemptsFlag.Name),
	}
}

var RegionFlag = &cli.StringFlag{
	Name:    "region",
	EnvVars: []string{"AWS_REGION", "AWS_DEFAULT_REGION"},
	Usage:   "AWS region of the collection; also the signing region for data plane requests",
}

var ProfileFlag = &cli.StringFlag{
	Name:    "profile",
	EnvVars: []string{"AWS_PROFILE"},
	Usage:   "shared config profile to resolve credentials from",
}

var ControlPlaneEndpointFlag = &cli.StringFlag{
	Name:  "control-plane-endpoint",
	Usage: "override the OpenSearch Serverless control plane endpoint",
}

var PlanFlag = &cli.StringFlag{
	Name:  "plan",
	Usage: "YAML plan overriding the built-in one, as a local path, file:// or s3:// URI",
}

var PollIntervalFlag = &cli.DurationFlag{
	Name:  "poll-interval",
	Value: provisioner.DefaultPollInterval,
	Usage: "fixed wait between collection status lookups",
}

var PollMaxAttemptsFlag = &cli.IntFlag{
	Name:  "poll-max-attempts",
	Value: provisioner.DefaultMaxAttempts,
	Usage: "maximum number of collection status lookups, 0 polls until the collection leaves CREATING",
}

var ParallelPoliciesFlag = &cli.BoolFlag{
	Name:  "parallel-policies",
	Value: false,
	Usage: "create the encryption, network and access policies concurrently",
}

var DryRunFlag = &cli.BoolFlag{
	Name:  "dry-run",
	Value: false,
	Usage: "run against in-memory control and data planes without contacting AWS",
}

var LogJsonFlag = &cli.BoolFlag{
	Name:  "log-json",
	Value: false,
	Usage: "log in JSON format",
}
var LogDebugFlag = &cli.BoolFlag{
	Name:  "log-debug",
	Value: false,
	Usage: "log debug messages",
}
var LogUidFlag = &cli.BoolFlag{
	Name:  "log-uid",
	Value: false,
	Usage: "generate a uuid and add to all log messages",
}
var LogServiceFlag = &cli.StringFlag{
	Name:  "log-service",
	Value: "aoss-provision",
	Usage: "add 'service' tag to logs",
}

var LogFlags = []cli.Flag{
	LogJsonFlag,
	LogDebugFlag,
	LogUidFlag,
	LogServiceFlag,
}

var AWSFlags = []cli.Flag{
	RegionFlag,
	ProfileFlag,
	ControlPlaneEndpointFlag,
}

var PipelineFlags = []cli.Flag{
	PlanFlag,
	PollIntervalFlag,
	PollMaxAttemptsFlag,
	ParallelPoliciesFlag,
	DryRunFlag,
}
