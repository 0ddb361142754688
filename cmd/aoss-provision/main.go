package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ruteri/aoss-provisioner/awsauth"
	"github.com/ruteri/aoss-provisioner/cmd/flags"
	"github.com/ruteri/aoss-provisioner/config"
	"github.com/ruteri/aoss-provisioner/controlplane"
	"github.com/ruteri/aoss-provisioner/dataplane"
	"github.com/ruteri/aoss-provisioner/interfaces"
	"github.com/ruteri/aoss-provisioner/provisioner"
	"github.com/ruteri/aoss-provisioner/signer"
	"github.com/ruteri/aoss-provisioner/storage"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "aoss-provision",
		Usage: "Provision an OpenSearch Serverless collection and index a first document",
		Flags: append(append(append([]cli.Flag{}, flags.AWSFlags...), flags.PipelineFlags...), flags.LogFlags...),
		Action: func(cCtx *cli.Context) error {
			logger := flags.SetupLogger(cCtx)
			dryRun := cCtx.Bool(flags.DryRunFlag.Name)
			planLocation := cCtx.String(flags.PlanFlag.Name)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			// Credentials are resolved once and shared by every AWS client.
			var identity *awsauth.Identity
			if !dryRun || storage.IsRemote(planLocation) {
				var err error
				identity, err = awsauth.Resolve(flags.AWSOptions(cCtx))
				if err != nil {
					logger.Error("Failed to resolve AWS identity", "err", err)
					return err
				}
				logger.Info("Resolved AWS identity", "region", identity.Region)
			}

			plan := config.DefaultPlan()
			if planLocation != "" {
				var err error
				plan, err = config.LoadPlanFrom(ctx, storage.NewLoader(identity, logger), planLocation)
				if err != nil {
					logger.Error("Failed to load plan", "err", err)
					return err
				}
				logger.Info("Loaded plan", "location", planLocation)
			}

			cp, stores, err := planes(identity, dryRun, logger)
			if err != nil {
				return err
			}

			cfg := provisioner.PipelineConfig{
				Policies:         plan.PolicyRequests(),
				ParallelPolicies: cCtx.Bool(flags.ParallelPoliciesFlag.Name),
				Collection:       plan.CollectionRequest(),
				Poll:             flags.PollOptions(cCtx),
				Index:            plan.Index,
				Document:         []byte(plan.Document),
			}

			res, err := provisioner.NewPipeline(cfg, cp, stores, logger).Run(ctx)
			summarize(logger, res)
			if err != nil {
				logger.Error("Provisioning failed", "err", err)
				return err
			}

			logger.Info("Provisioning complete", "collection", plan.Collection.Name, "endpoint", res.Status.Endpoint)
			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// planes returns the control plane and document store factory for the run.
// A dry run uses in-memory implementations.
func planes(identity *awsauth.Identity, dryRun bool, logger *slog.Logger) (interfaces.ControlPlane, interfaces.DocumentStoreFactory, error) {
	if dryRun {
		logger.Warn("Dry run, no AWS resources will be touched")
		return controlplane.NewMemoryControlPlane(), dataplane.MemoryFactory(dataplane.NewMemoryStore()), nil
	}

	cp, err := controlplane.NewClient(identity, logger)
	if err != nil {
		logger.Error("Failed to create control plane client", "err", err)
		return nil, nil, err
	}

	s, err := signer.New(identity, signer.ServiceAOSS, logger)
	if err != nil {
		logger.Error("Failed to create request signer", "err", err)
		return nil, nil, err
	}

	return cp, dataplane.NewFactory(signer.NewTransport(s, nil), logger), nil
}

func summarize(logger *slog.Logger, res *provisioner.Result) {
	if res == nil {
		return
	}
	for _, r := range res.Policies {
		if r.Err != nil {
			logger.Error("Policy failed", "type", r.Request.Type, "name", r.Request.Name, "err", r.Err)
			continue
		}
		logger.Info("Policy", "type", r.Request.Type, "name", r.Request.Name, "outcome", r.Outcome)
	}
	if res.Collection != nil {
		logger.Info("Collection", "name", res.Collection.Name, "id", res.Collection.ID, "outcome", res.CollectionOutcome)
	}
	logger.Info("Data plane", "indexCreated", res.IndexCreated, "documentIndexed", res.DocumentIndexed)
}
