package provisioner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ruteri/aoss-provisioner/interfaces"
	"github.com/ruteri/aoss-provisioner/policy"
)

// PipelineConfig describes one provisioning run.
type PipelineConfig struct {
	Policies         []interfaces.PolicyRequest
	ParallelPolicies bool

	Collection interfaces.CollectionRequest
	Poll       PollOptions

	Index    string
	Document []byte
}

// Result records what each step of a run did.
type Result struct {
	Policies          []policy.Result
	CollectionOutcome interfaces.Outcome
	Collection        *interfaces.CollectionHandle
	Status            *interfaces.CollectionStatus
	IndexCreated      bool
	DocumentIndexed   bool
}

// Pipeline runs policies, collection, readiness wait and the two data-plane
// calls in order, stopping at the first fatal error.
type Pipeline struct {
	cfg         PipelineConfig
	policies    *policy.Provisioner
	collections *CollectionProvisioner
	poller      *Poller
	stores      interfaces.DocumentStoreFactory
	log         *slog.Logger
}

// NewPipeline wires the provisioning steps around cp and stores.
func NewPipeline(cfg PipelineConfig, cp interfaces.ControlPlane, stores interfaces.DocumentStoreFactory, log *slog.Logger) *Pipeline {
	return &Pipeline{
		cfg:         cfg,
		policies:    policy.NewProvisioner(cp, log),
		collections: NewCollectionProvisioner(cp, log),
		poller:      NewPoller(cp, log),
		stores:      stores,
		log:         log,
	}
}

// Run executes the pipeline. Conflicts on policies and the collection are
// benign. Every other error is fatal and returned; the partial Result is
// returned alongside it.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	res := &Result{}

	policyResults, err := p.policies.CreateAll(ctx, p.cfg.Policies, p.cfg.ParallelPolicies)
	res.Policies = policyResults
	if err != nil {
		return res, fmt.Errorf("policy provisioning failed: %w", err)
	}

	outcome, handle, err := p.collections.CreateCollection(ctx, p.cfg.Collection)
	if err != nil {
		return res, err
	}
	res.CollectionOutcome = outcome
	res.Collection = handle

	status, err := p.poller.WaitUntilActive(ctx, p.cfg.Collection.Name, p.cfg.Poll)
	if err != nil {
		return res, err
	}
	res.Status = status

	store, err := p.stores(status.Endpoint)
	if err != nil {
		return res, err
	}

	// Data-plane failures, including an existing index, end the run.
	if err := store.CreateIndex(ctx, p.cfg.Index); err != nil {
		if errors.Is(err, interfaces.ErrConflict) {
			p.log.Error("Index already exists, not adding document", slog.String("index", p.cfg.Index), "err", err)
		}
		return res, err
	}
	res.IndexCreated = true

	if err := store.IndexDocument(ctx, p.cfg.Index, bytes.NewReader(p.cfg.Document)); err != nil {
		return res, err
	}
	res.DocumentIndexed = true

	p.log.Info("Provisioning complete",
		slog.String("collection", p.cfg.Collection.Name),
		slog.String("collection_outcome", res.CollectionOutcome.String()),
		slog.String("endpoint", status.Endpoint),
		slog.String("index", p.cfg.Index),
		slog.Duration("duration", time.Since(start)))
	return res, nil
}
