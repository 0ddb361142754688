package policy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ruteri/aoss-provisioner/interfaces"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// Provisioner creates named policies, treating "already exists" as success.
type Provisioner struct {
	cp  interfaces.ControlPlane
	log *slog.Logger
}

// NewProvisioner creates a policy provisioner backed by cp.
func NewProvisioner(cp interfaces.ControlPlane, log *slog.Logger) *Provisioner {
	return &Provisioner{cp: cp, log: log}
}

// Result is the outcome of one policy request within CreateAll.
type Result struct {
	Request interfaces.PolicyRequest
	Outcome interfaces.Outcome
	Detail  *interfaces.PolicyDetail
	Err     error
}

// CreatePolicy validates and submits a single policy.
//
// A conflict is logged and reported as OutcomeAlreadyExists with a nil error;
// the existing policy is assumed correct from a previous run. Any other
// failure is returned.
func (p *Provisioner) CreatePolicy(ctx context.Context, req interfaces.PolicyRequest) (interfaces.Outcome, *interfaces.PolicyDetail, error) {
	log := p.log.With(slog.String("policy", req.Name), slog.String("type", req.Type.String()))

	if err := req.Validate(); err != nil {
		log.Error("Rejected invalid policy", "err", err)
		return 0, nil, err
	}

	var (
		detail *interfaces.PolicyDetail
		err    error
	)
	if req.Type.IsSecurityPolicy() {
		detail, err = p.cp.CreateSecurityPolicy(ctx, req)
	} else {
		detail, err = p.cp.CreateAccessPolicy(ctx, req)
	}

	switch {
	case err == nil:
		if detail == nil {
			detail = &interfaces.PolicyDetail{Name: req.Name, Type: req.Type}
		}
		log.Info("Policy created",
			slog.String("version", detail.Version),
			slog.Int64("created_date", detail.CreatedDate))
		return interfaces.OutcomeCreated, detail, nil
	case errors.Is(err, interfaces.ErrConflict):
		log.Info("Policy name or rules conflict with an existing policy, keeping existing one", "err", err)
		return interfaces.OutcomeAlreadyExists, nil, nil
	default:
		log.Error("Failed to create policy", "err", err)
		return 0, nil, fmt.Errorf("create %s policy %q: %w", req.Type, req.Name, err)
	}
}

// CreateAll submits every request. Requests are independent: a failure does
// not stop the others. All failures are combined into the returned error.
// When parallel is set the requests are submitted concurrently.
func (p *Provisioner) CreateAll(ctx context.Context, reqs []interfaces.PolicyRequest, parallel bool) ([]Result, error) {
	results := make([]Result, len(reqs))

	run := func(i int) {
		outcome, detail, err := p.CreatePolicy(ctx, reqs[i])
		results[i] = Result{Request: reqs[i], Outcome: outcome, Detail: detail, Err: err}
	}

	if parallel {
		var g errgroup.Group
		for i := range reqs {
			g.Go(func() error {
				run(i)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i := range reqs {
			run(i)
		}
	}

	var errs error
	for _, r := range results {
		errs = multierr.Append(errs, r.Err)
	}
	return results, errs
}
