package controlplane

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/opensearchserverless"
	"github.com/aws/aws-sdk-go/service/opensearchserverless/opensearchserverlessiface"
	"github.com/ruteri/aoss-provisioner/awsauth"
	"github.com/ruteri/aoss-provisioner/interfaces"
)

// Client implements interfaces.ControlPlane on top of the OpenSearch
// Serverless API.
type Client struct {
	api opensearchserverlessiface.OpenSearchServerlessAPI
	log *slog.Logger
}

// NewClient creates a control-plane client using the resolved identity's session.
func NewClient(identity *awsauth.Identity, log *slog.Logger) (*Client, error) {
	if identity == nil || identity.Session == nil {
		return nil, errors.New("control plane client requires a resolved AWS identity")
	}
	api := opensearchserverless.New(identity.Session, aws.NewConfig().WithRegion(identity.Region))
	return NewClientWithAPI(api, log), nil
}

// NewClientWithAPI wraps an existing API implementation.
func NewClientWithAPI(api opensearchserverlessiface.OpenSearchServerlessAPI, log *slog.Logger) *Client {
	return &Client{api: api, log: log}
}

// CreateSecurityPolicy creates an encryption or network policy.
func (c *Client) CreateSecurityPolicy(ctx context.Context, req interfaces.PolicyRequest) (*interfaces.PolicyDetail, error) {
	if !req.Type.IsSecurityPolicy() {
		return nil, fmt.Errorf("%w: %q is not a security policy type", interfaces.ErrInvalidPolicy, req.Type)
	}
	doc, err := req.Document.JSON()
	if err != nil {
		return nil, fmt.Errorf("failed to render %s policy %q: %w", req.Type, req.Name, err)
	}

	start := time.Now()
	out, err := c.api.CreateSecurityPolicyWithContext(ctx, &opensearchserverless.CreateSecurityPolicyInput{
		Name:        aws.String(req.Name),
		Type:        aws.String(string(req.Type)),
		Description: optionalString(req.Description),
		Policy:      aws.String(doc),
	})
	if err != nil {
		c.log.Debug("CreateSecurityPolicy failed",
			slog.String("name", req.Name),
			slog.String("type", string(req.Type)),
			"err", err,
			slog.Duration("duration", time.Since(start)))
		return nil, classifyError(err)
	}

	detail := out.SecurityPolicyDetail
	if detail == nil {
		return &interfaces.PolicyDetail{Name: req.Name, Type: req.Type}, nil
	}
	return &interfaces.PolicyDetail{
		Name:        aws.StringValue(detail.Name),
		Type:        interfaces.PolicyType(aws.StringValue(detail.Type)),
		Description: aws.StringValue(detail.Description),
		Version:     aws.StringValue(detail.PolicyVersion),
		CreatedDate: aws.Int64Value(detail.CreatedDate),
		Policy:      rawPolicy(detail.Policy),
	}, nil
}

// CreateAccessPolicy creates a data access policy.
func (c *Client) CreateAccessPolicy(ctx context.Context, req interfaces.PolicyRequest) (*interfaces.PolicyDetail, error) {
	if req.Type != interfaces.PolicyTypeData {
		return nil, fmt.Errorf("%w: %q is not an access policy type", interfaces.ErrInvalidPolicy, req.Type)
	}
	doc, err := req.Document.JSON()
	if err != nil {
		return nil, fmt.Errorf("failed to render access policy %q: %w", req.Name, err)
	}

	start := time.Now()
	out, err := c.api.CreateAccessPolicyWithContext(ctx, &opensearchserverless.CreateAccessPolicyInput{
		Name:        aws.String(req.Name),
		Type:        aws.String(string(req.Type)),
		Description: optionalString(req.Description),
		Policy:      aws.String(doc),
	})
	if err != nil {
		c.log.Debug("CreateAccessPolicy failed",
			slog.String("name", req.Name),
			"err", err,
			slog.Duration("duration", time.Since(start)))
		return nil, classifyError(err)
	}

	detail := out.AccessPolicyDetail
	if detail == nil {
		return &interfaces.PolicyDetail{Name: req.Name, Type: req.Type}, nil
	}
	return &interfaces.PolicyDetail{
		Name:        aws.StringValue(detail.Name),
		Type:        interfaces.PolicyType(aws.StringValue(detail.Type)),
		Description: aws.StringValue(detail.Description),
		Version:     aws.StringValue(detail.PolicyVersion),
		CreatedDate: aws.Int64Value(detail.CreatedDate),
		Policy:      rawPolicy(detail.Policy),
	}, nil
}

// CreateCollection creates a collection.
func (c *Client) CreateCollection(ctx context.Context, req interfaces.CollectionRequest) (*interfaces.CollectionHandle, error) {
	out, err := c.api.CreateCollectionWithContext(ctx, &opensearchserverless.CreateCollectionInput{
		Name:        aws.String(req.Name),
		Type:        aws.String(string(req.Type)),
		Description: optionalString(req.Description),
	})
	if err != nil {
		return nil, classifyError(err)
	}

	detail := out.CreateCollectionDetail
	if detail == nil {
		return nil, fmt.Errorf("create collection %q returned no detail", req.Name)
	}
	return &interfaces.CollectionHandle{
		ID:     aws.StringValue(detail.Id),
		Name:   aws.StringValue(detail.Name),
		ARN:    aws.StringValue(detail.Arn),
		Type:   interfaces.WorkloadType(aws.StringValue(detail.Type)),
		Status: interfaces.CollectionState(aws.StringValue(detail.Status)),
	}, nil
}

// GetCollectionStatus looks up collections by name.
func (c *Client) GetCollectionStatus(ctx context.Context, names []string) ([]interfaces.CollectionStatus, error) {
	out, err := c.api.BatchGetCollectionWithContext(ctx, &opensearchserverless.BatchGetCollectionInput{
		Names: aws.StringSlice(names),
	})
	if err != nil {
		return nil, classifyError(err)
	}

	for _, e := range out.CollectionErrorDetails {
		c.log.Debug("Collection lookup reported an error",
			slog.String("name", aws.StringValue(e.Name)),
			slog.String("code", aws.StringValue(e.ErrorCode)),
			slog.String("message", aws.StringValue(e.ErrorMessage)))
	}

	now := time.Now()
	statuses := make([]interfaces.CollectionStatus, 0, len(out.CollectionDetails))
	for _, d := range out.CollectionDetails {
		if d == nil {
			continue
		}
		statuses = append(statuses, interfaces.CollectionStatus{
			ID:                aws.StringValue(d.Id),
			Name:              aws.StringValue(d.Name),
			State:             interfaces.CollectionState(aws.StringValue(d.Status)),
			Endpoint:          aws.StringValue(d.CollectionEndpoint),
			DashboardEndpoint: aws.StringValue(d.DashboardEndpoint),
			FailureCode:       aws.StringValue(d.FailureCode),
			FailureMessage:    aws.StringValue(d.FailureMessage),
			ObservedAt:        now,
		})
	}
	return statuses, nil
}

// classifyError maps service conflict rejections onto interfaces.ErrConflict
// and leaves every other error untouched.
func classifyError(err error) error {
	var aerr awserr.Error
	if errors.As(err, &aerr) && aerr.Code() == opensearchserverless.ErrCodeConflictException {
		return fmt.Errorf("%w: %w", interfaces.ErrConflict, err)
	}
	return err
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return aws.String(s)
}

func rawPolicy(policy any) json.RawMessage {
	if policy == nil {
		return nil
	}
	raw, err := json.Marshal(policy)
	if err != nil {
		return nil
	}
	return raw
}
