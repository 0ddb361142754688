// Package awsauth resolves the AWS account credentials and region once at
// startup. The resulting Identity is passed explicitly to the control-plane
// client and to the request signer.
package awsauth

import (
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
)

// ErrNoRegion is returned when neither the options nor the environment name a region.
var ErrNoRegion = errors.New("no AWS region configured")

// Options selects how the identity is resolved. Empty fields fall back to
// the SDK's environment and shared config resolution.
type Options struct {
	Region  string
	Profile string

	// Endpoint overrides the control-plane endpoint, e.g. for a local emulator.
	Endpoint string

	// AccessKey and SecretKey pin static credentials instead of the default chain.
	AccessKey    string
	SecretKey    string
	SessionToken string
}

// Identity is the resolved account identity. It is read-only after Resolve.
type Identity struct {
	Session     *session.Session
	Region      string
	Credentials *credentials.Credentials
}

// Resolve builds an AWS session from opts and the process environment and
// verifies that credentials can be retrieved.
func Resolve(opts Options) (*Identity, error) {
	cfg := aws.Config{}
	if opts.Region != "" {
		cfg.Region = aws.String(opts.Region)
	}
	if opts.Endpoint != "" {
		cfg.Endpoint = aws.String(opts.Endpoint)
	}
	if opts.AccessKey != "" && opts.SecretKey != "" {
		cfg.Credentials = credentials.NewStaticCredentials(opts.AccessKey, opts.SecretKey, opts.SessionToken)
	}

	sess, err := session.NewSessionWithOptions(session.Options{
		Config:            cfg,
		Profile:           opts.Profile,
		SharedConfigState: session.SharedConfigEnable,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	region := aws.StringValue(sess.Config.Region)
	if region == "" {
		return nil, ErrNoRegion
	}

	creds := sess.Config.Credentials
	if creds == nil {
		return nil, errors.New("no AWS credentials provider configured")
	}
	if _, err := creds.Get(); err != nil {
		return nil, fmt.Errorf("failed to resolve AWS credentials: %w", err)
	}

	return &Identity{
		Session:     sess,
		Region:      region,
		Credentials: creds,
	}, nil
}

// NewStaticIdentity returns an identity with fixed credentials and no
// environment lookup.
func NewStaticIdentity(region, accessKey, secretKey, sessionToken string) (*Identity, error) {
	if region == "" {
		return nil, ErrNoRegion
	}
	creds := credentials.NewStaticCredentials(accessKey, secretKey, sessionToken)
	sess, err := session.NewSession(&aws.Config{
		Region:      aws.String(region),
		Credentials: creds,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}
	return &Identity{
		Session:     sess,
		Region:      region,
		Credentials: creds,
	}, nil
}
