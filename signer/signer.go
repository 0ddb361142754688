package signer

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go/aws/credentials"
	v4 "github.com/aws/aws-sdk-go/aws/signer/v4"
	"github.com/ruteri/aoss-provisioner/awsauth"
)

const (
	// ServiceAOSS is the signing name of the OpenSearch Serverless data plane.
	ServiceAOSS = "aoss"

	// ContentSHA256Header carries the payload hash used in the signature.
	ContentSHA256Header = "X-Amz-Content-Sha256"

	// UnsignedPayload marks a request whose body is excluded from the signature.
	UnsignedPayload = "UNSIGNED-PAYLOAD"
)

// Signer rewrites outgoing data-plane requests so they authenticate as the
// configured service identity in unsigned-payload mode.
type Signer struct {
	Service     string
	Region      string
	Credentials *credentials.Credentials

	// Now returns the signing time. Defaults to time.Now.
	Now func() time.Time

	log *slog.Logger
}

// New creates a signer for service in the identity's region.
func New(identity *awsauth.Identity, service string, log *slog.Logger) (*Signer, error) {
	if identity == nil || identity.Credentials == nil {
		return nil, errors.New("signer requires resolved AWS credentials")
	}
	if service == "" {
		service = ServiceAOSS
	}
	return &Signer{
		Service:     service,
		Region:      identity.Region,
		Credentials: identity.Credentials,
		log:         log,
	}, nil
}

// Rewrite returns a signed copy of req. The caller's request is not modified
// apart from its body being consumed.
//
// The body is detached before signing, the Content-Length header is dropped
// and the payload hash header is set to UNSIGNED-PAYLOAD, so the signature
// covers method, path, query and headers only. The original body bytes are
// reattached to the signed request afterwards.
func (s *Signer) Rewrite(req *http.Request) (*http.Request, error) {
	var body []byte
	if req.Body != nil && req.Body != http.NoBody {
		var err error
		body, err = io.ReadAll(req.Body)
		req.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read request body: %w", err)
		}
	}

	signed := req.Clone(req.Context())
	signed.Body = nil
	signed.GetBody = nil
	signed.ContentLength = 0
	signed.Header.Del("Content-Length")
	signed.Header.Set(ContentSHA256Header, UnsignedPayload)

	v4signer := v4.NewSigner(s.Credentials, func(v *v4.Signer) {
		v.DisableRequestBodyOverwrite = true
	})
	if _, err := v4signer.Sign(signed, nil, s.Service, s.Region, s.now()); err != nil {
		return nil, fmt.Errorf("failed to sign %s %s: %w", req.Method, req.URL.Path, err)
	}

	if len(body) > 0 {
		signed.Body = io.NopCloser(bytes.NewReader(body))
		signed.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(body)), nil
		}
		signed.ContentLength = int64(len(body))
	}

	if s.log != nil {
		s.log.Debug("Signed data plane request",
			slog.String("method", signed.Method),
			slog.String("path", signed.URL.Path),
			slog.String("service", s.Service),
			slog.String("region", s.Region),
			slog.Int("body_size", len(body)))
	}
	return signed, nil
}

func (s *Signer) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
