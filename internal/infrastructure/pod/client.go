// Package pod talks to the session authentication endpoints of each pod and keeps
// one client per registered pod.
package pod

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/turtacn/appauth/internal/domain/models"
	"github.com/turtacn/appauth/internal/domain/service"
	"github.com/turtacn/appauth/internal/infrastructure/monitoring"
	"github.com/turtacn/appauth/pkg/constants"
	"github.com/turtacn/appauth/pkg/errors"
	"github.com/turtacn/appauth/pkg/logger"
)

const maxResponseBytes = 1 << 20

const (
	opCertificate  = "certificate"
	opAuthenticate = "authenticate"
)

// ClientDeps are the collaborators shared by every pod client.
type ClientDeps struct {
	Metrics service.Metrics
	Tracer  *monitoring.TracingManager
	Logger  logger.Logger
}

func (d ClientDeps) withDefaults() ClientDeps {
	if d.Metrics == nil {
		d.Metrics = service.NopMetrics{}
	}
	if d.Logger == nil {
		d.Logger = logger.NewNoopLogger()
	}
	return d
}

// AuthenticationClient is bound to one pod and the shared mutual TLS HTTP client.
type AuthenticationClient struct {
	podID      string
	baseURL    string
	httpClient *http.Client
	deps       ClientDeps
}

var _ service.AuthenticationClient = (*AuthenticationClient)(nil)

// NewAuthenticationClient creates a client for the pod reachable at podHost.
func NewAuthenticationClient(podID, podHost string, httpClient *http.Client, deps ClientDeps) (*AuthenticationClient, error) {
	u, err := url.Parse(podHost)
	if err != nil || u.Host == "" || (u.Scheme != "https" && u.Scheme != "http") {
		return nil, errors.ErrTransport("connect", fmt.Sprintf("pod %s has an invalid host %q", podID, podHost))
	}
	return &AuthenticationClient{
		podID:      podID,
		baseURL:    strings.TrimRight(u.String(), "/"),
		httpClient: httpClient,
		deps:       deps.withDefaults(),
	}, nil
}

// PodID returns the pod the client is bound to.
func (c *AuthenticationClient) PodID() string {
	return c.podID
}

// GetPodCertificate fetches the pod's current JWT signing certificate.
func (c *AuthenticationClient) GetPodCertificate(ctx context.Context) (*models.PodCertificate, error) {
	var cert models.PodCertificate
	if err := c.do(ctx, opCertificate, http.MethodGet, constants.PodCertificatePath, nil, &cert); err != nil {
		return nil, err
	}
	return &cert, nil
}

// Authenticate sends the app token, and the signed assertion when present, to the pod.
func (c *AuthenticationClient) Authenticate(ctx context.Context, req models.AuthenticateRequest) (*models.AuthenticateResponse, error) {
	var resp models.AuthenticateResponse
	if err := c.do(ctx, opAuthenticate, http.MethodPost, constants.PodAuthenticatePath, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *AuthenticationClient) do(ctx context.Context, op, method, path string, in, out interface{}) (err error) {
	ctx, span := c.deps.Tracer.StartSpan(ctx, "pod."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("pod.id", c.podID)),
	)
	defer span.End()

	start := time.Now()
	statusCode := 0
	defer func() {
		c.deps.Metrics.RecordPodRequest(op, statusCode, time.Since(start))
		if err != nil {
			c.deps.Tracer.RecordError(ctx, err)
		}
	}()

	var body io.Reader
	if in != nil {
		payload, marshalErr := json.Marshal(in)
		if marshalErr != nil {
			return errors.ErrServerError("failed to encode pod request").WithCause(marshalErr)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return errors.ErrTransport(op, "cannot build request").WithCause(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	c.deps.Tracer.InjectTraceContext(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.deps.Logger.Warn(ctx, "Pod request failed", logger.Fields{"pod_id": c.podID, "operation": op, "error": err.Error()})
		return errors.ErrTransport(op, "request failed").WithCause(err).WithMetadata("pod_id", c.podID)
	}
	defer resp.Body.Close()
	statusCode = resp.StatusCode

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return errors.ErrTransport(op, "cannot read response").WithCause(err).WithMetadata("pod_id", c.podID)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.deps.Logger.Warn(ctx, "Pod rejected request", logger.Fields{"pod_id": c.podID, "operation": op, "status": resp.StatusCode})
		return errors.ErrTransport(op, fmt.Sprintf("unexpected status %d", resp.StatusCode)).
			WithMetadata("pod_id", c.podID).
			WithMetadata("status", resp.StatusCode)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.ErrTransport(op, "malformed response body").WithCause(err).WithMetadata("pod_id", c.podID)
	}
	return nil
}
