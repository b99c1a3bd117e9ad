package pod

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/appauth/internal/domain/models"
	"github.com/turtacn/appauth/internal/infrastructure/mtls"
	"github.com/turtacn/appauth/internal/testutil"
	"github.com/turtacn/appauth/pkg/constants"
	"github.com/turtacn/appauth/pkg/errors"
	"github.com/turtacn/appauth/pkg/logger"
)

const podHost = "https://pod-a.example.com"

type recordingMetrics struct {
	operations []string
	statuses   []int
	clients    int
}

func (m *recordingMetrics) RecordHandshake(string, bool, time.Duration) {}
func (m *recordingMetrics) RecordTokenValidation(bool)                  {}
func (m *recordingMetrics) RecordAssertionVerification(string, string)  {}
func (m *recordingMetrics) SetPodClients(count int)                     { m.clients = count }

func (m *recordingMetrics) RecordPodRequest(op string, status int, _ time.Duration) {
	m.operations = append(m.operations, op)
	m.statuses = append(m.statuses, status)
}

func newMockedClient(t *testing.T, metrics *recordingMetrics) (*AuthenticationClient, *httpmock.MockTransport) {
	t.Helper()
	transport := httpmock.NewMockTransport()
	deps := ClientDeps{}
	if metrics != nil {
		deps.Metrics = metrics
	}
	client, err := NewAuthenticationClient("pod-a", podHost+"/", &http.Client{Transport: transport}, deps)
	require.NoError(t, err)
	return client, transport
}

func requireCode(t *testing.T, err error, code constants.ErrorCode) errors.AppError {
	t.Helper()
	require.Error(t, err)
	appErr, ok := errors.AsAppError(err)
	require.True(t, ok, "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code())
	return appErr
}

func TestAuthenticationClient_GetPodCertificate(t *testing.T) {
	metrics := &recordingMetrics{}
	client, transport := newMockedClient(t, metrics)
	transport.RegisterResponder(http.MethodGet, podHost+constants.PodCertificatePath,
		httpmock.NewJsonResponderOrPanic(http.StatusOK, map[string]string{"certificate": "-----BEGIN CERTIFICATE-----"}))

	cert, err := client.GetPodCertificate(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "-----BEGIN CERTIFICATE-----", cert.Certificate)
	assert.Equal(t, "pod-a", client.PodID())
	assert.Equal(t, []string{opCertificate}, metrics.operations)
	assert.Equal(t, []int{http.StatusOK}, metrics.statuses)
}

func TestAuthenticationClient_Authenticate(t *testing.T) {
	client, transport := newMockedClient(t, nil)
	var received models.AuthenticateRequest
	transport.RegisterResponder(http.MethodPost, podHost+constants.PodAuthenticatePath,
		func(req *http.Request) (*http.Response, error) {
			if err := json.NewDecoder(req.Body).Decode(&received); err != nil {
				return httpmock.NewStringResponse(http.StatusBadRequest, ""), nil
			}
			return httpmock.NewJsonResponse(http.StatusOK, map[string]interface{}{
				"appId":         "acme-app",
				"appToken":      received.AppToken,
				"symphonyToken": "sym-123",
				"expireAt":      1700000000000,
			})
		})

	resp, err := client.Authenticate(context.Background(), models.AuthenticateRequest{AppToken: "app-1", AuthToken: "jwt"})

	require.NoError(t, err)
	assert.Equal(t, "app-1", resp.AppToken)
	assert.Equal(t, "sym-123", resp.SymphonyToken)
	assert.Equal(t, int64(1700000000000), resp.ExpiresAt().UnixMilli())
	assert.Equal(t, models.AuthenticateRequest{AppToken: "app-1", AuthToken: "jwt"}, received)
}

func TestAuthenticationClient_Errors(t *testing.T) {
	tests := []struct {
		name      string
		responder httpmock.Responder
		status    int
	}{
		{"server error", httpmock.NewStringResponder(http.StatusInternalServerError, "boom"), http.StatusInternalServerError},
		{"unauthorized", httpmock.NewStringResponder(http.StatusUnauthorized, ""), http.StatusUnauthorized},
		{"malformed body", httpmock.NewStringResponder(http.StatusOK, "{not json"), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, transport := newMockedClient(t, nil)
			transport.RegisterResponder(http.MethodGet, podHost+constants.PodCertificatePath, tt.responder)

			_, err := client.GetPodCertificate(context.Background())

			appErr := requireCode(t, err, constants.ErrCodeTransport)
			assert.Equal(t, "pod-a", appErr.Metadata()["pod_id"])
			if tt.status != 0 {
				assert.Equal(t, tt.status, appErr.Metadata()["status"])
			}
		})
	}
}

func TestAuthenticationClient_ConnectionFailure(t *testing.T) {
	client, _ := newMockedClient(t, nil)

	_, err := client.Authenticate(context.Background(), models.AuthenticateRequest{AppToken: "app-1"})

	requireCode(t, err, constants.ErrCodeTransport)
}

func TestNewAuthenticationClient_InvalidHost(t *testing.T) {
	for _, host := range []string{"", "pod-a.example.com", "ftp://pod-a.example.com", "://bad"} {
		_, err := NewAuthenticationClient("pod-a", host, http.DefaultClient, ClientDeps{})
		requireCode(t, err, constants.ErrCodeTransport)
	}
}

func TestAuthenticationClient_OverMutualTLS(t *testing.T) {
	dir := t.TempDir()
	ca := testutil.NewCA(t, "Test Root")
	fakePod := testutil.NewFakePod("sym-123", "cert-pem")
	server := testutil.NewMTLSServer(t, ca, ca, fakePod.Handler())

	transport, err := mtls.BuildTransport(mtls.Options{
		KeystoreFile:     testutil.WriteKeystore(t, dir, ca.IssueClient(t, "acme-app"), ca, "changeit"),
		KeystorePassword: "changeit",
		TruststoreFile:   testutil.WriteTrustStorePEM(t, dir, ca),
		TruststoreFormat: constants.TrustStoreFormatPEM,
	}, logger.NewNoopLogger())
	require.NoError(t, err)

	client, err := NewAuthenticationClient("pod-a", server.URL, &http.Client{Transport: transport, Timeout: 5 * time.Second}, ClientDeps{})
	require.NoError(t, err)

	cert, err := client.GetPodCertificate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "cert-pem", cert.Certificate)

	resp, err := client.Authenticate(context.Background(), models.AuthenticateRequest{AppToken: "app-1"})
	require.NoError(t, err)
	assert.Equal(t, "sym-123", resp.SymphonyToken)
	assert.Equal(t, "acme-app", fakePod.LastClientCN())
	assert.Equal(t, 1, fakePod.CertificateCalls())
	assert.Equal(t, 1, fakePod.AuthenticateCalls())
}
