package testutil

import (
	"crypto/tls"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/turtacn/appauth/internal/domain/models"
	"github.com/turtacn/appauth/pkg/constants"
)

// FakePod serves the two session authentication endpoints a pod exposes to extension apps.
type FakePod struct {
	mu                 sync.Mutex
	certificatePEM     string
	symphonyToken      string
	appID              string
	authenticateStatus int
	certificateCalls   int
	authenticateCalls  int
	lastRequest        models.AuthenticateRequest
	lastClientCN       string
}

// NewFakePod returns a pod that answers every handshake with symphonyToken.
func NewFakePod(symphonyToken, certificatePEM string) *FakePod {
	return &FakePod{
		symphonyToken:      symphonyToken,
		certificatePEM:     certificatePEM,
		appID:              "acme-app",
		authenticateStatus: http.StatusOK,
	}
}

// SetCertificate replaces the signing certificate the pod returns.
func (p *FakePod) SetCertificate(certificatePEM string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.certificatePEM = certificatePEM
}

// SetAuthenticateStatus makes the authenticate endpoint answer with status.
func (p *FakePod) SetAuthenticateStatus(status int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.authenticateStatus = status
}

// CertificateCalls returns how often the certificate endpoint was hit.
func (p *FakePod) CertificateCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.certificateCalls
}

// AuthenticateCalls returns how often the authenticate endpoint was hit.
func (p *FakePod) AuthenticateCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.authenticateCalls
}

// LastRequest returns the last authenticate request body.
func (p *FakePod) LastRequest() models.AuthenticateRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastRequest
}

// LastClientCN returns the common name of the last client certificate presented.
func (p *FakePod) LastClientCN() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastClientCN
}

// Handler returns the HTTP handler of the pod.
func (p *FakePod) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(constants.PodCertificatePath, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		p.mu.Lock()
		p.certificateCalls++
		p.recordPeer(r)
		body := models.PodCertificate{Certificate: p.certificatePEM}
		p.mu.Unlock()
		writeJSON(w, http.StatusOK, body)
	})
	mux.HandleFunc(constants.PodAuthenticatePath, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		var req models.AuthenticateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		p.mu.Lock()
		p.authenticateCalls++
		p.lastRequest = req
		p.recordPeer(r)
		status := p.authenticateStatus
		body := models.AuthenticateResponse{AppID: p.appID, AppToken: req.AppToken, SymphonyToken: p.symphonyToken}
		p.mu.Unlock()

		if status != http.StatusOK {
			writeJSON(w, status, map[string]string{"message": "rejected"})
			return
		}
		writeJSON(w, http.StatusOK, body)
	})
	return mux
}

func (p *FakePod) recordPeer(r *http.Request) {
	if r.TLS != nil && len(r.TLS.PeerCertificates) > 0 {
		p.lastClientCN = r.TLS.PeerCertificates[0].Subject.CommonName
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// NewMTLSServer starts a TLS server with a certificate issued by ca that requires
// client certificates issued by clientCA.
func NewMTLSServer(t testing.TB, ca *CA, clientCA *CA, handler http.Handler) *httptest.Server {
	t.Helper()
	server := httptest.NewUnstartedServer(handler)
	server.TLS = &tls.Config{
		Certificates: []tls.Certificate{ca.IssueServer(t).TLSCertificate()},
		ClientAuth:   tls.RequireAndVerifyClientCert,
		ClientCAs:    clientCA.Pool(),
		MinVersion:   tls.VersionTLS12,
	}
	server.StartTLS()
	t.Cleanup(server.Close)
	return server
}
