// Package testutil provides fixtures shared by package tests: a throwaway certificate
// authority, mutual TLS pod servers and key material files.
package testutil

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	pkcs12 "software.sslmate.com/src/go-pkcs12"
)

var serial atomic.Int64

// CA is a throwaway certificate authority.
type CA struct {
	Cert *x509.Certificate
	Key  *rsa.PrivateKey
}

// Leaf is a certificate issued by a CA together with its key.
type Leaf struct {
	Cert *x509.Certificate
	Key  *rsa.PrivateKey
}

// TLSCertificate returns the leaf as a tls.Certificate.
func (l Leaf) TLSCertificate() tls.Certificate {
	return tls.Certificate{
		Certificate: [][]byte{l.Cert.Raw},
		PrivateKey:  l.Key,
		Leaf:        l.Cert,
	}
}

// PEM returns the leaf certificate as a PEM block.
func (l Leaf) PEM() string {
	return string(pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: l.Cert.Raw}))
}

// GenerateKey returns a fresh 2048 bit RSA key.
func GenerateKey(t testing.TB) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return key
}

// NewCA creates a self-signed certificate authority.
func NewCA(t testing.TB, commonName string) *CA {
	t.Helper()
	key := GenerateKey(t)
	template := &x509.Certificate{
		SerialNumber:          big.NewInt(serial.Add(1)),
		Subject:               pkix.Name{CommonName: commonName, Organization: []string{"Test Co"}},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(24 * time.Hour),
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageDigitalSignature,
		BasicConstraintsValid: true,
		IsCA:                  true,
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	require.NoError(t, err)
	cert, err := x509.ParseCertificate(der)
	require.NoError(t, err)
	return &CA{Cert: cert, Key: key}
}

// IssueServer issues a server certificate valid for localhost and 127.0.0.1.
func (ca *CA) IssueServer(t testing.TB) Leaf {
	t.Helper()
	return ca.issue(t, "localhost", x509.ExtKeyUsageServerAuth, func(tmpl *x509.Certificate) {
		tmpl.DNSNames = []string{"localhost"}
		tmpl.IPAddresses = []net.IP{net.ParseIP("127.0.0.1"), net.IPv6loopback}
	})
}

// IssueClient issues a client certificate with the given common name.
func (ca *CA) IssueClient(t testing.TB, commonName string) Leaf {
	t.Helper()
	return ca.issue(t, commonName, x509.ExtKeyUsageClientAuth, nil)
}

// IssueSigning issues a certificate for a JWT signing key.
func (ca *CA) IssueSigning(t testing.TB, commonName string, key *rsa.PrivateKey) Leaf {
	t.Helper()
	return ca.issueWithKey(t, commonName, key, x509.ExtKeyUsageAny, nil)
}

// Pool returns a cert pool holding only the CA.
func (ca *CA) Pool() *x509.CertPool {
	pool := x509.NewCertPool()
	pool.AddCert(ca.Cert)
	return pool
}

// PEM returns the CA certificate as a PEM block.
func (ca *CA) PEM() string {
	return string(pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: ca.Cert.Raw}))
}

func (ca *CA) issue(t testing.TB, commonName string, usage x509.ExtKeyUsage, mutate func(*x509.Certificate)) Leaf {
	return ca.issueWithKey(t, commonName, GenerateKey(t), usage, mutate)
}

func (ca *CA) issueWithKey(t testing.TB, commonName string, key *rsa.PrivateKey, usage x509.ExtKeyUsage, mutate func(*x509.Certificate)) Leaf {
	t.Helper()
	template := &x509.Certificate{
		SerialNumber: big.NewInt(serial.Add(1)),
		Subject:      pkix.Name{CommonName: commonName, Organization: []string{"Test Co"}},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(24 * time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		ExtKeyUsage:  []x509.ExtKeyUsage{usage},
	}
	if mutate != nil {
		mutate(template)
	}
	der, err := x509.CreateCertificate(rand.Reader, template, ca.Cert, &key.PublicKey, ca.Key)
	require.NoError(t, err)
	cert, err := x509.ParseCertificate(der)
	require.NoError(t, err)
	return Leaf{Cert: cert, Key: key}
}

// WriteFile writes data into dir and returns the path.
func WriteFile(t testing.TB, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

// WriteKeystore writes leaf and its chain as a PKCS#12 identity store.
func WriteKeystore(t testing.TB, dir string, leaf Leaf, ca *CA, password string) string {
	t.Helper()
	data, err := pkcs12.Modern.Encode(leaf.Key, leaf.Cert, []*x509.Certificate{ca.Cert}, password)
	require.NoError(t, err)
	return WriteFile(t, dir, "keystore.p12", data)
}

// WriteTrustStorePEM writes the CA certificates as concatenated PEM blocks.
func WriteTrustStorePEM(t testing.TB, dir string, cas ...*CA) string {
	t.Helper()
	var data []byte
	for _, ca := range cas {
		data = append(data, ca.PEM()...)
	}
	return WriteFile(t, dir, "truststore.pem", data)
}

// WriteTrustStorePKCS12 writes the CA certificates as a PKCS#12 trust store.
func WriteTrustStorePKCS12(t testing.TB, dir string, password string, cas ...*CA) string {
	t.Helper()
	certs := make([]*x509.Certificate, 0, len(cas))
	for _, ca := range cas {
		certs = append(certs, ca.Cert)
	}
	data, err := pkcs12.Modern.EncodeTrustStore(certs, password)
	require.NoError(t, err)
	return WriteFile(t, dir, "truststore.p12", data)
}
