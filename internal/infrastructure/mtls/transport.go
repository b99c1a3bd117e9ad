// Package mtls builds the mutual TLS transport shared by every pod client.
// The client identity does not vary per pod, so the transport is built once per process.
package mtls

import (
	"context"
	"crypto"
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	pkcs12 "software.sslmate.com/src/go-pkcs12"

	"github.com/turtacn/appauth/internal/config"
	"github.com/turtacn/appauth/pkg/constants"
	"github.com/turtacn/appauth/pkg/errors"
	"github.com/turtacn/appauth/pkg/logger"
)

const (
	defaultConnectTimeout      = 10 * time.Second
	defaultMaxIdleConnsPerHost = 10
)

// Options describes the identity store, trust store and dial limits of the transport.
type Options struct {
	KeystoreFile        string
	KeystorePassword    config.Secret
	TruststoreFile      string
	TruststoreFormat    string
	TruststorePassword  config.Secret
	ConnectTimeout      time.Duration
	MaxIdleConnsPerHost int
}

// OptionsFromConfig maps the client section of the configuration to Options.
func OptionsFromConfig(cfg *config.ClientConfig) Options {
	return Options{
		KeystoreFile:        cfg.KeystoreFile,
		KeystorePassword:    cfg.KeystorePassword,
		TruststoreFile:      cfg.TruststoreFile,
		TruststoreFormat:    cfg.TruststoreFormat,
		TruststorePassword:  cfg.TruststorePassword,
		ConnectTimeout:      cfg.ConnectTimeout,
		MaxIdleConnsPerHost: cfg.MaxIdleConnsPerPod,
	}
}

// BuildTransport loads the PKCS#12 identity store and the trust store and returns an
// HTTP transport presenting the client certificate on every TLS handshake.
func BuildTransport(opts Options, log logger.Logger) (*http.Transport, error) {
	ctx := context.Background()

	identity, err := LoadIdentity(opts.KeystoreFile, opts.KeystorePassword.Value())
	if err != nil {
		log.Error(ctx, "Failed to load keystore", err, logger.Fields{"file": opts.KeystoreFile})
		return nil, err
	}

	roots, err := LoadTrustStore(opts.TruststoreFile, opts.TruststoreFormat, opts.TruststorePassword.Value())
	if err != nil {
		log.Error(ctx, "Failed to load truststore", err, logger.Fields{"file": opts.TruststoreFile})
		return nil, err
	}

	connectTimeout := opts.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = defaultConnectTimeout
	}
	maxIdle := opts.MaxIdleConnsPerHost
	if maxIdle <= 0 {
		maxIdle = defaultMaxIdleConnsPerHost
	}

	dialer := &net.Dialer{
		Timeout:   connectTimeout,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		Proxy:       http.ProxyFromEnvironment,
		DialContext: dialer.DialContext,
		TLSClientConfig: &tls.Config{
			Certificates: []tls.Certificate{identity},
			RootCAs:      roots,
			MinVersion:   tls.VersionTLS12,
		},
		TLSHandshakeTimeout:   connectTimeout,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   maxIdle,
		IdleConnTimeout:       90 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}

	log.Info(ctx, "Mutual TLS transport ready", logger.Fields{
		"client_subject":   identity.Leaf.Subject.String(),
		"client_not_after": identity.Leaf.NotAfter,
		"truststore":       opts.TruststoreFile,
	})
	return transport, nil
}

// LoadIdentity reads a PKCS#12 identity store holding the client certificate, its private
// key and optionally the intermediate chain.
func LoadIdentity(path, password string) (tls.Certificate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return tls.Certificate{}, errors.ErrKeystoreLoad(path, "file could not be read").WithCause(err)
	}

	key, leaf, chain, err := pkcs12.DecodeChain(data, password)
	if err != nil {
		return tls.Certificate{}, errors.ErrKeystoreLoad(path,
			"the keystore password may be wrong or the file is not in PKCS#12 format").WithCause(err)
	}

	signer, ok := key.(crypto.Signer)
	if !ok {
		return tls.Certificate{}, errors.ErrInternalConfig(fmt.Sprintf("keystore %s holds a %T that cannot sign", path, key))
	}
	pub, ok := signer.Public().(interface{ Equal(crypto.PublicKey) bool })
	if !ok || !pub.Equal(leaf.PublicKey) {
		return tls.Certificate{}, errors.ErrInternalConfig(fmt.Sprintf("keystore %s private key does not match its certificate", path))
	}

	certificate := tls.Certificate{
		Certificate: [][]byte{leaf.Raw},
		PrivateKey:  signer,
		Leaf:        leaf,
	}
	for _, c := range chain {
		certificate.Certificate = append(certificate.Certificate, c.Raw)
	}
	return certificate, nil
}

// LoadTrustStore reads the trusted certificates. The PEM format is a concatenation of
// CERTIFICATE blocks; the PKCS#12 format is a certificate-only trust store.
func LoadTrustStore(path, format, password string) (*x509.CertPool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.ErrTruststoreLoad(path, "file could not be read").WithCause(err)
	}

	var certs []*x509.Certificate
	switch format {
	case constants.TrustStoreFormatPEM, "":
		certs, err = decodePEMCertificates(data)
		if err != nil {
			return nil, errors.ErrTruststoreLoad(path, "malformed PEM certificate").WithCause(err)
		}
	case constants.TrustStoreFormatPKCS12:
		certs, err = pkcs12.DecodeTrustStore(data, password)
		if err != nil {
			return nil, errors.ErrTruststoreLoad(path,
				"the truststore password may be wrong or the file is not a PKCS#12 trust store").WithCause(err)
		}
	default:
		return nil, errors.ErrTruststoreLoad(path, fmt.Sprintf("unsupported truststore format %q", format))
	}

	if len(certs) == 0 {
		return nil, errors.ErrInternalConfig(fmt.Sprintf("truststore %s contains no trusted certificates", path))
	}

	pool := x509.NewCertPool()
	for _, c := range certs {
		pool.AddCert(c)
	}
	return pool, nil
}

func decodePEMCertificates(data []byte) ([]*x509.Certificate, error) {
	var certs []*x509.Certificate
	for {
		var block *pem.Block
		block, data = pem.Decode(data)
		if block == nil {
			return certs, nil
		}
		if block.Type != "CERTIFICATE" {
			continue
		}
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, err
		}
		certs = append(certs, cert)
	}
}
