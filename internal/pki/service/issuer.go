// Package service generates device key pairs and X.509 certificates.
package service

import (
	"bytes"
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"net/url"
	"os"
	"time"

	pkiDomain "github.com/allisson/devicetrust/internal/pki/domain"
)

const (
	pemTypeCertificate = "CERTIFICATE"
	pemTypePrivateKey  = "PRIVATE KEY"
	pemTypePublicKey   = "PUBLIC KEY"

	// clockSkew backdates NotBefore so freshly issued certificates verify on devices
	// whose clocks run slightly behind.
	clockSkew = time.Minute
)

// CertificateIssuer issues device certificates and checks who issued a certificate.
type CertificateIssuer interface {
	// Issue generates a P-256 key pair and a certificate for deviceID valid from now
	// for the configured validity.
	Issue(deviceID string, now time.Time) (*pkiDomain.DeviceCertificate, error)

	// CheckIssuer verifies that cert was signed by this issuer.
	CheckIssuer(cert *x509.Certificate) error
}

// CA is a signing certificate and its private key.
type CA struct {
	Certificate *x509.Certificate
	Signer      crypto.Signer
}

// LoadCA reads a PEM CA certificate and a PEM (PKCS#8, SEC1 or PKCS#1) private key.
func LoadCA(certFile, keyFile string) (*CA, error) {
	certPEM, err := os.ReadFile(certFile)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", pkiDomain.ErrInvalidCA, err)
	}
	keyPEM, err := os.ReadFile(keyFile)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", pkiDomain.ErrInvalidCA, err)
	}
	return ParseCA(certPEM, keyPEM)
}

// ParseCA parses a PEM CA certificate and private key.
func ParseCA(certPEM, keyPEM []byte) (*CA, error) {
	_, cert, err := DecodeCertificate(certPEM)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", pkiDomain.ErrInvalidCA, err)
	}
	if !cert.IsCA {
		return nil, fmt.Errorf("%w: certificate is not a CA", pkiDomain.ErrInvalidCA)
	}

	block, _ := pem.Decode(keyPEM)
	if block == nil {
		return nil, fmt.Errorf("%w: failed to parse private key PEM", pkiDomain.ErrInvalidCA)
	}
	signer, err := parsePrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", pkiDomain.ErrInvalidCA, err)
	}

	return &CA{Certificate: cert, Signer: signer}, nil
}

func parsePrivateKey(der []byte) (crypto.Signer, error) {
	if key, err := x509.ParsePKCS8PrivateKey(der); err == nil {
		if signer, ok := key.(crypto.Signer); ok {
			return signer, nil
		}
		return nil, fmt.Errorf("unsupported private key type %T", key)
	}
	if key, err := x509.ParseECPrivateKey(der); err == nil {
		return key, nil
	}
	if key, err := x509.ParsePKCS1PrivateKey(der); err == nil {
		return key, nil
	}
	return nil, fmt.Errorf("unsupported private key encoding")
}

// DecodeCertificate accepts a PEM or DER certificate and returns its DER bytes and parsed form.
func DecodeCertificate(data []byte) ([]byte, *x509.Certificate, error) {
	der := data
	if block, _ := pem.Decode(data); block != nil {
		if block.Type != pemTypeCertificate {
			return nil, nil, pkiDomain.ErrMalformedCertificate
		}
		der = block.Bytes
	}

	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, nil, pkiDomain.ErrMalformedCertificate
	}
	return der, cert, nil
}

type ecdsaIssuer struct {
	validity time.Duration
	ca       *CA
}

// NewCertificateIssuer creates an issuer. With a nil ca every certificate is self-signed.
func NewCertificateIssuer(validity time.Duration, ca *CA) CertificateIssuer {
	return &ecdsaIssuer{validity: validity, ca: ca}
}

func randomSerial() (*big.Int, error) {
	limit := new(big.Int).Lsh(big.NewInt(1), 128)
	return rand.Int(rand.Reader, limit)
}

// Issue implements CertificateIssuer.
func (i *ecdsaIssuer) Issue(deviceID string, now time.Time) (*pkiDomain.DeviceCertificate, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate device key: %w", err)
	}

	serial, err := randomSerial()
	if err != nil {
		return nil, fmt.Errorf("failed to generate serial number: %w", err)
	}

	issuedAt := now.UTC().Truncate(time.Second)
	expiresAt := issuedAt.Add(i.validity)
	template := &x509.Certificate{
		SerialNumber:          serial,
		Subject:               pkix.Name{CommonName: deviceID},
		URIs:                  []*url.URL{{Scheme: "urn", Opaque: "device:" + deviceID}},
		NotBefore:             issuedAt.Add(-clockSkew),
		NotAfter:              expiresAt,
		KeyUsage:              x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth},
		BasicConstraintsValid: true,
	}

	parent := template
	var signer crypto.Signer = key
	if i.ca != nil {
		parent = i.ca.Certificate
		signer = i.ca.Signer
	}

	der, err := x509.CreateCertificate(rand.Reader, template, parent, &key.PublicKey, signer)
	if err != nil {
		return nil, fmt.Errorf("failed to create certificate: %w", err)
	}

	privDER, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal private key: %w", err)
	}
	pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal public key: %w", err)
	}

	return &pkiDomain.DeviceCertificate{
		DeviceID:     deviceID,
		SerialNumber: serial.Text(16),
		Certificate:  pem.EncodeToMemory(&pem.Block{Type: pemTypeCertificate, Bytes: der}),
		PrivateKey:   pem.EncodeToMemory(&pem.Block{Type: pemTypePrivateKey, Bytes: privDER}),
		PublicKey:    pem.EncodeToMemory(&pem.Block{Type: pemTypePublicKey, Bytes: pubDER}),
		IssuedAt:     issuedAt,
		ExpiresAt:    expiresAt,
	}, nil
}

// CheckIssuer implements CertificateIssuer.
func (i *ecdsaIssuer) CheckIssuer(cert *x509.Certificate) error {
	if i.ca == nil {
		// Leaf certificates are not CAs, so CheckSignatureFrom(cert) would always refuse them.
		if !bytes.Equal(cert.RawIssuer, cert.RawSubject) {
			return fmt.Errorf("certificate is not self-signed")
		}
		return cert.CheckSignature(cert.SignatureAlgorithm, cert.RawTBSCertificate, cert.Signature)
	}
	if !bytes.Equal(cert.RawIssuer, i.ca.Certificate.RawSubject) {
		return fmt.Errorf("certificate not issued by configured CA")
	}
	return cert.CheckSignatureFrom(i.ca.Certificate)
}
