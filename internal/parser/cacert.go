package parser

import (
	"crypto/sha1"
	"crypto/x509"
	"encoding/hex"
	"strings"
)

// certInspection is the result of decoding a CA object's DER certificate
// per spec §4.D.
type certInspection struct {
	Thumbprint          string
	HasBasicConstraints bool
	PathLenConstraint   int
}

// inspectCertificate decodes a DER-encoded certificate, computing its
// SHA-1 fingerprint and basic-constraints path-length, per spec §4.D. A
// decode failure is a recoverable entry-level error: the zero value is
// returned and the caller logs it.
func inspectCertificate(der []byte) (certInspection, error) {
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return certInspection{}, err
	}

	sum := sha1.Sum(der)
	inspection := certInspection{
		Thumbprint: strings.ToUpper(hex.EncodeToString(sum[:])),
	}

	if cert.BasicConstraintsValid && cert.MaxPathLen > 0 {
		inspection.HasBasicConstraints = true
		inspection.PathLenConstraint = cert.MaxPathLen
	}

	return inspection, nil
}
