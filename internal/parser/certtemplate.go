package parser

import "strconv"

// msPKI-Enrollment-Flag bits, per the SUPPLEMENT carrying forward
// RustHound-CE's certificate-template flag decoding.
const (
	enrollFlagIncludeSymmetricAlgorithms uint32 = 0x00000001
	enrollFlagPendAllRequests            uint32 = 0x00000002
	enrollFlagPublishToKRACointainer     uint32 = 0x00000004
	enrollFlagAutoEnrollment             uint32 = 0x00000020
	enrollFlagNoSecurityExtension        uint32 = 0x00080000
)

// msPKI-Certificate-Name-Flag bits.
const (
	nameFlagEnrolleeSuppliesSubject uint32 = 0x00000001
)

// A subset of the well-known PKI extended-key-usage OIDs relevant to
// authentication-capable templates.
var clientAuthEKUOIDs = map[string]bool{
	"1.3.6.1.5.5.7.3.2":         true, // Client Authentication
	"1.3.6.1.5.5.7.3.4":         true, // Secure Email
	"1.3.6.1.4.1.311.20.2.2":    true, // Smartcard Logon
	"2.5.29.37.0":               true, // Any Purpose
}

// certTemplateFlags is the decoded enrollment/issuance flag bundle for a
// CertTemplate record.
type certTemplateFlags struct {
	RequiresManagerApproval    bool
	NoSecurityExtension        bool
	EnrolleeSuppliesSubject    bool
	AuthenticationEnabled      bool
	SchemaVersion              int
}

func decodeCertTemplateFlags(enrollmentFlagRaw, nameFlagRaw, schemaVersionRaw string, ekus []string) certTemplateFlags {
	var flags certTemplateFlags

	if v, err := strconv.ParseUint(enrollmentFlagRaw, 10, 32); err == nil {
		mask := uint32(v)
		flags.RequiresManagerApproval = mask&enrollFlagPendAllRequests != 0
		flags.NoSecurityExtension = mask&enrollFlagNoSecurityExtension != 0
	}

	if v, err := strconv.ParseUint(nameFlagRaw, 10, 32); err == nil {
		flags.EnrolleeSuppliesSubject = uint32(v)&nameFlagEnrolleeSuppliesSubject != 0
	}

	if v, err := strconv.Atoi(schemaVersionRaw); err == nil {
		flags.SchemaVersion = v
	}

	for _, oid := range ekus {
		if clientAuthEKUOIDs[oid] {
			flags.AuthenticationEnabled = true
			break
		}
	}

	return flags
}
