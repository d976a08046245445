// Package parser classifies raw directory entries and materializes the
// typed records and lookup tables spec §4.D describes.
package parser

import (
	"bytes"
	"hash/fnv"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/huskyhound/nonehound/internal/directory"
	"github.com/huskyhound/nonehound/internal/model"
	"github.com/huskyhound/nonehound/secdesc"
)

// userAccountControl bit flags named in spec §4.D.
const (
	uacDisabled                   uint32 = 0x00000002
	uacPasswordNotRequired        uint32 = 0x00000020
	uacDontExpirePassword         uint32 = 0x00010000
	uacServerTrustAccount         uint32 = 0x00002000
	uacTrustedForDelegation       uint32 = 0x00080000
	uacNotDelegated               uint32 = 0x00100000
	uacTrustedToAuthForDelegation uint32 = 0x01000000
	uacDontRequirePreauth         uint32 = 0x00400000
)

// Well-known RIDs the high-value marker is set for directly on the Parser's
// own output, ahead of the Resolver's built-in-group synthesis.
const (
	ridAdministrator = 500
	ridDomainAdmins  = 512
	ridEnterpriseAdmins = 519
)

// Parser accumulates typed records and the four cross-reference lookup
// tables as entries are fed to Parse, in the order spec §4.D and §5 require.
type Parser struct {
	DomainUpper string
	Tables      *model.LookupTables
	log         zerolog.Logger

	// pendingDomainSID holds the global domain SID until the first Domain
	// record is classified, per spec §5's ordering guarantee: if a
	// Configuration-partition object needed it before the domain context
	// finished, it is patched in once known.
	pendingDomainSID string
	domainSIDKnown    bool
	sidPatchTargets   []model.Record

	Users            []*model.User
	Groups           []*model.Group
	Computers        []*model.Computer
	OUs              []*model.OU
	Domains          []*model.Domain
	GPOs             []*model.GPO
	Containers       []*model.Container
	Trusts           []*model.TrustRecord
	AIACAs           []*model.AIACA
	RootCAs          []*model.RootCA
	EnterpriseCAs    []*model.EnterpriseCA
	CertTemplates    []*model.CertTemplate
	IssuancePolicies []*model.IssuancePolicy
	NTAuthStores     []*model.NTAuthStore

	Warnings int
}

// New returns a Parser for domainUpper (already normalized uppercase).
func New(domainUpper string, log zerolog.Logger) *Parser {
	return &Parser{
		DomainUpper: domainUpper,
		Tables:      model.NewLookupTables(),
		log:         log,
	}
}

// establishDomainSID designates sid the global domain SID the first time a
// Domain record is classified, and patches every record parsed before this
// point, per spec §5's ordering guarantee.
func (p *Parser) establishDomainSID(sid string) {
	if p.domainSIDKnown || sid == "" {
		return
	}
	p.pendingDomainSID = sid
	p.domainSIDKnown = true
	for _, rec := range p.sidPatchTargets {
		rec.SetDomainSID(sid)
	}
	p.sidPatchTargets = nil
}

func (p *Parser) warn(msg string, dn string, err error) {
	p.Warnings++
	ev := p.log.Warn().Str("dn", dn)
	if err != nil {
		ev = ev.Err(err)
	}
	ev.Msg(msg)
}

// Parse classifies e, dispatches it to the matching per-kind handler, and
// updates the lookup tables. It never returns a terminal error; malformed
// fields are logged and left at their default, per spec §7.
func (p *Parser) Parse(e directory.Entry) error {
	dn := strings.ToUpper(e.DN)
	kind := classify(e)

	if kind == model.KindContainer && isReservedContainer(dn) {
		return nil
	}

	var rec model.Record
	switch kind {
	case model.KindTrust:
		rec = p.parseTrust(e, dn)
	case model.KindDomain:
		rec = p.parseDomain(e, dn)
	case model.KindCertTemplate:
		rec = p.parseCertTemplate(e, dn)
	case model.KindEnterpriseCA:
		rec = p.parseEnterpriseCA(e, dn)
	case model.KindRootCA:
		rec = p.parseCA(e, dn, model.NewRootCA())
	case model.KindAIACA:
		rec = p.parseCA(e, dn, model.NewAIACA())
	case model.KindNTAuthStore:
		rec = p.parseNTAuthStore(e, dn)
	case model.KindIssuancePolicy:
		rec = p.parseIssuancePolicy(e, dn)
	case model.KindGPO:
		rec = p.parseGPO(e, dn)
	case model.KindOU:
		rec = p.parseOU(e, dn)
	case model.KindComputer:
		rec = p.parseComputer(e, dn)
	case model.KindGroup:
		rec = p.parseGroup(e, dn)
	case model.KindUser:
		rec = p.parseUser(e, dn)
	case model.KindForeignSecurityPrincipal:
		rec = p.parseForeignSecurityPrincipal(e, dn)
	case model.KindContainer:
		rec = p.parseContainer(e, dn)
	default:
		return nil
	}

	if rec == nil {
		return nil
	}

	if p.domainSIDKnown {
		rec.SetDomainSID(p.pendingDomainSID)
	} else {
		p.sidPatchTargets = append(p.sidPatchTargets, rec)
	}

	id := rec.Identifier()
	if id != "" {
		p.Tables.DNToID[dn] = id
		p.Tables.IDToKind[id] = rec.ObjectKind()
	}

	return nil
}

// classify assigns exactly one ObjectKind per the precedence order in
// spec §4.D: Trust > Domain > CertTemplate > EnterpriseCA > RootCA > AIACA
// > NTAuthStore > IssuancePolicy > GPO > OU > Computer > Group > User >
// ForeignSecurityPrincipal > Container > Unknown.
func classify(e directory.Entry) model.ObjectKind {
	classes := lowerAll(e.Attrs["objectClass"])
	dnUpper := strings.ToUpper(e.DN)

	has := func(class string) bool {
		for _, c := range classes {
			if c == class {
				return true
			}
		}
		return false
	}

	switch {
	case has("trusteddomain"):
		return model.KindTrust
	case has("domaindns") || has("domain"):
		return model.KindDomain
	case has("pkicertificatetemplate"):
		return model.KindCertTemplate
	case has("pkienrollmentservice"):
		return model.KindEnterpriseCA
	case has("certificationauthority") && strings.Contains(dnUpper, "CN=NTAUTHCERTIFICATES"):
		return model.KindNTAuthStore
	case has("certificationauthority") && strings.Contains(dnUpper, "CN=AIA,"):
		return model.KindAIACA
	case has("certificationauthority") && strings.Contains(dnUpper, "CN=CERTIFICATION AUTHORITIES,"):
		return model.KindRootCA
	case has("certificationauthority"):
		return model.KindRootCA
	case has("mspki-enterprise-oid"):
		return model.KindIssuancePolicy
	case has("grouppolicycontainer"):
		return model.KindGPO
	case has("organizationalunit"):
		return model.KindOU
	case has("computer"):
		return model.KindComputer
	case has("group"):
		return model.KindGroup
	case has("foreignsecurityprincipal"):
		return model.KindForeignSecurityPrincipal
	case has("user"):
		return model.KindUser
	case has("container"):
		return model.KindContainer
	default:
		return model.KindUnknown
	}
}

func lowerAll(vals []string) []string {
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = strings.ToLower(v)
	}
	return out
}

// isReservedContainer matches the two DN patterns spec §4.D names as
// skip-with-no-output: the domain-updates container and any fabricated
// schema-partition GUID-like tail.
func isReservedContainer(dnUpper string) bool {
	if strings.Contains(dnUpper, "CN=DOMAINUPDATES,CN=SYSTEM,") {
		return true
	}
	if strings.Contains(dnUpper, "CN=SCHEMA,CN=CONFIGURATION,") && strings.Contains(dnUpper, "}") {
		return true
	}
	return false
}

// sidFromObjectSID synthesizes the printable identifier from a binary
// objectSid value, per spec §4.D. A zero-length or all-zero SID is flagged
// as a parse error but the caller still retains the entry.
func (p *Parser) sidFromObjectSID(raw []byte, dn string) string {
	if len(raw) == 0 {
		return ""
	}
	sid, err := secdesc.NewSID(bytes.NewBuffer(raw), len(raw))
	if err != nil {
		p.warn("malformed objectSid", dn, err)
		return ""
	}
	if sid.IsZero() {
		p.warn("all-zero objectSid", dn, nil)
	}
	return secdesc.DomainQualify(sid.String(), len(raw), p.DomainUpper)
}

// guidFromObjectGUID renders the directory's binary unique identifier into
// its canonical dashed, lower-cased form, used as ObjectIdentifier for
// records that lack a security identifier.
func (p *Parser) guidFromObjectGUID(raw []byte, dn string) string {
	if len(raw) == 0 {
		return ""
	}
	guid, err := secdesc.NewGUIDFromDirectoryBytes(raw)
	if err != nil {
		p.warn("malformed objectGUID", dn, err)
		return ""
	}
	return strings.ToLower(guid.String())
}

// parseUAC decodes a userAccountControl string into the booleans spec
// §4.D names.
type uacFlags struct {
	Enabled               bool
	PasswordNotRequired   bool
	PasswordNeverExpires  bool
	DontRequirePreauth    bool
	UnconstrainedDelegation bool
	Sensitive             bool
	TrustedToAuth         bool
	IsDomainController    bool
}

func parseUAC(raw string) uacFlags {
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return uacFlags{Enabled: true}
	}
	mask := uint32(v)
	return uacFlags{
		Enabled:                 mask&uacDisabled == 0,
		PasswordNotRequired:     mask&uacPasswordNotRequired != 0,
		PasswordNeverExpires:    mask&uacDontExpirePassword != 0,
		DontRequirePreauth:      mask&uacDontRequirePreauth != 0,
		UnconstrainedDelegation: mask&uacTrustedForDelegation != 0,
		Sensitive:               mask&uacNotDelegated != 0,
		TrustedToAuth:           mask&uacTrustedToAuthForDelegation != 0,
		IsDomainController:      mask&uacServerTrustAccount != 0,
	}
}

func hasLAPS(attrs map[string][]string) bool {
	for _, name := range []string{
		"ms-Mcs-AdmPwd", "ms-Mcs-AdmPwdExpirationTime",
		"msLAPS-Password", "msLAPS-EncryptedPassword", "msLAPS-PasswordExpirationTime",
	} {
		if _, ok := attrs[name]; ok {
			return true
		}
	}
	return false
}

func first(vals []string) string {
	if len(vals) == 0 {
		return ""
	}
	return vals[0]
}

// decodeSecurityDescriptor applies secdesc decoding and DeriveRights to a
// raw nTSecurityDescriptor, appending resulting ACEs to rec and recording
// the protected-DACL bit, per spec §4.D and §3 invariant 3.
func (p *Parser) decodeSecurityDescriptor(rec model.Record, raw []byte, isCAObject bool, dn string) {
	if len(raw) == 0 {
		return
	}
	sd, err := secdesc.NewNtSecurityDescriptor(raw)
	if err != nil {
		p.warn("malformed security descriptor", dn, err)
		return
	}

	rec.SetACLProtected(sd.Header.IsDACLProtected())

	for _, ace := range sd.DACL.Aces {
		rights := secdesc.DeriveRights(ace, isCAObject)
		if len(rights) == 0 {
			continue
		}
		principal := ace.ObjectAce.GetPrincipal()
		sidStr := principal.String()
		if sidStr == "" {
			continue
		}
		qualified := secdesc.DomainQualify(sidStr, 8+4*len(principal.SubAuthorities), p.DomainUpper)
		for _, right := range rights {
			rec.AppendACE(model.ACE{
				PrincipalSID:    qualified,
				RightName:       right.RightName,
				IsInherited:     right.IsInherited,
				InheritanceHash: inheritanceHash(right.ObjectType, right.InheritedType, right.IsInherited),
			})
		}
	}
}

// inheritanceHash computes the stable hash named in spec §4.D step 5,
// letting consumers deduplicate ACEs that trace back to the same
// inheritance source. FNV-1a is the standard library's own "stable,
// non-cryptographic hash" primitive; nothing in the retrieval pack offers a
// lighter-weight alternative for this internal dedup key.
func inheritanceHash(objType, inheritedType string, isInherited bool) string {
	h := fnv.New64a()
	h.Write([]byte(objType))
	h.Write([]byte{0})
	h.Write([]byte(inheritedType))
	h.Write([]byte{0})
	if isInherited {
		h.Write([]byte{1})
	} else {
		h.Write([]byte{0})
	}
	return strconv.FormatUint(h.Sum64(), 16)
}

// decodeAllowedToAct parses msDS-AllowedToActOnBehalfOfOtherIdentity, itself
// a security descriptor, and returns its DACL's allowed principals as
// resource-based constrained delegation actors. Deny ACEs are ignored
// (SUPPLEMENT, spec §9 open question (c)); principal kinds are filled in by
// the Resolver once every record is known.
func (p *Parser) decodeAllowedToAct(raw []byte, dn string) []model.Ref {
	sd, err := secdesc.NewNtSecurityDescriptor(raw)
	if err != nil {
		p.warn("malformed msDS-AllowedToActOnBehalfOfOtherIdentity", dn, err)
		return nil
	}

	var actors []model.Ref
	for _, ace := range sd.DACL.Aces {
		if ace.Header.Type != secdesc.AceTypeAccessAllowed && ace.Header.Type != secdesc.AceTypeAccessAllowedObject {
			continue
		}
		principal := ace.ObjectAce.GetPrincipal()
		sidStr := principal.String()
		if sidStr == "" {
			continue
		}
		qualified := secdesc.DomainQualify(sidStr, 8+4*len(principal.SubAuthorities), p.DomainUpper)
		actors = append(actors, model.Ref{ObjectIdentifier: qualified})
	}
	return actors
}

// gmsaRight is the synthetic right msDS-GroupMSAMembership principals gain
// on the user record being parsed, per spec §4.D's Group-MSA membership
// rule.
const gmsaRight = "ReadGMSAPassword"

func (p *Parser) decodeGMSAMembership(rec model.Record, raw []byte, dn string) {
	if len(raw) == 0 {
		return
	}
	sids, err := secdesc.GMSAPrincipalsFromSecurityDescriptor(raw)
	if err != nil {
		p.warn("malformed msDS-GroupMSAMembership", dn, err)
		return
	}
	for _, sid := range sids {
		s := sid.String()
		if s == "" {
			continue
		}
		rec.AppendACE(model.ACE{
			PrincipalSID: secdesc.DomainQualify(s, 8+4*len(sid.SubAuthorities), p.DomainUpper),
			RightName:    gmsaRight,
		})
	}
}
