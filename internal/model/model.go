// Package model holds the typed records the Parser materializes and the
// Resolver mutates, along with the lookup tables threaded between them.
package model

// ObjectKind enumerates every typed record kind this collector emits.
type ObjectKind string

const (
	KindUser                     ObjectKind = "User"
	KindGroup                    ObjectKind = "Group"
	KindComputer                 ObjectKind = "Computer"
	KindOU                       ObjectKind = "OU"
	KindDomain                   ObjectKind = "Domain"
	KindGPO                      ObjectKind = "GPO"
	KindContainer                ObjectKind = "Container"
	KindForeignSecurityPrincipal ObjectKind = "ForeignSecurityPrincipal"
	KindTrust                    ObjectKind = "Trust"
	KindAIACA                    ObjectKind = "AIACA"
	KindRootCA                   ObjectKind = "RootCA"
	KindEnterpriseCA             ObjectKind = "EnterpriseCA"
	KindCertTemplate             ObjectKind = "CertTemplate"
	KindIssuancePolicy           ObjectKind = "IssuancePolicy"
	KindNTAuthStore              ObjectKind = "NTAuthStore"
	KindUnknown                  ObjectKind = "Unknown"
)

// Kind-plural names used for JSON filenames and meta.type, per spec §4.F.
var KindPlural = map[ObjectKind]string{
	KindUser:           "users",
	KindGroup:          "groups",
	KindComputer:       "computers",
	KindOU:             "ous",
	KindDomain:         "domains",
	KindGPO:            "gpos",
	KindContainer:      "containers",
	KindNTAuthStore:    "ntauthstores",
	KindAIACA:          "aiacas",
	KindRootCA:         "rootcas",
	KindEnterpriseCA:   "enterprisecas",
	KindCertTemplate:   "certtemplates",
	KindIssuancePolicy: "issuancepolicies",
}

// NullID is the placeholder identifier assigned to a group member whose DN
// matches no known naming context, per spec §8 boundary behavior.
const NullID = "NULL_ID1"

// ACE is one access-control-entry derived from a security descriptor, with
// the principal's kind filled in by the Resolver (sub-pass 9/10).
type ACE struct {
	PrincipalSID    string `json:"PrincipalSID"`
	PrincipalKind   string `json:"PrincipalType"`
	RightName       string `json:"RightName"`
	IsInherited     bool   `json:"IsInherited"`
	InheritanceHash string `json:"InheritanceHash,omitempty"`
}

// Ref is a resolved reference to another record: its identifier and kind.
type Ref struct {
	ObjectIdentifier string `json:"ObjectIdentifier"`
	ObjectType       string `json:"ObjectType"`
}

// SPNTarget is a service-principal-name reference extracted from a user's
// servicePrincipalName values whose class matches MSSQLSvc.
type SPNTarget struct {
	ComputerSID string `json:"ComputerSID"`
	Port        int    `json:"Port"`
	Service     string `json:"Service"`
}

// Link is a group-policy link, with enforcement status and, post-Resolver,
// the linked GPO's resolved identifier substituted for the raw GUID.
type Link struct {
	GUID        string `json:"Guid"`
	IsEnforced  bool   `json:"IsEnforced"`
}

// GPOChanges tracks computers affected by GPOs linked to an OU or Domain.
type GPOChanges struct {
	AffectedComputers []Ref `json:"AffectedComputers"`
}

// ObjectIdentifier fields shared by every record kind.
type Base struct {
	ObjectIdentifier string                 `json:"ObjectIdentifier"`
	IsDeleted        bool                   `json:"IsDeleted"`
	IsACLProtected   bool                   `json:"IsACLProtected"`
	Properties       map[string]interface{} `json:"Properties"`
	Aces             []ACE                  `json:"Aces"`
	ContainedBy      *Ref                   `json:"ContainedBy,omitempty"`

	// DomainSID is the global domain SID, propagated into every record once
	// the Parser classifies the Domain object, per spec §3 invariant 4.
	DomainSID string `json:"DomainSID,omitempty"`

	// DistinguishedName is retained for resolution passes; never re-emitted
	// as a reference once the Resolver has run (spec §3 invariant 5).
	DistinguishedName string `json:"-"`
	Kind               ObjectKind `json:"-"`
}

func newBase(kind ObjectKind) Base {
	return Base{Kind: kind, Properties: map[string]interface{}{}}
}

// User is a user-account record.
type User struct {
	Base
	SPNTargets        []SPNTarget `json:"SPNTargets"`
	AllowedToDelegate []Ref       `json:"AllowedToDelegate"`
}

func NewUser() *User { return &User{Base: newBase(KindUser)} }

// Group is a security- or distribution-group record.
type Group struct {
	Base
	Members []Ref `json:"Members"`
}

func NewGroup() *Group { return &Group{Base: newBase(KindGroup)} }

// AddMember appends a member ref, deduplicating by identifier (spec §8
// invariant 3: no duplicate members by identifier).
func (g *Group) AddMember(ref Ref) {
	for _, m := range g.Members {
		if m.ObjectIdentifier == ref.ObjectIdentifier {
			return
		}
	}
	g.Members = append(g.Members, ref)
}

// Computer is a computer-account record.
type Computer struct {
	Base
	AllowedToDelegate []Ref `json:"AllowedToDelegate"`
	AllowedToAct      []Ref `json:"AllowedToAct"`
}

func NewComputer() *Computer { return &Computer{Base: newBase(KindComputer)} }

// OU is an organizational-unit record.
type OU struct {
	Base
	Links        []Link      `json:"Links"`
	ChildObjects []Ref       `json:"ChildObjects"`
	GPOChanges   GPOChanges `json:"GPOChanges"`
}

func NewOU() *OU { return &OU{Base: newBase(KindOU)} }

// Domain is the record for the domain naming context itself, and for thin
// stubs synthesized for trusted external domains.
type Domain struct {
	Base
	Links        []Link     `json:"Links"`
	ChildObjects []Ref      `json:"ChildObjects"`
	GPOChanges   GPOChanges `json:"GPOChanges"`
	Trusts       []Trust    `json:"Trusts"`
}

func NewDomain() *Domain { return &Domain{Base: newBase(KindDomain)} }

// GPO is a group-policy-object record.
type GPO struct {
	Base
}

func NewGPO() *GPO { return &GPO{Base: newBase(KindGPO)} }

// Container is a generic directory container record.
type Container struct {
	Base
	ChildObjects []Ref `json:"ChildObjects"`
}

func NewContainer() *Container { return &Container{Base: newBase(KindContainer)} }

// ForeignSecurityPrincipal represents a principal from a trusted external
// domain, synthesized during resolution rather than parsed directly.
type ForeignSecurityPrincipal struct {
	Base
}

func NewForeignSecurityPrincipal() *ForeignSecurityPrincipal {
	return &ForeignSecurityPrincipal{Base: newBase(KindForeignSecurityPrincipal)}
}

// Trust describes a directional trust relationship between domains.
type Trust struct {
	TargetDomainSID string `json:"TargetDomainSid"`
	TargetDomainName string `json:"TargetDomainName"`
	IsTransitive    bool   `json:"IsTransitive"`
	TrustDirection  string `json:"TrustDirection"`
	TrustType       string `json:"TrustType"`
	SIDFilteringEnabled bool `json:"SidFilteringEnabled"`
	TrustAttributes uint32 `json:"TrustAttributes"`
}

// TrustRecord is the standalone Trust object kind, distinct from the Trust
// value embedded in a Domain's Trusts list.
type TrustRecord struct {
	Base
	Trust
}

func NewTrustRecord() *TrustRecord { return &TrustRecord{Base: newBase(KindTrust)} }

// AIACA, RootCA, EnterpriseCA are the certificate-authority record kinds.
type AIACA struct{ Base }
type RootCA struct{ Base }
type EnterpriseCA struct{ Base }

func NewAIACA() *AIACA             { return &AIACA{Base: newBase(KindAIACA)} }
func NewRootCA() *RootCA           { return &RootCA{Base: newBase(KindRootCA)} }
func NewEnterpriseCA() *EnterpriseCA { return &EnterpriseCA{Base: newBase(KindEnterpriseCA)} }

// CertTemplate is a certificate-template record.
type CertTemplate struct{ Base }

func NewCertTemplate() *CertTemplate { return &CertTemplate{Base: newBase(KindCertTemplate)} }

// IssuancePolicy is a certificate issuance-policy record.
type IssuancePolicy struct{ Base }

func NewIssuancePolicy() *IssuancePolicy { return &IssuancePolicy{Base: newBase(KindIssuancePolicy)} }

// NTAuthStore is the NTAuthCertificates store record.
type NTAuthStore struct{ Base }

func NewNTAuthStore() *NTAuthStore { return &NTAuthStore{Base: newBase(KindNTAuthStore)} }

// LookupTables are the four cross-reference tables accumulated by the Parser
// and consumed, read-only, by the Resolver.
type LookupTables struct {
	DNToID   map[string]string
	IDToKind map[string]ObjectKind
	FQDNToID map[string]string
	FQDNToIP map[string]string
}

func NewLookupTables() *LookupTables {
	return &LookupTables{
		DNToID:   map[string]string{},
		IDToKind: map[string]ObjectKind{},
		FQDNToID: map[string]string{},
		FQDNToIP: map[string]string{},
	}
}
