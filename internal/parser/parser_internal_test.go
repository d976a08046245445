package parser

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/huskyhound/nonehound/internal/directory"
	"github.com/huskyhound/nonehound/internal/model"
)

func TestClassifyPrecedenceTrustBeatsDomain(t *testing.T) {
	r := require.New(t)
	kind := classify(directory.Entry{Attrs: map[string][]string{
		"objectClass": {"top", "trustedDomain", "domainDNS"},
	}})
	r.Equal(model.KindTrust, kind)
}

func TestClassifyCertificationAuthorityDisambiguation(t *testing.T) {
	r := require.New(t)

	ntAuth := classify(directory.Entry{
		DN:    "CN=NTAuthCertificates,CN=Public Key Services,CN=Services,CN=Configuration,DC=x,DC=y",
		Attrs: map[string][]string{"objectClass": {"certificationAuthority"}},
	})
	r.Equal(model.KindNTAuthStore, ntAuth)

	aia := classify(directory.Entry{
		DN:    "CN=ca1,CN=AIA,CN=Public Key Services,CN=Services,CN=Configuration,DC=x,DC=y",
		Attrs: map[string][]string{"objectClass": {"certificationAuthority"}},
	})
	r.Equal(model.KindAIACA, aia)

	root := classify(directory.Entry{
		DN:    "CN=ca1,CN=Certification Authorities,CN=Public Key Services,CN=Services,CN=Configuration,DC=x,DC=y",
		Attrs: map[string][]string{"objectClass": {"certificationAuthority"}},
	})
	r.Equal(model.KindRootCA, root)
}

func TestClassifyUnknownFallback(t *testing.T) {
	r := require.New(t)
	kind := classify(directory.Entry{Attrs: map[string][]string{"objectClass": {"somethingElse"}}})
	r.Equal(model.KindUnknown, kind)
}

func TestIsReservedContainer(t *testing.T) {
	r := require.New(t)
	r.True(isReservedContainer("CN=DOMAINUPDATES,CN=SYSTEM,DC=X,DC=Y"))
	r.True(isReservedContainer("CN={AAAAAAAA-BBBB-CCCC-DDDD-EEEEEEEEEEEE},CN=SCHEMA,CN=CONFIGURATION,DC=X,DC=Y"))
	r.False(isReservedContainer("CN=USERS,DC=X,DC=Y"))
}

func TestParseUAC(t *testing.T) {
	r := require.New(t)

	flags := parseUAC("66048") // 0x10200: normal account + dont expire password
	r.True(flags.Enabled)
	r.True(flags.PasswordNeverExpires)

	disabled := parseUAC("66050") // + ACCOUNTDISABLE
	r.False(disabled.Enabled)

	dc := parseUAC("532480") // SERVER_TRUST_ACCOUNT
	r.True(dc.IsDomainController)

	fallback := parseUAC("not-a-number")
	r.True(fallback.Enabled)
}

func TestHasLAPS(t *testing.T) {
	r := require.New(t)
	r.True(hasLAPS(map[string][]string{"ms-Mcs-AdmPwd": {"secret"}}))
	r.False(hasLAPS(map[string][]string{}))
}

func TestParseGPLinkEnforced(t *testing.T) {
	r := require.New(t)
	raw := "[LDAP://cn={AAAAAAAA-BBBB-CCCC-DDDD-EEEEEEEEEEEE},cn=policies,cn=system,DC=x,DC=y;2]"
	links := parseGPLink(raw)
	r.Len(links, 1)
	r.Equal("AAAAAAAA-BBBB-CCCC-DDDD-EEEEEEEEEEEE", links[0].GUID)
	r.True(links[0].IsEnforced)
}

func TestParseGPLinkNotEnforced(t *testing.T) {
	r := require.New(t)
	raw := "[LDAP://cn={AAAAAAAA-BBBB-CCCC-DDDD-EEEEEEEEEEEE},cn=policies,cn=system,DC=x,DC=y;0]"
	links := parseGPLink(raw)
	r.Len(links, 1)
	r.False(links[0].IsEnforced)
}

func TestParseGPLinkMismatchedCountsTruncates(t *testing.T) {
	r := require.New(t)
	raw := "[LDAP://cn={AAAAAAAA-BBBB-CCCC-DDDD-EEEEEEEEEEEE},cn=policies,cn=system,DC=x,DC=y;2]" +
		"[LDAP://cn={BBBBBBBB-BBBB-CCCC-DDDD-EEEEEEEEEEEE},cn=policies,cn=system,DC=x,DC=y]"
	links := parseGPLink(raw)
	r.Len(links, 1)
}

func TestExtractSPNTargetsMSSQL(t *testing.T) {
	r := require.New(t)
	targets := extractSPNTargets([]string{"MSSQLSvc/db01.example.local:1433"})
	r.Len(targets, 1)
	r.Equal("DB01.EXAMPLE.LOCAL", targets[0].ComputerSID)
	r.Equal(1433, targets[0].Port)
	r.Equal("SQLAdmin", targets[0].Service)
}

func TestExtractSPNTargetsMalformedPortDefaults(t *testing.T) {
	r := require.New(t)
	targets := extractSPNTargets([]string{"MSSQLSvc/db01.example.local:notaport"})
	r.Len(targets, 1)
	r.Equal(defaultMSSQLPort, targets[0].Port)
}

func TestExtractSPNTargetsIgnoresNonMSSQL(t *testing.T) {
	r := require.New(t)
	targets := extractSPNTargets([]string{"HTTP/web01.example.local"})
	r.Empty(targets)
}

func TestExtractDelegationTargetsDedups(t *testing.T) {
	r := require.New(t)
	hosts := extractDelegationTargets([]string{"HTTP/app01.example.local", "HTTP/APP01.EXAMPLE.LOCAL:443"})
	r.Equal([]string{"APP01.EXAMPLE.LOCAL"}, hosts)
}

func TestDecodeTrustAttributes(t *testing.T) {
	r := require.New(t)

	forest := decodeTrustAttributes("8") // forest transitive
	r.Equal("Forest", forest.TrustType)
	r.True(forest.IsTransitive)

	nonTransitive := decodeTrustAttributes("1")
	r.False(nonTransitive.IsTransitive)

	filtered := decodeTrustAttributes("4")
	r.True(filtered.SIDFilteringEnabled)
}

func TestDecodeTrustDirection(t *testing.T) {
	r := require.New(t)
	r.Equal("Inbound", decodeTrustDirection("1"))
	r.Equal("Outbound", decodeTrustDirection("2"))
	r.Equal("Bidirectional", decodeTrustDirection("3"))
	r.Equal("Disabled", decodeTrustDirection("0"))
}

func TestDecodeCertTemplateFlags(t *testing.T) {
	r := require.New(t)
	flags := decodeCertTemplateFlags("2", "1", "2", []string{"1.3.6.1.5.5.7.3.2"})
	r.True(flags.RequiresManagerApproval)
	r.True(flags.EnrolleeSuppliesSubject)
	r.True(flags.AuthenticationEnabled)
	r.Equal(2, flags.SchemaVersion)
}

func TestFspKindFromName(t *testing.T) {
	r := require.New(t)
	// A long enough hyphenated chain crosses the 17-segment threshold.
	long := "A-B-C-D-E-F-G-H-I-J-K-L-M-N-O-P-Q-R"
	r.Equal(model.KindUser, fspKindFromName("", long))
	r.Equal(model.KindGroup, fspKindFromName("EXAMPLE", "S-1-5-21-111-222-333-1104"))
}

func TestInheritanceHashStableForSameInputs(t *testing.T) {
	r := require.New(t)
	a := inheritanceHash("guid-a", "guid-b", true)
	b := inheritanceHash("guid-a", "guid-b", true)
	c := inheritanceHash("guid-a", "guid-b", false)
	r.Equal(a, b)
	r.NotEqual(a, c)
}
