package model_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/huskyhound/nonehound/internal/model"
)

func TestGroupAddMemberDeduplicates(t *testing.T) {
	r := require.New(t)

	g := model.NewGroup()
	g.AddMember(model.Ref{ObjectIdentifier: "S-1-5-21-1-2-3-1105", ObjectType: "User"})
	g.AddMember(model.Ref{ObjectIdentifier: "S-1-5-21-1-2-3-1105", ObjectType: "User"})
	r.Len(g.Members, 1)
}

func TestBaseAppendACEAndContainedBy(t *testing.T) {
	r := require.New(t)

	u := model.NewUser()
	u.AppendACE(model.ACE{PrincipalSID: "S-1-5-21-1-2-3-512", RightName: "GenericAll"})
	r.Len(u.Aces, 1)

	u.SetContainedBy(model.Ref{ObjectIdentifier: "S-1-5-21-1-2-3", ObjectType: "Domain"})
	r.NotNil(u.ContainedBy)
	r.Equal("Domain", u.ContainedBy.ObjectType)
}

func TestCapabilityInterfacesOnOU(t *testing.T) {
	r := require.New(t)

	ou := model.NewOU()
	var hasChildren model.HasChildObjects = ou
	hasChildren.AddChildObject(model.Ref{ObjectIdentifier: "S-1-5-21-1-2-3-1105", ObjectType: "Computer"})
	r.Len(ou.ChildObjects, 1)

	var hasLinks model.HasLinks = ou
	hasLinks.AddLink(model.Link{GUID: "AAAAAAAA-BBBB-CCCC-DDDD-EEEEEEEEEEEE", IsEnforced: true})
	r.Len(ou.GetLinks(), 1)
	r.NotNil(hasLinks.AffectedComputers())
}

func TestCapabilityInterfacesOnComputer(t *testing.T) {
	r := require.New(t)

	c := model.NewComputer()
	var hasAct model.HasAllowedToAct = c
	hasAct.SetAllowedToAct([]model.Ref{{ObjectIdentifier: "S-1-5-21-1-2-3-500", ObjectType: "User"}})
	r.Len(c.GetAllowedToAct(), 1)
}

func TestRecordInterfaceSatisfiedByEveryKind(t *testing.T) {
	r := require.New(t)

	records := []model.Record{
		model.NewUser(), model.NewGroup(), model.NewComputer(), model.NewOU(),
		model.NewDomain(), model.NewGPO(), model.NewContainer(),
		model.NewForeignSecurityPrincipal(), model.NewTrustRecord(),
		model.NewAIACA(), model.NewRootCA(), model.NewEnterpriseCA(),
		model.NewCertTemplate(), model.NewIssuancePolicy(), model.NewNTAuthStore(),
	}
	for _, rec := range records {
		rec.SetIdentifier("S-1-5-21-1-2-3-1000")
		r.Equal("S-1-5-21-1-2-3-1000", rec.Identifier())
	}
}

func TestNewLookupTables(t *testing.T) {
	r := require.New(t)

	lt := model.NewLookupTables()
	lt.DNToID["CN=ALICE,DC=EXAMPLE,DC=LOCAL"] = "S-1-5-21-1-2-3-1105"
	r.Equal("S-1-5-21-1-2-3-1105", lt.DNToID["CN=ALICE,DC=EXAMPLE,DC=LOCAL"])
}
