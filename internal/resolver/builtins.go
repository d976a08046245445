package resolver

import "github.com/huskyhound/nonehound/internal/model"

// builtinGroupSpec is one well-known local/built-in group synthesized with
// no members beyond what the DN→SID pass later attaches (sub-pass 1).
type builtinGroupSpec struct {
	sidSuffix string
	name      string
	highValue bool
}

// builtinGroups is the fixed table of well-known groups spec §4.E sub-pass
// 1 names, excluding Enterprise Domain Controllers, Everyone, and
// Authenticated Users, which need computed membership and are handled
// separately below.
var builtinGroups = []builtinGroupSpec{
	{"-S-1-5-32-548", "ACCOUNT OPERATORS", true},
	{"-S-1-5-32-560", "WINDOWS AUTHORIZATION ACCESS GROUP", false},
	{"-S-1-5-32-544", "ADMINISTRATORS", true},
	{"-S-1-5-32-554", "PRE-WINDOWS 2000 COMPATIBLE ACCESS", false},
	{"-S-1-5-4", "INTERACTIVE", false},
	{"-S-1-5-32-550", "PRINT OPERATORS", true},
	{"-S-1-5-32-561", "TERMINAL SERVER LICENSE SERVERS", false},
	{"-S-1-5-32-557", "INCOMING FOREST TRUST BUILDERS", false},
	{"-S-1-5-15", "THIS ORGANIZATION", false},
}

// synthesizeBuiltinGroups is sub-pass 1.
func (r *Resolver) synthesizeBuiltinGroups() {
	domainUpper := r.p.DomainUpper
	domainSID := r.primaryDomainSID()

	edc := model.NewGroup()
	edc.ObjectIdentifier = domainUpper + "-S-1-5-9"
	edc.Properties["name"] = "ENTERPRISE DOMAIN CONTROLLERS@" + domainUpper
	for _, c := range r.p.Computers {
		if isdc, _ := c.Properties["isdc"].(bool); isdc {
			edc.AddMember(model.Ref{ObjectIdentifier: c.ObjectIdentifier, ObjectType: string(model.KindComputer)})
		}
	}
	r.p.Groups = append(r.p.Groups, edc)

	for _, spec := range builtinGroups {
		g := model.NewGroup()
		g.ObjectIdentifier = domainUpper + spec.sidSuffix
		g.Properties["name"] = spec.name + "@" + domainUpper
		g.Properties["highvalue"] = spec.highValue
		r.p.Groups = append(r.p.Groups, g)
	}

	everyone := model.NewGroup()
	everyone.ObjectIdentifier = domainUpper + "-S-1-1-0"
	everyone.Properties["name"] = "EVERYONE@" + domainUpper
	everyone.AddMember(model.Ref{ObjectIdentifier: domainSID + "-515", ObjectType: string(model.KindGroup)})
	everyone.AddMember(model.Ref{ObjectIdentifier: domainSID + "-513", ObjectType: string(model.KindGroup)})
	r.p.Groups = append(r.p.Groups, everyone)

	authUsers := model.NewGroup()
	authUsers.ObjectIdentifier = domainUpper + "-S-1-5-11"
	authUsers.Properties["name"] = "AUTHENTICATED USERS@" + domainUpper
	authUsers.AddMember(model.Ref{ObjectIdentifier: domainSID + "-515", ObjectType: string(model.KindGroup)})
	authUsers.AddMember(model.Ref{ObjectIdentifier: domainSID + "-513", ObjectType: string(model.KindGroup)})
	r.p.Groups = append(r.p.Groups, authUsers)
}

// synthesizeNTAuthorityUser is sub-pass 2.
func (r *Resolver) synthesizeNTAuthorityUser() {
	domainUpper := r.p.DomainUpper

	u := model.NewUser()
	u.ObjectIdentifier = domainUpper + "-S-1-5-20"
	u.Properties["name"] = "NT AUTHORITY@" + domainUpper
	u.SetDomainSID(r.primaryDomainSID())
	r.p.Users = append(r.p.Users, u)
}
