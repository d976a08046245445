package resolver

import (
	"strings"

	"github.com/huskyhound/nonehound/internal/model"
)

// wellKnownRID maps an English or French localized well-known group name
// to the RID it resolves to, for cross-domain member DNs that don't match
// any naming context the Parser scanned (SUPPLEMENT, grounded in the
// original collector's foreign-SID member synthesis). New locales are
// additional entries, not structural changes (spec §9 design note).
var wellKnownRID = map[string]string{
	"DOMAIN ADMINS":                   "-512",
	"ADMINISTRATEURS DU DOMAINE":      "-512",
	"DOMAIN USERS":                    "-513",
	"UTILISATEURS DU DOMAINE":         "-513",
	"DOMAIN GUESTS":                   "-514",
	"INVITES DE DOMAINE":              "-514",
	"DOMAIN COMPUTERS":                "-515",
	"ORDINATEURS DE DOMAINE":          "-515",
	"DOMAIN CONTROLLERS":              "-516",
	"CONTROLEURS DE DOMAINE":          "-516",
	"CERT PUBLISHERS":                 "-517",
	"EDITEURS DE CERTIFICATS":         "-517",
	"SCHEMA ADMINS":                   "-518",
	"ADMINISTRATEURS DU SCHEMA":       "-518",
	"ENTERPRISE ADMINS":               "-519",
	"ADMINISTRATEURS DE L'ENTREPRISE": "-519",
}

// resolveGroupMembers is sub-pass 4.
func (r *Resolver) resolveGroupMembers() {
	for _, g := range r.p.Groups {
		members := g.GetMembers()
		for i, m := range members {
			dn := strings.ToUpper(m.ObjectIdentifier)

			if id, ok := r.p.Tables.DNToID[dn]; ok {
				kind := r.p.Tables.IDToKind[id]
				if kind == "" {
					kind = model.KindGroup
				}
				members[i] = model.Ref{ObjectIdentifier: id, ObjectType: string(kind)}
				continue
			}

			if sid, ok := r.foreignSID(dn); ok {
				kind := r.p.Tables.IDToKind[sid]
				if kind == "" {
					kind = model.KindGroup
				}
				members[i] = model.Ref{ObjectIdentifier: sid, ObjectType: string(kind)}
				continue
			}

			members[i] = model.Ref{ObjectIdentifier: model.NullID, ObjectType: string(model.KindGroup)}
		}
		g.SetMembers(members)
	}
}

// foreignSID attempts to resolve a member DN that matched no naming
// context the Parser scanned: either the DN names a well-known group
// within a known trusted domain's naming context, or it directly embeds a
// SID in a "CN=S-1-5-21-..." ForeignSecurityPrincipal-style RDN.
func (r *Resolver) foreignSID(dnUpper string) (string, bool) {
	for _, t := range r.p.Trusts {
		dc := domainToDC(strings.ToUpper(t.TargetDomainName))
		if dc == "" || !strings.Contains(dnUpper, dc) {
			continue
		}
		for name, rid := range wellKnownRID {
			if strings.Contains(dnUpper, name) {
				return t.TargetDomainSID + rid, true
			}
		}
	}

	if idx := strings.Index(dnUpper, "CN=S-"); idx >= 0 {
		if sid := sidExtractPattern.FindString(dnUpper[idx+3:]); sid != "" {
			return sid, true
		}
	}

	return "", false
}
