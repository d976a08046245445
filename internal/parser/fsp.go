package parser

import (
	"strings"

	"github.com/huskyhound/nonehound/internal/directory"
	"github.com/huskyhound/nonehound/internal/model"
)

// fspKindFromName guesses whether a foreign security principal is a user or
// a group. The directory never tells us directly; the only signal available
// at parse time is how many hyphen-delimited segments the domain-qualified
// name carries (SUPPLEMENT, grounded in the original collector's FSP
// handling).
func fspKindFromName(domainUpper, name string) model.ObjectKind {
	qualified := domainUpper + "-" + name
	if len(strings.Split(qualified, "-")) >= 17 {
		return model.KindUser
	}
	return model.KindGroup
}

func (p *Parser) parseForeignSecurityPrincipal(e directory.Entry, dn string) model.Record {
	rec := model.NewForeignSecurityPrincipal()
	rec.DistinguishedName = dn

	if raw, ok := e.BinAttrs["objectSid"]; ok && len(raw) > 0 {
		rec.ObjectIdentifier = p.sidFromObjectSID(raw[0], dn)
	} else {
		rec.ObjectIdentifier = strings.ToUpper(first(e.Attrs["name"]))
	}

	rec.Properties["distinguishedname"] = dn
	rec.Properties["domain"] = p.DomainUpper
	rec.Properties["name"] = p.DomainUpper + "-" + first(e.Attrs["name"])

	// FSPs aren't emitted as their own file; only their resolved kind
	// matters, for group-member and ACE-principal rewriting.
	p.Tables.IDToKind[rec.ObjectIdentifier] = fspKindFromName(p.DomainUpper, first(e.Attrs["name"]))

	return rec
}
