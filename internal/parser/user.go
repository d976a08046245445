package parser

import (
	"github.com/huskyhound/nonehound/internal/directory"
	"github.com/huskyhound/nonehound/internal/model"
)

func (p *Parser) parseUser(e directory.Entry, dn string) model.Record {
	rec := model.NewUser()
	rec.DistinguishedName = dn

	if raw, ok := e.BinAttrs["objectSid"]; ok && len(raw) > 0 {
		rec.ObjectIdentifier = p.sidFromObjectSID(raw[0], dn)
	}

	uac := parseUAC(first(e.Attrs["userAccountControl"]))
	rec.Properties["enabled"] = uac.Enabled
	rec.Properties["passwordnotreqd"] = uac.PasswordNotRequired
	rec.Properties["pwdneverexpires"] = uac.PasswordNeverExpires
	rec.Properties["dontreqpreauth"] = uac.DontRequirePreauth
	rec.Properties["unconstraineddelegation"] = uac.UnconstrainedDelegation
	rec.Properties["sensitive"] = uac.Sensitive
	rec.Properties["trustedtoauth"] = uac.TrustedToAuth

	if sh, ok := e.BinAttrs["sIDHistory"]; ok {
		rec.Properties["sidhistory"] = len(sh) > 0
	}

	spns := e.Attrs["servicePrincipalName"]
	rec.SPNTargets = extractSPNTargets(spns)
	rec.Properties["hasspn"] = len(rec.SPNTargets) > 0

	for _, host := range extractDelegationTargets(e.Attrs["msDS-AllowedToDelegateTo"]) {
		rec.AllowedToDelegate = append(rec.AllowedToDelegate, model.Ref{ObjectIdentifier: host, ObjectType: "Computer"})
	}

	rec.Properties["distinguishedname"] = dn
	rec.Properties["domain"] = p.DomainUpper

	if raw, ok := e.BinAttrs["nTSecurityDescriptor"]; ok && len(raw) > 0 {
		p.decodeSecurityDescriptor(rec, raw[0], false, dn)
	}
	if raw, ok := e.BinAttrs["msDS-GroupMSAMembership"]; ok && len(raw) > 0 {
		p.decodeGMSAMembership(rec, raw[0], dn)
	}

	p.Users = append(p.Users, rec)
	return rec
}
