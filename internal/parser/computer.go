package parser

import (
	"strings"

	"github.com/huskyhound/nonehound/internal/directory"
	"github.com/huskyhound/nonehound/internal/model"
)

func (p *Parser) parseComputer(e directory.Entry, dn string) model.Record {
	rec := model.NewComputer()
	rec.DistinguishedName = dn

	if raw, ok := e.BinAttrs["objectSid"]; ok && len(raw) > 0 {
		rec.ObjectIdentifier = p.sidFromObjectSID(raw[0], dn)
	}

	uac := parseUAC(first(e.Attrs["userAccountControl"]))
	rec.Properties["enabled"] = uac.Enabled
	rec.Properties["unconstraineddelegation"] = uac.UnconstrainedDelegation
	rec.Properties["trustedtoauth"] = uac.TrustedToAuth
	rec.Properties["isdc"] = uac.IsDomainController
	rec.Properties["haslaps"] = hasLAPS(e.Attrs)
	rec.Properties["distinguishedname"] = dn
	rec.Properties["domain"] = p.DomainUpper
	rec.Properties["samaccountname"] = first(e.Attrs["sAMAccountName"])

	if dns := first(e.Attrs["dNSHostName"]); dns != "" {
		rec.Properties["dnshostname"] = dns
	}

	for _, host := range extractDelegationTargets(e.Attrs["msDS-AllowedToDelegateTo"]) {
		rec.AllowedToDelegate = append(rec.AllowedToDelegate, model.Ref{ObjectIdentifier: host, ObjectType: "Computer"})
	}

	if raw, ok := e.BinAttrs["nTSecurityDescriptor"]; ok && len(raw) > 0 {
		p.decodeSecurityDescriptor(rec, raw[0], false, dn)
	}

	// msDS-AllowedToActOnBehalfOfOtherIdentity is itself a security
	// descriptor; its DACL's allowed principals become the RBCD AllowedToAct
	// list, ignoring Deny ACEs (SUPPLEMENT, spec §9 open question (c)).
	if raw, ok := e.BinAttrs["msDS-AllowedToActOnBehalfOfOtherIdentity"]; ok && len(raw) > 0 {
		rec.AllowedToAct = p.decodeAllowedToAct(raw[0], dn)
	}

	// Keyed uppercased, matching the SPN/delegation targets the Resolver
	// looks this table up by (both uppercased at extraction time).
	if dns := first(e.Attrs["dNSHostName"]); dns != "" && rec.ObjectIdentifier != "" {
		p.Tables.FQDNToID[strings.ToUpper(dns)] = rec.ObjectIdentifier
	}

	p.Computers = append(p.Computers, rec)
	return rec
}
