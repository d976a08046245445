package parser

import (
	"strconv"

	"github.com/huskyhound/nonehound/internal/directory"
	"github.com/huskyhound/nonehound/internal/model"
)

// Well-known group RIDs the highvalue marker covers (SUPPLEMENT, grounded
// in the original collector's group highvalue rule).
const (
	ridDomainControllers    = 516
	ridBuiltinAdministrators = 544
	ridBuiltinAccountOps    = 548
	ridBuiltinServerOps     = 549
	ridBuiltinPrintOps      = 550
	ridBuiltinBackupOps     = 551
)

func (p *Parser) parseGroup(e directory.Entry, dn string) model.Record {
	rec := model.NewGroup()
	rec.DistinguishedName = dn

	if raw, ok := e.BinAttrs["objectSid"]; ok && len(raw) > 0 {
		rec.ObjectIdentifier = p.sidFromObjectSID(raw[0], dn)
	}

	rec.Properties["distinguishedname"] = dn
	rec.Properties["domain"] = p.DomainUpper
	rec.Properties["samaccountname"] = first(e.Attrs["sAMAccountName"])
	rec.Properties["highvalue"] = isHighValueRID(rec.ObjectIdentifier)

	// Member DNs are resolved to identifiers by the Resolver (sub-pass 4);
	// here they're recorded as DN-keyed placeholders awaiting rewrite.
	for _, memberDN := range e.Attrs["member"] {
		rec.AddMember(model.Ref{ObjectIdentifier: memberDN})
	}

	if raw, ok := e.BinAttrs["nTSecurityDescriptor"]; ok && len(raw) > 0 {
		p.decodeSecurityDescriptor(rec, raw[0], false, dn)
	}

	p.Groups = append(p.Groups, rec)
	return rec
}

// ridGroupPolicyCreatorOwners is the Group Policy Creator Owners RID.
const ridGroupPolicyCreatorOwners = 520

// isHighValueRID reports whether sid ends in one of the well-known
// high-privilege RIDs, per the SUPPLEMENT carrying forward the original
// collector's group highvalue rule.
func isHighValueRID(sid string) bool {
	for _, rid := range []int{ridDomainAdmins, ridDomainControllers, ridEnterpriseAdmins, ridGroupPolicyCreatorOwners} {
		if sidHasRID(sid, rid) {
			return true
		}
	}
	for _, rid := range []int{ridBuiltinAdministrators, ridBuiltinAccountOps, ridBuiltinServerOps, ridBuiltinPrintOps, ridBuiltinBackupOps} {
		if sidHasRID(sid, rid) {
			return true
		}
	}
	return false
}

func sidHasRID(sid string, rid int) bool {
	suffix := ridSuffix(rid)
	if len(sid) <= len(suffix) {
		return false
	}
	return sid[len(sid)-len(suffix):] == suffix
}

func ridSuffix(rid int) string {
	return "-" + strconv.Itoa(rid)
}
