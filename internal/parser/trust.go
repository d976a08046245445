package parser

import (
	"strconv"

	"github.com/huskyhound/nonehound/internal/directory"
	"github.com/huskyhound/nonehound/internal/model"
)

// trustedDomain's trustAttributes bitflags, per spec §4.D.
const (
	trustAttrNonTransitive     uint32 = 0x00000001
	trustAttrUplevelOnly       uint32 = 0x00000002
	trustAttrFilterSids        uint32 = 0x00000004
	trustAttrForestTransitive  uint32 = 0x00000008
	trustAttrCrossOrganization uint32 = 0x00000010
	trustAttrWithinForest      uint32 = 0x00000020
	trustAttrTreatAsExternal   uint32 = 0x00000040
	trustAttrPIMTrust          uint32 = 0x00000400
)

func decodeTrustAttributes(raw string) model.Trust {
	v, _ := strconv.ParseUint(raw, 10, 32)
	attrs := uint32(v)

	t := model.Trust{TrustAttributes: attrs}
	t.IsTransitive = attrs&trustAttrNonTransitive == 0
	t.SIDFilteringEnabled = attrs&trustAttrFilterSids != 0 || attrs&trustAttrTreatAsExternal != 0

	switch {
	case attrs&trustAttrWithinForest != 0:
		t.TrustType = "ParentChild"
	case attrs&trustAttrForestTransitive != 0:
		t.TrustType = "Forest"
	case attrs&trustAttrTreatAsExternal != 0:
		t.TrustType = "External"
	case attrs&trustAttrCrossOrganization != 0:
		t.TrustType = "CrossOrganization"
	default:
		t.TrustType = "External"
	}

	if attrs&trustAttrPIMTrust != 0 {
		t.TrustType = "PIM"
	}

	return t
}

func decodeTrustDirection(raw string) string {
	switch raw {
	case "1":
		return "Inbound"
	case "2":
		return "Outbound"
	case "3":
		return "Bidirectional"
	default:
		return "Disabled"
	}
}

// parseTrust materializes a standalone Trust record for a trustedDomain
// entry.
func (p *Parser) parseTrust(e directory.Entry, dn string) model.Record {
	rec := model.NewTrustRecord()
	rec.DistinguishedName = dn
	rec.Trust = decodeTrustAttributes(first(e.Attrs["trustAttributes"]))
	rec.TrustDirection = decodeTrustDirection(first(e.Attrs["trustDirection"]))
	rec.TargetDomainName = first(e.Attrs["trustPartner"])

	if raw, ok := e.BinAttrs["securityIdentifier"]; ok && len(raw) > 0 {
		rec.TargetDomainSID = p.sidFromObjectSID(raw[0], dn)
	}
	if rec.TargetDomainSID == "" {
		rec.TargetDomainSID = model.NullID
	}
	if raw, ok := e.BinAttrs["objectGUID"]; ok && len(raw) > 0 {
		rec.ObjectIdentifier = p.guidFromObjectGUID(raw[0], dn)
	}

	p.Trusts = append(p.Trusts, rec)
	return rec
}
