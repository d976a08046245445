package parser

import (
	"strconv"

	"github.com/huskyhound/nonehound/internal/directory"
	"github.com/huskyhound/nonehound/internal/model"
)

// gPOptions bit 1 blocks GPO inheritance from above the OU.
const gpOptionsBlockInheritance uint64 = 0x1

func (p *Parser) parseOU(e directory.Entry, dn string) model.Record {
	rec := model.NewOU()
	rec.DistinguishedName = dn

	if raw, ok := e.BinAttrs["objectGUID"]; ok && len(raw) > 0 {
		rec.ObjectIdentifier = p.guidFromObjectGUID(raw[0], dn)
	}

	rec.Properties["distinguishedname"] = dn
	rec.Properties["domain"] = p.DomainUpper
	rec.Properties["name"] = first(e.Attrs["name"])

	if v, err := strconv.ParseUint(first(e.Attrs["gPOptions"]), 10, 64); err == nil {
		rec.Properties["blocksinheritance"] = v&gpOptionsBlockInheritance != 0
	}

	rec.Links = parseGPLink(first(e.Attrs["gPLink"]))

	if raw, ok := e.BinAttrs["nTSecurityDescriptor"]; ok && len(raw) > 0 {
		p.decodeSecurityDescriptor(rec, raw[0], false, dn)
	}

	p.OUs = append(p.OUs, rec)
	return rec
}
