package parser

import (
	"github.com/huskyhound/nonehound/internal/directory"
	"github.com/huskyhound/nonehound/internal/model"
)

func (p *Parser) parseContainer(e directory.Entry, dn string) model.Record {
	rec := model.NewContainer()
	rec.DistinguishedName = dn

	if raw, ok := e.BinAttrs["objectGUID"]; ok && len(raw) > 0 {
		rec.ObjectIdentifier = p.guidFromObjectGUID(raw[0], dn)
	}

	rec.Properties["distinguishedname"] = dn
	rec.Properties["domain"] = p.DomainUpper
	rec.Properties["name"] = first(e.Attrs["name"])

	if raw, ok := e.BinAttrs["nTSecurityDescriptor"]; ok && len(raw) > 0 {
		p.decodeSecurityDescriptor(rec, raw[0], false, dn)
	}

	p.Containers = append(p.Containers, rec)
	return rec
}
