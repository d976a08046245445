package parser

import (
	"strconv"

	"github.com/huskyhound/nonehound/internal/directory"
	"github.com/huskyhound/nonehound/internal/model"
)

// pwdProperties bit 0 requires password complexity.
const pwdPropertiesComplex uint64 = 0x1

func (p *Parser) parseDomain(e directory.Entry, dn string) model.Record {
	rec := model.NewDomain()
	rec.DistinguishedName = dn

	if raw, ok := e.BinAttrs["objectSid"]; ok && len(raw) > 0 {
		rec.ObjectIdentifier = p.sidFromObjectSID(raw[0], dn)
	}

	rec.Properties["distinguishedname"] = dn
	rec.Properties["domain"] = p.DomainUpper
	rec.Properties["name"] = p.DomainUpper

	if v, err := strconv.Atoi(first(e.Attrs["minPwdLength"])); err == nil {
		rec.Properties["minpwdlength"] = v
	}
	if v, err := strconv.ParseUint(first(e.Attrs["pwdProperties"]), 10, 64); err == nil {
		rec.Properties["pwdproperties"] = v
		rec.Properties["pwdcomplexity"] = v&pwdPropertiesComplex != 0
	}
	if v, err := strconv.Atoi(first(e.Attrs["pwdHistoryLength"])); err == nil {
		rec.Properties["pwdhistorylength"] = v
	}
	if v, err := strconv.Atoi(first(e.Attrs["lockoutThreshold"])); err == nil {
		rec.Properties["lockoutthreshold"] = v
	}
	if v, err := strconv.ParseInt(first(e.Attrs["lockoutDuration"]), 10, 64); err == nil {
		rec.Properties["lockoutduration"] = v
	}
	if v, err := strconv.ParseInt(first(e.Attrs["lockOutObservationWindow"]), 10, 64); err == nil {
		rec.Properties["lockoutobservationwindow"] = v
	}
	if v, err := strconv.ParseInt(first(e.Attrs["maxPwdAge"]), 10, 64); err == nil {
		rec.Properties["maxpwdage"] = v
	}
	if v, err := strconv.ParseInt(first(e.Attrs["minPwdAge"]), 10, 64); err == nil {
		rec.Properties["minpwdage"] = v
	}
	if v := first(e.Attrs["msDS-ExpirePasswordsOnSmartCardOnlyAccounts"]); v != "" {
		rec.Properties["expirepasswordsonsmartcardonlyaccounts"] = v == "TRUE"
	}

	rec.Links = parseGPLink(first(e.Attrs["gPLink"]))

	if raw, ok := e.BinAttrs["nTSecurityDescriptor"]; ok && len(raw) > 0 {
		p.decodeSecurityDescriptor(rec, raw[0], false, dn)
	}

	p.Domains = append(p.Domains, rec)
	p.establishDomainSID(rec.ObjectIdentifier)
	return rec
}
