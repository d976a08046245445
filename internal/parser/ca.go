package parser

import (
	"strings"

	"github.com/huskyhound/nonehound/internal/directory"
	"github.com/huskyhound/nonehound/internal/model"
)

// applyCertInspection decodes the CA's DER certificate attribute and
// records the fingerprint/basic-constraints properties common to every CA
// object kind.
func (p *Parser) applyCertInspection(rec model.Record, props map[string]interface{}, e directory.Entry, dn string) {
	raw, ok := e.BinAttrs["cACertificate"]
	if !ok || len(raw) == 0 {
		return
	}
	inspection, err := inspectCertificate(raw[0])
	if err != nil {
		p.warn("malformed cACertificate", dn, err)
		return
	}
	props["certthumbprint"] = inspection.Thumbprint
	props["hasbasicconstraints"] = inspection.HasBasicConstraints
	if inspection.HasBasicConstraints {
		props["basicconstraintpathlength"] = inspection.PathLenConstraint
	}
}

// parseCA fills in the common RootCA/AIACA properties onto rec, which the
// caller has already constructed as the correct concrete kind.
func (p *Parser) parseCA(e directory.Entry, dn string, rec model.Record) model.Record {
	if raw, ok := e.BinAttrs["objectGUID"]; ok && len(raw) > 0 {
		rec.SetIdentifier(p.guidFromObjectGUID(raw[0], dn))
	}

	props := propertiesOf(rec)
	props["distinguishedname"] = dn
	props["domain"] = p.DomainUpper
	props["name"] = first(e.Attrs["name"])
	p.applyCertInspection(rec, props, e, dn)

	if raw, ok := e.BinAttrs["nTSecurityDescriptor"]; ok && len(raw) > 0 {
		p.decodeSecurityDescriptor(rec, raw[0], false, dn)
	}

	switch v := rec.(type) {
	case *model.RootCA:
		p.RootCAs = append(p.RootCAs, v)
	case *model.AIACA:
		p.AIACAs = append(p.AIACAs, v)
	}
	return rec
}

func (p *Parser) parseEnterpriseCA(e directory.Entry, dn string) model.Record {
	rec := model.NewEnterpriseCA()
	rec.DistinguishedName = dn

	if raw, ok := e.BinAttrs["objectGUID"]; ok && len(raw) > 0 {
		rec.ObjectIdentifier = p.guidFromObjectGUID(raw[0], dn)
	}

	rec.Properties["distinguishedname"] = dn
	rec.Properties["domain"] = p.DomainUpper
	rec.Properties["name"] = first(e.Attrs["name"])
	p.applyCertInspection(rec, rec.Properties, e, dn)

	if raw, ok := e.BinAttrs["nTSecurityDescriptor"]; ok && len(raw) > 0 {
		p.decodeSecurityDescriptor(rec, raw[0], true, dn)
	}

	p.EnterpriseCAs = append(p.EnterpriseCAs, rec)
	return rec
}

func (p *Parser) parseNTAuthStore(e directory.Entry, dn string) model.Record {
	rec := model.NewNTAuthStore()
	rec.DistinguishedName = dn

	if raw, ok := e.BinAttrs["objectGUID"]; ok && len(raw) > 0 {
		rec.ObjectIdentifier = p.guidFromObjectGUID(raw[0], dn)
	}

	rec.Properties["distinguishedname"] = dn
	rec.Properties["domain"] = p.DomainUpper

	var thumbprints []string
	for _, der := range e.BinAttrs["cACertificate"] {
		inspection, err := inspectCertificate(der)
		if err != nil {
			p.warn("malformed cACertificate", dn, err)
			continue
		}
		thumbprints = append(thumbprints, inspection.Thumbprint)
	}
	rec.Properties["certthumbprints"] = thumbprints

	if raw, ok := e.BinAttrs["nTSecurityDescriptor"]; ok && len(raw) > 0 {
		p.decodeSecurityDescriptor(rec, raw[0], false, dn)
	}

	p.NTAuthStores = append(p.NTAuthStores, rec)
	return rec
}

func (p *Parser) parseIssuancePolicy(e directory.Entry, dn string) model.Record {
	rec := model.NewIssuancePolicy()
	rec.DistinguishedName = dn

	if raw, ok := e.BinAttrs["objectGUID"]; ok && len(raw) > 0 {
		rec.ObjectIdentifier = p.guidFromObjectGUID(raw[0], dn)
	}

	rec.Properties["distinguishedname"] = dn
	rec.Properties["domain"] = p.DomainUpper
	rec.Properties["name"] = first(e.Attrs["name"])
	rec.Properties["certtemplateoid"] = first(e.Attrs["msPKI-Cert-Template-OID"])
	// The linked group is a DN until the Resolver rewrites it (spec §4.E).
	rec.Properties["grouplinkdn"] = strings.ToUpper(first(e.Attrs["msDS-OIDToGroupLink"]))

	if raw, ok := e.BinAttrs["nTSecurityDescriptor"]; ok && len(raw) > 0 {
		p.decodeSecurityDescriptor(rec, raw[0], false, dn)
	}

	p.IssuancePolicies = append(p.IssuancePolicies, rec)
	return rec
}

func (p *Parser) parseCertTemplate(e directory.Entry, dn string) model.Record {
	rec := model.NewCertTemplate()
	rec.DistinguishedName = dn

	if raw, ok := e.BinAttrs["objectGUID"]; ok && len(raw) > 0 {
		rec.ObjectIdentifier = p.guidFromObjectGUID(raw[0], dn)
	}

	rec.Properties["distinguishedname"] = dn
	rec.Properties["domain"] = p.DomainUpper
	rec.Properties["name"] = first(e.Attrs["name"])

	flags := decodeCertTemplateFlags(
		first(e.Attrs["msPKI-Enrollment-Flag"]),
		first(e.Attrs["msPKI-Certificate-Name-Flag"]),
		first(e.Attrs["msPKI-Template-Schema-Version"]),
		e.Attrs["pKIExtendedKeyUsage"],
	)
	rec.Properties["requiresmanagerapproval"] = flags.RequiresManagerApproval
	rec.Properties["nosecurityextension"] = flags.NoSecurityExtension
	rec.Properties["enrolleesuppliessubject"] = flags.EnrolleeSuppliesSubject
	rec.Properties["authenticationenabled"] = flags.AuthenticationEnabled
	rec.Properties["schemaversion"] = flags.SchemaVersion

	if raw, ok := e.BinAttrs["nTSecurityDescriptor"]; ok && len(raw) > 0 {
		p.decodeSecurityDescriptor(rec, raw[0], false, dn)
	}

	p.CertTemplates = append(p.CertTemplates, rec)
	return rec
}

// propertiesOf fetches the Properties bag off any concrete record kind that
// embeds model.Base, for the shared RootCA/AIACA code path in parseCA.
func propertiesOf(rec model.Record) map[string]interface{} {
	switch v := rec.(type) {
	case *model.RootCA:
		return v.Properties
	case *model.AIACA:
		return v.Properties
	default:
		return map[string]interface{}{}
	}
}
