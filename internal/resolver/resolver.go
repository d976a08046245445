// Package resolver runs the post-Parser sub-passes that rewrite
// distinguished-name and FQDN placeholders into resolved identifiers,
// attach containment, and synthesize the well-known principals spec §4.E
// describes.
package resolver

import (
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/huskyhound/nonehound/internal/model"
	"github.com/huskyhound/nonehound/internal/parser"
)

var sidExtractPattern = regexp.MustCompile(`S-[0-9]+-[0-9]+-[0-9]+(-[0-9]+)+`)
var sidFullPattern = regexp.MustCompile(`^S-[0-9]+-[0-9]+-[0-9]+(-[0-9]+)+$`)

func isRealSID(s string) bool {
	return sidFullPattern.MatchString(s)
}

// Resolver runs the ten ordered sub-passes against a drained Parser's
// typed records and lookup tables. It never mutates Tables; those are a
// read-only snapshot of the Parser's output, per spec §4.E's final rule.
type Resolver struct {
	p   *parser.Parser
	log zerolog.Logger
}

func New(p *parser.Parser, log zerolog.Logger) *Resolver {
	return &Resolver{p: p, log: log}
}

// Resolve runs every sub-pass in the fixed order spec §4.E requires.
func (r *Resolver) Resolve() {
	r.synthesizeBuiltinGroups()
	r.synthesizeNTAuthorityUser()
	r.addTrustDomains()
	r.resolveGroupMembers()
	r.attachContainment()
	r.populateChildObjects()
	r.replaceGPLinkGUIDs()
	r.rewriteFQDNTargets()
	r.assignACEPrincipalKinds()
	r.assignAllowedToActKinds()
}

func (r *Resolver) primaryDomainSID() string {
	if len(r.p.Domains) == 0 {
		return ""
	}
	return r.p.Domains[0].ObjectIdentifier
}

// allRecords returns every typed record the Parser (and the earlier
// sub-passes of this Resolver) materialized, for passes that apply
// uniformly across kinds via capability interfaces.
func (r *Resolver) allRecords() []model.Record {
	var out []model.Record
	for _, v := range r.p.Users {
		out = append(out, v)
	}
	for _, v := range r.p.Groups {
		out = append(out, v)
	}
	for _, v := range r.p.Computers {
		out = append(out, v)
	}
	for _, v := range r.p.OUs {
		out = append(out, v)
	}
	for _, v := range r.p.Domains {
		out = append(out, v)
	}
	for _, v := range r.p.GPOs {
		out = append(out, v)
	}
	for _, v := range r.p.Containers {
		out = append(out, v)
	}
	for _, v := range r.p.Trusts {
		out = append(out, v)
	}
	for _, v := range r.p.AIACAs {
		out = append(out, v)
	}
	for _, v := range r.p.RootCAs {
		out = append(out, v)
	}
	for _, v := range r.p.EnterpriseCAs {
		out = append(out, v)
	}
	for _, v := range r.p.CertTemplates {
		out = append(out, v)
	}
	for _, v := range r.p.IssuancePolicies {
		out = append(out, v)
	}
	for _, v := range r.p.NTAuthStores {
		out = append(out, v)
	}
	return out
}

// parentDN strips the leftmost RDN from dn. Both dn and the lookup tables'
// keys are already upper-cased by the Parser.
func parentDN(dn string) string {
	idx := strings.Index(dn, ",")
	if idx < 0 {
		return ""
	}
	return dn[idx+1:]
}

// domainToDC renders a dotted domain name as its naming-context path, e.g.
// "CONTOSO.LOCAL" -> "DC=CONTOSO,DC=LOCAL".
func domainToDC(domain string) string {
	parts := strings.Split(domain, ".")
	for i, p := range parts {
		parts[i] = "DC=" + p
	}
	return strings.Join(parts, ",")
}
