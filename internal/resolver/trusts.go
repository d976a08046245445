package resolver

import (
	"strings"

	"github.com/huskyhound/nonehound/internal/model"
)

// addTrustDomains is sub-pass 3: attach the trust list to the primary
// domain record and synthesize a thin Domain stub for every trust whose
// target SID resolved to a real SID rather than the NullID placeholder.
func (r *Resolver) addTrustDomains() {
	if len(r.p.Trusts) == 0 {
		return
	}

	if len(r.p.Domains) > 0 {
		primary := r.p.Domains[0]
		for _, t := range r.p.Trusts {
			primary.Trusts = append(primary.Trusts, t.Trust)
		}
	}

	for _, t := range r.p.Trusts {
		if !isRealSID(t.TargetDomainSID) {
			continue
		}
		targetUpper := strings.ToUpper(t.TargetDomainName)
		stub := model.NewDomain()
		stub.ObjectIdentifier = t.TargetDomainSID
		stub.Properties["name"] = targetUpper
		stub.Properties["domain"] = targetUpper
		stub.Properties["distinguishedname"] = domainToDC(targetUpper)
		stub.Properties["highvalue"] = true
		r.p.Domains = append(r.p.Domains, stub)
	}
}
