package resolver

import "github.com/huskyhound/nonehound/internal/model"

// rewriteFQDNTargets is sub-pass 8: SPN targets and allowed-to-delegate
// entries carry an FQDN until this rewrite; unresolved entries keep their
// FQDN, left dangling for the caller to filter.
func (r *Resolver) rewriteFQDNTargets() {
	for _, u := range r.p.Users {
		for i, t := range u.SPNTargets {
			if id, ok := r.p.Tables.FQDNToID[t.ComputerSID]; ok {
				u.SPNTargets[i].ComputerSID = id
			}
		}
		for i, d := range u.AllowedToDelegate {
			if id, ok := r.p.Tables.FQDNToID[d.ObjectIdentifier]; ok {
				u.AllowedToDelegate[i].ObjectIdentifier = id
				u.AllowedToDelegate[i].ObjectType = string(model.KindComputer)
			}
		}
	}

	for _, c := range r.p.Computers {
		for i, d := range c.AllowedToDelegate {
			if id, ok := r.p.Tables.FQDNToID[d.ObjectIdentifier]; ok {
				c.AllowedToDelegate[i].ObjectIdentifier = id
				c.AllowedToDelegate[i].ObjectType = string(model.KindComputer)
			}
		}
	}
}
