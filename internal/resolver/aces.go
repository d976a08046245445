package resolver

import "github.com/huskyhound/nonehound/internal/model"

// assignACEPrincipalKinds is sub-pass 9: every ACE's principal kind is set
// from id_to_kind, defaulting to Group for a principal the Parser never
// classified (a foreign or well-known SID with no record of its own).
func (r *Resolver) assignACEPrincipalKinds() {
	for _, rec := range r.allRecords() {
		aces := rec.ACEs()
		if len(aces) == 0 {
			continue
		}
		for i, ace := range aces {
			kind, ok := r.p.Tables.IDToKind[ace.PrincipalSID]
			if !ok {
				kind = model.KindGroup
			}
			aces[i].PrincipalKind = string(kind)
		}
		rec.SetACEs(aces)
	}
}

// assignAllowedToActKinds is sub-pass 10: analogous to sub-pass 9 for a
// computer's RBCD actor list, defaulting to Computer.
func (r *Resolver) assignAllowedToActKinds() {
	for _, c := range r.p.Computers {
		for i, actor := range c.AllowedToAct {
			kind, ok := r.p.Tables.IDToKind[actor.ObjectIdentifier]
			if !ok {
				kind = model.KindComputer
			}
			c.AllowedToAct[i].ObjectType = string(kind)
		}
	}
}
