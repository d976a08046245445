package resolver

import (
	"strings"

	"github.com/huskyhound/nonehound/internal/model"
)

// attachContainment is sub-pass 5. Domain records have no parent.
func (r *Resolver) attachContainment() {
	for _, rec := range r.allRecords() {
		if rec.ObjectKind() == model.KindDomain {
			continue
		}
		dn := rec.DN()
		if dn == "" {
			continue
		}
		parent := parentDN(dn)
		id, ok := r.p.Tables.DNToID[parent]
		if !ok {
			continue
		}
		kind := r.p.Tables.IDToKind[id]
		rec.SetContainedBy(model.Ref{ObjectIdentifier: id, ObjectType: string(kind)})
	}
}

// populateChildObjects is sub-pass 6.
func (r *Resolver) populateChildObjects() {
	type container struct {
		rec model.Record
		ch  model.HasChildObjects
	}

	var containers []container
	for _, v := range r.p.OUs {
		containers = append(containers, container{v, v})
	}
	for _, v := range r.p.Containers {
		containers = append(containers, container{v, v})
	}
	for _, v := range r.p.Domains {
		containers = append(containers, container{v, v})
	}

	for _, c := range containers {
		dn := c.rec.DN()
		if dn == "" {
			continue
		}
		for childDN, id := range r.p.Tables.DNToID {
			if parentDN(childDN) != dn {
				continue
			}
			kind := r.p.Tables.IDToKind[id]
			c.ch.AddChildObject(model.Ref{ObjectIdentifier: id, ObjectType: string(kind)})
		}
	}

	r.populateAffectedComputers()
}

// populateAffectedComputers fills GPOChanges.AffectedComputers for every OU
// (direct-or-nested computers under its DN) and for the primary Domain
// (every computer), the second half of sub-pass 6.
func (r *Resolver) populateAffectedComputers() {
	for _, ou := range r.p.OUs {
		dn := ou.DN()
		if dn == "" {
			continue
		}
		var affected []model.Ref
		for _, c := range r.p.Computers {
			if strings.HasSuffix(c.DN(), ","+dn) {
				affected = append(affected, model.Ref{ObjectIdentifier: c.ObjectIdentifier, ObjectType: string(model.KindComputer)})
			}
		}
		ou.AffectedComputers().AffectedComputers = affected
	}

	if len(r.p.Domains) == 0 {
		return
	}
	var affected []model.Ref
	for _, c := range r.p.Computers {
		affected = append(affected, model.Ref{ObjectIdentifier: c.ObjectIdentifier, ObjectType: string(model.KindComputer)})
	}
	r.p.Domains[0].GPOChanges.AffectedComputers = affected
}
