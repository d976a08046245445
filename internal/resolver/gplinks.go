package resolver

import (
	"strings"

	"github.com/huskyhound/nonehound/internal/model"
)

// replaceGPLinkGUIDs is sub-pass 7: every Link.GUID is replaced with the
// identifier of the GPO whose DN contains that GUID as a substring.
func (r *Resolver) replaceGPLinkGUIDs() {
	var linked []model.HasLinks
	for _, v := range r.p.OUs {
		linked = append(linked, v)
	}
	for _, v := range r.p.Domains {
		linked = append(linked, v)
	}

	for _, obj := range linked {
		links := obj.GetLinks()
		if len(links) == 0 {
			continue
		}
		for i, l := range links {
			guidUpper := strings.ToUpper(l.GUID)
			for dn, id := range r.p.Tables.DNToID {
				if strings.Contains(dn, guidUpper) {
					links[i].GUID = id
					break
				}
			}
		}
		obj.SetLinks(links)
	}
}
