package parser

import (
	"regexp"

	"github.com/huskyhound/nonehound/internal/model"
)

var gplinkGUIDRe = regexp.MustCompile(`[0-9A-Fa-f]{8}-[0-9A-Fa-f]{4}-[0-9A-Fa-f]{4}-[0-9A-Fa-f]{4}-[0-9A-Fa-f]{12}`)
var gplinkStatusRe = regexp.MustCompile(`;([0-4])\]`)

// parseGPLink extracts the links encoded in a gPLink attribute value, per
// spec §4.D: every 36-char GUID-looking substring paired positionally with
// every ";N" enforcement status, trimmed to whichever list is shorter when
// the two counts disagree.
func parseGPLink(raw string) []model.Link {
	guids := gplinkGUIDRe.FindAllString(raw, -1)
	statuses := gplinkStatusRe.FindAllStringSubmatch(raw, -1)

	n := len(guids)
	if len(statuses) < n {
		n = len(statuses)
	}

	links := make([]model.Link, 0, n)
	for i := 0; i < n; i++ {
		status := statuses[i][1]
		enforced := status == "2" || status == "3"
		links = append(links, model.Link{GUID: guids[i], IsEnforced: enforced})
	}
	return links
}
