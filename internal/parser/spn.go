package parser

import (
	"strconv"
	"strings"

	"github.com/huskyhound/nonehound/internal/model"
)

const defaultMSSQLPort = 1433

// extractSPNTargets scans servicePrincipalName values for the MSSQLSvc
// class and produces one SPN target per match, per spec §4.D. A malformed
// port suffix silently falls back to the default port rather than being
// treated as a parse error (spec §9 open question (b)).
func extractSPNTargets(values []string) []model.SPNTarget {
	var out []model.SPNTarget
	for _, v := range values {
		class, rest, ok := strings.Cut(v, "/")
		if !ok {
			continue
		}
		if !strings.Contains(strings.ToLower(class), "mssqlsvc") {
			continue
		}

		host := rest
		port := defaultMSSQLPort
		if h, p, ok := strings.Cut(rest, ":"); ok {
			host = h
			if n, err := strconv.Atoi(p); err == nil {
				port = n
			}
		}

		out = append(out, model.SPNTarget{
			ComputerSID: strings.ToUpper(host),
			Port:        port,
			Service:     "SQLAdmin",
		})
	}
	return out
}

// extractDelegationTargets parses msDS-AllowedToDelegateTo values
// (service/host[:port]) into a deduplicated, uppercased list of target
// hosts, per spec §4.D.
func extractDelegationTargets(values []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, v := range values {
		_, rest, ok := strings.Cut(v, "/")
		if !ok {
			continue
		}
		host, _, _ := strings.Cut(rest, ":")
		host = strings.ToUpper(host)
		if host == "" || seen[host] {
			continue
		}
		seen[host] = true
		out = append(out, host)
	}
	return out
}
