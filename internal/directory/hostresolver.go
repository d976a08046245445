package directory

import "context"

// HostResolver is the optional DNS resolution extension point named in
// spec §1's Non-goals: the core exposes it, but does not implement DNS
// resolution itself. collector.Run calls it once per distinct computer FQDN
// after the Resolver stage to populate fqdn_to_ip.
type HostResolver interface {
	Resolve(ctx context.Context, fqdnUpper string) (ip string, ok bool)
}
