// Package connector builds the LDAP endpoint URL, binds (simple or
// integrated authentication), and discovers the naming contexts a
// collection run will walk, per spec §4.A.
package connector

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"strings"
	"text/template"
	"time"

	"github.com/Masterminds/sprig"
	"github.com/go-ldap/ldap/v3"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/huskyhound/nonehound/internal/config"
)

// BindTimeout is the connection-wide timeout for the bind and each search,
// per spec §5.
const BindTimeout = 10 * time.Second

// Conn is the subset of an LDAP connection the rest of the collector needs:
// bind, search (directory.Conn), and close.
type Conn interface {
	Bind(username, password string) error
	Search(req *ldap.SearchRequest) (*ldap.SearchResult, error)
	Close() error
}

// KerberosBinder performs an integrated-authentication bind using the
// ambient ticket cache. Kerberos ticket-cache discovery is explicitly out
// of the collector's scope (spec §1 Non-goals); callers on platforms that
// support it inject a binder here. The zero value rejects integrated auth.
type KerberosBinder func(conn Conn, controllerFQDN string) error

// ConnectionError wraps a DNS, TLS, or bind failure. Always terminal.
type ConnectionError struct {
	cause error
}

func (e ConnectionError) Error() string { return fmt.Sprintf("connection error: %v", e.cause) }
func (e ConnectionError) Terminal() bool { return true }
func (e ConnectionError) Unwrap() error  { return e.cause }

// ProtocolError wraps a missing-naming-context or empty-search failure.
// Always terminal.
type ProtocolError struct {
	msg string
}

func (e ProtocolError) Error() string  { return "protocol error: " + e.msg }
func (e ProtocolError) Terminal() bool { return true }

// Dial opens a connection to c's endpoint, selecting the secure or
// cleartext scheme based on Config.UseSecureTransport or an explicit
// port 636.
func Dial(ctx context.Context, c *config.Config) (Conn, error) {
	scheme := "ldap"
	if c.UseSecureTransport || c.Port == 636 {
		scheme = "ldaps"
	}

	url := fmt.Sprintf("%s://%s", scheme, c.Endpoint())
	dialer := &net.Dialer{Timeout: BindTimeout}
	opts := []ldap.DialOpt{ldap.DialWithDialer(dialer), ldap.DialWithTLSConfig(&tls.Config{ServerName: c.ControllerFQDN})}
	if scheme != "ldaps" {
		opts = opts[:1]
	}

	conn, err := ldap.DialURL(url, opts...)
	if err != nil {
		return nil, ConnectionError{cause: err}
	}

	select {
	case <-ctx.Done():
		conn.Close()
		return nil, ctx.Err()
	default:
	}

	return conn, nil
}

// Bind authenticates the connection using either the supplied credentials
// or, when requested, the platform's integrated authentication binder.
func Bind(conn Conn, c *config.Config, binder KerberosBinder) error {
	if c.UseIntegratedAuth {
		if binder == nil {
			return errors.New("integrated authentication requested but no platform binder is configured")
		}
		if err := binder(conn, c.ControllerFQDN); err != nil {
			return ConnectionError{cause: err}
		}
		return nil
	}

	if err := conn.Bind(c.Username, c.Password); err != nil {
		return ConnectionError{cause: err}
	}
	return nil
}

// DiscoverNamingContexts queries the root DSE for namingContexts and
// requires that at least one value contains "Configuration".
func DiscoverNamingContexts(conn Conn, log zerolog.Logger) ([]string, error) {
	req := ldap.NewSearchRequest(
		"",
		ldap.ScopeBaseObject, ldap.NeverDerefAliases, 0, 0, false,
		"(objectClass=*)",
		[]string{"namingContexts"},
		nil,
	)

	res, err := conn.Search(req)
	if err != nil {
		return nil, ConnectionError{cause: err}
	}
	if len(res.Entries) != 1 {
		return nil, ProtocolError{"root DSE returned no entry"}
	}

	contexts := res.Entries[0].GetAttributeValues("namingContexts")
	found := false
	for _, nc := range contexts {
		if strings.Contains(nc, "Configuration") {
			found = true
			break
		}
	}
	if !found {
		return nil, ProtocolError{"no Configuration naming context found"}
	}

	log.Info().Strs("namingContexts", contexts).Msg("naming contexts discovered")

	// Order the default (domain) context before Configuration, per the
	// ordering guarantee in spec §5: the global domain SID must be
	// established before Configuration-partition objects need it.
	ordered := make([]string, 0, len(contexts))
	var configCtx []string
	for _, nc := range contexts {
		if strings.Contains(nc, "Configuration") {
			configCtx = append(configCtx, nc)
			continue
		}
		ordered = append(ordered, nc)
	}
	ordered = append(ordered, configCtx...)

	return ordered, nil
}

// RenderFilter templates filter through sprig's text/template function map
// when it looks templated (contains "{{"); plain filters are returned
// unchanged. Mirrors the LDAP managers' template.New(...).Funcs(sprig...)
// pattern, with the filter string itself as the template's data.
func RenderFilter(filter string, data interface{}) (string, error) {
	if !strings.Contains(filter, "{{") {
		return filter, nil
	}

	tpl, err := template.New("filter").Funcs(sprig.TxtFuncMap()).Parse(filter)
	if err != nil {
		return "", errors.Wrap(err, "parsing filter template")
	}

	var b bytes.Buffer
	if err := tpl.Execute(&b, data); err != nil {
		return "", errors.Wrap(err, "executing filter template")
	}
	return b.String(), nil
}
