package connector_test

import (
	"errors"
	"testing"

	"github.com/go-ldap/ldap/v3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/huskyhound/nonehound/internal/config"
	"github.com/huskyhound/nonehound/internal/connector"
)

type fakeConn struct {
	bindErr    error
	boundUser  string
	boundPass  string
	searchRes  *ldap.SearchResult
	searchErr  error
	closed     bool
}

func (f *fakeConn) Bind(username, password string) error {
	f.boundUser, f.boundPass = username, password
	return f.bindErr
}

func (f *fakeConn) Search(req *ldap.SearchRequest) (*ldap.SearchResult, error) {
	return f.searchRes, f.searchErr
}

func (f *fakeConn) Close() error {
	f.closed = true
	return nil
}

func TestBindSimple(t *testing.T) {
	r := require.New(t)

	conn := &fakeConn{}
	c := &config.Config{Username: "alice", Password: "hunter2"}

	err := connector.Bind(conn, c, nil)
	r.NoError(err)
	r.Equal("alice", conn.boundUser)
	r.Equal("hunter2", conn.boundPass)
}

func TestBindSimpleFailurePropagates(t *testing.T) {
	r := require.New(t)

	conn := &fakeConn{bindErr: errors.New("invalid credentials")}
	c := &config.Config{Username: "alice", Password: "wrong"}

	err := connector.Bind(conn, c, nil)
	r.Error(err)

	var connErr connector.ConnectionError
	r.ErrorAs(err, &connErr)
	r.True(connErr.Terminal())
}

func TestBindIntegratedWithoutBinderFails(t *testing.T) {
	r := require.New(t)

	conn := &fakeConn{}
	c := &config.Config{UseIntegratedAuth: true}

	err := connector.Bind(conn, c, nil)
	r.Error(err)
}

func TestBindIntegratedUsesBinder(t *testing.T) {
	r := require.New(t)

	conn := &fakeConn{}
	c := &config.Config{UseIntegratedAuth: true, ControllerFQDN: "dc01.example.local"}

	called := false
	binder := connector.KerberosBinder(func(conn connector.Conn, fqdn string) error {
		called = true
		r.Equal("dc01.example.local", fqdn)
		return nil
	})

	err := connector.Bind(conn, c, binder)
	r.NoError(err)
	r.True(called)
}

func TestDiscoverNamingContextsRequiresConfiguration(t *testing.T) {
	r := require.New(t)

	conn := &fakeConn{
		searchRes: &ldap.SearchResult{
			Entries: []*ldap.Entry{
				{Attributes: []*ldap.EntryAttribute{
					{Name: "namingContexts", Values: []string{"DC=example,DC=local"}},
				}},
			},
		},
	}

	_, err := connector.DiscoverNamingContexts(conn, zerolog.Nop())
	r.Error(err)

	var protoErr connector.ProtocolError
	r.ErrorAs(err, &protoErr)
}

func TestDiscoverNamingContextsOrdersConfigurationLast(t *testing.T) {
	r := require.New(t)

	conn := &fakeConn{
		searchRes: &ldap.SearchResult{
			Entries: []*ldap.Entry{
				{Attributes: []*ldap.EntryAttribute{
					{Name: "namingContexts", Values: []string{
						"CN=Configuration,DC=example,DC=local",
						"DC=example,DC=local",
					}},
				}},
			},
		},
	}

	ordered, err := connector.DiscoverNamingContexts(conn, zerolog.Nop())
	r.NoError(err)
	r.Equal([]string{"DC=example,DC=local", "CN=Configuration,DC=example,DC=local"}, ordered)
}

func TestDiscoverNamingContextsNoEntry(t *testing.T) {
	r := require.New(t)

	conn := &fakeConn{searchRes: &ldap.SearchResult{}}

	_, err := connector.DiscoverNamingContexts(conn, zerolog.Nop())
	r.Error(err)
}

func TestRenderFilterPlainPassesThrough(t *testing.T) {
	r := require.New(t)

	rendered, err := connector.RenderFilter("(objectClass=user)", nil)
	r.NoError(err)
	r.Equal("(objectClass=user)", rendered)
}

func TestRenderFilterTemplated(t *testing.T) {
	r := require.New(t)

	rendered, err := connector.RenderFilter(`(sAMAccountName={{ .Username | lower }})`, struct{ Username string }{"ALICE"})
	r.NoError(err)
	r.Equal("(sAMAccountName=alice)", rendered)
}

func TestRenderFilterBadTemplate(t *testing.T) {
	r := require.New(t)

	_, err := connector.RenderFilter(`(sAMAccountName={{ .Broken`, nil)
	r.Error(err)
}
