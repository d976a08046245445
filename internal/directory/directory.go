// Package directory issues the streaming subtree searches that retrieve raw
// directory entries, under the controls spec §4.B requires: paged results
// and the SD-flags control limiting security-descriptor attributes to
// owner+group+DACL.
package directory

import (
	"context"
	"fmt"

	ber "github.com/go-asn1-ber/asn1-ber"
	"github.com/go-ldap/ldap/v3"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// PageSize is the paged-results control page size spec §4.B mandates.
const PageSize = 999

// sdFlagsControlOID is the LDAP_SERVER_SD_FLAGS_OID control.
const sdFlagsControlOID = "1.2.840.113556.1.4.801"

// sdFlagsOwnerGroupDACL requests owner, group, and DACL but not SACL,
// encoded as a BER integer of value 5 per spec §4.B.
const sdFlagsOwnerGroupDACL = 5

// Entry is a raw directory entry: a distinguished name plus its attributes
// split into text- and binary-valued buckets, exactly the shape the cache
// persists.
type Entry struct {
	DN        string
	Attrs     map[string][]string
	BinAttrs  map[string][][]byte
}

// Conn abstracts the subset of an LDAP connection this package needs, so
// stage B can be exercised in tests against an in-memory fake instead of a
// live server.
type Conn interface {
	Search(req *ldap.SearchRequest) (*ldap.SearchResult, error)
}

// sdFlagsControl implements ldap.Control for the LDAP_SERVER_SD_FLAGS_OID
// control, which go-ldap/v3 does not ship a constructor for.
type sdFlagsControl struct {
	flags int64
}

func (c *sdFlagsControl) GetControlType() string { return sdFlagsControlOID }

func (c *sdFlagsControl) String() string {
	return fmt.Sprintf("Control Type: SD Flags (%s), Flags: %d", sdFlagsControlOID, c.flags)
}

func (c *sdFlagsControl) Encode() *ber.Packet {
	packet := ber.Encode(ber.ClassUniversal, ber.TypeConstructed, ber.TagSequence, nil, "Control")
	packet.AppendChild(ber.NewString(ber.ClassUniversal, ber.TypePrimitive, ber.TagOctetString, c.GetControlType(), "Control Type"))

	value := ber.Encode(ber.ClassUniversal, ber.TypePrimitive, ber.TagOctetString, nil, "Control Value")
	seq := ber.Encode(ber.ClassUniversal, ber.TypeConstructed, ber.TagSequence, nil, "SDFlags")
	seq.AppendChild(ber.NewInteger(ber.ClassUniversal, ber.TypePrimitive, ber.TagInteger, c.flags, "Flags"))
	value.AppendChild(seq)
	packet.AppendChild(value)
	return packet
}

// EmptyResultError is returned when zero entries were yielded across every
// naming context searched, a terminal protocol error per spec §4.B/§7.
type EmptyResultError struct{}

func (EmptyResultError) Error() string { return "directory: search yielded no entries" }
func (EmptyResultError) Terminal() bool { return true }

// Search issues a subtree-scope search under base with the paged-results
// and SD-flags controls, calling yield once per entry in server-returned
// order. It returns the number of entries yielded.
func Search(ctx context.Context, conn Conn, base, filter string, log zerolog.Logger, yield func(Entry) error) (int, error) {
	pagingControl := ldap.NewControlPaging(PageSize)
	count := 0

	for {
		req := ldap.NewSearchRequest(
			base,
			ldap.ScopeWholeSubtree, ldap.NeverDerefAliases, 0, 0, false,
			filter,
			[]string{"*", "nTSecurityDescriptor"},
			[]ldap.Control{pagingControl, &sdFlagsControl{flags: sdFlagsOwnerGroupDACL}},
		)

		select {
		case <-ctx.Done():
			return count, ctx.Err()
		default:
		}

		res, err := conn.Search(req)
		if err != nil {
			return count, errors.Wrapf(err, "searching naming context %s", base)
		}

		for _, e := range res.Entries {
			entry := toEntry(e)
			count++
			if err := yield(entry); err != nil {
				return count, errors.Wrap(err, "yielding entry")
			}
		}

		next := ldap.FindControl(res.Controls, ldap.ControlTypePaging)
		if next == nil {
			break
		}
		nextPaging, ok := next.(*ldap.ControlPaging)
		if !ok || len(nextPaging.Cookie) == 0 {
			break
		}
		pagingControl.SetCookie(nextPaging.Cookie)
	}

	log.Info().Str("base", base).Int("count", count).Msg("naming context scan complete")
	return count, nil
}

func toEntry(e *ldap.Entry) Entry {
	entry := Entry{
		DN:       e.DN,
		Attrs:    map[string][]string{},
		BinAttrs: map[string][][]byte{},
	}
	for _, a := range e.Attributes {
		entry.Attrs[a.Name] = a.Values
		if len(a.ByteValues) > 0 {
			entry.BinAttrs[a.Name] = a.ByteValues
		}
	}
	return entry
}
