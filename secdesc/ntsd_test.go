package secdesc_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/huskyhound/nonehound/secdesc"
)

// buildSD assembles a minimal self-relative security descriptor: header,
// optional owner/group SIDs, optional DACL, in that order, with offsets
// computed to match. Passing nil for dacl leaves OffsetDacl at zero.
func buildSD(owner, group *secdesc.SID, dacl *bytes.Buffer) []byte {
	const headerSize = 20

	var ownerBytes, groupBytes []byte
	if owner != nil {
		ownerBytes = owner.ToBinary()
	}
	if group != nil {
		groupBytes = group.ToBinary()
	}

	offsetOwner := uint32(0)
	offsetGroup := uint32(0)
	offsetDacl := uint32(0)

	pos := uint32(headerSize)
	if owner != nil {
		offsetOwner = pos
		pos += uint32(len(ownerBytes))
	}
	if group != nil {
		offsetGroup = pos
		pos += uint32(len(groupBytes))
	}
	if dacl != nil {
		offsetDacl = pos
	}

	buf := &bytes.Buffer{}
	buf.WriteByte(1) // Revision
	buf.WriteByte(0) // Sbz1
	binary.Write(buf, binary.LittleEndian, uint16(0x8004))
	binary.Write(buf, binary.LittleEndian, offsetOwner)
	binary.Write(buf, binary.LittleEndian, offsetGroup)
	binary.Write(buf, binary.LittleEndian, uint32(0)) // OffsetSacl
	binary.Write(buf, binary.LittleEndian, offsetDacl)
	buf.Write(ownerBytes)
	buf.Write(groupBytes)
	if dacl != nil {
		buf.Write(dacl.Bytes())
	}
	return buf.Bytes()
}

func basicAllowACE(sid secdesc.SID, mask uint32) []byte {
	sidBytes := sid.ToBinary()
	buf := &bytes.Buffer{}
	buf.WriteByte(byte(secdesc.AceTypeAccessAllowed))
	buf.WriteByte(0)
	binary.Write(buf, binary.LittleEndian, uint16(8+len(sidBytes)))
	binary.Write(buf, binary.LittleEndian, mask)
	buf.Write(sidBytes)
	return buf.Bytes()
}

func daclOf(aces ...[]byte) *bytes.Buffer {
	buf := &bytes.Buffer{}
	buf.WriteByte(2) // Revision
	buf.WriteByte(0) // Sbz1
	size := 8
	for _, a := range aces {
		size += len(a)
	}
	binary.Write(buf, binary.LittleEndian, uint16(size))
	binary.Write(buf, binary.LittleEndian, uint16(len(aces)))
	binary.Write(buf, binary.LittleEndian, uint16(0)) // Sbz2
	for _, a := range aces {
		buf.Write(a)
	}
	return buf
}

func TestNewNtSecurityDescriptorWithDACL(t *testing.T) {
	r := require.New(t)

	owner := secdesc.SID{Revision: 1, NumAuthorities: 1, Authority: []byte{0, 0, 0, 0, 0, 5}, SubAuthorities: []uint32{18}}
	group := secdesc.SID{Revision: 1, NumAuthorities: 1, Authority: []byte{0, 0, 0, 0, 0, 5}, SubAuthorities: []uint32{32}}
	ace := basicAllowACE(secdesc.SID{Revision: 1, NumAuthorities: 1, Authority: []byte{0, 0, 0, 0, 0, 5}, SubAuthorities: []uint32{512}}, secdesc.AccessMaskGenericAll)
	dacl := daclOf(ace)

	raw := buildSD(&owner, &group, dacl)

	ntsd, err := secdesc.NewNtSecurityDescriptor(raw)
	r.NoError(err)

	r.Equal("S-1-5-18", ntsd.Owner.String())
	r.Equal("S-1-5-32", ntsd.Group.String())
	r.Len(ntsd.DACL.Aces, 1)
	r.Equal(int(ntsd.DACL.Header.AceCount), len(ntsd.DACL.Aces))
	r.Equal("S-1-5-512", ntsd.DACL.Aces[0].ObjectAce.GetPrincipal().String())
}

func TestNewNtSecurityDescriptorZeroDACLOffset(t *testing.T) {
	r := require.New(t)

	owner := secdesc.SID{Revision: 1, NumAuthorities: 1, Authority: []byte{0, 0, 0, 0, 0, 5}, SubAuthorities: []uint32{18}}
	raw := buildSD(&owner, nil, nil)

	ntsd, err := secdesc.NewNtSecurityDescriptor(raw)
	r.NoError(err)
	r.Empty(ntsd.DACL.Aces)
	r.Equal(uint32(0), ntsd.Header.OffsetDacl)
}

func TestNewNtSecurityDescriptorMalformedHeader(t *testing.T) {
	r := require.New(t)

	raw := make([]byte, 10)
	_, err := secdesc.NewNtSecurityDescriptor(raw)
	r.Error(err)
}

func TestNewNtSecurityDescriptorMalformedDACL(t *testing.T) {
	r := require.New(t)

	// OffsetDacl points past the end of the buffer's actual DACL bytes.
	raw := buildSD(nil, nil, daclOf(basicAllowACE(secdesc.SID{Revision: 1, NumAuthorities: 1, Authority: []byte{0, 0, 0, 0, 0, 5}, SubAuthorities: []uint32{512}}, secdesc.AccessMaskGenericAll)))
	truncated := raw[:len(raw)-4]

	_, err := secdesc.NewNtSecurityDescriptor(truncated)
	r.Error(err)
}

func TestNtSecurityDescriptorString(t *testing.T) {
	r := require.New(t)

	owner := secdesc.SID{Revision: 1, NumAuthorities: 1, Authority: []byte{0, 0, 0, 0, 0, 5}, SubAuthorities: []uint32{18}}
	raw := buildSD(&owner, nil, nil)

	ntsd, err := secdesc.NewNtSecurityDescriptor(raw)
	r.NoError(err)

	result := ntsd.String()
	r.Contains(result, "Parsed Security Descriptor:")
	r.Contains(result, "Offsets:")
	r.Contains(result, "Owner=")
	r.Contains(result, "Group=")
	r.Contains(result, "Sacl=")
	r.Contains(result, "Dacl=")
}

func TestNtSecurityDescriptorHeaderIsDACLProtected(t *testing.T) {
	r := require.New(t)

	protected := secdesc.NtSecurityDescriptorHeader{Control: secdesc.DACLProtected}
	r.True(protected.IsDACLProtected())

	unprotected := secdesc.NtSecurityDescriptorHeader{Control: 0}
	r.False(unprotected.IsDACLProtected())
}
