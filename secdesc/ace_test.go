package secdesc_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/huskyhound/nonehound/secdesc"
)

func localSystemSID() secdesc.SID {
	return secdesc.SID{
		Revision:       1,
		NumAuthorities: 1,
		Authority:      []byte{0, 0, 0, 0, 0, 5},
		SubAuthorities: []uint32{18},
	}
}

func writeSIDBytes(buf *bytes.Buffer, sid secdesc.SID) int {
	b := sid.ToBinary()
	buf.Write(b)
	return len(b)
}

func TestNewAceBasic(t *testing.T) {
	r := require.New(t)

	sid := localSystemSID()
	body := &bytes.Buffer{}
	sidLen := writeSIDBytes(body, sid)

	full := &bytes.Buffer{}
	full.WriteByte(byte(secdesc.AceTypeAccessAllowed))
	full.WriteByte(0)
	size := uint16(8 + sidLen)
	binary.Write(full, binary.LittleEndian, size)
	binary.Write(full, binary.LittleEndian, secdesc.AccessMaskGenericAll)
	full.Write(body.Bytes())

	ace, err := secdesc.NewAce(full)
	r.NoError(err)
	r.Equal(secdesc.AceTypeAccessAllowed, ace.Header.Type)
	r.False(ace.IsObjectAce())

	basic, ok := ace.ObjectAce.(secdesc.BasicAce)
	r.True(ok)
	r.Equal("S-1-5-18", basic.SecurityIdentifier.String())
	r.Equal(sid, basic.GetPrincipal())
}

func TestNewAceAdvancedWithObjectType(t *testing.T) {
	r := require.New(t)

	// DS-Replication-Get-Changes: 1131f6aa-9c07-11d1-f79f-00c04fc2dcd2
	objGUID := secdesc.GUID{
		Data1: 0x1131f6aa,
		Data2: 0x9c07,
		Data3: 0x11d1,
		Data4: [8]byte{0xf7, 0x9f, 0x00, 0xc0, 0x4f, 0xc2, 0xdc, 0xd2},
	}
	sid := secdesc.SID{
		Revision:       1,
		NumAuthorities: 1,
		Authority:      []byte{0, 0, 0, 0, 0, 5},
		SubAuthorities: []uint32{512},
	}

	body := &bytes.Buffer{}
	binary.Write(body, binary.LittleEndian, secdesc.ACEInheritanceFlagsObjectTypePresent)
	binary.Write(body, binary.LittleEndian, objGUID.Data1)
	binary.Write(body, binary.LittleEndian, objGUID.Data2)
	binary.Write(body, binary.LittleEndian, objGUID.Data3)
	body.Write(objGUID.Data4[:])
	sidLen := writeSIDBytes(body, sid)

	full := &bytes.Buffer{}
	full.WriteByte(byte(secdesc.AceTypeAccessAllowedObject))
	full.WriteByte(0)
	size := uint16(8 + 4 + 16 + sidLen)
	binary.Write(full, binary.LittleEndian, size)
	binary.Write(full, binary.LittleEndian, secdesc.AccessMaskControlAccess)
	full.Write(body.Bytes())

	ace, err := secdesc.NewAce(full)
	r.NoError(err)
	r.True(ace.IsObjectAce())

	adv, ok := ace.ObjectAce.(secdesc.AdvancedAce)
	r.True(ok)
	r.True(adv.HasObjectType())
	r.False(adv.HasInheritedObjectType())
	r.Equal("DS-Replication-Get-Changes", adv.ObjectType.Resolve())
	r.Equal("S-1-5-512", adv.SecurityIdentifier.String())
}

func TestNewAceUnknownType(t *testing.T) {
	r := require.New(t)

	full := &bytes.Buffer{}
	full.WriteByte(0xFE)
	full.WriteByte(0)
	binary.Write(full, binary.LittleEndian, uint16(8))
	binary.Write(full, binary.LittleEndian, uint32(0))

	_, err := secdesc.NewAce(full)
	r.Error(err)
}

func TestNewAceTruncatedBuffer(t *testing.T) {
	r := require.New(t)

	full := &bytes.Buffer{}
	full.WriteByte(byte(secdesc.AceTypeAccessAllowed))
	_, err := secdesc.NewAce(full)
	r.Error(err)
}

func TestACEIsInherited(t *testing.T) {
	r := require.New(t)

	inherited := secdesc.ACE{Header: secdesc.ACEHeader{Flags: secdesc.AceFlagInherited}}
	r.True(inherited.IsInherited())

	notInherited := secdesc.ACE{Header: secdesc.ACEHeader{Flags: secdesc.AceFlagContainerInherit}}
	r.False(notInherited.IsInherited())
}

func TestNewACEHeaderRoundTrip(t *testing.T) {
	r := require.New(t)

	header := secdesc.ACEHeader{
		Type:  secdesc.AceTypeAccessAllowed,
		Flags: secdesc.AceFlagContainerInherit,
		Size:  20,
	}
	buf := bytes.Buffer{}
	r.NoError(binary.Write(&buf, binary.LittleEndian, &header))

	parsed, err := secdesc.NewACEHeader(&buf)
	r.NoError(err)
	r.Equal(header, parsed)

	b, err := header.ToBuffer()
	r.NoError(err)
	r.Equal(buf.Bytes(), b.Bytes())
}

func TestNewACEHeaderMalformed(t *testing.T) {
	r := require.New(t)

	buf := bytes.Buffer{}
	buf.WriteByte(byte(secdesc.AceTypeAccessAllowed))

	_, err := secdesc.NewACEHeader(&buf)
	r.Error(err)
}

func TestDeriveRightsGenericAll(t *testing.T) {
	r := require.New(t)

	ace := secdesc.ACE{
		Header:     secdesc.ACEHeader{Type: secdesc.AceTypeAccessAllowed},
		AccessMask: secdesc.ACEAccessMask{Value: secdesc.AccessMaskGenericAll},
		ObjectAce:  secdesc.BasicAce{},
	}
	rights := secdesc.DeriveRights(ace, false)
	r.Len(rights, 1)
	r.Equal("GenericAll", rights[0].RightName)
}

func TestDeriveRightsIgnoresAccessDenied(t *testing.T) {
	r := require.New(t)

	ace := secdesc.ACE{
		Header:     secdesc.ACEHeader{Type: secdesc.AceTypeAccessDenied},
		AccessMask: secdesc.ACEAccessMask{Value: secdesc.AccessMaskGenericAll},
		ObjectAce:  secdesc.BasicAce{},
	}
	r.Empty(secdesc.DeriveRights(ace, false))
}

func TestDeriveRightsWriteDaclAndOwner(t *testing.T) {
	r := require.New(t)

	ace := secdesc.ACE{
		Header:     secdesc.ACEHeader{Type: secdesc.AceTypeAccessAllowed},
		AccessMask: secdesc.ACEAccessMask{Value: secdesc.AccessMaskWriteDACL | secdesc.AccessMaskWriteOwner},
		ObjectAce:  secdesc.BasicAce{},
	}
	rights := secdesc.DeriveRights(ace, false)
	names := map[string]bool{}
	for _, rr := range rights {
		names[rr.RightName] = true
	}
	r.True(names["WriteDacl"])
	r.True(names["WriteOwner"])
}

func TestDeriveRightsAddMemberViaSelf(t *testing.T) {
	r := require.New(t)

	memberGUID, err := secdesc.ParseGUIDString(secdesc.KnownAttributeGUIDs["member"])
	r.NoError(err)
	r.Equal(secdesc.KnownAttributeGUIDs["member"], memberGUID.String())

	ace := secdesc.ACE{
		Header:     secdesc.ACEHeader{Type: secdesc.AceTypeAccessAllowedObject},
		AccessMask: secdesc.ACEAccessMask{Value: secdesc.AccessMaskWriteProperty | secdesc.AccessMaskSelf},
		ObjectAce: secdesc.AdvancedAce{
			Flags:      secdesc.ACEInheritanceFlagsObjectTypePresent,
			ObjectType: memberGUID,
		},
	}

	rights := secdesc.DeriveRights(ace, false)
	r.Len(rights, 1)
	r.Equal("AddMember", rights[0].RightName)
}

func TestDeriveRightsGenericWriteWithoutSelf(t *testing.T) {
	r := require.New(t)

	memberGUID, err := secdesc.ParseGUIDString(secdesc.KnownAttributeGUIDs["member"])
	r.NoError(err)

	ace := secdesc.ACE{
		Header:     secdesc.ACEHeader{Type: secdesc.AceTypeAccessAllowedObject},
		AccessMask: secdesc.ACEAccessMask{Value: secdesc.AccessMaskWriteProperty},
		ObjectAce: secdesc.AdvancedAce{
			Flags:      secdesc.ACEInheritanceFlagsObjectTypePresent,
			ObjectType: memberGUID,
		},
	}

	rights := secdesc.DeriveRights(ace, false)
	r.Len(rights, 1)
	r.Equal("GenericWrite", rights[0].RightName)
}

func TestDeriveRightsAllExtendedRights(t *testing.T) {
	r := require.New(t)

	ace := secdesc.ACE{
		Header:     secdesc.ACEHeader{Type: secdesc.AceTypeAccessAllowed},
		AccessMask: secdesc.ACEAccessMask{Value: secdesc.AccessMaskControlAccess},
		ObjectAce:  secdesc.BasicAce{},
	}
	rights := secdesc.DeriveRights(ace, false)
	r.Len(rights, 1)
	r.Equal("AllExtendedRights", rights[0].RightName)
}

func TestDeriveRightsManageCertificatesRequiresCAObject(t *testing.T) {
	r := require.New(t)

	ace := secdesc.ACE{
		Header:     secdesc.ACEHeader{Type: secdesc.AceTypeAccessAllowed},
		AccessMask: secdesc.ACEAccessMask{Value: secdesc.AccessMaskManageCertificates},
		ObjectAce:  secdesc.BasicAce{},
	}
	r.Empty(secdesc.DeriveRights(ace, false))

	rights := secdesc.DeriveRights(ace, true)
	r.Len(rights, 1)
	r.Equal("ManageCertificates", rights[0].RightName)
}

func TestGMSAPrincipalsFromSecurityDescriptor(t *testing.T) {
	r := require.New(t)

	sid := secdesc.SID{Revision: 1, NumAuthorities: 1, Authority: []byte{0, 0, 0, 0, 0, 5}, SubAuthorities: []uint32{2000}}

	body := &bytes.Buffer{}
	sidLen := writeSIDBytes(body, sid)

	ace := &bytes.Buffer{}
	ace.WriteByte(byte(secdesc.AceTypeAccessAllowed))
	ace.WriteByte(0)
	binary.Write(ace, binary.LittleEndian, uint16(8+sidLen))
	binary.Write(ace, binary.LittleEndian, secdesc.AccessMaskGenericAll)
	ace.Write(body.Bytes())

	dacl := &bytes.Buffer{}
	dacl.WriteByte(2)
	dacl.WriteByte(0)
	binary.Write(dacl, binary.LittleEndian, uint16(8+ace.Len()))
	binary.Write(dacl, binary.LittleEndian, uint16(1))
	binary.Write(dacl, binary.LittleEndian, uint16(0))
	dacl.Write(ace.Bytes())

	sd := &bytes.Buffer{}
	sd.WriteByte(1)
	sd.WriteByte(0)
	binary.Write(sd, binary.LittleEndian, uint16(0x8004))
	binary.Write(sd, binary.LittleEndian, uint32(0))
	binary.Write(sd, binary.LittleEndian, uint32(0))
	binary.Write(sd, binary.LittleEndian, uint32(0))
	binary.Write(sd, binary.LittleEndian, uint32(20))
	sd.Write(dacl.Bytes())

	principals, err := secdesc.GMSAPrincipalsFromSecurityDescriptor(sd.Bytes())
	r.NoError(err)
	r.Len(principals, 1)
	r.Equal("S-1-5-2000", principals[0].String())
}
