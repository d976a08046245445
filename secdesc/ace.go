package secdesc

import "bytes"

// AceType enumerates the ACE_HEADER.AceType values this decoder understands.
// See https://learn.microsoft.com/windows/win32/api/winnt/ns-winnt-ace_header
type AceType byte

const (
	AceTypeAccessAllowed                AceType = 0x00
	AceTypeAccessDenied                 AceType = 0x01
	AceTypeSystemAudit                  AceType = 0x02
	AceTypeSystemAlarm                  AceType = 0x03
	AceTypeAccessAllowedObject          AceType = 0x05
	AceTypeAccessDeniedObject           AceType = 0x06
	AceTypeSystemAuditObject            AceType = 0x07
	AceTypeSystemAlarmObject            AceType = 0x08
	AceTypeAccessAllowedCallback        AceType = 0x09
	AceTypeAccessDeniedCallback         AceType = 0x0A
	AceTypeAccessAllowedCallbackObject  AceType = 0x0B
	AceTypeAccessDeniedCallbackObject   AceType = 0x0C
	AceTypeSystemAuditCallback          AceType = 0x0D
	AceTypeSystemAlarmCallback          AceType = 0x0E
	AceTypeSystemAuditCallbackObject    AceType = 0x0F
	AceTypeSystemAlarmCallbackObject    AceType = 0x10
)

// ACE inheritance/object-present flags, carried on AdvancedAce.Flags.
const (
	ACEInheritanceFlagsObjectTypePresent          uint32 = 0x00000001
	ACEInheritanceFlagsInheritedObjectTypePresent uint32 = 0x00000002
)

// ACE header flags (ACE_HEADER.AceFlags).
const (
	AceFlagObjectInherit        byte = 0x01
	AceFlagContainerInherit     byte = 0x02
	AceFlagNoPropagateInherit   byte = 0x04
	AceFlagInheritOnly          byte = 0x08
	AceFlagInherited            byte = 0x10
)

// Access mask bits relevant to directory object ACEs.
const (
	AccessMaskGenericRead     uint32 = 0x80000000
	AccessMaskGenericWrite    uint32 = 0x40000000
	AccessMaskGenericExecute  uint32 = 0x20000000
	AccessMaskGenericAll      uint32 = 0x10000000
	AccessMaskMaximumAllowed  uint32 = 0x02000000
	AccessMaskAccessSystemSec uint32 = 0x01000000
	AccessMaskSynchronize     uint32 = 0x00100000
	AccessMaskWriteOwner      uint32 = 0x00080000
	AccessMaskWriteDACL       uint32 = 0x00040000
	AccessMaskReadControl     uint32 = 0x00020000
	AccessMaskDelete          uint32 = 0x00010000
	AccessMaskControlAccess   uint32 = 0x00000100 // ADS_RIGHT_DS_CONTROL_ACCESS
	AccessMaskCreateChild     uint32 = 0x00000001
	AccessMaskDeleteChild     uint32 = 0x00000002
	AccessMaskListChildren    uint32 = 0x00000004
	AccessMaskSelf            uint32 = 0x00000008 // ADS_RIGHT_DS_SELF
	AccessMaskWriteProperty   uint32 = 0x00000020
	AccessMaskReadProperty    uint32 = 0x00000010
	AccessMaskManageCA        uint32 = 0x00000001 // MANAGE_CA, aliases CreateChild's bit on a CA object
	AccessMaskManageCertificates uint32 = 0x00000002 // MANAGE_CERTIFICATES, aliases DeleteChild's bit on a CA object
)

// ACEHeader is the common ACE_HEADER preceding every ACE body.
type ACEHeader struct {
	Type  AceType
	Flags byte
	Size  uint16
}

// ACEAccessMask wraps the raw 32-bit access mask carried by every ACE.
type ACEAccessMask struct {
	Value uint32
}

// Raw returns the untranslated access mask bits.
func (m ACEAccessMask) Raw() uint32 { return m.Value }

// ObjectAce is implemented by the two ACE body shapes this decoder produces.
type ObjectAce interface {
	// GetPrincipal returns the SID the ACE grants or denies rights to.
	GetPrincipal() SID
}

// BasicAce is the body of a non-object ACE: header, mask, then a bare SID.
type BasicAce struct {
	SecurityIdentifier SID
}

// GetPrincipal implements ObjectAce.
func (b BasicAce) GetPrincipal() SID { return b.SecurityIdentifier }

// AdvancedAce is the body of an *_OBJECT ACE, which may carry an object-type
// GUID and/or an inherited-object-type GUID ahead of the SID.
type AdvancedAce struct {
	Flags               uint32
	ObjectType          GUID
	InheritedObjectType GUID
	SecurityIdentifier  SID
}

// GetPrincipal implements ObjectAce.
func (a AdvancedAce) GetPrincipal() SID { return a.SecurityIdentifier }

// HasObjectType reports whether ObjectType was present on the wire.
func (a AdvancedAce) HasObjectType() bool {
	return a.Flags&ACEInheritanceFlagsObjectTypePresent != 0
}

// HasInheritedObjectType reports whether InheritedObjectType was present on the wire.
func (a AdvancedAce) HasInheritedObjectType() bool {
	return a.Flags&ACEInheritanceFlagsInheritedObjectTypePresent != 0
}

// ACE is one entry of a DACL or SACL: a header, an access mask, and a
// type-specific body reachable through the ObjectAce interface.
type ACE struct {
	Header     ACEHeader
	AccessMask ACEAccessMask
	ObjectAce  ObjectAce
}

// IsInherited reports the ACE_HEADER inherited-ACE flag.
func (a ACE) IsInherited() bool {
	return a.Header.Flags&AceFlagInherited != 0
}

// IsObjectAce reports whether this ACE carries the *_OBJECT body shape,
// i.e. may carry object-type GUIDs.
func (a ACE) IsObjectAce() bool {
	_, ok := a.ObjectAce.(AdvancedAce)
	return ok
}

// ToBuffer serializes the header back to wire form, used by round-trip tests.
func (h ACEHeader) ToBuffer() (bytes.Buffer, error) {
	buf := bytes.Buffer{}
	buf.WriteByte(byte(h.Type))
	buf.WriteByte(h.Flags)
	sizeBytes := []byte{byte(h.Size), byte(h.Size >> 8)}
	buf.Write(sizeBytes)
	return buf, nil
}
