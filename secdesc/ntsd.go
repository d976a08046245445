package secdesc

import (
	"bytes"
	"fmt"
)

// NtSecurityDescriptor represent a Security Descriptor
type NtSecurityDescriptor struct {
	Header NtSecurityDescriptorHeader
	DACL   ACL
	SACL   ACL
	Owner  SID
	Group  SID
}

// String will returns general information about itself
// See also: ToSDDL()
func (s NtSecurityDescriptor) String() string {
	return fmt.Sprintf(
		"Parsed Security Descriptor:\n Offsets:\n Owner=%v Group=%v Sacl=%v Dacl=%v\n",
		s.Header.OffsetOwner,
		s.Header.OffsetGroup,
		s.Header.OffsetDacl,
		s.Header.OffsetSacl,
	)
}

// NewNtSecurityDescriptor is a constructor that will parse out an
// NtSecurityDescriptor from a byte buffer. Owner, group, SACL and DACL are
// all addressed by absolute offset from the header, as on the wire, rather
// than assumed to follow each other sequentially.
func NewNtSecurityDescriptor(ntsdBytes []byte) (NtSecurityDescriptor, error) {
	buf := bytes.NewBuffer(ntsdBytes)
	var err error

	ntsd := NtSecurityDescriptor{}
	ntsd.Header, err = NewNTSDHeader(buf)
	if err != nil {
		return ntsd, fmt.Errorf("parsing security descriptor header: %w", err)
	}

	if off := ntsd.Header.OffsetOwner; off > 0 && int(off) < len(ntsdBytes) {
		sidLen := sidLengthAt(ntsdBytes, int(off))
		ntsd.Owner, err = NewSID(bytes.NewBuffer(ntsdBytes[off:]), sidLen)
		if err != nil {
			return ntsd, fmt.Errorf("parsing owner SID: %w", err)
		}
	}

	if off := ntsd.Header.OffsetGroup; off > 0 && int(off) < len(ntsdBytes) {
		sidLen := sidLengthAt(ntsdBytes, int(off))
		ntsd.Group, err = NewSID(bytes.NewBuffer(ntsdBytes[off:]), sidLen)
		if err != nil {
			return ntsd, fmt.Errorf("parsing group SID: %w", err)
		}
	}

	// A DACL offset of zero means no DACL is present: an empty ACE list,
	// not a parse error.
	if off := ntsd.Header.OffsetDacl; off > 0 && int(off) < len(ntsdBytes) {
		ntsd.DACL, err = NewACL(bytes.NewBuffer(ntsdBytes[off:]))
		if err != nil {
			return ntsd, fmt.Errorf("parsing DACL: %w", err)
		}
	}

	if off := ntsd.Header.OffsetSacl; off > 0 && int(off) < len(ntsdBytes) {
		ntsd.SACL, err = NewACL(bytes.NewBuffer(ntsdBytes[off:]))
		if err != nil {
			return ntsd, fmt.Errorf("parsing SACL: %w", err)
		}
	}

	return ntsd, nil
}

// sidLengthAt computes the byte length of the SID beginning at offset in
// raw, from the SID's own NumAuthorities field, without needing an
// enclosing structure to bound it.
func sidLengthAt(raw []byte, offset int) int {
	if offset+2 > len(raw) {
		return 0
	}
	numAuth := int(raw[offset+1])
	return 8 + 4*numAuth
}
