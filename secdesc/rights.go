package secdesc

// RightResult is one named right derived from a single ACE, ready to be
// turned into a model.ACE by the caller once the principal's kind is known.
type RightResult struct {
	RightName       string
	IsInherited      bool
	ObjectType       string // resolved extended-right/attribute GUID, if any
	InheritedType    string
}

// genericAllMask is the access mask AD tooling conventionally treats as
// "full control" even when the GENERIC_ALL bit itself is absent, because
// directory servers frequently expand generic rights to their specific
// equivalents before writing the ACE.
const genericAllMask = AccessMaskWriteDACL | AccessMaskWriteOwner | AccessMaskReadControl |
	AccessMaskCreateChild | AccessMaskDeleteChild | AccessMaskSelf |
	AccessMaskWriteProperty | AccessMaskReadProperty | AccessMaskDelete

// DeriveRights inspects a single decoded ACE and returns the named rights
// it grants, per the vocabulary in spec.md §3. ACCESS_DENIED ACEs never
// produce a result (ignored for graph construction, per §4.D.2). attrName
// is looked up in KnownAttributeGUIDs for the owning object kind's
// WRITE_PROPERTY/SELF special cases (AddMember uses "member", WriteSPN
// uses "serviceprincipalname", AddKeyCredentialLink uses
// "ms-ds-key-credential-link"); isCAObject narrows MANAGE_CERTIFICATES to
// CA-kind objects only.
func DeriveRights(ace ACE, isCAObject bool) []RightResult {
	switch ace.Header.Type {
	case AceTypeAccessAllowed, AceTypeAccessAllowedObject,
		AceTypeAccessAllowedCallback, AceTypeAccessAllowedCallbackObject:
		// fall through to derivation below
	default:
		return nil
	}

	mask := ace.AccessMask.Raw()
	inherited := ace.IsInherited()

	var objType, inheritedType string
	if adv, ok := ace.ObjectAce.(AdvancedAce); ok {
		if adv.HasObjectType() {
			objType = adv.ObjectType.String()
		}
		if adv.HasInheritedObjectType() {
			inheritedType = adv.InheritedObjectType.String()
		}
	}

	var out []RightResult
	emit := func(name string) {
		out = append(out, RightResult{RightName: name, IsInherited: inherited, ObjectType: objType, InheritedType: inheritedType})
	}

	if mask&AccessMaskGenericAll != 0 || (mask&genericAllMask) == genericAllMask {
		emit("GenericAll")
		return out
	}

	if mask&AccessMaskWriteDACL != 0 {
		emit("WriteDacl")
	}
	if mask&AccessMaskWriteOwner != 0 {
		emit("WriteOwner")
	}

	if mask&AccessMaskControlAccess != 0 {
		if objType == "" {
			emit("AllExtendedRights")
		} else if name, ok := ControlAccessRightsGUIDs[objType]; ok {
			switch objType {
			case "00299570-246d-11d0-a768-00aa006e0529":
				emit("ForceChangePassword")
			case "1131f6aa-9c07-11d1-f79f-00c04fc2dcd2":
				emit("GetChanges")
			case "1131f6ad-9c07-11d1-f79f-00c04fc2dcd2":
				emit("GetChangesAll")
			case "89e95b76-444d-4c62-991a-0facbeda640c":
				emit("GetChangesInFilteredSet")
			case "0e10c968-78fb-11d2-90d4-00c04f79dc55":
				emit("Enroll")
			case "a05b8cc2-17bc-4802-a710-e7c15ab866a2":
				emit("AutoEnroll")
			case "3f78c3e5-f79a-46bd-a0b8-9d18116ddc79":
				emit("AllowedToAct")
			default:
				_ = name
				emit("AllExtendedRights")
			}
		}
	}

	if mask&AccessMaskWriteProperty != 0 {
		switch objType {
		case KnownAttributeGUIDs["member"]:
			if mask&AccessMaskSelf != 0 {
				emit("AddMember")
			} else {
				emit("GenericWrite")
			}
		case KnownAttributeGUIDs["serviceprincipalname"]:
			emit("WriteSPN")
		case KnownAttributeGUIDs["ms-ds-key-credential-link"]:
			emit("AddKeyCredentialLink")
		case "":
			emit("GenericWrite")
		default:
			emit("GenericWrite")
		}
	}

	if isCAObject && mask&AccessMaskManageCertificates != 0 {
		emit("ManageCertificates")
	}
	if isCAObject && mask&AccessMaskManageCA != 0 {
		emit("ManageCA")
	}

	return out
}

// GMSAPrincipalsFromSecurityDescriptor parses the security descriptor found
// in the msDS-GroupMSAMembership attribute and returns the SIDs of its
// allowed principals, who each gain a synthetic ReadGMSAPassword right on
// the user record being parsed.
func GMSAPrincipalsFromSecurityDescriptor(raw []byte) ([]SID, error) {
	sd, err := NewNtSecurityDescriptor(raw)
	if err != nil {
		return nil, err
	}
	out := make([]SID, 0, len(sd.DACL.Aces))
	for _, ace := range sd.DACL.Aces {
		if ace.Header.Type != AceTypeAccessAllowed && ace.Header.Type != AceTypeAccessAllowedObject {
			continue
		}
		out = append(out, ace.ObjectAce.GetPrincipal())
	}
	return out, nil
}
