package model

// Record is implemented by every typed record kind. Kinds that do not
// support a given capability interface below simply don't implement it;
// the Resolver's sub-passes query capability presence with a type
// assertion rather than panicking on an absent method (Design Note 9).
type Record interface {
	Identifier() string
	SetIdentifier(string)
	ObjectKind() ObjectKind
	DN() string
	AppendACE(ACE)
	ACEs() []ACE
	SetACEs([]ACE)
	SetContainedBy(Ref)
	SetACLProtected(bool)
	SetDomainSID(string)
}

// HasChildObjects is implemented by OU, Domain, and Container.
type HasChildObjects interface {
	AddChildObject(Ref)
}

// HasLinks is implemented by OU and Domain.
type HasLinks interface {
	AddLink(Link)
	SetLinks([]Link)
	GetLinks() []Link
	AffectedComputers() *GPOChanges
}

// HasMembers is implemented by Group.
type HasMembers interface {
	GetMembers() []Ref
	SetMembers([]Ref)
}

// HasAllowedToDelegate is implemented by User and Computer.
type HasAllowedToDelegate interface {
	GetAllowedToDelegate() []Ref
	SetAllowedToDelegate([]Ref)
}

// HasSPNTargets is implemented by User.
type HasSPNTargets interface {
	GetSPNTargets() []SPNTarget
	SetSPNTargets([]SPNTarget)
}

// HasAllowedToAct is implemented by Computer.
type HasAllowedToAct interface {
	GetAllowedToAct() []Ref
	SetAllowedToAct([]Ref)
}

func (b *Base) Identifier() string       { return b.ObjectIdentifier }
func (b *Base) SetIdentifier(id string)  { b.ObjectIdentifier = id }
func (b *Base) ObjectKind() ObjectKind   { return b.Kind }
func (b *Base) DN() string               { return b.DistinguishedName }
func (b *Base) AppendACE(a ACE)          { b.Aces = append(b.Aces, a) }
func (b *Base) ACEs() []ACE              { return b.Aces }
func (b *Base) SetACEs(a []ACE)          { b.Aces = a }
func (b *Base) SetContainedBy(ref Ref)   { b.ContainedBy = &ref }

// SetACLProtected records the discretionary ACL's "protected" control bit,
// per spec §3 invariant 3, mirroring the value into Properties.isaclprotected.
func (b *Base) SetACLProtected(protected bool) {
	b.IsACLProtected = protected
	b.Properties["isaclprotected"] = protected
}

// SetDomainSID records the global domain SID on this record, per spec §3
// invariant 4.
func (b *Base) SetDomainSID(sid string) {
	b.DomainSID = sid
	b.Properties["domainsid"] = sid
}

func (o *OU) AddChildObject(ref Ref)          { o.ChildObjects = append(o.ChildObjects, ref) }
func (d *Domain) AddChildObject(ref Ref)      { d.ChildObjects = append(d.ChildObjects, ref) }
func (c *Container) AddChildObject(ref Ref)   { c.ChildObjects = append(c.ChildObjects, ref) }

func (o *OU) AddLink(l Link)               { o.Links = append(o.Links, l) }
func (o *OU) SetLinks(ls []Link)           { o.Links = ls }
func (o *OU) GetLinks() []Link             { return o.Links }
func (o *OU) AffectedComputers() *GPOChanges { return &o.GPOChanges }

func (d *Domain) AddLink(l Link)               { d.Links = append(d.Links, l) }
func (d *Domain) SetLinks(ls []Link)           { d.Links = ls }
func (d *Domain) GetLinks() []Link             { return d.Links }
func (d *Domain) AffectedComputers() *GPOChanges { return &d.GPOChanges }

func (g *Group) GetMembers() []Ref     { return g.Members }
func (g *Group) SetMembers(refs []Ref) { g.Members = refs }

func (u *User) GetAllowedToDelegate() []Ref     { return u.AllowedToDelegate }
func (u *User) SetAllowedToDelegate(r []Ref)    { u.AllowedToDelegate = r }
func (c *Computer) GetAllowedToDelegate() []Ref  { return c.AllowedToDelegate }
func (c *Computer) SetAllowedToDelegate(r []Ref) { c.AllowedToDelegate = r }

func (u *User) GetSPNTargets() []SPNTarget    { return u.SPNTargets }
func (u *User) SetSPNTargets(t []SPNTarget)   { u.SPNTargets = t }

func (c *Computer) GetAllowedToAct() []Ref  { return c.AllowedToAct }
func (c *Computer) SetAllowedToAct(r []Ref) { c.AllowedToAct = r }
