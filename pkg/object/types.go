package object

import "fmt"

// Hash is a 40-character hex-encoded SHA-1 digest.
type Hash string

// ObjectType identifies the kind of object stored.
type ObjectType string

const (
	TypeBlob   ObjectType = "blob"
	TypeTag    ObjectType = "tag"
	TypeTree   ObjectType = "tree"
	TypeCommit ObjectType = "commit"
)

// ParseObjectType maps the textual object type to an ObjectType.
func ParseObjectType(s string) (ObjectType, error) {
	switch t := ObjectType(s); t {
	case TypeBlob, TypeTag, TypeTree, TypeCommit:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidObjectType, s)
	}
}

// Object is one of *Blob, *Tree, *Commit or *Tag. The set is closed: the
// unexported method keeps other packages from adding kinds the codec does
// not know about.
type Object interface {
	Type() ObjectType
	object()
}

// Blob holds raw file data.
type Blob struct {
	Data []byte
}

// Tree holds an ordered list of leaves.
type Tree struct {
	Leaves []Leaf
}

// Commit is a key-value list that carries at least a "tree" field.
type Commit struct {
	KVL KVL
}

// Tag is an annotated tag: a key-value list conventionally carrying
// object, type, tag and tagger fields plus a message.
type Tag struct {
	KVL KVL
}

func (*Blob) Type() ObjectType   { return TypeBlob }
func (*Tree) Type() ObjectType   { return TypeTree }
func (*Commit) Type() ObjectType { return TypeCommit }
func (*Tag) Type() ObjectType    { return TypeTag }

func (*Blob) object()   {}
func (*Tree) object()   {}
func (*Commit) object() {}
func (*Tag) object()    {}

// LeafKind is the kind of entry a tree leaf points at.
type LeafKind int

const (
	LeafTree LeafKind = iota + 1
	LeafRegularFile
	LeafSymlink
	LeafSubmodule
)

// Canonical git mode strings for each leaf kind.
const (
	ModeTree       = "40000"
	ModeFile       = "100644"
	ModeExecutable = "100755"
	ModeSymlink    = "120000"
	ModeSubmodule  = "160000"
)

func (k LeafKind) String() string {
	switch k {
	case LeafTree:
		return "tree"
	case LeafRegularFile:
		return "file"
	case LeafSymlink:
		return "symlink"
	case LeafSubmodule:
		return "submodule"
	default:
		return fmt.Sprintf("LeafKind(%d)", int(k))
	}
}

// ObjectType returns the type of object a leaf of this kind points at.
// Submodule leaves point at commits in another repository.
func (k LeafKind) ObjectType() ObjectType {
	switch k {
	case LeafTree:
		return TypeTree
	case LeafSubmodule:
		return TypeCommit
	default:
		return TypeBlob
	}
}

// Leaf is one entry in a tree object. Mode keeps the mode token exactly as
// it was read so re-encoding is byte-for-byte identical; when empty the
// canonical mode for Kind is written.
type Leaf struct {
	Kind LeafKind
	Mode string
	Path string
	Hash Hash
}

// Commit accessors.

// TreeHash returns the commit's root tree id.
func (c *Commit) TreeHash() Hash {
	v, _ := c.KVL.Get("tree")
	return Hash(v)
}

// Parents returns every parent id in order; merge commits have several.
func (c *Commit) Parents() []Hash {
	values := c.KVL.GetAll("parent")
	out := make([]Hash, len(values))
	for i, v := range values {
		out[i] = Hash(v)
	}
	return out
}

// Author returns the raw author line.
func (c *Commit) Author() string {
	v, _ := c.KVL.Get("author")
	return v
}

// Message returns the commit message.
func (c *Commit) Message() string {
	return c.KVL.Message
}

// Tag accessors.

// Object returns the id of the tagged object.
func (t *Tag) Object() Hash {
	v, _ := t.KVL.Get("object")
	return Hash(v)
}

// TargetType returns the declared type of the tagged object.
func (t *Tag) TargetType() ObjectType {
	v, _ := t.KVL.Get("type")
	return ObjectType(v)
}

// Name returns the tag name.
func (t *Tag) Name() string {
	v, _ := t.KVL.Get("tag")
	return v
}

// Tagger returns the raw tagger line.
func (t *Tag) Tagger() string {
	v, _ := t.KVL.Get("tagger")
	return v
}

// Message returns the tag message.
func (t *Tag) Message() string {
	return t.KVL.Message
}
