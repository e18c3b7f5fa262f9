package camguard

import "fmt"

// ResourceKind identifies the family a ResourceId belongs to. Only Camera
// is defined today; the type exists so a future kind does not require
// reshaping ResourceId.
type ResourceKind string

// Camera is the only ResourceKind the core recognizes.
const Camera ResourceKind = "Camera"

// ResourceId is a structural composite of a small unsigned integer and a
// kind tag. Equality and hashing are structural (it is comparable and
// usable as a map key), and it is stable for the life of the process.
type ResourceId struct {
	Kind  ResourceKind
	Index uint32
}

// NewResourceId builds a ResourceId for the given kind and index.
func NewResourceId(kind ResourceKind, index uint32) ResourceId {
	return ResourceId{Kind: kind, Index: index}
}

// NewCameraId is a convenience constructor for the canonical Camera kind.
func NewCameraId(index uint32) ResourceId {
	return NewResourceId(Camera, index)
}

func (id ResourceId) String() string {
	return fmt.Sprintf("%s#%d", id.Kind, id.Index)
}

// OwnerToken is an opaque session identifier. Two tokens are equal iff
// their underlying identifiers are equal.
type OwnerToken struct {
	id string
}

// NewOwnerToken wraps an opaque identifier string as an OwnerToken.
func NewOwnerToken(id string) OwnerToken {
	return OwnerToken{id: id}
}

// IsZero reports whether the token carries no identifier.
func (t OwnerToken) IsZero() bool {
	return t.id == ""
}

func (t OwnerToken) String() string {
	return t.id
}
