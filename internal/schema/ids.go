package schema

// Arena indices. Every object in a Snapshot is addressed by a small typed
// integer that indexes into the owning arena. IDs are only meaningful
// inside the Snapshot that produced them; an ID from one snapshot must
// never be used to address another.

// TableID indexes a table in a Snapshot.
type TableID uint32

// ColumnID indexes a table column in a Snapshot.
type ColumnID uint32

// IndexID indexes an index (including primary keys) in a Snapshot.
type IndexID uint32

// ForeignKeyID indexes a foreign key in a Snapshot.
type ForeignKeyID uint32

// EnumID indexes an enumerated type in a Snapshot.
type EnumID uint32

// EnumVariantID indexes a single enum variant in a Snapshot.
type EnumVariantID uint32

// SequenceID indexes a sequence in a Snapshot.
type SequenceID uint32
