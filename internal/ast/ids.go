package ast

// NodeID addresses a node inside a File. Ids are stable for the lifetime of
// the file, so semantic annotations live in side tables keyed by NodeID.
type NodeID uint32

const NoNodeID NodeID = 0

func (id NodeID) IsValid() bool { return id != NoNodeID }
