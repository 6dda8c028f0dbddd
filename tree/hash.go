package tree

import (
	"encoding/binary"
	"hash/maphash"
)

// One shared seed so equal subtrees hash equally across the three
// revision trees of a merge. maphash reseeds per process, which is fine:
// no hash outlives a single invocation.
var seed = maphash.MakeSeed()

// hashNode computes the structural hash of id. Children hashes must
// already be filled in (nodes are indexed bottom-up).
func (t *Tree) hashNode(id NodeID) uint64 {
	var h maphash.Hash
	h.SetSeed(seed)
	n := &t.nodes[id]
	h.WriteString(n.Kind)
	h.WriteByte(0)
	if len(n.Children) == 0 {
		h.Write(t.TextOf(id))
		return h.Sum64()
	}
	var b [8]byte
	for _, c := range n.Children {
		binary.LittleEndian.PutUint64(b[:], t.hash[c])
		h.Write(b[:])
	}
	return h.Sum64()
}
