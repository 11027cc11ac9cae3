package adjacency

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// hashTriple mixes (from, to, type) into a bucket index. It uses xxhash's
// 64-bit mix over a fixed 10-byte encoding of the triple, which gives a
// well-distributed index and — because the byte encoding is a pure function
// of the triple's value, not of map/pointer layout — is stable across
// serialize/deserialize within a build, as the package contract requires.
func hashTriple(from, to NodeId, typ EdgeType) uint64 {
	var buf [10]byte
	binary.LittleEndian.PutUint32(buf[0:4], uint32(from))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(to))
	binary.LittleEndian.PutUint16(buf[8:10], uint16(typ))
	return xxhash.Sum64(buf[:])
}

func (al *AdjacencyList) bucketOf(from, to NodeId, typ EdgeType) uint32 {
	return uint32(hashTriple(from, to, typ)) & al.tableMask
}
