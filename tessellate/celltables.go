package tessellate

// Corner indexes, bit layout bit0=+x, bit1=+y, bit2=+z relative to the cell origin.
//
//	    6---------------7
//	   /|              /|
//	  / |             / |
//	 /  |            /  |
//	4---------------5   |
//	|   |           |   |
//	|   2-----------|---3
//	|  /            |  /
//	| /             | /
//	|/              |/
//	0---------------1
type Corner uint8

// Edge indexes. Edges A, B, C emanate from the cell origin along +x, +y, +z;
// the remaining nine are translated copies of these three.
//
//	    +-------9-------+
//	   /|              /|
//	  7 |            10 |              ^
//	 /  8            /  11            /
//	+-------6-------+   |     ^    higher indexes in y
//	|   |           |   |     |     /
//	|   +-------3---|---+     |    /
//	2  /            5  /  higher indexes
//	| 1             | 4      in z
//	|/              |/        |/
//	o-------0-------+         +-- higher indexes in x ---->
type Edge uint8

const (
	EdgeA Edge = iota
	EdgeB
	EdgeC
	EdgeD
	EdgeE
	EdgeF
	EdgeG
	EdgeH
	EdgeI
	EdgeJ
	EdgeK
	EdgeL
)

// Base maps any edge to its canonical axis representative, one of EdgeA/EdgeB/EdgeC.
func (e Edge) Base() Edge { return e % 3 }

// Axis returns 0,1,2 for the edge's x/y/z direction.
func (e Edge) Axis() int { return int(e % 3) }

// Index is a triple of non-negative integers addressing a cell or sample.
type Index [3]int

func (i Index) add(o Index) Index {
	return Index{i[0] + o[0], i[1] + o[1], i[2] + o[2]}
}

func (i Index) sub(o Index) Index {
	return Index{i[0] - o[0], i[1] - o[1], i[2] - o[2]}
}

// edgeCorners holds the two corners (lower, higher index order) that each edge connects.
var edgeCorners = [12][2]Corner{
	{0, 1}, // A
	{0, 2}, // B
	{0, 4}, // C
	{2, 3}, // D
	{1, 3}, // E
	{1, 5}, // F
	{4, 5}, // G
	{4, 6}, // H
	{2, 6}, // I
	{6, 7}, // J
	{5, 7}, // K
	{3, 7}, // L
}

// edgeOffset is the cell offset that a cell-relative edge must be translated by
// to reach the cell that actually owns its crossing data (keyed by edge.Base()).
var edgeOffset = [12]Index{
	{0, 0, 0}, // A
	{0, 0, 0}, // B
	{0, 0, 0}, // C
	{0, 1, 0}, // D
	{1, 0, 0}, // E
	{1, 0, 0}, // F
	{0, 0, 1}, // G
	{0, 0, 1}, // H
	{0, 1, 0}, // I
	{0, 1, 1}, // J
	{1, 0, 1}, // K
	{1, 1, 0}, // L
}

// edgeEndOffset is the offset, in cells, of the far endpoint of each of the
// three base edges relative to the cell origin.
var edgeEndOffset = [3]Index{
	{1, 0, 0},
	{0, 1, 0},
	{0, 0, 1},
}

// quads[baseEdge] lists, in cyclic order around the physical edge, the 4
// (cellEdge) identities of the cell that the quad emitter must visit at
// idx-edgeOffset[cellEdge] to gather the four dual vertices of the quad.
var quads = [3][4]Edge{
	{EdgeA, EdgeG, EdgeJ, EdgeD},
	{EdgeB, EdgeE, EdgeK, EdgeH},
	{EdgeC, EdgeI, EdgeL, EdgeF},
}

// EdgeBitset is a 12-bit set of edges, one bit per [Edge].
type EdgeBitset uint16

func (s EdgeBitset) has(e Edge) bool { return s&(1<<e) != 0 }

// cellFaceEdges returns the 4 edges bounding face (axis, value) of the cube,
// where value is 0 for the face at the cell origin and 1 for the opposite face.
func cellFaceEdges(axis int, value Corner) [4]Edge {
	var result [4]Edge
	n := 0
	for e := 0; e < 12; e++ {
		c0, c1 := edgeCorners[e][0], edgeCorners[e][1]
		if (c0>>uint(axis))&1 == value && (c1>>uint(axis))&1 == value {
			result[n] = Edge(e)
			n++
		}
	}
	if n != 4 {
		panic("cellFaceEdges: face does not have 4 edges, corner tables are inconsistent")
	}
	return result
}

// cornerNegative reports whether corner c samples negative under signBits,
// the 8-bit corner-sign bitset with bit (z<<2|y<<1|x) set iff that corner's sample is negative.
func cornerNegative(signBits uint8, c Corner) bool {
	return signBits&(1<<c) != 0
}

func activeEdge(signBits uint8, e Edge) bool {
	c0, c1 := edgeCorners[e][0], edgeCorners[e][1]
	return cornerNegative(signBits, c0) != cornerNegative(signBits, c1)
}

// cellConfig is the ordered list of active-edge partitions for one corner-sign bitset.
type cellConfig []EdgeBitset

// cellConfigTable maps all 256 corner-sign bitsets to their active-edge partitions.
// Each partition is a connected component of the active-edge subgraph of the cell,
// connectivity being defined through shared cube faces: the two active edges of
// a face with exactly two active edges are joined into the same surface sheet;
// a face with four active edges joins none of them. This is the disambiguation
// table that distinguishes Dual Marching Cubes from plain Marching Cubes; it is
// computed once here instead of being supplied by the caller.
var cellConfigTable [256]cellConfig

func init() {
	for signBits := 0; signBits < 256; signBits++ {
		cellConfigTable[signBits] = buildCellConfig(uint8(signBits))
	}
}

// unionFind over the 12 edges of a single cell.
type edgeUnionFind [12]int8

func newEdgeUnionFind() edgeUnionFind {
	var uf edgeUnionFind
	for i := range uf {
		uf[i] = int8(i)
	}
	return uf
}

func (uf *edgeUnionFind) find(x int8) int8 {
	for uf[x] != x {
		uf[x] = uf[uf[x]]
		x = uf[x]
	}
	return x
}

func (uf *edgeUnionFind) union(a, b Edge) {
	ra, rb := uf.find(int8(a)), uf.find(int8(b))
	if ra != rb {
		uf[ra] = rb
	}
}

func buildCellConfig(signBits uint8) cellConfig {
	uf := newEdgeUnionFind()
	for axis := 0; axis < 3; axis++ {
		for _, value := range [2]Corner{0, 1} {
			face := cellFaceEdges(axis, value)
			var active []Edge
			for _, e := range face {
				if activeEdge(signBits, e) {
					active = append(active, e)
				}
			}
			if len(active) == 2 {
				uf.union(active[0], active[1])
			}
		}
	}
	byRoot := map[int8]EdgeBitset{}
	var roots []int8
	for e := 0; e < 12; e++ {
		if !activeEdge(signBits, Edge(e)) {
			continue
		}
		root := uf.find(int8(e))
		if _, ok := byRoot[root]; !ok {
			roots = append(roots, root)
		}
		byRoot[root] |= 1 << uint(e)
	}
	cfg := make(cellConfig, 0, len(roots))
	for _, r := range roots {
		cfg = append(cfg, byRoot[r])
	}
	return cfg
}

// getConnectedEdges scans the partitions precomputed for cellSignBits and
// returns the first (and only) one containing edge. Per the spec this table
// is assumed complete: failing to find a partition is a programmer error.
func getConnectedEdges(edge Edge, cellSignBits uint8) EdgeBitset {
	for _, partition := range cellConfigTable[cellSignBits] {
		if partition.has(edge) {
			return partition
		}
	}
	panic("tessellate: no edge partition found for active edge, cell config table incomplete")
}
