package tessellate

import "testing"

func TestEdgeBaseAndAxis(t *testing.T) {
	cases := []struct {
		e        Edge
		wantBase Edge
		wantAxis int
	}{
		{EdgeA, EdgeA, 0},
		{EdgeD, EdgeA, 0},
		{EdgeB, EdgeB, 1},
		{EdgeE, EdgeB, 1},
		{EdgeC, EdgeC, 2},
		{EdgeL, EdgeC, 2},
	}
	for _, c := range cases {
		if got := c.e.Base(); got != c.wantBase {
			t.Errorf("Edge(%d).Base() = %d, want %d", c.e, got, c.wantBase)
		}
		if got := c.e.Axis(); got != c.wantAxis {
			t.Errorf("Edge(%d).Axis() = %d, want %d", c.e, got, c.wantAxis)
		}
	}
}

func TestCellFaceEdgesAlwaysFour(t *testing.T) {
	for axis := 0; axis < 3; axis++ {
		for _, value := range [2]Corner{0, 1} {
			edges := cellFaceEdges(axis, value)
			seen := map[Edge]bool{}
			for _, e := range edges {
				if seen[e] {
					t.Fatalf("axis %d value %d: duplicate edge %d", axis, value, e)
				}
				seen[e] = true
			}
		}
	}
}

func TestBuildCellConfigSingleCorner(t *testing.T) {
	// Exactly corner 0 negative: 3 edges (A, B, C) are active and meet at a
	// single vertex, so they must all end up in one partition.
	cfg := buildCellConfig(1) // bit 0 set
	if len(cfg) != 1 {
		t.Fatalf("expected a single partition for a single active corner, got %d: %v", len(cfg), cfg)
	}
	for _, e := range [3]Edge{EdgeA, EdgeB, EdgeC} {
		if !cfg[0].has(e) {
			t.Errorf("expected edge %d in the single partition %v", e, cfg[0])
		}
	}
}

func TestBuildCellConfigNoActiveEdges(t *testing.T) {
	cfg := buildCellConfig(0)
	if len(cfg) != 0 {
		t.Errorf("expected no partitions for a uniform cell, got %v", cfg)
	}
	cfg = buildCellConfig(0xFF)
	if len(cfg) != 0 {
		t.Errorf("expected no partitions for a fully negative cell, got %v", cfg)
	}
}

func TestGetConnectedEdgesReturnsContainingPartition(t *testing.T) {
	for signBits := 0; signBits < 256; signBits++ {
		for e := Edge(0); e < 12; e++ {
			if !activeEdge(uint8(signBits), e) {
				continue
			}
			partition := getConnectedEdges(e, uint8(signBits))
			if !partition.has(e) {
				t.Fatalf("signBits %#x: getConnectedEdges(%d) returned a partition not containing it", signBits, e)
			}
		}
	}
}
