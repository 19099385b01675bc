package locations

import (
	"sort"

	"github.com/chachabrian/uniride-backend/pkg/utils"
)

// DefaultRadiusKm is the distance under which two locations count as nearby.
const DefaultRadiusKm = 4.0

// Edge joins two nearby locations.
type Edge struct {
	A          string  `json:"a"`
	B          string  `json:"b"`
	DistanceKm float64 `json:"distanceKm"`
}

type Neighbor struct {
	Name       string  `json:"name"`
	DistanceKm float64 `json:"distanceKm"`
}

// Graph is an undirected proximity graph over a directory.
type Graph struct {
	dir   *Directory
	edges []Edge
	adj   map[string][]Neighbor
}

// BuildEdges pairs every two locations within radiusKm of each other.
func BuildEdges(dir *Directory, radiusKm float64) []Edge {
	locs := dir.All()
	var edges []Edge
	for i := 0; i < len(locs); i++ {
		for j := i + 1; j < len(locs); j++ {
			dist := utils.HaversineDistance(locs[i].Lat, locs[i].Lng, locs[j].Lat, locs[j].Lng)
			if dist <= radiusKm {
				edges = append(edges, Edge{A: locs[i].Name, B: locs[j].Name, DistanceKm: dist})
			}
		}
	}
	return edges
}

// NewGraph indexes edges over dir. Edges naming unknown locations are kept;
// a stored graph may be older than the directory.
func NewGraph(dir *Directory, edges []Edge) *Graph {
	g := &Graph{dir: dir, edges: edges, adj: make(map[string][]Neighbor)}
	for _, e := range edges {
		g.adj[e.A] = append(g.adj[e.A], Neighbor{Name: e.B, DistanceKm: e.DistanceKm})
		g.adj[e.B] = append(g.adj[e.B], Neighbor{Name: e.A, DistanceKm: e.DistanceKm})
	}
	for name := range g.adj {
		near := g.adj[name]
		sort.Slice(near, func(i, j int) bool {
			if near[i].DistanceKm != near[j].DistanceKm {
				return near[i].DistanceKm < near[j].DistanceKm
			}
			return near[i].Name < near[j].Name
		})
	}
	return g
}

// Lookup returns the directory spelling of name. An empty directory accepts
// every name as is.
func (g *Graph) Lookup(name string) (string, bool) {
	if g.dir == nil || g.dir.Len() == 0 {
		return name, true
	}
	loc, ok := g.dir.Find(name)
	if !ok {
		return "", false
	}
	return loc.Name, true
}

// Nearby lists the neighbours of name, closest first.
func (g *Graph) Nearby(name string) []Neighbor {
	if canonical, ok := g.Lookup(name); ok {
		name = canonical
	}
	near := g.adj[name]
	out := make([]Neighbor, len(near))
	copy(out, near)
	return out
}

// Neighborhood returns name followed by its neighbours.
func (g *Graph) Neighborhood(name string) []string {
	if canonical, ok := g.Lookup(name); ok {
		name = canonical
	}
	out := []string{name}
	for _, n := range g.adj[name] {
		out = append(out, n.Name)
	}
	return out
}

// AreConnected reports whether a and b are joined by an edge.
func (g *Graph) AreConnected(a, b string) bool {
	if canonical, ok := g.Lookup(b); ok {
		b = canonical
	}
	for _, n := range g.Nearby(a) {
		if n.Name == b {
			return true
		}
	}
	return false
}

func (g *Graph) Edges() []Edge {
	out := make([]Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

func (g *Graph) Directory() *Directory {
	return g.dir
}
