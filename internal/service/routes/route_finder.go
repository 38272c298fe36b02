package routes

import (
	"context"
	"slices"

	"github.com/sirupsen/logrus"
)

// Graph provides direct-edge lookups over the airport network.
type Graph interface {
	ConnectedAirports(ctx context.Context, code string) ([]string, error)
}

// Finder enumerates minimal-hop routes between two airports with a
// breadth-first search. Paths are simple: an airport never repeats within one
// path. Every returned path has the same, minimal length.
type Finder struct {
	graph Graph
	log   *logrus.Logger
}

func NewFinder(graph Graph, log *logrus.Logger) *Finder {
	return &Finder{graph: graph, log: log}
}

// FindRoutes returns every minimal-length path from origin to destination,
// as ordered airport-code slices. No route is not an error: the result is
// simply empty. A failed adjacency lookup is treated as an airport with no
// neighbors.
func (f *Finder) FindRoutes(ctx context.Context, origin, destination string) ([][]string, error) {
	if origin == destination {
		return [][]string{{origin}}, nil
	}

	queue := [][]string{{origin}}
	found := make([][]string, 0)
	shortest := 0

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		path := queue[0]
		queue = queue[1:]

		// Extending this path cannot produce another minimal route.
		if shortest != 0 && len(path)+1 > shortest {
			continue
		}

		last := path[len(path)-1]
		neighbors, err := f.graph.ConnectedAirports(ctx, last)
		if err != nil {
			f.log.WithError(err).WithField("airport", last).Warn("adjacency lookup failed, treating as no neighbors")
			continue
		}

		for _, next := range neighbors {
			if slices.Contains(path, next) {
				continue
			}

			candidate := make([]string, 0, len(path)+1)
			candidate = append(candidate, path...)
			candidate = append(candidate, next)

			if next != destination {
				queue = append(queue, candidate)
				continue
			}

			if shortest == 0 {
				shortest = len(candidate)
			}
			if len(candidate) > shortest {
				// A longer completed path means every minimal one is found.
				return found, nil
			}
			found = append(found, candidate)
		}
	}

	return found, nil
}
