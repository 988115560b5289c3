package menus

import (
	"context"
	"strings"
)

// Breadcrumbs derives a breadcrumb trail for a route path. The catalog is
// treated as an arena of nodes indexed by route: each cumulative path prefix
// is matched against node routes in order. A segment with no matching node is
// skipped; the walk continues with the next prefix.
func (s *Service) Breadcrumbs(ctx context.Context, routePath string) ([]Crumb, error) {
	nodes, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	byRoute := make(map[string]*MenuNode, len(nodes))
	for i := range nodes {
		route := normalizeRoute(nodes[i].Route)
		if route == "" {
			continue
		}
		if _, exists := byRoute[route]; !exists {
			byRoute[route] = &nodes[i]
		}
	}

	segments := strings.Split(strings.Trim(routePath, "/"), "/")
	crumbs := make([]Crumb, 0, len(segments))
	prefix := ""
	for _, segment := range segments {
		if segment == "" {
			continue
		}
		prefix += "/" + segment
		node, ok := byRoute[prefix]
		if !ok {
			continue
		}
		crumbs = append(crumbs, Crumb{
			MenuID:      node.ID,
			Name:        node.Name,
			DisplayName: node.DisplayName,
			Route:       node.Route,
		})
	}
	return crumbs, nil
}

func normalizeRoute(route string) string {
	route = strings.TrimSpace(route)
	if route == "" {
		return ""
	}
	if !strings.HasPrefix(route, "/") {
		route = "/" + route
	}
	return strings.TrimRight(route, "/")
}
