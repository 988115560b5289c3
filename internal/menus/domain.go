package menus

import "time"

// NodeType classifies a node's place in the navigation tree.
type NodeType string

// Node types, from coarsest to finest.
const (
	TypeModule  NodeType = "module"
	TypeMenu    NodeType = "menu"
	TypeSubmenu NodeType = "submenu"
	TypeAction  NodeType = "action"
	TypeReport  NodeType = "report"
)

// Valid reports whether t is one of the known node types.
func (t NodeType) Valid() bool {
	switch t {
	case TypeModule, TypeMenu, TypeSubmenu, TypeAction, TypeReport:
		return true
	}
	return false
}

// MenuNode is a named, routable unit of the application's feature tree and the
// unit permissions are attached to. Name and Type are immutable after creation.
type MenuNode struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	DisplayName string   `json:"displayName"`
	Icon        string   `json:"icon,omitempty"`
	Route       string   `json:"route,omitempty"`
	Component   string   `json:"component,omitempty"`
	Type        NodeType `json:"type"`
	SortOrder   int      `json:"sortOrder"`
	IsActive    bool     `json:"isActive"`
	IsVisible   bool     `json:"isVisible"`
	ParentID    *int64   `json:"parentId,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Crumb is one entry of a breadcrumb trail derived from a route path.
type Crumb struct {
	MenuID      int64  `json:"menuId"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Route       string `json:"route"`
}
