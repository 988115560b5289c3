package rbac

import (
	"strings"
	"time"
)

// Capability names accepted in policies and grant payloads. Matching is
// case-insensitive; anything outside this set is denied, never an error.
const (
	CapView    = "view"
	CapAdd     = "add"
	CapEdit    = "edit"
	CapDelete  = "delete"
	CapExport  = "export"
	CapPrint   = "print"
	CapApprove = "approve"
	CapReject  = "reject"
)

// Capabilities lists every known capability name.
var Capabilities = []string{CapView, CapAdd, CapEdit, CapDelete, CapExport, CapPrint, CapApprove, CapReject}

// PermissionSet holds the eight independent capability flags attached to a
// (role, menu) grant. It is an immutable value: assignment replaces it whole.
type PermissionSet struct {
	View    bool `json:"view"`
	Add     bool `json:"add"`
	Edit    bool `json:"edit"`
	Delete  bool `json:"delete"`
	Export  bool `json:"export"`
	Print   bool `json:"print"`
	Approve bool `json:"approve"`
	Reject  bool `json:"reject"`
}

// Named presets used when seeding grants.
var (
	ViewOnly   = PermissionSet{View: true}
	ReadWrite  = PermissionSet{View: true, Add: true, Edit: true, Export: true, Print: true}
	FullAccess = PermissionSet{View: true, Add: true, Edit: true, Delete: true, Export: true, Print: true, Approve: true, Reject: true}
)

// Has reports whether the named capability is granted. Unrecognised names are
// denied (fail-closed).
func (s PermissionSet) Has(capability string) bool {
	switch strings.ToLower(strings.TrimSpace(capability)) {
	case CapView:
		return s.View
	case CapAdd:
		return s.Add
	case CapEdit:
		return s.Edit
	case CapDelete:
		return s.Delete
	case CapExport:
		return s.Export
	case CapPrint:
		return s.Print
	case CapApprove:
		return s.Approve
	case CapReject:
		return s.Reject
	}
	return false
}

// Union returns the logical OR of two sets. Used when a caller holds several
// active roles granting different flags on the same menu.
func (s PermissionSet) Union(o PermissionSet) PermissionSet {
	return PermissionSet{
		View:    s.View || o.View,
		Add:     s.Add || o.Add,
		Edit:    s.Edit || o.Edit,
		Delete:  s.Delete || o.Delete,
		Export:  s.Export || o.Export,
		Print:   s.Print || o.Print,
		Approve: s.Approve || o.Approve,
		Reject:  s.Reject || o.Reject,
	}
}

// IsEmpty reports whether no capability is granted.
func (s PermissionSet) IsEmpty() bool {
	return s == PermissionSet{}
}

// Grant ties a PermissionSet to a (role, menu) pair. At most one grant exists
// per pair; absence of a grant means all capabilities denied.
type Grant struct {
	RoleID      int64         `json:"roleId"`
	MenuID      int64         `json:"menuId"`
	Permissions PermissionSet `json:"permissions"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}
