package audit

import "time"

// Entry is one append-only audit row. Admin mutations record who did what
// to which entity; entries are never updated or deleted.
type Entry struct {
	ID       int64     `json:"id"`
	Actor    string    `json:"actor"`
	ActorID  int64     `json:"actorId"`
	Action   string    `json:"action"`
	Entity   string    `json:"entity"`
	EntityID string    `json:"entityId"`
	Detail   string    `json:"detail,omitempty"`
	At       time.Time `json:"at"`
}

// TimelineFilters narrows a timeline query.
type TimelineFilters struct {
	From     time.Time
	To       time.Time
	Actor    string
	Entity   string
	Action   string
	Page     int
	PageSize int
}

// PagingInfo carries cursorless paging metadata. HasNext is derived by
// fetching one row beyond the page.
type PagingInfo struct {
	Page     int  `json:"page"`
	PageSize int  `json:"pageSize"`
	HasNext  bool `json:"hasNext"`
}

// Result bundles a timeline page with its paging info.
type Result struct {
	Rows   []Entry    `json:"rows"`
	Paging PagingInfo `json:"paging"`
}
