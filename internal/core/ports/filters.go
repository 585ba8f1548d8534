package ports

// Filters carries the list query parameters shared by the client and project
// collections. Zero values mean "no filter"; the server applies its own
// defaults for page/limit.
type Filters struct {
	Search    string
	Status    string
	SortBy    string
	SortOrder string // "asc" or "desc"
	Page      int    // 1-based
	Limit     int
}

// Pagination is the paging descriptor returned alongside every list response.
type Pagination struct {
	CurrentPage  int `json:"currentPage"`
	TotalPages   int `json:"totalPages"`
	TotalItems   int `json:"totalItems"`
	ItemsPerPage int `json:"itemsPerPage"`
}
