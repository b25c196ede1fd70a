package tablestate

// Config describes one screen's table: which address keys it owns, their
// kinds, and their defaults. Defaulted fields never appear in the address.
type Config struct {
	Pagination   PaginationConfig
	GlobalFilter GlobalFilterConfig
	Filters      []FilterConfig
	Sorting      SortingConfig

	// PreserveSearchAfterQuery keeps staged filter edits around after an
	// apply instead of clearing them back to empty.
	PreserveSearchAfterQuery bool
}

type PaginationConfig struct {
	DefaultPage     int // 1-based; 0 means 1
	DefaultPageSize int // 0 means 10
}

type GlobalFilterConfig struct {
	Enabled bool
	Key     string
}

type FilterConfig struct {
	ColumnID  string
	SearchKey string // address key
	Kind      FilterKind
}

type SortingConfig struct {
	Enabled      bool
	SortByKey    string // 0 means "sortBy"
	SortOrderKey string // 0 means "sortOrder"

	// DefaultSortBy, when set, applies only while the sort-column key is
	// entirely absent from the address. A present-but-empty key means
	// "no sort".
	DefaultSortBy    string
	DefaultSortOrder string // "asc" or "desc"; 0 means "asc"
}

const (
	pageKey          = "page"
	pageSizeKey      = "pageSize"
	pageSizeAliasKey = "page_size"
)

func (c Config) normalized() Config {
	if c.Pagination.DefaultPage <= 0 {
		c.Pagination.DefaultPage = 1
	}
	if c.Pagination.DefaultPageSize <= 0 {
		c.Pagination.DefaultPageSize = 10
	}
	if c.Sorting.SortByKey == "" {
		c.Sorting.SortByKey = "sortBy"
	}
	if c.Sorting.SortOrderKey == "" {
		c.Sorting.SortOrderKey = "sortOrder"
	}
	if c.Sorting.DefaultSortOrder == "" {
		c.Sorting.DefaultSortOrder = "asc"
	}
	return c
}

func (c Config) filterFor(columnID string) (FilterConfig, bool) {
	for _, f := range c.Filters {
		if f.ColumnID == columnID {
			return f, true
		}
	}
	return FilterConfig{}, false
}
