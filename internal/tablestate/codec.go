package tablestate

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Decode reads a screen's typed state out of an address. Malformed values
// fail soft to the configured defaults; the screen must always render.
func Decode(addr Address, cfg Config) State {
	cfg = cfg.normalized()

	var st State

	page := cfg.Pagination.DefaultPage
	if raw, ok := addr.Get(pageKey); ok {
		page = parseIntDefault(raw, cfg.Pagination.DefaultPage)
	}
	if page < 1 {
		page = 1
	}
	size := cfg.Pagination.DefaultPageSize
	if raw, ok := addr.Get(pageSizeKey); ok {
		size = parseIntDefault(raw, cfg.Pagination.DefaultPageSize)
	} else if raw, ok := addr.Get(pageSizeAliasKey); ok {
		size = parseIntDefault(raw, cfg.Pagination.DefaultPageSize)
	}
	if size < 1 {
		size = cfg.Pagination.DefaultPageSize
	}
	st.Pagination = PaginationState{PageIndex: page - 1, PageSize: size}

	if cfg.GlobalFilter.Enabled {
		if raw, ok := addr.Get(cfg.GlobalFilter.Key); ok {
			st.GlobalFilter = raw
		}
	}

	for _, fc := range cfg.Filters {
		vs, ok := addr[fc.SearchKey]
		if !ok {
			continue
		}
		switch fc.Kind {
		case FilterArray:
			vals := NormalizeList(vs)
			if len(vals) > 0 {
				st.Filters = append(st.Filters, ColumnFilter{ColumnID: fc.ColumnID, Value: List(vals...)})
			}
		default:
			if len(vs) > 0 && vs[0] != "" {
				st.Filters = append(st.Filters, ColumnFilter{ColumnID: fc.ColumnID, Value: Scalar(vs[0])})
			}
		}
	}

	if cfg.Sorting.Enabled {
		column, present := addr.Get(cfg.Sorting.SortByKey)
		if !present {
			column = cfg.Sorting.DefaultSortBy
		}
		if column != "" {
			order, ok := addr.Get(cfg.Sorting.SortOrderKey)
			if !ok || order == "" {
				order = cfg.Sorting.DefaultSortOrder
			}
			st.Sorting = []SortSpec{{ColumnID: column, Descending: strings.EqualFold(order, "desc")}}
		}
	}

	return st
}

// Encode produces the address delta for a state. The delta covers every key
// the config owns: non-default fields carry values, default and empty
// fields carry nil so they are removed rather than written (the address
// never contains page=1 or an empty filter).
func Encode(st State, cfg Config) Delta {
	cfg = cfg.normalized()

	delta := Delta{}

	if page := st.Pagination.PageIndex + 1; page != cfg.Pagination.DefaultPage && page >= 1 {
		delta[pageKey] = []string{strconv.Itoa(page)}
	} else {
		delta[pageKey] = nil
	}
	if size := st.Pagination.PageSize; size > 0 && size != cfg.Pagination.DefaultPageSize {
		delta[pageSizeKey] = []string{strconv.Itoa(size)}
	} else {
		delta[pageSizeKey] = nil
	}
	// The snake_case alias is accepted on decode but never written back.
	delta[pageSizeAliasKey] = nil

	if cfg.GlobalFilter.Enabled {
		if st.GlobalFilter != "" {
			delta[cfg.GlobalFilter.Key] = []string{st.GlobalFilter}
		} else {
			delta[cfg.GlobalFilter.Key] = nil
		}
	}

	for _, fc := range cfg.Filters {
		v, ok := st.Filter(fc.ColumnID)
		if !ok || v.IsZero() {
			delta[fc.SearchKey] = nil
			continue
		}
		switch fc.Kind {
		case FilterArray:
			delta[fc.SearchKey] = v.Values()
		default:
			delta[fc.SearchKey] = []string{v.Text()}
		}
	}

	if cfg.Sorting.Enabled {
		delta[cfg.Sorting.SortByKey] = nil
		delta[cfg.Sorting.SortOrderKey] = nil
		switch {
		case len(st.Sorting) > 0:
			first := st.Sorting[0]
			order := "asc"
			if first.Descending {
				order = "desc"
			}
			isDefault := first.ColumnID == cfg.Sorting.DefaultSortBy &&
				strings.EqualFold(order, cfg.Sorting.DefaultSortOrder)
			if first.ColumnID != "" && !isDefault {
				delta[cfg.Sorting.SortByKey] = []string{first.ColumnID}
				if !strings.EqualFold(order, cfg.Sorting.DefaultSortOrder) {
					delta[cfg.Sorting.SortOrderKey] = []string{order}
				}
			}
		case cfg.Sorting.DefaultSortBy != "":
			// No sort on a screen that has a default: a removed key would
			// decode back to the default, so explicit none is the
			// present-but-empty key.
			delta[cfg.Sorting.SortByKey] = []string{""}
		}
	}

	return delta
}

// NormalizeList flattens the physical encodings an array parameter may
// arrive in. A multi-value input is used as provided. A single value is
// tried as a JSON array (elements stringified; a malformed JSON-looking
// string stays whole), then split on commas with empty segments dropped;
// a bare value becomes a one-element list.
func NormalizeList(values []string) []string {
	switch len(values) {
	case 0:
		return nil
	case 1:
		return normalizeListString(values[0])
	default:
		return append([]string(nil), values...)
	}
}

func normalizeListString(s string) []string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
		var arr []any
		if err := json.Unmarshal([]byte(trimmed), &arr); err != nil {
			return []string{s}
		}
		out := make([]string, 0, len(arr))
		for _, el := range arr {
			out = append(out, stringifyElement(el))
		}
		return out
	}
	parts := strings.Split(trimmed, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func stringifyElement(el any) string {
	switch t := el.(type) {
	case string:
		return t
	case float64:
		if float64(int64(t)) == t {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", t)
	}
}

func parseIntDefault(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return n
}
