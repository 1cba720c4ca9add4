package devapi

import (
	"encoding/json"
	"net/http"

	"github.com/jrsteele09/acservice-dashboard/apiclient"
	"github.com/jrsteele09/acservice-dashboard/resources"
)

const contentTypeJSON = "application/json"

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeData[T any](w http.ResponseWriter, status int, data T, message string) {
	writeJSON(w, status, apiclient.Envelope[T]{Data: data, Message: message, Success: true})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{
		"success": false,
		"message": message,
	})
}

// paginate slices items according to opts; opts must already be normalized
func paginate[T any](items []T, opts resources.ListOptions) apiclient.Page[T] {
	total := len(items)
	start := (opts.Page - 1) * opts.Limit
	if start > total {
		start = total
	}
	end := start + opts.Limit
	if end > total {
		end = total
	}
	pages := (total + opts.Limit - 1) / opts.Limit
	return apiclient.Page[T]{
		Data: append([]T{}, items[start:end]...),
		Pagination: apiclient.Pagination{
			Page:       opts.Page,
			Limit:      opts.Limit,
			Total:      total,
			TotalPages: pages,
		},
	}
}
