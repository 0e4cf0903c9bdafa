package http

import (
	"net/http"
	"strconv"

	"roadbook/pkg/config"
	apperrors "roadbook/pkg/errors"
)

// ExtractPagination reads page/per_page query parameters, applying the
// configured defaults and caps.
func ExtractPagination(r *http.Request) (page int, perPage int, err error) {
	query := r.URL.Query()

	page = 1
	if s := query.Get("page"); s != "" {
		v, convErr := strconv.Atoi(s)
		if convErr != nil {
			return 0, 0, apperrors.InvalidInput("invalid page parameter: " + s)
		}
		page = v
	}

	perPage = config.DefaultPerPage
	if s := query.Get("per_page"); s != "" {
		v, convErr := strconv.Atoi(s)
		if convErr != nil {
			return 0, 0, apperrors.InvalidInput("invalid per_page parameter: " + s)
		}
		perPage = v
	}

	page, perPage = config.NormalizePagination(page, perPage)
	return page, perPage, nil
}
