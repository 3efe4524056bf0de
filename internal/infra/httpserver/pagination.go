package httpserver

import (
	"net/http"
	"strconv"
)

const (
	defaultLimit = 50
	maxLimit     = 500
)

type PaginationParams struct {
	Limit  int
	Offset int
}

type PaginationMeta struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total"`
}

type PaginatedResponse struct {
	Data       any            `json:"data"`
	Pagination PaginationMeta `json:"pagination"`
}

func DefaultPaginationParams() PaginationParams {
	return PaginationParams{Limit: defaultLimit, Offset: 0}
}

// ExtractPaginationParams reads ?limit and ?offset. Out of range values
// fall back to the defaults instead of failing the request.
func ExtractPaginationParams(r *http.Request) PaginationParams {
	params := DefaultPaginationParams()

	if raw := GetQueryParam(r, "limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil && limit > 0 && limit <= maxLimit {
			params.Limit = limit
		}
	}
	if raw := GetQueryParam(r, "offset"); raw != "" {
		if offset, err := strconv.Atoi(raw); err == nil && offset >= 0 {
			params.Offset = offset
		}
	}

	return params
}

func ReplyWithPaginatedData(w http.ResponseWriter, statusCode int, data any, total int, params PaginationParams) {
	ReplyJSONResponse(w, statusCode, PaginatedResponse{
		Data: data,
		Pagination: PaginationMeta{
			Limit:  params.Limit,
			Offset: params.Offset,
			Total:  total,
		},
	})
}
