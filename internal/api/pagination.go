package api

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/foodgram/backend/internal/types"
)

const (
	defaultPageSize = 6
	maxPageSize     = 100
)

// PagedResponse is the envelope wrapped around every paginated list.
type PagedResponse struct {
	Count    int64       `json:"count"`
	Next     *string     `json:"next"`
	Previous *string     `json:"previous"`
	Results  interface{} `json:"results"`
}

// pageParams reads page/limit from the query string. Out-of-range or
// malformed values fall back to defaults rather than erroring.
func pageParams(c *gin.Context) types.PageParams {
	params := types.PageParams{Page: 1, Limit: defaultPageSize}
	if page, err := strconv.Atoi(c.Query("page")); err == nil && page > 0 {
		params.Page = page
	}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil && limit > 0 {
		if limit > maxPageSize {
			limit = maxPageSize
		}
		params.Limit = limit
	}
	return params
}

// newPagedResponse builds the list envelope, deriving next/previous
// links from the request URL so that filter parameters survive.
func newPagedResponse(c *gin.Context, params types.PageParams, count int64, results interface{}) PagedResponse {
	resp := PagedResponse{Count: count, Results: results}
	if int64(params.Page*params.Limit) < count {
		resp.Next = pageURL(c, params.Page+1)
	}
	if params.Page > 1 {
		resp.Previous = pageURL(c, params.Page-1)
	}
	return resp
}

func pageURL(c *gin.Context, page int) *string {
	u := *c.Request.URL
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()

	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	link := fmt.Sprintf("%s://%s%s", scheme, c.Request.Host, u.RequestURI())
	return &link
}
