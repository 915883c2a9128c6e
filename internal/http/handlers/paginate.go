package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// PageSize is fixed for every list endpoint.
const PageSize = 10

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}

	n, err := strconv.Atoi(s)

	if err != nil {
		return def
	}

	return n
}

// pageFromQuery reads the 1-based ?page= parameter.
func pageFromQuery(ctx *gin.Context) int {
	page := parseIntDefault(ctx.Query("page"), 1)

	if page < 1 {
		page = 1
	}

	return page
}

func pageWindow(page int) (limit, offset int) {
	return PageSize, (page - 1) * PageSize
}

// pageURL rebuilds the request URL pointing at the given page. Page 1 drops
// the parameter so the first-page URL is canonical.
func pageURL(ctx *gin.Context, page int) *string {
	u := *ctx.Request.URL

	q := u.Query()

	if page <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}

	u.RawQuery = q.Encode()

	scheme := "http"
	if ctx.Request.TLS != nil {
		scheme = "https"
	}

	full := scheme + "://" + ctx.Request.Host + u.String()
	return &full
}

// listEnvelope is the shared list response shape: total count, absolute
// next/previous page links (null at the edges), and the items keyed by their
// resource name.
func listEnvelope(ctx *gin.Context, kind string, total, page int, items any) gin.H {
	var next, previous *string

	if page*PageSize < total {
		next = pageURL(ctx, page+1)
	}

	if page > 1 {
		previous = pageURL(ctx, page-1)
	}

	return gin.H{
		"count":    total,
		"next":     next,
		"previous": previous,
		kind:       items,
	}
}
