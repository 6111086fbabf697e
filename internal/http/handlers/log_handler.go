// Log HTTP handlers.
//
// This file exposes read endpoints over recorded chat logs:
//   - GET /api/logs   (paginated, ETag support)
//   - GET /logs       (50 most recent as a bare array)
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/faq-chat-backend/internal/domain"
	"github.com/tbourn/faq-chat-backend/internal/utils"
)

const (
	defaultLogPageSize = 50
	maxLogPageSize     = 100
	recentLogLimit     = 50
)

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListLogsResponse wraps a page of chat logs and pagination information.
type ListLogsResponse struct {
	Logs       []domain.ChatLog `json:"logs"`
	Pagination Pagination       `json:"pagination"`
}

// ListLogs godoc
// @ID          listLogs
// @Summary     List chat logs (paginated)
// @Description Returns answered chat requests, newest first. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Logs
// @Produce     json
//
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"  example(W/\"logs:10:1700000000\")
// @Param       page           query   int     false "Page number"                  minimum(1) default(1)
// @Param       page_size      query   int     false "Items per page"               minimum(1) maximum(100) default(50)
//
// @Success     200  {object} handlers.ListLogsResponse
// @Header      200  {string} ETag  "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /api/logs [get]
func (h *Handlers) ListLogs(c *gin.Context) {
	ctx := c.Request.Context()
	page, pageSize := utils.PageParams(c.Query("page"), c.Query("page_size"), defaultLogPageSize, maxLogPageSize)

	// ETag pre-check (best effort).
	if etag, err := h.logSvc.ETag(ctx); err == nil {
		c.Header("ETag", etag)
		if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
			c.Status(http.StatusNotModified)
			return
		}
	}

	items, total, err := h.logSvc.ListPage(ctx, page, pageSize)
	if err != nil {
		failInternal(c, ErrCodeListFailed, err)
		return
	}

	totalPages := utils.TotalPages(total, pageSize)
	ok(c, http.StatusOK, ListLogsResponse{
		Logs: items,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}

// RecentLogs godoc
// @ID          recentLogs
// @Summary     Most recent chat logs
// @Description Returns the 50 most recent chat logs as a bare JSON array.
// @Tags        Logs
// @Produce     json
// @Success     200  {array}  domain.ChatLog
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /logs [get]
func (h *Handlers) RecentLogs(c *gin.Context) {
	items, err := h.logSvc.Recent(c.Request.Context(), recentLogLimit)
	if err != nil {
		failInternal(c, ErrCodeListFailed, err)
		return
	}
	if items == nil {
		items = []domain.ChatLog{}
	}
	ok(c, http.StatusOK, items)
}
