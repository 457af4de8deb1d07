// Package api 提供历史记录服务的 HTTP 接口。
package api

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ceyewan/shardmanager/clog"
	"github.com/ceyewan/shardmanager/internal/history"
	"github.com/ceyewan/shardmanager/xerrors"
)

// 面向用户的提示信息
const (
	MsgSaved         = "保存成功"
	MsgDeleted       = "删除成功"
	MsgNotFound      = "记录不存在"
	MsgMissingUserID = "缺少必要参数 user_id"
	MsgClearedFormat = "已清空 %d 条历史记录"
)

// Handler 无状态的 HTTP 处理器，所有状态都在 Store 中
type Handler struct {
	store     history.Store
	logger    clog.Logger
	staticDir string
}

// NewHandler 创建处理器，staticDir 为 index.html 所在目录
func NewHandler(store history.Store, logger clog.Logger, staticDir string) *Handler {
	if logger == nil {
		logger = clog.Discard()
	}
	if staticDir == "" {
		staticDir = "."
	}
	return &Handler{
		store:     store,
		logger:    logger.WithNamespace("api"),
		staticDir: staticDir,
	}
}

// ListHistory GET /api/history?limit=N
func (h *Handler) ListHistory(c *gin.Context) {
	limit := parseLimit(c)

	records, err := h.store.List(c.Request.Context(), limit)
	if err != nil {
		h.internalError(c, "list history failed", err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// CreateHistory POST /api/history
func (h *Handler) CreateHistory(c *gin.Context) {
	var in history.CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := h.store.Create(c.Request.Context(), &in)
	switch {
	case err == nil:
		c.JSON(http.StatusCreated, gin.H{"id": id, "message": MsgSaved})
	case xerrors.Is(err, xerrors.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": MsgMissingUserID})
	default:
		h.internalError(c, "create history failed", err)
	}
}

// DeleteHistory DELETE /api/history/:id
func (h *Handler) DeleteHistory(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": MsgNotFound})
		return
	}

	err = h.store.Delete(c.Request.Context(), id)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"message": MsgDeleted})
	case xerrors.Is(err, xerrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": MsgNotFound})
	default:
		h.internalError(c, "delete history failed", err, clog.Int64("id", id))
	}
}

// ClearHistory DELETE /api/history/clear
func (h *Handler) ClearHistory(c *gin.Context) {
	count, err := h.store.Clear(c.Request.Context())
	if err != nil {
		h.internalError(c, "clear history failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf(MsgClearedFormat, count)})
}

// Health GET /api/health
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339Nano),
	})
}

// Index GET /
func (h *Handler) Index(c *gin.Context) {
	c.File(filepath.Join(h.staticDir, "index.html"))
}

func (h *Handler) internalError(c *gin.Context, msg string, err error, fields ...clog.Field) {
	fields = append(fields, clog.Error(err))
	h.logger.ErrorContext(c.Request.Context(), msg, fields...)
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

// parseLimit 缺省或无法解析时返回默认值，负数原样透传
func parseLimit(c *gin.Context) int {
	raw, ok := c.GetQuery("limit")
	if !ok {
		return history.DefaultListLimit
	}
	limit, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return history.DefaultListLimit
	}
	return limit
}
