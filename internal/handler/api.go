package handler

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/intakelog/internal/service"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	sessionIDKey      = "intake_session_id"
	catalogContextKey = "__catalog"

	flashSuccess = "success"
	flashError   = "error"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	catalogs *service.CatalogService
	sessions *service.SessionService
	help     template.HTML
	log      *zap.Logger
	now      func() time.Time
}

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB, catalogs *service.CatalogService, log *zap.Logger) *API {
	if log == nil {
		log = zap.NewNop()
	}

	help, err := renderMarkdown(helpMarkdown)
	if err != nil {
		log.Warn("render help text failed", zap.Error(err))
	}

	return &API{
		catalogs: catalogs,
		sessions: service.NewSessionService(gdb),
		help:     help,
		log:      log,
		now:      time.Now,
	}
}

// RequireCatalog blocks ledger routes until a catalog has been loaded successfully.
func (a *API) RequireCatalog() gin.HandlerFunc {
	return func(c *gin.Context) {
		catalog, err := a.catalogs.Current()
		if err != nil {
			a.handleIntakeError(c, err)
			c.Abort()
			return
		}
		c.Set(catalogContextKey, catalog)
		c.Next()
	}
}

func catalogFrom(c *gin.Context) *service.Catalog {
	if value, exists := c.Get(catalogContextKey); exists {
		if catalog, ok := value.(*service.Catalog); ok {
			return catalog
		}
	}
	return nil
}

// currentSession 返回 cookie 对应的会话；cookie 缺失或会话已不存在时创建新会话
func (a *API) currentSession(c *gin.Context) (*service.SessionState, error) {
	store := sessions.Default(c)
	if id, ok := store.Get(sessionIDKey).(string); ok && id != "" {
		state, err := a.sessions.Load(id)
		if err == nil {
			return state, nil
		}
		if !errors.Is(err, service.ErrSessionNotFound) {
			return nil, err
		}
	}

	state, err := a.sessions.Create()
	if err != nil {
		return nil, err
	}

	store.Set(sessionIDKey, state.ID)
	if err := store.Save(); err != nil {
		return nil, fmt.Errorf("save session cookie: %w", err)
	}
	a.log.Debug("session created", zap.String("session", state.ID))
	return state, nil
}

// updateSession 在一个事务里修改当前会话
func (a *API) updateSession(c *gin.Context, fn func(*service.SessionState) error) (*service.SessionState, error) {
	state, err := a.currentSession(c)
	if err != nil {
		return nil, err
	}
	return a.sessions.Update(state.ID, fn)
}

func isJSONRequest(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Content-Type"), "application/json")
}

func wantsJSON(c *gin.Context) bool {
	return isJSONRequest(c) || strings.Contains(c.GetHeader("Accept"), "application/json")
}

// succeed 对 JSON 请求返回 payload，对表单请求写入提示后跳转回首页
func (a *API) succeed(c *gin.Context, payload gin.H, message string) {
	if wantsJSON(c) {
		if message != "" {
			payload["message"] = message
		}
		c.JSON(http.StatusOK, payload)
		return
	}
	a.redirectHome(c, flashSuccess, message)
}

func (a *API) redirectHome(c *gin.Context, kind, message string) {
	if message != "" {
		store := sessions.Default(c)
		store.AddFlash(message, kind)
		if err := store.Save(); err != nil {
			a.log.Warn("save flash failed", zap.Error(err))
		}
	}
	c.Redirect(http.StatusFound, "/")
}

// takeFlashes 读取并清空会话中的提示信息
func (a *API) takeFlashes(c *gin.Context) (successes, failures []string) {
	store := sessions.Default(c)
	for _, value := range store.Flashes(flashSuccess) {
		if message, ok := value.(string); ok {
			successes = append(successes, message)
		}
	}
	for _, value := range store.Flashes(flashError) {
		if message, ok := value.(string); ok {
			failures = append(failures, message)
		}
	}
	if len(successes) > 0 || len(failures) > 0 {
		if err := store.Save(); err != nil {
			a.log.Warn("clear flashes failed", zap.Error(err))
		}
	}
	return successes, failures
}

func (a *API) handleIntakeError(c *gin.Context, err error) {
	status, message := intakeErrorStatus(err)
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		a.log.Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	} else {
		a.log.Debug("request rejected", zap.String("path", c.Request.URL.Path), zap.Int("status", status), zap.Error(err))
	}

	if wantsJSON(c) || c.Request.Method != http.MethodPost {
		respondError(c, status, message)
		return
	}
	a.redirectHome(c, flashError, message)
}

func intakeErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrCatalogUnavailable):
		return http.StatusServiceUnavailable, err.Error()
	case errors.Is(err, service.ErrCatalogPathDenied):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, service.ErrCatalogSchema),
		errors.Is(err, service.ErrCatalogEmpty),
		errors.Is(err, service.ErrCatalogUnreadable):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, service.ErrInvalidEntry),
		errors.Is(err, service.ErrUnknownFood),
		errors.Is(err, service.ErrMealsFinished):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrDayLogEmpty):
		return http.StatusNotFound, err.Error()
	default:
		return http.StatusInternalServerError, "internal error"
	}
}
