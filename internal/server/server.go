// Package server exposes the portal pages over HTTP. Each browser session
// is identified by a cookie and owns its own page state.
package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/sheikh-saqib/farmer-portal/internal/apiclient"
	"github.com/sheikh-saqib/farmer-portal/internal/market"
	"github.com/sheikh-saqib/farmer-portal/internal/session"
)

// SessionCookie carries the portal session ID.
const SessionCookie = "farmer_portal_session"

const sessionKey = "session"

type Server struct {
	sessions *session.Manager
	catalog  *market.Catalog
	logger   zerolog.Logger
}

func New(sessions *session.Manager, catalog *market.Catalog, logger zerolog.Logger) *Server {
	return &Server{
		sessions: sessions,
		catalog:  catalog,
		logger:   logger.With().Str("component", "http").Logger(),
	}
}

// Router builds the gin engine. mode is a gin mode; empty keeps the current one.
func (s *Server) Router(mode string) *gin.Engine {
	if mode != "" {
		gin.SetMode(mode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.Use(s.withSession())

	api.GET("/dashboard", s.dashboard)
	api.GET("/toast", s.toast)

	api.GET("/market", s.marketCatalog)
	api.POST("/market/select", s.marketSelect)
	api.POST("/market/confirm", s.marketConfirm)
	api.POST("/market/cancel", s.marketCancel)

	api.GET("/transactions", s.transactions)
	api.GET("/transactions/export", s.exportTransactions)

	api.GET("/funding", s.funding)
	api.POST("/funding/open", s.fundingOpen)
	api.POST("/funding/purposes", s.fundingPurposes)
	api.POST("/funding/requests", s.fundingSubmit)

	api.GET("/updates", s.updates)
	api.POST("/updates", s.updateSubmit)

	api.POST("/crop/recommend", s.cropRecommend)
	api.POST("/disease/predict", s.diseasePredict)

	return r
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		ev := s.logger.Info()
		if c.Writer.Status() >= http.StatusInternalServerError {
			ev = s.logger.Error()
		}
		if sess, ok := c.Get(sessionKey); ok {
			ev = ev.Str("session_id", sess.(*session.Session).ID)
		}
		ev.Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}

// withSession resolves the session cookie, issues a new one when needed and
// forwards the remaining browser cookies to the backend. The session is
// persisted after every request.
func (s *Server) withSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := c.Cookie(SessionCookie)
		sess, err := s.sessions.Get(c.Request.Context(), id)
		if err != nil {
			s.logger.Error().Err(err).Msg("resolve session")
			Error(c, http.StatusInternalServerError, CodeServerErr, "session unavailable", nil)
			c.Abort()
			return
		}
		if sess.ID != id {
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(SessionCookie, sess.ID, 0, "/", "", false, true)
		}
		c.Set(sessionKey, sess)

		var forward []*http.Cookie
		for _, ck := range c.Request.Cookies() {
			if ck.Name != SessionCookie {
				forward = append(forward, ck)
			}
		}
		c.Request = c.Request.WithContext(apiclient.WithCookies(c.Request.Context(), forward))

		c.Next()

		// loads can change state too, e.g. a funding approval credits the wallet
		if err := s.sessions.Save(c.Request.Context(), sess); err != nil {
			s.logger.Warn().Err(err).Str("session_id", sess.ID).Msg("save session")
		}
	}
}

func current(c *gin.Context) *session.Session {
	return c.MustGet(sessionKey).(*session.Session)
}

// withToast adds the visible toast, if any, to data.
func withToast(sess *session.Session, data Response) Response {
	if data == nil {
		data = Response{}
	}
	if t, ok := sess.Toast.Current(); ok {
		data["toast"] = t
	} else {
		data["toast"] = nil
	}
	return data
}

func (s *Server) toast(c *gin.Context) {
	Success(c, withToast(current(c), nil))
}
