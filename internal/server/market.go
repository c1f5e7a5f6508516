package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sheikh-saqib/farmer-portal/internal/export"
	"github.com/sheikh-saqib/farmer-portal/internal/market"
	"github.com/sheikh-saqib/farmer-portal/internal/session"
)

type selectRequest struct {
	Name string `json:"name" form:"name" binding:"required"`
}

func walletData(sess *session.Session) Response {
	views := &sess.Market.Views
	return Response{
		"balance":           sess.Ledger.Balance(),
		"balance_html":      views.Balance.HTML(),
		"transactions_html": views.Transactions.HTML(),
	}
}

func (s *Server) marketCatalog(c *gin.Context) {
	sess := current(c)
	category := c.DefaultQuery("category", market.CategoryAll)

	items, err := sess.Market.ShowCatalog(category)
	if err == nil {
		err = sess.Market.Refresh()
	}
	if err != nil {
		Fail(c, err, nil)
		return
	}
	data := walletData(sess)
	data["category"] = category
	data["categories"] = s.catalog.Categories()
	data["items"] = items
	data["catalog_html"] = sess.Market.Views.Catalog.HTML()
	Success(c, withToast(sess, data))
}

func (s *Server) marketSelect(c *gin.Context) {
	sess := current(c)
	var req selectRequest
	if err := c.ShouldBind(&req); err != nil {
		Error(c, http.StatusBadRequest, CodeInvalidParam, "name is required", nil)
		return
	}

	preview, err := sess.Market.Select(req.Name)
	if err != nil {
		Fail(c, err, withToast(sess, nil))
		return
	}
	Success(c, withToast(sess, Response{
		"preview":      preview,
		"preview_html": sess.Market.Views.Preview.HTML(),
	}))
}

func (s *Server) marketConfirm(c *gin.Context) {
	sess := current(c)

	tx, err := sess.Market.Confirm(c.Request.Context())
	data := walletData(sess)
	data["preview_html"] = sess.Market.Views.Preview.HTML()
	if err != nil {
		Fail(c, err, withToast(sess, data))
		return
	}
	data["transaction"] = tx
	Success(c, withToast(sess, data))
}

func (s *Server) marketCancel(c *gin.Context) {
	sess := current(c)
	sess.Market.Cancel()
	Success(c, withToast(sess, Response{"preview_html": sess.Market.Views.Preview.HTML()}))
}

func (s *Server) transactions(c *gin.Context) {
	sess := current(c)
	if err := sess.Market.Refresh(); err != nil {
		Fail(c, err, nil)
		return
	}
	data := walletData(sess)
	data["transactions"] = sess.Ledger.Transactions()
	Success(c, withToast(sess, data))
}

func (s *Server) exportTransactions(c *gin.Context) {
	sess := current(c)

	c.Header("Content-Type", export.ContentType)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"transactions_%s.xlsx\"",
		time.Now().Format("20060102")))

	if err := export.WriteTransactions(c.Writer, sess.Ledger.Transactions()); err != nil {
		s.logger.Error().Err(err).Str("session_id", sess.ID).Msg("export transactions")
		Error(c, http.StatusInternalServerError, CodeServerErr, "export failed", nil)
	}
}
