package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sheikh-saqib/farmer-portal/internal/session"
	"github.com/sheikh-saqib/farmer-portal/internal/validation"
)

type purposeRequest struct {
	Tag     string  `json:"tag" form:"tag" binding:"required"`
	Checked bool    `json:"checked" form:"checked"`
	Custom  *string `json:"custom_purpose" form:"custom_purpose"`
}

type fundingRequest struct {
	Amount        string   `json:"amount" form:"amount"`
	Description   string   `json:"description" form:"description"`
	Purposes      []string `json:"purposes" form:"purposes"`
	CustomPurpose string   `json:"custom_purpose" form:"custom_purpose"`
}

func fundingData(sess *session.Session) Response {
	selected, other := sess.FundingPage.Purposes()
	data := Response{
		"requests":      sess.Funding.Requests(),
		"has_pending":   sess.Funding.HasPending(),
		"modal_open":    sess.FundingPage.IsOpen(),
		"purposes":      selected,
		"show_custom":   other,
		"summary_html":  sess.FundingPage.Views.Summary.HTML(),
		"requests_html": sess.FundingPage.Views.List.HTML(),
	}
	if summary, ok := sess.Funding.Summary(); ok {
		data["summary"] = summary
	}
	return data
}

// funding always answers with what could be loaded; a failed panel keeps
// its previous or empty content.
func (s *Server) funding(c *gin.Context) {
	sess := current(c)
	err := sess.FundingPage.Load(c.Request.Context())
	data := fundingData(sess)
	if err != nil {
		data["load_error"] = err.Error()
	}
	Success(c, withToast(sess, data))
}

func (s *Server) fundingOpen(c *gin.Context) {
	sess := current(c)
	if err := sess.FundingPage.Open(); err != nil {
		Fail(c, err, withToast(sess, fundingData(sess)))
		return
	}
	Success(c, withToast(sess, fundingData(sess)))
}

func (s *Server) fundingPurposes(c *gin.Context) {
	sess := current(c)
	var req purposeRequest
	if err := c.ShouldBind(&req); err != nil {
		Error(c, http.StatusBadRequest, CodeInvalidParam, "tag is required", nil)
		return
	}

	_, err := sess.FundingPage.TogglePurpose(req.Tag, req.Checked)
	if req.Custom != nil {
		sess.FundingPage.SetCustomPurpose(*req.Custom)
	}
	if err != nil {
		Fail(c, err, withToast(sess, fundingData(sess)))
		return
	}
	Success(c, withToast(sess, fundingData(sess)))
}

func (s *Server) fundingSubmit(c *gin.Context) {
	sess := current(c)
	var req fundingRequest
	if err := c.ShouldBind(&req); err != nil {
		Error(c, http.StatusBadRequest, CodeInvalidParam, "malformed funding request", nil)
		return
	}

	created, err := sess.FundingPage.Submit(c.Request.Context(), validation.FundingForm{
		Amount:        req.Amount,
		Description:   req.Description,
		Purposes:      req.Purposes,
		CustomPurpose: req.CustomPurpose,
	})
	data := fundingData(sess)
	if err != nil {
		if fields := invalidFields(err); fields != nil {
			data["invalid_fields"] = fields
		}
		Fail(c, err, withToast(sess, data))
		return
	}
	data["created"] = created
	Success(c, withToast(sess, data))
}
