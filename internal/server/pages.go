package server

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sheikh-saqib/farmer-portal/internal/models"
	"github.com/sheikh-saqib/farmer-portal/internal/validation"
)

// maxUpload bounds photos and leaf images.
const maxUpload = 10 << 20

type updateRequest struct {
	Date        string `form:"date"`
	Day         string `form:"day"`
	Title       string `form:"title"`
	Description string `form:"description"`
}

type cropRequest struct {
	N           string `json:"N" form:"N"`
	P           string `json:"P" form:"P"`
	K           string `json:"K" form:"K"`
	Temperature string `json:"temperature" form:"temperature"`
	Humidity    string `json:"humidity" form:"humidity"`
	PH          string `json:"ph" form:"ph"`
	Rainfall    string `json:"rainfall" form:"rainfall"`
}

func invalidFields(err error) []string {
	var verr *validation.ValidationError
	if errors.As(err, &verr) {
		return verr.Fields
	}
	return nil
}

// readUpload returns the named file, or nil when the form has none.
func readUpload(c *gin.Context, field string) (string, []byte, error) {
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return "", nil, nil
	}
	if err != nil {
		return "", nil, err
	}
	return readFileHeader(fh)
}

func readFileHeader(fh *multipart.FileHeader) (string, []byte, error) {
	if fh.Size > maxUpload {
		return "", nil, fmt.Errorf("%s is larger than %d bytes", fh.Filename, maxUpload)
	}
	f, err := fh.Open()
	if err != nil {
		return "", nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxUpload))
	return fh.Filename, data, err
}

func (s *Server) dashboard(c *gin.Context) {
	sess := current(c)
	status := sess.Dashboard.Load(c.Request.Context())
	if err := sess.Market.Refresh(); err != nil {
		Fail(c, err, nil)
		return
	}
	views := &sess.Dashboard.Views
	data := walletData(sess)
	data["status"] = status
	data["profile_html"] = views.Profile.HTML()
	data["images_html"] = views.Images.HTML()
	data["cycle_html"] = views.Cycle.HTML()
	Success(c, withToast(sess, data))
}

func (s *Server) updates(c *gin.Context) {
	sess := current(c)
	if err := sess.Updates.Render(); err != nil {
		Fail(c, err, nil)
		return
	}
	Success(c, withToast(sess, Response{
		"updates":      sess.Feed.Updates(),
		"updates_html": sess.Updates.List.HTML(),
	}))
}

func (s *Server) updateSubmit(c *gin.Context) {
	sess := current(c)
	var req updateRequest
	if err := c.ShouldBind(&req); err != nil {
		Error(c, http.StatusBadRequest, CodeInvalidParam, "malformed update", nil)
		return
	}
	_, photo, err := readUpload(c, "photo")
	if err != nil {
		Error(c, http.StatusBadRequest, CodeInvalidParam, err.Error(), nil)
		return
	}

	u, err := sess.Updates.Submit(c.Request.Context(), validation.UpdateForm{
		Date:        req.Date,
		Day:         req.Day,
		Title:       req.Title,
		Description: req.Description,
		Image:       photo,
	})
	data := Response{"updates_html": sess.Updates.List.HTML()}
	if err != nil {
		if fields := invalidFields(err); fields != nil {
			data["invalid_fields"] = fields
		}
		Fail(c, err, withToast(sess, data))
		return
	}
	data["update"] = u
	Success(c, withToast(sess, data))
}

func (s *Server) cropRecommend(c *gin.Context) {
	sess := current(c)
	var req cropRequest
	if err := c.ShouldBind(&req); err != nil {
		Error(c, http.StatusBadRequest, CodeInvalidParam, "malformed crop input", nil)
		return
	}

	crop, err := sess.Crop.Recommend(c.Request.Context(), models.CropInput(req))
	data := Response{
		"result_html": sess.Crop.Result.HTML(),
		"error_html":  sess.Crop.Error.HTML(),
	}
	if err != nil {
		if fields := invalidFields(err); fields != nil {
			data["invalid_fields"] = fields
		}
		Fail(c, err, withToast(sess, data))
		return
	}
	data["crop"] = crop
	Success(c, withToast(sess, data))
}

func (s *Server) diseasePredict(c *gin.Context) {
	sess := current(c)
	name, image, err := readUpload(c, "file")
	if err != nil {
		Error(c, http.StatusBadRequest, CodeInvalidParam, err.Error(), nil)
		return
	}

	pred, err := sess.Disease.Predict(c.Request.Context(), name, image)
	data := Response{"result_html": sess.Disease.Result.HTML()}
	if err != nil {
		Fail(c, err, withToast(sess, data))
		return
	}
	data["prediction"] = pred
	Success(c, withToast(sess, data))
}
