package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/princinho/o3dstudio/dto"
	"github.com/princinho/o3dstudio/quoteform"
	"github.com/princinho/o3dstudio/utils"
)

// Uploads accepts reference files on submission. A nil Store disables uploads.
type Uploads struct {
	Store     utils.ObjectStore
	Validator *utils.FileValidator
}

func lookupForm(c *gin.Context, reg *quoteform.Registry) (*quoteform.Controller, bool) {
	form, ok := reg.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "quote form not found", "code": "not_found"})
		return nil, false
	}
	return form, true
}

func CreateQuoteForm(reg *quoteform.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		form := reg.Create()
		c.JSON(http.StatusCreated, gin.H{
			"form":   form.Snapshot(),
			"fields": form.FieldValues(),
		})
	}
}

func GetQuoteForm(reg *quoteform.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		form, ok := lookupForm(c, reg)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"form":   form.Snapshot(),
			"fields": form.FieldValues(),
		})
	}
}

func fieldErrors(rejected map[string]error) map[string]string {
	out := make(map[string]string, len(rejected))
	for name, err := range rejected {
		out[name] = err.Error()
	}
	return out
}

// UpdateQuoteFormFields merges each field independently; accepted changes
// stay applied even when others are rejected.
func UpdateQuoteFormFields(reg *quoteform.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		form, ok := lookupForm(c, reg)
		if !ok {
			return
		}

		var body dto.UpdateFieldsDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "invalid_body"})
			return
		}

		rejected := form.SetFields(body)
		if err := formStateError(rejected); err != nil {
			respondError(c, err)
			return
		}
		if len(rejected) > 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":  "some fields were rejected",
				"code":   "invalid_field",
				"fields": fieldErrors(rejected),
				"form":   form.Snapshot(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{"form": form.Snapshot()})
	}
}

// formStateError returns the form-level error behind a set of rejected
// fields, if any: the form was closed or already submitted.
func formStateError(rejected map[string]error) error {
	for _, err := range rejected {
		if errors.Is(err, quoteform.ErrFormClosed) || errors.Is(err, quoteform.ErrAlreadySubmitted) {
			return err
		}
	}
	return nil
}

func respondFormError(c *gin.Context, form *quoteform.Controller, err error) {
	status, _ := errorStatus(err)
	body := errorBody(err)
	body["form"] = form.Snapshot()
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.JSON(status, body)
}

// RequestQuoteFormAdvisory triggers the advisory for the form's current
// description and waits for the outcome.
func RequestQuoteFormAdvisory(reg *quoteform.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		form, ok := lookupForm(c, reg)
		if !ok {
			return
		}

		_, err := form.RequestAdvisory(c.Request.Context())
		if err != nil {
			respondFormError(c, form, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"form": form.Snapshot()})
	}
}

func DismissQuoteFormNotice(reg *quoteform.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		form, ok := lookupForm(c, reg)
		if !ok {
			return
		}
		form.DismissNotice()
		c.JSON(http.StatusOK, gin.H{"form": form.Snapshot()})
	}
}

func DeleteQuoteForm(reg *quoteform.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !reg.Remove(c.Param("id")) {
			c.JSON(http.StatusNotFound, gin.H{"error": "quote form not found", "code": "not_found"})
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// SubmitQuoteForm accepts either a JSON field map or a multipart body with
// the field map in "data" and an optional reference file in "file".
func SubmitQuoteForm(reg *quoteform.Registry, uploads Uploads) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		form, ok := lookupForm(c, reg)
		if !ok {
			return
		}

		multipart := strings.HasPrefix(c.ContentType(), "multipart/")
		var fields dto.UpdateFieldsDTO
		if multipart {
			if data := c.PostForm("data"); data != "" {
				if err := json.Unmarshal([]byte(data), &fields); err != nil {
					c.JSON(http.StatusBadRequest, gin.H{"error": "invalid data json", "code": "invalid_body", "details": err.Error()})
					return
				}
			}
		} else if c.Request.ContentLength != 0 {
			if err := c.ShouldBindJSON(&fields); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "invalid_body"})
				return
			}
		}

		if rejected := form.SetFields(fields); len(rejected) > 0 {
			if err := formStateError(rejected); err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{
				"error":  "some fields were rejected",
				"code":   "invalid_field",
				"fields": fieldErrors(rejected),
				"form":   form.Snapshot(),
			})
			return
		}

		// nothing is uploaded for a form that would be rejected
		if err := form.Validate(); err != nil {
			respondFormError(c, form, err)
			return
		}

		var uploadedObject string
		previous := form.Snapshot()
		if multipart {
			if fh, err := c.FormFile("file"); err == nil {
				if uploads.Store == nil || uploads.Validator == nil {
					c.JSON(http.StatusBadRequest, gin.H{"error": "file uploads are disabled", "code": "uploads_disabled"})
					return
				}
				contentType, err := uploads.Validator.ValidateFile(fh)
				if err != nil {
					c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "invalid_file"})
					return
				}
				att, err := utils.UploadReferenceFile(ctx, uploads.Store, form.ID(), form.Request().ProjectName, fh, contentType)
				if err != nil {
					_ = c.Error(err)
					c.JSON(http.StatusBadGateway, gin.H{"error": "file upload failed", "code": "upload_failed"})
					return
				}
				if err := form.Attach(att); err != nil {
					_ = uploads.Store.Delete(ctx, att.ObjectName)
					respondError(c, err)
					return
				}
				uploadedObject = att.ObjectName
			}
		}

		ack, err := form.Submit(ctx)
		if err != nil {
			if uploadedObject != "" {
				_ = uploads.Store.Delete(ctx, uploadedObject)
				_ = form.Attach(previous.Attachment)
			}
			respondFormError(c, form, err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"acknowledgement": ack,
			"form":            form.Snapshot(),
		})
	}
}
