package controllers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/princinho/o3dstudio/database"
	"github.com/princinho/o3dstudio/dto"
	"github.com/princinho/o3dstudio/metrics"
	"github.com/princinho/o3dstudio/models"
	"github.com/princinho/o3dstudio/quoteform"
)

// QuoteReviewStore is the admin side of the stored quote requests.
type QuoteReviewStore interface {
	List(ctx context.Context, f database.QuoteFilter, skip int64, limit int) ([]models.QuoteRequest, int64, error)
	Get(ctx context.Context, id bson.ObjectID) (*models.QuoteRequest, error)
	UpdateStatus(ctx context.Context, id bson.ObjectID, status models.QuoteRequestStatus) error
	AddNote(ctx context.Context, id bson.ObjectID, note models.QuoteAdminNote) (models.QuoteAdminNote, error)
}

type UserFinder interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id bson.ObjectID) (*models.User, error)
}

const (
	defaultQuoteLimit = 20
	maxQuoteLimit     = 100
)

// CreateQuoteRequest is the one-shot submission: the whole request in one
// body, optionally with an advisory the client already obtained.
func CreateQuoteRequest(intake quoteform.Intake, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.CreateQuoteRequestDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "invalid_body"})
			return
		}

		var advisory *models.AdvisoryResult
		if body.Advisory != nil {
			normalized, err := body.Advisory.Normalized()
			if err != nil {
				m.IncSubmission(metrics.OutcomeRejected)
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid advisory: " + err.Error(), "code": "invalid_advisory"})
				return
			}
			advisory = &normalized
		}

		ack, err := quoteform.SubmitRequest(c.Request.Context(), intake, quoteform.Submission{
			Request:  body.ToModel(),
			Advisory: advisory,
		})
		if err != nil {
			var verr *quoteform.ValidationError
			if errors.As(err, &verr) {
				m.IncSubmission(metrics.OutcomeRejected)
			} else {
				m.IncSubmission(metrics.OutcomeFailed)
			}
			respondError(c, err)
			return
		}
		m.IncSubmission(metrics.OutcomeSuccess)
		c.JSON(http.StatusCreated, gin.H{"acknowledgement": ack})
	}
}

func parseQuoteID(c *gin.Context) (bson.ObjectID, bool) {
	qid, err := bson.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid quote request id"})
		return qid, false
	}
	return qid, true
}

func AdminListQuoteRequests(store QuoteReviewStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, limit, skip := pageParams(c)

		filter := database.QuoteFilter{
			Email: c.Query("email"),
			Query: c.Query("q"),
		}
		if s := strings.ToUpper(strings.TrimSpace(c.Query("status"))); s != "" {
			status := models.QuoteRequestStatus(s)
			if !status.Valid() {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
				return
			}
			filter.Status = status
		}

		items, total, err := store.List(c.Request.Context(), filter, skip, limit)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"items": items,
			"page":  page,
			"limit": limit,
			"total": total,
		})
	}
}

func AdminGetQuoteRequest(store QuoteReviewStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		qid, ok := parseQuoteID(c)
		if !ok {
			return
		}
		qr, err := store.Get(c.Request.Context(), qid)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, qr)
	}
}

func AdminUpdateQuoteStatus(store QuoteReviewStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		qid, ok := parseQuoteID(c)
		if !ok {
			return
		}

		var body dto.UpdateQuoteStatusDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		status := models.QuoteRequestStatus(strings.ToUpper(strings.TrimSpace(body.Status)))
		if !status.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}

		if err := store.UpdateStatus(c.Request.Context(), qid, status); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "status": status})
	}
}

func AdminAddQuoteNote(store QuoteReviewStore, users UserFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		qid, ok := parseQuoteID(c)
		if !ok {
			return
		}

		var body dto.CreateQuoteNoteDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		uid, err := bson.ObjectIDFromHex(c.GetString("userID"))
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid auth user"})
			return
		}
		user, err := users.FindByID(ctx, uid)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
			return
		}

		note, err := store.AddNote(ctx, qid, models.QuoteAdminNote{
			AuthorID:    uid,
			AuthorEmail: user.Email,
			Content:     body.Content,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"noteId": note.ID, "note": note})
	}
}
