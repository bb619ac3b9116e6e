package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type QuoteRequestStatus string

const (
	QuoteStatusNew        QuoteRequestStatus = "NEW"
	QuoteStatusInProgress QuoteRequestStatus = "IN_PROGRESS"
	QuoteStatusQuoted     QuoteRequestStatus = "QUOTED"
	QuoteStatusRejected   QuoteRequestStatus = "REJECTED"
	QuoteStatusClosed     QuoteRequestStatus = "CLOSED"
)

var QuoteStatuses = []QuoteRequestStatus{
	QuoteStatusNew,
	QuoteStatusInProgress,
	QuoteStatusQuoted,
	QuoteStatusRejected,
	QuoteStatusClosed,
}

func (s QuoteRequestStatus) Valid() bool {
	for _, v := range QuoteStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Attachment is a reference file (model, drawing or photo) uploaded with a request.
type Attachment struct {
	PublicURL  string    `bson:"publicUrl"  json:"publicUrl"`
	ObjectName string    `bson:"objectName" json:"objectName"`
	MimeType   string    `bson:"mimeType"   json:"mimeType"`
	SizeBytes  int64     `bson:"sizeBytes"  json:"sizeBytes"`
	FileName   string    `bson:"fileName"   json:"fileName"`
	UploadedAt time.Time `bson:"uploadedAt" json:"uploadedAt"`
}

type QuoteAdminNote struct {
	ID          bson.ObjectID `bson:"_id"         json:"id"`
	AuthorID    bson.ObjectID `bson:"authorId"    json:"authorId"`
	AuthorEmail string        `bson:"authorEmail" json:"authorEmail"`
	Content     string        `bson:"content"     json:"content"`
	CreatedAt   time.Time     `bson:"createdAt"   json:"createdAt"`
}

// QuoteRequest is a submitted project request as stored for the studio team.
type QuoteRequest struct {
	ID     bson.ObjectID `bson:"_id,omitempty"    json:"id"`
	FormID string        `bson:"formId,omitempty" json:"formId,omitempty"`

	Project    ProjectQuoteRequest `bson:"project"              json:"project"`
	Advisory   *AdvisoryResult     `bson:"advisory,omitempty"   json:"advisory,omitempty"`
	Attachment *Attachment         `bson:"attachment,omitempty" json:"attachment,omitempty"`

	Status   QuoteRequestStatus `bson:"status"             json:"status"`
	QuotedAt *time.Time         `bson:"quotedAt,omitempty" json:"quotedAt,omitempty"`

	Notes []QuoteAdminNote `bson:"notes" json:"notes"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
