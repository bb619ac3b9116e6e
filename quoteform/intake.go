package quoteform

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/princinho/o3dstudio/models"
)

// Submission is the finished record handed to the intake boundary.
type Submission struct {
	FormID      string
	Request     models.ProjectQuoteRequest
	Advisory    *models.AdvisoryResult
	Attachment  *models.Attachment
	SubmittedAt time.Time
}

type Acknowledgement struct {
	Reference  string    `json:"reference"`
	ReceivedAt time.Time `json:"receivedAt"`
}

// Intake receives completed quote requests for fulfilment.
type Intake interface {
	Accept(ctx context.Context, sub Submission) (Acknowledgement, error)
}

// NoopIntake acknowledges every submission without sending or storing it.
type NoopIntake struct{}

func (NoopIntake) Accept(_ context.Context, sub Submission) (Acknowledgement, error) {
	ref := sub.FormID
	if ref == "" {
		ref = uuid.NewString()
	}
	received := sub.SubmittedAt
	if received.IsZero() {
		received = time.Now().UTC()
	}
	return Acknowledgement{Reference: ref, ReceivedAt: received}, nil
}

// SubmitRequest validates a request that was not built through a form and
// hands it to the intake.
func SubmitRequest(ctx context.Context, intake Intake, sub Submission) (Acknowledgement, error) {
	sub.Request = Normalize(sub.Request)
	if err := Validate(sub.Request); err != nil {
		return Acknowledgement{}, err
	}
	if sub.SubmittedAt.IsZero() {
		sub.SubmittedAt = time.Now().UTC()
	}
	if intake == nil {
		intake = NoopIntake{}
	}
	ack, err := intake.Accept(ctx, sub)
	if err != nil {
		return Acknowledgement{}, fmt.Errorf("%w: %w", ErrIntakeFailed, err)
	}
	return ack, nil
}
