package quoteform

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/princinho/o3dstudio/models"
)

type fakeAdvisor struct {
	mu      sync.Mutex
	calls   []string
	result  *models.AdvisoryResult
	err     error
	release chan struct{} // when set, calls block until closed or ctx is done
	ctxErr  error
}

func (f *fakeAdvisor) RequestAdvisory(ctx context.Context, description string) (*models.AdvisoryResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, description)
	release := f.release
	f.mu.Unlock()

	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			f.mu.Lock()
			f.ctxErr = ctx.Err()
			f.mu.Unlock()
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := *f.result
	return &out, nil
}

func (f *fakeAdvisor) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type recordingIntake struct {
	mu   sync.Mutex
	subs []Submission
	err  error
}

func (r *recordingIntake) Accept(_ context.Context, sub Submission) (Acknowledgement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs = append(r.subs, sub)
	if r.err != nil {
		return Acknowledgement{}, r.err
	}
	return Acknowledgement{Reference: "Q-1", ReceivedAt: sub.SubmittedAt}, nil
}

var dragonAdvice = &models.AdvisoryResult{
	Analysis:           "Articulated joints print in place at 0.3mm clearance.",
	Complexity:         models.ComplexityMedium,
	SuggestedMaterials: []string{"PLA", "Resin"},
}

func newTestController(adv Advisor, intake Intake) *Controller {
	return NewController("form-1", Options{
		Advisor:  adv,
		Intake:   intake,
		Messages: DefaultMessages("London"),
	})
}

func fillRequired(t *testing.T, c *Controller) {
	t.Helper()
	rejected := c.SetFields(map[string]string{
		FieldName:            "Ada Lovelace",
		FieldEmail:           "ada@example.com",
		FieldProjectName:     "Dragon",
		FieldDescription:     "A 15cm articulated dragon figurine for display",
		FieldShippingAddress: "London, UK",
	})
	require.Empty(t, rejected)
}

func TestNewControllerStartsIdleWithDefaults(t *testing.T) {
	c := newTestController(&fakeAdvisor{result: dragonAdvice}, nil)

	v := c.Snapshot()
	assert.Equal(t, PhaseIdle, v.Phase)
	assert.Nil(t, v.Advisory)
	assert.Nil(t, v.Notice)
	assert.Equal(t, models.NewProjectQuoteRequest(), v.Request)
}

func TestAdvisoryDragonScenario(t *testing.T) {
	adv := &fakeAdvisor{result: dragonAdvice}
	c := newTestController(adv, nil)
	require.NoError(t, c.SetField(FieldDescription, "A 15cm articulated dragon figurine for display"))

	got, err := c.RequestAdvisory(context.Background())
	require.NoError(t, err)
	assert.Equal(t, dragonAdvice, got)

	v := c.Snapshot()
	assert.Equal(t, PhaseReady, v.Phase)
	assert.Equal(t, dragonAdvice, v.Advisory)
	assert.Equal(t, []string{"A 15cm articulated dragon figurine for display"}, adv.calls)
}

func TestAdvisoryWithoutDescriptionIsNoop(t *testing.T) {
	adv := &fakeAdvisor{result: dragonAdvice}
	c := newTestController(adv, nil)
	require.NoError(t, c.SetField(FieldDescription, "   "))

	_, err := c.RequestAdvisory(context.Background())
	assert.ErrorIs(t, err, ErrDescriptionRequired)

	v := c.Snapshot()
	assert.Equal(t, PhaseIdle, v.Phase)
	require.NotNil(t, v.Notice)
	assert.Equal(t, NoticeInfo, v.Notice.Kind)
	assert.Equal(t, "Please tell us about your idea so our AI can give you advice!", v.Notice.Message)
	assert.Zero(t, adv.callCount())
}

func TestSecondTriggerWhileAnalyzingIsNoop(t *testing.T) {
	adv := &fakeAdvisor{result: dragonAdvice, release: make(chan struct{})}
	c := newTestController(adv, nil)
	require.NoError(t, c.SetField(FieldDescription, "a chess set"))

	done := make(chan error, 1)
	go func() {
		_, err := c.RequestAdvisory(context.Background())
		done <- err
	}()
	require.Eventually(t, func() bool { return c.Phase() == PhaseAnalyzing }, time.Second, time.Millisecond)

	_, err := c.RequestAdvisory(context.Background())
	assert.ErrorIs(t, err, ErrAdvisoryInFlight)

	// other inputs stay editable while the call runs
	require.NoError(t, c.SetField(FieldQuantity, "4"))

	close(adv.release)
	require.NoError(t, <-done)

	assert.Equal(t, 1, adv.callCount())
	assert.Equal(t, PhaseReady, c.Phase())
	assert.Equal(t, 4, c.Request().Quantity)
}

func TestAdvisoryFailureAndRetry(t *testing.T) {
	adv := &fakeAdvisor{err: errors.New("upstream unavailable")}
	c := newTestController(adv, nil)
	require.NoError(t, c.SetField(FieldDescription, "replacement dishwasher clip"))

	_, err := c.RequestAdvisory(context.Background())
	require.Error(t, err)

	v := c.Snapshot()
	assert.Equal(t, PhaseFailed, v.Phase)
	assert.Nil(t, v.Advisory)
	require.NotNil(t, v.Notice)
	assert.Equal(t, NoticeError, v.Notice.Kind)
	assert.Equal(t, "AI Lab is a bit busy. Please try again in a few moments!", v.Notice.Message)

	c.DismissNotice()
	assert.Nil(t, c.Snapshot().Notice)

	adv.mu.Lock()
	adv.err = nil
	adv.result = dragonAdvice
	adv.mu.Unlock()

	got, err := c.RequestAdvisory(context.Background())
	require.NoError(t, err)
	assert.Equal(t, dragonAdvice, got)
	assert.Equal(t, PhaseReady, c.Phase())
	assert.Equal(t, 2, adv.callCount())
}

func TestFailedRefreshKeepsPreviousAdvisory(t *testing.T) {
	adv := &fakeAdvisor{result: dragonAdvice}
	c := newTestController(adv, nil)
	require.NoError(t, c.SetField(FieldDescription, "a lamp shade"))
	_, err := c.RequestAdvisory(context.Background())
	require.NoError(t, err)

	adv.mu.Lock()
	adv.err = errors.New("timeout")
	adv.mu.Unlock()

	_, err = c.RequestAdvisory(context.Background())
	require.Error(t, err)

	v := c.Snapshot()
	assert.Equal(t, PhaseFailed, v.Phase)
	assert.Equal(t, dragonAdvice, v.Advisory)
}

func TestAdvisoryIsNotInvalidatedByDescriptionEdits(t *testing.T) {
	c := newTestController(&fakeAdvisor{result: dragonAdvice}, nil)
	require.NoError(t, c.SetField(FieldDescription, "a dragon"))
	_, err := c.RequestAdvisory(context.Background())
	require.NoError(t, err)

	require.NoError(t, c.SetField(FieldDescription, "actually a unicorn"))
	v := c.Snapshot()
	assert.Equal(t, PhaseReady, v.Phase)
	assert.Equal(t, dragonAdvice, v.Advisory)
}

func TestCallerCancellationDoesNotAbandonAdvisory(t *testing.T) {
	adv := &fakeAdvisor{result: dragonAdvice, release: make(chan struct{})}
	c := newTestController(adv, nil)
	require.NoError(t, c.SetField(FieldDescription, "a drone frame"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := c.RequestAdvisory(ctx)
		done <- err
	}()
	require.Eventually(t, func() bool { return c.Phase() == PhaseAnalyzing }, time.Second, time.Millisecond)

	cancel()
	close(adv.release)

	require.NoError(t, <-done)
	assert.Equal(t, PhaseReady, c.Phase())
}

func TestCloseAbandonsInFlightAdvisory(t *testing.T) {
	adv := &fakeAdvisor{result: dragonAdvice, release: make(chan struct{})}
	c := newTestController(adv, nil)
	require.NoError(t, c.SetField(FieldDescription, "a bust of Ada"))

	done := make(chan error, 1)
	go func() {
		_, err := c.RequestAdvisory(context.Background())
		done <- err
	}()
	require.Eventually(t, func() bool { return c.Phase() == PhaseAnalyzing }, time.Second, time.Millisecond)

	c.Close()

	assert.ErrorIs(t, <-done, ErrFormClosed)
	adv.mu.Lock()
	assert.ErrorIs(t, adv.ctxErr, context.Canceled)
	adv.mu.Unlock()

	assert.ErrorIs(t, c.SetField(FieldName, "late"), ErrFormClosed)
	_, err := c.Submit(context.Background())
	assert.ErrorIs(t, err, ErrFormClosed)
}

func TestSubmitRejectsMissingFieldsBeforeIntake(t *testing.T) {
	intake := &recordingIntake{}
	c := newTestController(&fakeAdvisor{result: dragonAdvice}, intake)
	require.NoError(t, c.SetField(FieldName, "Ada"))
	require.NoError(t, c.SetField(FieldEmail, "not-an-email"))

	_, err := c.Submit(context.Background())

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"description", "email", "projectName", "shippingAddress"}, verr.FieldNames())
	assert.Empty(t, intake.subs)

	v := c.Snapshot()
	require.NotNil(t, v.Notice)
	assert.Equal(t, NoticeError, v.Notice.Kind)
	assert.Contains(t, v.Notice.Message, "shippingAddress")
	assert.Nil(t, v.Acknowledgement)
}

func TestSubmitHandsCompletedRecordToIntake(t *testing.T) {
	intake := &recordingIntake{}
	c := newTestController(&fakeAdvisor{result: dragonAdvice}, intake)
	fillRequired(t, c)
	require.NoError(t, c.SetField(FieldName, "  Ada Lovelace  "))
	_, err := c.RequestAdvisory(context.Background())
	require.NoError(t, err)

	ack, err := c.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Q-1", ack.Reference)

	require.Len(t, intake.subs, 1)
	sub := intake.subs[0]
	assert.Equal(t, "form-1", sub.FormID)
	assert.Equal(t, "Ada Lovelace", sub.Request.Name)
	assert.Equal(t, 1, sub.Request.Quantity)
	assert.Equal(t, models.DeliveryStandard, sub.Request.DeliveryType)
	assert.Equal(t, dragonAdvice, sub.Advisory)

	v := c.Snapshot()
	require.NotNil(t, v.Notice)
	assert.Equal(t, NoticeSuccess, v.Notice.Kind)
	assert.Equal(t, "Request received! Our London team will review your project and email you back shortly.", v.Notice.Message)
	require.NotNil(t, v.Acknowledgement)

	_, err = c.Submit(context.Background())
	assert.ErrorIs(t, err, ErrAlreadySubmitted)
	assert.Len(t, intake.subs, 1)
}

func TestSubmitWithoutAdvisoryIsAllowed(t *testing.T) {
	c := newTestController(&fakeAdvisor{result: dragonAdvice}, nil)
	fillRequired(t, c)

	ack, err := c.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "form-1", ack.Reference)
}

func TestSubmitIntakeFailureAllowsRetry(t *testing.T) {
	intake := &recordingIntake{err: errors.New("mongo down")}
	c := newTestController(&fakeAdvisor{result: dragonAdvice}, intake)
	fillRequired(t, c)

	_, err := c.Submit(context.Background())
	require.ErrorIs(t, err, ErrIntakeFailed)
	assert.ErrorContains(t, err, "mongo down")
	v := c.Snapshot()
	assert.Equal(t, NoticeError, v.Notice.Kind)
	assert.Nil(t, v.Acknowledgement)

	intake.mu.Lock()
	intake.err = nil
	intake.mu.Unlock()

	_, err = c.Submit(context.Background())
	require.NoError(t, err)
	assert.Len(t, intake.subs, 2)
}

func TestSnapshotIsDetached(t *testing.T) {
	c := newTestController(&fakeAdvisor{result: dragonAdvice}, nil)
	require.NoError(t, c.SetField(FieldDescription, "a vase"))
	_, err := c.RequestAdvisory(context.Background())
	require.NoError(t, err)

	v := c.Snapshot()
	v.Advisory.SuggestedMaterials[0] = "Gold"
	assert.Equal(t, "PLA", c.Snapshot().Advisory.SuggestedMaterials[0])
}

func TestSubmitRequestValidatesBeforeIntake(t *testing.T) {
	intake := &recordingIntake{}
	req := models.NewProjectQuoteRequest()
	req.Name = "  "

	_, err := SubmitRequest(context.Background(), intake, Submission{Request: req})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "name")
	assert.Empty(t, intake.subs)

	req.Name = " Ada "
	req.Email = "ada@example.com"
	req.ProjectName = "Dragon"
	req.Description = "A dragon"
	req.ShippingAddress = "1 Road"
	ack, err := SubmitRequest(context.Background(), intake, Submission{Request: req})
	require.NoError(t, err)
	assert.Equal(t, "Q-1", ack.Reference)
	require.Len(t, intake.subs, 1)
	assert.Equal(t, "Ada", intake.subs[0].Request.Name)
	assert.False(t, intake.subs[0].SubmittedAt.IsZero())
}

func TestSubmittedFormIsFrozen(t *testing.T) {
	c := newTestController(nil, &recordingIntake{})
	fillRequired(t, c)
	_, err := c.Submit(context.Background())
	require.NoError(t, err)
	before := c.Request()

	assert.ErrorIs(t, c.SetField(FieldName, "Someone Else"), ErrAlreadySubmitted)
	assert.ErrorIs(t, c.Attach(&models.Attachment{FileName: "late.stl"}), ErrAlreadySubmitted)
	assert.ErrorIs(t, c.Validate(), ErrAlreadySubmitted)

	assert.Equal(t, before, c.Request())
	assert.Nil(t, c.Snapshot().Attachment)
}

func TestValidateReportsMissingFieldsWithoutSubmitting(t *testing.T) {
	intake := &recordingIntake{}
	c := newTestController(nil, intake)
	require.NoError(t, c.SetField(FieldName, "Ada"))

	err := c.Validate()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"description", "email", "projectName", "shippingAddress"}, verr.FieldNames())
	v := c.Snapshot()
	require.NotNil(t, v.Notice)
	assert.Equal(t, NoticeError, v.Notice.Kind)
	assert.Empty(t, intake.subs)

	fillRequired(t, c)
	assert.NoError(t, c.Validate())
	assert.Nil(t, c.Snapshot().Acknowledgement)
}
