package quoteform

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/princinho/o3dstudio/logger"
	"github.com/princinho/o3dstudio/metrics"
	"github.com/princinho/o3dstudio/models"
)

type Phase string

const (
	PhaseIdle      Phase = "Idle"
	PhaseAnalyzing Phase = "AnalyzingAdvisory"
	PhaseReady     Phase = "AdvisoryReady"
	PhaseFailed    Phase = "AdvisoryFailed"
)

var (
	ErrDescriptionRequired = errors.New("a project description is required before asking for advice")
	ErrAdvisoryInFlight    = errors.New("an advisory request is already running")
	ErrAlreadySubmitted    = errors.New("quote request already submitted")
	ErrFormClosed          = errors.New("quote form closed")
	ErrNoAdvisor           = errors.New("no advisor configured")
	ErrIntakeFailed        = errors.New("quote request could not be delivered")
)

// Advisor produces advice for a description. *services.AdvisoryClient satisfies it.
type Advisor interface {
	RequestAdvisory(ctx context.Context, description string) (*models.AdvisoryResult, error)
}

type NoticeKind string

const (
	NoticeInfo    NoticeKind = "info"
	NoticeError   NoticeKind = "error"
	NoticeSuccess NoticeKind = "success"
)

// Notice is the last user-facing message. It stays until dismissed or replaced.
type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Message string     `json:"message"`
}

type Messages struct {
	DescriptionPrompt  string
	AdvisoryBusy       string
	MissingFields      string
	SubmissionFailed   string
	SubmissionReceived string
}

func DefaultMessages(studioCity string) Messages {
	if studioCity == "" {
		studioCity = "London"
	}
	return Messages{
		DescriptionPrompt:  "Please tell us about your idea so our AI can give you advice!",
		AdvisoryBusy:       "AI Lab is a bit busy. Please try again in a few moments!",
		MissingFields:      "Please complete the required fields: %s.",
		SubmissionFailed:   "We could not take your request right now. Please try again shortly.",
		SubmissionReceived: fmt.Sprintf("Request received! Our %s team will review your project and email you back shortly.", studioCity),
	}
}

// View is everything a presentation layer needs to render the form.
type View struct {
	ID              string                     `json:"id"`
	Phase           Phase                      `json:"phase"`
	Request         models.ProjectQuoteRequest `json:"request"`
	Advisory        *models.AdvisoryResult     `json:"advisory,omitempty"`
	Attachment      *models.Attachment         `json:"attachment,omitempty"`
	Notice          *Notice                    `json:"notice,omitempty"`
	Acknowledgement *Acknowledgement           `json:"acknowledgement,omitempty"`
}

type Options struct {
	Advisor  Advisor
	Intake   Intake
	Messages Messages
	Logger   *logger.Logger
	Metrics  *metrics.Metrics
	Now      func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Intake == nil {
		o.Intake = NoopIntake{}
	}
	if o.Messages == (Messages{}) {
		o.Messages = DefaultMessages("")
	}
	if o.Logger == nil {
		o.Logger = logger.Nop()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Controller owns one project-request form: its field state, the advisory
// state machine and submission. It is safe for concurrent use; the lock is not
// held while the advisor or intake is called.
type Controller struct {
	id   string
	opts Options

	// cancelled on Close, abandons any in-flight advisory call
	life   context.Context
	cancel context.CancelFunc

	mu          sync.Mutex
	req         models.ProjectQuoteRequest
	phase       Phase
	advisory    *models.AdvisoryResult
	attachment  *models.Attachment
	notice      *Notice
	ack         *Acknowledgement
	submitting  bool
	closed      bool
	lastTouched time.Time
}

func NewController(id string, opts Options) *Controller {
	opts = opts.withDefaults()
	life, cancel := context.WithCancel(context.Background())
	return &Controller{
		id:          id,
		opts:        opts,
		life:        life,
		cancel:      cancel,
		req:         models.NewProjectQuoteRequest(),
		phase:       PhaseIdle,
		lastTouched: opts.Now(),
	}
}

func (c *Controller) ID() string { return c.id }

func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

func (c *Controller) Request() models.ProjectQuoteRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.req
}

func (c *Controller) Snapshot() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := View{
		ID:         c.id,
		Phase:      c.phase,
		Request:    c.req,
		Attachment: c.attachment,
	}
	if c.advisory != nil {
		a := cloneAdvisory(*c.advisory)
		v.Advisory = &a
	}
	if c.notice != nil {
		n := *c.notice
		v.Notice = &n
	}
	if c.ack != nil {
		ack := *c.ack
		v.Acknowledgement = &ack
	}
	return v
}

// SetField merges a single input change into the request.
func (c *Controller) SetField(name, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrFormClosed
	}
	if c.ack != nil {
		return ErrAlreadySubmitted
	}
	c.touch()
	return applyField(&c.req, name, value)
}

// SetFields applies each change independently and returns the rejected ones
// keyed by field name.
func (c *Controller) SetFields(values map[string]string) map[string]error {
	var rejected map[string]error
	for name, value := range values {
		if err := c.SetField(name, value); err != nil {
			if rejected == nil {
				rejected = make(map[string]error)
			}
			rejected[name] = err
		}
	}
	return rejected
}

// FieldValues encodes the request as the rendered form's input values.
func (c *Controller) FieldValues() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return fieldValues(c.req)
}

func (c *Controller) Attach(att *models.Attachment) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrFormClosed
	}
	if c.ack != nil {
		return ErrAlreadySubmitted
	}
	c.touch()
	c.attachment = att
	return nil
}

func (c *Controller) DismissNotice() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touch()
	c.notice = nil
}

// RequestAdvisory asks the advisor about the current description. Only one
// call runs at a time; a trigger while analyzing is a no-op returning
// ErrAdvisoryInFlight. The call keeps running if ctx is cancelled and is only
// abandoned by Close.
func (c *Controller) RequestAdvisory(ctx context.Context) (*models.AdvisoryResult, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrFormClosed
	}
	c.touch()
	if c.opts.Advisor == nil {
		c.mu.Unlock()
		return nil, ErrNoAdvisor
	}
	if c.phase == PhaseAnalyzing {
		c.mu.Unlock()
		return nil, ErrAdvisoryInFlight
	}
	description := c.req.Description
	if strings.TrimSpace(description) == "" {
		c.notice = &Notice{Kind: NoticeInfo, Message: c.opts.Messages.DescriptionPrompt}
		c.mu.Unlock()
		return nil, ErrDescriptionRequired
	}
	c.phase = PhaseAnalyzing
	c.notice = nil
	c.mu.Unlock()

	callCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	stop := context.AfterFunc(c.life, cancel)
	result, err := c.opts.Advisor.RequestAdvisory(callCtx, description)
	stop()
	cancel()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrFormClosed
	}
	c.touch()
	if err != nil {
		c.phase = PhaseFailed
		c.notice = &Notice{Kind: NoticeError, Message: c.opts.Messages.AdvisoryBusy}
		c.opts.Logger.Error(c.opts.Logger.WithFormID(ctx, c.id), "quoteform.advisory_failed", err)
		return nil, err
	}
	c.phase = PhaseReady
	c.advisory = result
	out := cloneAdvisory(*result)
	return &out, nil
}

// Submit validates the required fields and hands the record to the intake.
// Invalid requests never reach the intake.
func (c *Controller) Submit(ctx context.Context) (Acknowledgement, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return Acknowledgement{}, ErrFormClosed
	}
	c.touch()
	if c.ack != nil || c.submitting {
		c.mu.Unlock()
		return Acknowledgement{}, ErrAlreadySubmitted
	}

	req, err := c.checkRequired()
	if err != nil {
		c.mu.Unlock()
		c.opts.Metrics.IncSubmission(metrics.OutcomeRejected)
		return Acknowledgement{}, err
	}

	sub := Submission{
		FormID:      c.id,
		Request:     req,
		Attachment:  c.attachment,
		SubmittedAt: c.opts.Now().UTC(),
	}
	if c.advisory != nil {
		a := cloneAdvisory(*c.advisory)
		sub.Advisory = &a
	}
	c.submitting = true
	c.mu.Unlock()

	ack, err := c.opts.Intake.Accept(ctx, sub)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.submitting = false
	if err != nil {
		c.notice = &Notice{Kind: NoticeError, Message: c.opts.Messages.SubmissionFailed}
		c.opts.Metrics.IncSubmission(metrics.OutcomeFailed)
		c.opts.Logger.Error(c.opts.Logger.WithFormID(ctx, c.id), "quoteform.intake_failed", err)
		return Acknowledgement{}, fmt.Errorf("%w: %w", ErrIntakeFailed, err)
	}
	c.ack = &ack
	c.notice = &Notice{Kind: NoticeSuccess, Message: c.opts.Messages.SubmissionReceived}
	c.opts.Metrics.IncSubmission(metrics.OutcomeSuccess)
	return ack, nil
}

// Validate runs the submit-time required-field check without submitting, so
// callers can reject incomplete forms before uploading anything. A rejection
// sets the same notice Submit would.
func (c *Controller) Validate() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrFormClosed
	}
	if c.ack != nil {
		return ErrAlreadySubmitted
	}
	c.touch()
	if _, err := c.checkRequired(); err != nil {
		c.opts.Metrics.IncSubmission(metrics.OutcomeRejected)
		return err
	}
	return nil
}

// caller holds c.mu
func (c *Controller) checkRequired() (models.ProjectQuoteRequest, error) {
	req := Normalize(c.req)
	err := Validate(req)
	if err == nil {
		return req, nil
	}
	var verr *ValidationError
	if errors.As(err, &verr) {
		c.notice = &Notice{
			Kind:    NoticeError,
			Message: fmt.Sprintf(c.opts.Messages.MissingFields, strings.Join(verr.FieldNames(), ", ")),
		}
	}
	return req, err
}

// Close tears the form down. An advisory still in flight is abandoned and its
// result dropped.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.cancel()
}

func (c *Controller) idleSince() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastTouched
}

// caller holds c.mu
func (c *Controller) touch() {
	c.lastTouched = c.opts.Now()
}

func cloneAdvisory(a models.AdvisoryResult) models.AdvisoryResult {
	a.SuggestedMaterials = append([]string(nil), a.SuggestedMaterials...)
	if a.SuggestedMaterials == nil {
		a.SuggestedMaterials = []string{}
	}
	return a
}
