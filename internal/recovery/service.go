package recovery

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"ai-planner/backend/internal/notify"
	"ai-planner/backend/internal/phone"
	"ai-planner/backend/internal/telemetry"
)

// Sentinel errors for Recover; the HTTP handler maps them to status codes.
var (
	ErrInvalidInput        = errors.New("invalid phone number")
	ErrUpstreamUnavailable = errors.New("directory unavailable")
	ErrNotFound            = errors.New("no account registered with this phone number")
	ErrPersistence         = errors.New("failed to store the new password")
)

// DefaultTimeout bounds each call to the directory or the gateway.
const DefaultTimeout = 10 * time.Second

const instrumentationName = "ai-planner/backend/internal/recovery"

// Status is the sub-status of a successful recovery.
type Status string

const (
	// StatusDone means the credential was updated and the notification was accepted.
	StatusDone Status = "done"
	// StatusNotificationFailed means the credential was updated but the notification was not delivered.
	StatusNotificationFailed Status = "notification_failed"
)

// Outcome labels recorded on spans, metrics and telemetry events, in addition to the Status values.
const (
	outcomeInvalidInput = "invalid_input"
	outcomeUnavailable  = "upstream_unavailable"
	outcomeNotFound     = "not_found"
	outcomePersistence  = "persistence_error"
)

// Messages returned to callers on success.
const (
	MessageDone               = "Password berhasil direset dan notifikasi dikirim."
	MessageNotificationFailed = "Password berhasil direset, tapi notifikasi WhatsApp gagal dikirim."
)

const resetMessageFormat = "Halo %s,\n\nPassword akun Anda di *%s* telah direset oleh sistem.\n\n" +
	"Password sementara Anda: *%s*\n\n" +
	"Jangan bagikan password atau kode ini kepada siapapun. Setelah masuk, segera ubah password Anda di menu Profil untuk keamanan.\n\n" +
	"Jika Anda tidak meminta reset ini, silakan abaikan pesan ini atau hubungi tim dukungan."

// DirectoryStore is the minimal directory access needed by the recovery service.
type DirectoryStore interface {
	FetchAll(ctx context.Context, collection string) (Directory, error)
	Update(ctx context.Context, collection, id string, fields map[string]any) error
}

// Notifier delivers the reset message.
type Notifier interface {
	Send(ctx context.Context, phone, message string) (*notify.Delivery, error)
}

// Config binds a Service to one collection.
type Config struct {
	// Collection is the directory path searched and updated, e.g. "users" or "operator".
	Collection string
	// AppName is shown in the reset message.
	AppName string
	// Timeout bounds each external call; zero means DefaultTimeout.
	Timeout time.Duration
}

// Result describes a successful recovery. It never carries the generated code.
type Result struct {
	Status    Status
	RecordID  string
	Phone     string // canonical number the notification was addressed to
	UpdatedAt time.Time
	// NotificationErr is the delivery error when Status is StatusNotificationFailed.
	NotificationErr error
	Delivery        *notify.Delivery
}

// Message returns the human-readable outcome for the caller.
func (r *Result) Message() string {
	if r.Status == StatusNotificationFailed {
		return MessageNotificationFailed
	}
	return MessageDone
}

// Notified reports whether the notification was accepted by the gateway.
func (r *Result) Notified() bool { return r.Status == StatusDone }

// Service resets the password of the directory record matching a phone number and sends the
// temporary password to that number.
type Service struct {
	store    DirectoryStore
	notifier Notifier
	cfg      Config
	logger   *zap.Logger
	emitter  telemetry.EventEmitter

	generate func() string
	now      func() time.Time

	tracer   trace.Tracer
	outcomes metric.Int64Counter
}

// NewService returns a Service over store and notifier. logger and emitter may be nil.
func NewService(store DirectoryStore, notifier Notifier, cfg Config, logger *zap.Logger, emitter telemetry.EventEmitter) *Service {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	cfg.Collection = strings.Trim(strings.TrimSpace(cfg.Collection), "/")
	if logger == nil {
		logger = zap.NewNop()
	}
	outcomes, err := otel.Meter(instrumentationName).Int64Counter(
		"recovery.attempts",
		metric.WithDescription("Password recovery attempts by outcome."),
	)
	if err != nil {
		logger.Warn("recovery: outcome counter unavailable", zap.Error(err))
	}
	return &Service{
		store:    store,
		notifier: notifier,
		cfg:      cfg,
		logger:   logger.With(zap.String("collection", cfg.Collection)),
		emitter:  emitter,
		generate: GenerateCode,
		now:      time.Now,
		tracer:   otel.Tracer(instrumentationName),
		outcomes: outcomes,
	}
}

// Collection returns the directory path this service operates on.
func (s *Service) Collection() string { return s.cfg.Collection }

// Recover runs one recovery attempt for the raw phone number.
//
// Errors are ErrInvalidInput, ErrUpstreamUnavailable, ErrNotFound or ErrPersistence (wrapped). A failed
// notification is not an error: the credential was updated, so the result reports
// StatusNotificationFailed instead.
func (s *Service) Recover(ctx context.Context, raw string) (*Result, error) {
	ctx, span := s.tracer.Start(ctx, "recovery.Recover", trace.WithAttributes(
		attribute.String("recovery.collection", s.cfg.Collection),
	))
	defer span.End()

	res, recordID, err := s.recover(ctx, raw)
	outcome := outcomeOf(res, err)
	span.SetAttributes(attribute.String("recovery.outcome", outcome))
	if err != nil {
		span.SetStatus(codes.Error, outcome)
	}
	if s.outcomes != nil {
		s.outcomes.Add(ctx, 1, metric.WithAttributes(
			attribute.String("collection", s.cfg.Collection),
			attribute.String("outcome", outcome),
		))
	}
	s.emit(recordID, outcome)
	return res, err
}

func (s *Service) recover(ctx context.Context, raw string) (*Result, string, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, "", ErrInvalidInput
	}
	canonical := phone.Normalize(raw)
	if canonical == "" {
		return nil, "", ErrInvalidInput
	}
	log := s.logger.With(zap.String("phone", canonical))

	dir, err := s.fetch(ctx)
	if err != nil {
		log.Warn("recovery: directory fetch failed", zap.Error(err))
		return nil, "", fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
	}

	m := MatchDirectory(canonical, dir)
	if !m.Found() {
		log.Info("recovery: no matching record", zap.Int("records", len(dir)))
		return nil, "", ErrNotFound
	}
	rec := m.Record
	if m.Ambiguous() {
		log.Warn("recovery: several records match, using the first",
			zap.String("record_id", rec.ID),
			zap.Strings("candidates", m.Candidates),
		)
	}

	code := s.generate()
	updatedAt := s.now().UTC()
	if err := s.update(ctx, rec.ID, code, updatedAt); err != nil {
		log.Error("recovery: credential update failed", zap.String("record_id", rec.ID), zap.Error(err))
		return nil, rec.ID, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	res := &Result{
		Status:    StatusDone,
		RecordID:  rec.ID,
		Phone:     canonical,
		UpdatedAt: updatedAt,
	}
	delivery, err := s.send(ctx, canonical, s.resetMessage(rec, code))
	if err != nil {
		log.Warn("recovery: notification failed", zap.String("record_id", rec.ID), zap.Error(err))
		res.Status = StatusNotificationFailed
		res.NotificationErr = err
		return res, rec.ID, nil
	}
	res.Delivery = delivery
	log.Info("recovery: password reset", zap.String("record_id", rec.ID))
	return res, rec.ID, nil
}

func (s *Service) fetch(ctx context.Context) (Directory, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()
	return s.store.FetchAll(ctx, s.cfg.Collection)
}

func (s *Service) update(ctx context.Context, id, code string, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()
	return s.store.Update(ctx, s.cfg.Collection, id, map[string]any{
		FieldPassword:         code,
		FieldPasswordUpdateAt: at.Format(time.RFC3339),
	})
}

func (s *Service) send(ctx context.Context, to, message string) (*notify.Delivery, error) {
	if s.notifier == nil {
		return nil, errors.New("no notification gateway configured")
	}
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()
	return s.notifier.Send(ctx, to, message)
}

func (s *Service) resetMessage(rec *Record, code string) string {
	return fmt.Sprintf(resetMessageFormat, rec.DisplayName(), s.cfg.AppName, code)
}

func (s *Service) emit(recordID, outcome string) {
	if s.emitter == nil {
		return
	}
	ev := telemetry.NewEvent(telemetry.EventPasswordReset, "recovery", map[string]string{
		"collection": s.cfg.Collection,
	})
	ev.RecordID = recordID
	ev.Status = outcome
	telemetry.EmitAsync(s.emitter, s.logger, ev)
}

func outcomeOf(res *Result, err error) string {
	switch {
	case err == nil && res != nil:
		return string(res.Status)
	case errors.Is(err, ErrInvalidInput):
		return outcomeInvalidInput
	case errors.Is(err, ErrUpstreamUnavailable):
		return outcomeUnavailable
	case errors.Is(err, ErrNotFound):
		return outcomeNotFound
	case errors.Is(err, ErrPersistence):
		return outcomePersistence
	default:
		return "error"
	}
}
