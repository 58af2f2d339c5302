// Package service registers companies, logs users in and revokes their
// tokens on logout.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"avgverzoek/internal/auth/models"
	companymodels "avgverzoek/internal/company/models"
	id "avgverzoek/pkg/domain"
	dErrors "avgverzoek/pkg/domain-errors"
	"avgverzoek/pkg/email"
	"avgverzoek/pkg/platform/audit"
	"avgverzoek/pkg/platform/middleware/metadata"
	"avgverzoek/pkg/platform/sentinel"
	"avgverzoek/pkg/requestcontext"
)

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

type CompanyStore interface {
	Create(ctx context.Context, company *companymodels.Company) error
}

// TxRunner groups the registration writes. *tx.Runner and *tx.LockRunner
// both satisfy it.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type TokenIssuer interface {
	IssueAccessToken(userID, companyID string, now time.Time) (string, time.Time, error)
}

// RevocationList remembers logged-out token IDs.
type RevocationList interface {
	RevokeToken(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// AuditPublisher writes compliance events inside the registration transaction.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Lockout throttles failed logins per e-mail and client IP.
type Lockout interface {
	Check(ctx context.Context, email, ip string) error
	RecordFailure(ctx context.Context, email, ip string) (bool, error)
	Clear(ctx context.Context, email, ip string) error
}

// SecurityPublisher buffers security events; it never fails the caller.
type SecurityPublisher interface {
	Emit(ctx context.Context, event audit.Event)
}

const tokenTypeBearer = "Bearer"

var errInvalidCredentials = dErrors.New(dErrors.CodeUnauthorized, "invalid email or password")

type Service struct {
	users      UserStore
	companies  CompanyStore
	tx         TxRunner
	tokens     TokenIssuer
	trl        RevocationList
	tokenTTL   time.Duration
	auditor    AuditPublisher
	security   SecurityPublisher
	lockout    Lockout
	logger     *slog.Logger
	bcryptCost int
	// dummyHash is compared against when the e-mail is unknown so both
	// failure paths cost one bcrypt comparison.
	dummyHash []byte
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(p AuditPublisher) Option {
	return func(s *Service) { s.auditor = p }
}

func WithSecurityPublisher(p SecurityPublisher) Option {
	return func(s *Service) { s.security = p }
}

func WithLockout(l Lockout) Option {
	return func(s *Service) { s.lockout = l }
}

// WithBcryptCost overrides bcrypt.DefaultCost. Tests use bcrypt.MinCost.
func WithBcryptCost(cost int) Option {
	return func(s *Service) { s.bcryptCost = cost }
}

func New(
	users UserStore,
	companies CompanyStore,
	tx TxRunner,
	tokens TokenIssuer,
	trl RevocationList,
	tokenTTL time.Duration,
	opts ...Option,
) (*Service, error) {
	if users == nil || companies == nil || tx == nil {
		return nil, errors.New("users, companies and tx are required")
	}
	if tokens == nil || trl == nil {
		return nil, errors.New("token issuer and revocation list are required")
	}
	if tokenTTL <= 0 {
		return nil, errors.New("token ttl must be positive")
	}

	s := &Service{
		users:      users,
		companies:  companies,
		tx:         tx,
		tokens:     tokens,
		trl:        trl,
		tokenTTL:   tokenTTL,
		bcryptCost: bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	dummy, err := bcrypt.GenerateFromPassword([]byte("avgverzoek-dummy-password"), s.bcryptCost)
	if err != nil {
		return nil, err
	}
	s.dummyHash = dummy
	return s, nil
}

// Register creates a company and its first user, then logs the user in.
func (s *Service) Register(ctx context.Context, in models.Registration) (*models.TokenResult, error) {
	in.Normalize()
	if err := models.ValidateEmail(in.Email); err != nil {
		return nil, err
	}
	if err := models.ValidatePassword(in.Password); err != nil {
		return nil, err
	}
	if in.CompanyName == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "company_name is required")
	}

	// Pre-check so the in-memory stores never keep a company without a user.
	// The unique constraint still catches concurrent registrations.
	if _, err := s.users.FindByEmail(ctx, in.Email); err == nil {
		return nil, dErrors.New(dErrors.CodeConflict, "email already registered")
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check email")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}

	now := requestcontext.Now(ctx)
	contact := in.ContactPerson
	if contact == "" {
		contact = email.DisplayName(in.Email)
	}
	company, err := companymodels.NewCompany(id.NewCompanyID(), in.CompanyName, companymodels.Profile{
		KvK:           in.KvK,
		ContactPerson: contact,
		Email:         in.Email,
	}, now)
	if err != nil {
		return nil, err
	}
	user, err := models.NewUser(id.NewUserID(), company.ID, in.Email, string(hash), now)
	if err != nil {
		return nil, err
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.companies.Create(ctx, company); err != nil {
			return err
		}
		if err := s.users.Create(ctx, user); err != nil {
			return err
		}
		if err := s.emit(ctx, audit.EventCompanyRegistered, company.ID, user.ID, company.Name); err != nil {
			return err
		}
		return s.emit(ctx, audit.EventUserCreated, company.ID, user.ID, user.Email)
	})
	if err != nil {
		switch {
		case errors.Is(err, sentinel.ErrAlreadyUsed):
			return nil, dErrors.New(dErrors.CodeConflict, "email already registered")
		case dErrors.HasCode(err, dErrors.CodeTimeout):
			return nil, err
		default:
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to register company")
		}
	}

	s.logAudit(ctx, string(audit.EventCompanyRegistered),
		"company_id", company.ID.String(),
		"user_id", user.ID.String(),
	)
	return s.issue(user, now)
}

// Login checks the password and issues a token. Unknown e-mail and wrong
// password produce the same error. A locked e-mail and IP pair is refused
// before the password is checked.
func (s *Service) Login(ctx context.Context, emailAddr, password string) (*models.TokenResult, error) {
	emailAddr = models.NormalizeEmail(emailAddr)
	if emailAddr == "" || password == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "email and password are required")
	}

	if s.lockout != nil {
		if err := s.lockout.Check(ctx, emailAddr, metadata.GetClientIP(ctx)); err != nil {
			if dErrors.HasCode(err, dErrors.CodeTooManyRequests) {
				s.securityEvent(ctx, audit.EventLoginFailed, id.CompanyID{}, id.UserID{}, emailAddr, "locked_out")
			}
			return nil, err
		}
	}

	user, err := s.users.FindByEmail(ctx, emailAddr)
	if err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
		}
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		s.loginFailed(ctx, id.CompanyID{}, id.UserID{}, emailAddr, "unknown_email")
		return nil, errInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.loginFailed(ctx, user.CompanyID, user.ID, emailAddr, "bad_password")
		return nil, errInvalidCredentials
	}

	if s.lockout != nil {
		if err := s.lockout.Clear(ctx, emailAddr, metadata.GetClientIP(ctx)); err != nil {
			s.logger.ErrorContext(ctx, "failed to clear login lockout", "error", err)
		}
	}
	return s.issue(user, requestcontext.Now(ctx))
}

// Logout revokes the token the request was authenticated with.
func (s *Service) Logout(ctx context.Context) error {
	jti := requestcontext.TokenID(ctx)
	if jti == "" {
		return dErrors.New(dErrors.CodeUnauthorized, "no token to revoke")
	}
	if err := s.trl.RevokeToken(ctx, jti, s.tokenTTL); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke token")
	}

	if s.security != nil {
		s.security.Emit(ctx, audit.Event{
			CompanyID: requestcontext.CompanyID(ctx),
			UserID:    requestcontext.UserID(ctx),
			Subject:   jti,
			Action:    string(audit.EventTokenRevoked),
			Reason:    "logout",
			IP:        metadata.GetClientIP(ctx),
		})
	}
	s.logAudit(ctx, string(audit.EventTokenRevoked),
		"user_id", requestcontext.UserID(ctx).String(),
		"jti", jti,
	)
	return nil
}

// IsTokenRevoked lets the auth middleware consult the revocation list.
func (s *Service) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	return s.trl.IsRevoked(ctx, jti)
}

func (s *Service) issue(user *models.User, now time.Time) (*models.TokenResult, error) {
	token, expiresAt, err := s.tokens.IssueAccessToken(user.ID.String(), user.CompanyID.String(), now)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token")
	}
	return &models.TokenResult{
		AccessToken: token,
		TokenType:   tokenTypeBearer,
		ExpiresAt:   expiresAt,
		UserID:      user.ID,
		CompanyID:   user.CompanyID,
	}, nil
}

func (s *Service) emit(ctx context.Context, action audit.AuditEvent, companyID id.CompanyID, userID id.UserID, subject string) error {
	if s.auditor == nil {
		return nil
	}
	return s.auditor.Emit(ctx, audit.Event{
		CompanyID: companyID,
		UserID:    userID,
		Subject:   subject,
		Action:    string(action),
	})
}

// loginFailed records a failed password check and locks the pair once it
// reaches the attempt limit.
func (s *Service) loginFailed(ctx context.Context, companyID id.CompanyID, userID id.UserID, emailAddr, reason string) {
	ip := metadata.GetClientIP(ctx)
	s.logger.WarnContext(ctx, "login failed",
		"reason", reason,
		"ip", ip,
		"request_id", requestcontext.RequestID(ctx),
	)
	s.securityEvent(ctx, audit.EventLoginFailed, companyID, userID, emailAddr, reason)

	if s.lockout == nil {
		return
	}
	locked, err := s.lockout.RecordFailure(ctx, emailAddr, ip)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to record login failure", "error", err)
		return
	}
	if locked {
		s.securityEvent(ctx, audit.EventLoginLocked, companyID, userID, emailAddr, reason)
	}
}

func (s *Service) securityEvent(ctx context.Context, action audit.AuditEvent, companyID id.CompanyID, userID id.UserID, emailAddr, reason string) {
	if s.security == nil {
		return
	}
	s.security.Emit(ctx, audit.Event{
		CompanyID: companyID,
		UserID:    userID,
		Subject:   emailAddr,
		Action:    string(action),
		Decision:  "denied",
		Reason:    reason,
		IP:        metadata.GetClientIP(ctx),
	})
}

func (s *Service) logAudit(ctx context.Context, event string, attributes ...any) {
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	args := append(attributes, "event", event, "log_type", "audit")
	s.logger.InfoContext(ctx, event, args...)
}
