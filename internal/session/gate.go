package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"projecttracker/internal/model"
	"projecttracker/internal/mq"
	"projecttracker/internal/repository"
	"projecttracker/internal/util"
	"projecttracker/pkg/logger"
	"projecttracker/pkg/metrics"
	"projecttracker/pkg/otel"
)

// Credentials is the persistence the gate needs.
type Credentials interface {
	Create(ctx context.Context, c *model.Credential) error
	FindByUsername(ctx context.Context, username string) (*model.Credential, error)
}

type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

type Options struct {
	Secret    string
	TTL       time.Duration
	Tokens    TokenStore // defaults to a MemoryTokenStore
	Publisher Publisher  // optional
}

// Gate holds the single authenticated identity of the running process. It
// does not guard the store itself; callers check Require first.
type Gate struct {
	mu      sync.RWMutex
	current string

	creds     Credentials
	tokens    TokenStore
	publisher Publisher
	secret    string
	ttl       time.Duration
	logger    *zap.Logger
}

func NewGate(creds Credentials, opts Options, log *zap.Logger) *Gate {
	if opts.Tokens == nil {
		opts.Tokens = NewMemoryTokenStore()
	}
	if opts.TTL <= 0 {
		opts.TTL = 24 * time.Hour
	}
	return &Gate{
		creds:     creds,
		tokens:    opts.Tokens,
		publisher: opts.Publisher,
		secret:    opts.Secret,
		ttl:       opts.TTL,
		logger:    log.Named("session"),
	}
}

// Register stores a bcrypt hash of password under username.
func (g *Gate) Register(ctx context.Context, username, password string) (err error) {
	ctx, span := otel.SessionSpan(ctx, "register")
	defer func() {
		metrics.IncrementAuthAttempt("register", resultOf(err))
		otel.Finish(span, err, new(*model.ValidationError), new(*DuplicateUserError))
	}()

	username = strings.TrimSpace(username)
	if username == "" {
		return &model.ValidationError{Field: "username", Message: "is required"}
	}
	if password == "" {
		return &model.ValidationError{Field: "password", Message: "is required"}
	}

	hash, err := util.HashPassword(password)
	if errors.Is(err, util.ErrPasswordTooLong) {
		return &model.ValidationError{Field: "password", Message: "must be at most 72 bytes"}
	}
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	err = g.creds.Create(ctx, &model.Credential{Username: username, PasswordHash: hash})
	if errors.Is(err, repository.ErrDuplicate) {
		g.logger.Info("Registration rejected, username taken", zap.String("username", username))
		return &DuplicateUserError{Username: username}
	}
	if err != nil {
		return err
	}

	g.logger.Info("User registered", zap.String("username", username))
	g.publish(ctx, mq.RoutingUserRegistered, username)
	return nil
}

// Authenticate binds the session to username on an exact password match.
// The username is trimmed the same way Register trims it. A failed
// attempt leaves any existing binding in place.
func (g *Gate) Authenticate(ctx context.Context, username, password string) (err error) {
	ctx, span := otel.SessionSpan(ctx, "authenticate")
	defer func() {
		metrics.IncrementAuthAttempt("authenticate", resultOf(err))
		otel.Finish(span, err, new(*InvalidCredentialsError))
	}()

	c, err := g.creds.FindByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, repository.ErrNotFound) {
		return &InvalidCredentialsError{}
	}
	if err != nil {
		return err
	}
	if !util.CheckPassword(password, c.PasswordHash) {
		return &InvalidCredentialsError{}
	}

	g.mu.Lock()
	previous := g.current
	g.current = c.Username
	g.mu.Unlock()

	if previous != "" && previous != c.Username {
		g.logger.Info("Session re-bound", zap.String("from", previous), zap.String("to", c.Username))
	}
	logger.WithUser(g.logger, c.Username).Info("User authenticated")

	g.saveToken(ctx, c.Username)
	g.publish(ctx, mq.RoutingUserLoggedIn, c.Username)
	return nil
}

// Logout is idempotent.
func (g *Gate) Logout(ctx context.Context) {
	g.mu.Lock()
	previous := g.current
	g.current = ""
	g.mu.Unlock()

	if err := g.tokens.Delete(ctx); err != nil {
		g.logger.Warn("Failed to delete session token", zap.Error(err))
	}
	if previous != "" {
		logger.WithUser(g.logger, previous).Info("User logged out")
	}
}

func (g *Gate) IsAuthenticated() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.current != ""
}

// CurrentUser returns "" when anonymous.
func (g *Gate) CurrentUser() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.current
}

// Require returns ErrNotAuthenticated unless someone is logged in.
func (g *Gate) Require() error {
	if !g.IsAuthenticated() {
		return ErrNotAuthenticated
	}
	return nil
}

// Restore binds the session from a stored token that is still valid and
// names an existing user. It reports whether a session was restored.
func (g *Gate) Restore(ctx context.Context) (bool, error) {
	ctx, span := otel.SessionSpan(ctx, "restore")
	var err error
	defer func() { otel.Finish(span, err) }()

	token, err := g.tokens.Load(ctx)
	if err != nil || token == "" {
		return false, err
	}

	username, parseErr := util.ParseJWT(token, g.secret)
	if parseErr != nil {
		g.logger.Info("Discarding stored session token", zap.Error(parseErr))
		err = g.tokens.Delete(ctx)
		return false, err
	}

	if _, findErr := g.creds.FindByUsername(ctx, username); findErr != nil {
		if errors.Is(findErr, repository.ErrNotFound) {
			err = g.tokens.Delete(ctx)
			return false, err
		}
		err = findErr
		return false, err
	}

	g.mu.Lock()
	g.current = username
	g.mu.Unlock()

	logger.WithUser(g.logger, username).Info("Session restored")
	return true, nil
}

func (g *Gate) saveToken(ctx context.Context, username string) {
	token, err := util.GenerateJWT(username, g.secret, g.ttl)
	if err != nil {
		g.logger.Warn("Failed to mint session token", zap.Error(err))
		return
	}
	if err := g.tokens.Save(ctx, token, g.ttl); err != nil {
		g.logger.Warn("Failed to save session token", zap.Error(err))
	}
}

func (g *Gate) publish(ctx context.Context, key, username string) {
	if g.publisher == nil {
		return
	}
	payload := mq.UserPayload{Username: username, At: time.Now().UTC()}
	if err := g.publisher.Publish(ctx, key, payload); err != nil {
		g.logger.Warn("Failed to publish user event", zap.String("routing_key", key), zap.Error(err))
	}
}

func resultOf(err error) string {
	var ve *model.ValidationError
	var de *DuplicateUserError
	var ie *InvalidCredentialsError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &ve):
		return "invalid"
	case errors.As(err, &de):
		return "duplicate"
	case errors.As(err, &ie):
		return "rejected"
	default:
		return "error"
	}
}
