package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/kalakrut/portal/internal/core/domain"
	"github.com/kalakrut/portal/internal/core/ports"
)

// Resolver implements ports.SessionResolver on top of a UserDirectory.
type Resolver struct {
	dir          ports.UserDirectory
	hasher       ports.PasswordHasher
	templates    map[domain.Role]domain.Profile
	autoRegister bool
	validate     *validator.Validate
	log          zerolog.Logger
}

var _ ports.SessionResolver = (*Resolver)(nil)

// NewResolver wires a resolver. autoRegister enables the registration branch
// of LoginOrRegister; when false it behaves exactly like Resolve.
func NewResolver(
	dir ports.UserDirectory,
	hasher ports.PasswordHasher,
	templates map[domain.Role]domain.Profile,
	autoRegister bool,
	log zerolog.Logger,
) *Resolver {
	if templates == nil {
		templates = map[domain.Role]domain.Profile{}
	}
	return &Resolver{
		dir:          dir,
		hasher:       hasher,
		templates:    templates,
		autoRegister: autoRegister,
		validate:     validator.New(),
		log:          log,
	}
}

func (r *Resolver) Resolve(ctx context.Context, req ports.LoginRequest, wallet ports.WalletConnector) (domain.Profile, error) {
	if err := r.validate.Struct(req); err != nil {
		return domain.Profile{}, fmt.Errorf("%w: %v", domain.ErrInvalidLoginRequest, err)
	}

	rec, err := r.match(ctx, req, wallet)
	if err != nil {
		reason, _ := domain.AuthFailure(err)
		r.log.Warn().
			Str("role", string(req.Role)).
			Str("method", string(req.Method)).
			Str("mode", string(req.Mode)).
			Str("reason", string(reason)).
			Msg("login rejected")
		return domain.Profile{}, err
	}

	r.log.Info().
		Str("user_id", rec.ID).
		Str("role", string(rec.Role)).
		Str("method", string(req.Method)).
		Str("mode", string(req.Mode)).
		Msg("login resolved")
	return r.Hydrate(rec), nil
}

func (r *Resolver) LoginOrRegister(ctx context.Context, req ports.LoginRequest, wallet ports.WalletConnector) (domain.Profile, bool, error) {
	if !r.autoRegister || req.Mode != domain.ModeLive || req.Method != domain.MethodWeb2 {
		p, err := r.Resolve(ctx, req, wallet)
		return p, false, err
	}
	if err := r.validate.Struct(req); err != nil {
		return domain.Profile{}, false, fmt.Errorf("%w: %v", domain.ErrInvalidLoginRequest, err)
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return domain.Profile{}, false, &domain.AuthError{Reason: domain.ReasonMissingCredentials}
	}
	if _, known := r.dir.FindByEmail(req.Email); known {
		p, err := r.Resolve(ctx, req, wallet)
		return p, false, err
	}
	// Privileged roles are never self-registered.
	if req.Role == domain.RoleAdmin || req.Role == domain.RoleSystemAdminLive {
		return domain.Profile{}, false, &domain.AuthError{Reason: domain.ReasonNotFound}
	}

	rec, err := r.Register(ctx, ports.RegistrationInput{
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if errors.Is(err, domain.ErrRegistrationConflict) {
		// Lost a race with another registration for the same email.
		p, rerr := r.Resolve(ctx, req, wallet)
		return p, false, rerr
	}
	if err != nil {
		return domain.Profile{}, false, err
	}
	// The record is committed; an abandoned caller still leaves it behind.
	if err := ctx.Err(); err != nil {
		return domain.Profile{}, true, err
	}
	return r.Hydrate(rec), true, nil
}

func (r *Resolver) Register(ctx context.Context, in ports.RegistrationInput) (domain.UserRecord, error) {
	if err := r.validate.Struct(in); err != nil {
		return domain.UserRecord{}, fmt.Errorf("%w: %v", domain.ErrInvalidLoginRequest, err)
	}
	if !in.Role.Valid() {
		return domain.UserRecord{}, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidLoginRequest, in.Role)
	}
	email := strings.TrimSpace(in.Email)
	if _, exists := r.dir.FindByEmail(email); exists {
		return domain.UserRecord{}, fmt.Errorf("register: %w: email already registered", domain.ErrRegistrationConflict)
	}

	hash, err := r.hasher.Hash(in.Password)
	if err != nil {
		return domain.UserRecord{}, fmt.Errorf("register: %w", err)
	}

	local := domain.EmailLocalPart(email)
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = local
	}
	location := strings.TrimSpace(in.Location)
	if location == "" {
		location = "Not set"
	}

	rec, err := r.dir.Insert(ctx, domain.UserRecord{
		Name:          name,
		Avatar:        defaultAvatar(local),
		Location:      location,
		Role:          in.Role,
		Email:         email,
		PasswordHash:  hash,
		WalletAddress: strings.TrimSpace(in.WalletAddress),
	})
	if err != nil {
		return domain.UserRecord{}, err
	}

	r.log.Info().Str("user_id", rec.ID).Str("role", string(rec.Role)).Msg("user registered")
	return rec, nil
}

func (r *Resolver) Restore(userID string) (domain.Profile, error) {
	rec, ok := r.dir.FindByID(userID)
	if !ok {
		return domain.Profile{}, domain.ErrUserNotFound
	}
	return r.Hydrate(rec), nil
}

// Hydrate overlays rec on its role template, falling back to the reveller
// template for roles without one.
func (r *Resolver) Hydrate(rec domain.UserRecord) domain.Profile {
	tmpl, ok := r.templates[rec.Role]
	if !ok {
		tmpl = r.templates[domain.RoleReveller]
	}
	return domain.HydrateProfile(tmpl, rec)
}

func (r *Resolver) match(ctx context.Context, req ports.LoginRequest, wallet ports.WalletConnector) (domain.UserRecord, error) {
	if req.Mode == domain.ModeDemo {
		if req.Method == domain.MethodWeb3 {
			if _, err := r.connect(ctx, wallet); err != nil {
				return domain.UserRecord{}, err
			}
		}
		demo := r.dir.Match(func(u domain.UserRecord) bool { return u.IsMock && u.Role == req.Role })
		if len(demo) == 0 {
			return domain.UserRecord{}, &domain.AuthError{Reason: domain.ReasonNotFound}
		}
		return demo[0], nil
	}

	if req.Method == domain.MethodWeb3 {
		addr, err := r.connect(ctx, wallet)
		if err != nil {
			return domain.UserRecord{}, err
		}
		live := r.dir.Match(func(u domain.UserRecord) bool { return !u.IsMock && u.HasWallet(addr) })
		return pickRole(live, req.Role, req.Role)
	}

	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return domain.UserRecord{}, &domain.AuthError{Reason: domain.ReasonMissingCredentials}
	}
	// A live "Admin" login targets the privileged live-admin role, never
	// records literally tagged admin.
	target := req.Role
	if target == domain.RoleAdmin {
		target = domain.RoleSystemAdminLive
	}

	live := r.dir.Match(func(u domain.UserRecord) bool { return !u.IsMock && u.HasEmail(req.Email) })
	if len(live) == 0 {
		return domain.UserRecord{}, &domain.AuthError{Reason: domain.ReasonNotFound}
	}
	var authenticated []domain.UserRecord
	for _, u := range live {
		if r.hasher.Compare(u.PasswordHash, req.Password) {
			authenticated = append(authenticated, u)
		}
	}
	if len(authenticated) == 0 {
		return domain.UserRecord{}, &domain.AuthError{Reason: domain.ReasonWrongPassword}
	}
	return pickRole(authenticated, target, req.Role)
}

// pickRole returns the first candidate holding target. requested is what the
// caller asked for and is reported on mismatch.
func pickRole(candidates []domain.UserRecord, target, requested domain.Role) (domain.UserRecord, error) {
	if len(candidates) == 0 {
		return domain.UserRecord{}, &domain.AuthError{Reason: domain.ReasonNotFound}
	}
	for _, u := range candidates {
		if u.Role == target {
			return u, nil
		}
	}
	return domain.UserRecord{}, &domain.AuthError{
		Reason:    domain.ReasonRoleMismatch,
		Requested: requested,
		Actual:    candidates[0].Role,
	}
}

func (r *Resolver) connect(ctx context.Context, wallet ports.WalletConnector) (string, error) {
	if wallet == nil {
		return "", &domain.AuthError{Reason: domain.ReasonWalletUnavailable}
	}
	addr, err := wallet.Connect(ctx)
	if err != nil || strings.TrimSpace(addr) == "" {
		r.log.Debug().Err(err).Msg("wallet connection unavailable")
		return "", &domain.AuthError{Reason: domain.ReasonWalletUnavailable}
	}
	return addr, nil
}

func defaultAvatar(name string) string {
	return "https://ui-avatars.com/api/?name=" + url.QueryEscape(name) + "&background=random"
}
