package service

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/kalakrut/portal/internal/core/domain"
	"github.com/kalakrut/portal/internal/core/ports"
)

// ModerationService keeps moderation cases in memory, in creation order.
type ModerationService struct {
	mu    sync.Mutex
	cases []domain.ModerationCase
	log   zerolog.Logger
	now   func() time.Time
}

var _ ports.ModerationService = (*ModerationService)(nil)

func NewModerationService(log zerolog.Logger) *ModerationService {
	return &ModerationService{
		log: log,
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (s *ModerationService) Open(sub ports.ModerationSubject) (domain.ModerationCase, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.openCaseLocked(sub.UserID); ok {
		return c, false
	}

	violation := sub.ViolationType
	if violation == "" {
		violation = domain.DefaultViolationType
	}
	snippet := sub.ContentSnippet
	if snippet == "" {
		snippet = domain.DefaultContentSnippet
	}

	now := s.now()
	c := domain.ModerationCase{
		ID:             "MOD-" + strings.ToUpper(uuid.NewString()[:8]),
		UserID:         sub.UserID,
		UserName:       sub.UserName,
		UserRole:       sub.UserRole,
		ViolationType:  violation,
		ContentSnippet: snippet,
		Status:         domain.StatusBlocked,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	s.cases = append(s.cases, c)

	s.log.Warn().Str("case_id", c.ID).Str("user_id", c.UserID).Str("violation", violation).Msg("moderation case opened")
	return c, true
}

func (s *ModerationService) Appeal(caseID, userID, reason string) (domain.ModerationCase, bool) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return domain.ModerationCase{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.indexLocked(caseID)
	if !ok {
		return domain.ModerationCase{}, false
	}
	c := &s.cases[i]
	if c.UserID != userID || !c.Status.CanTransitionTo(domain.StatusAppealPending) {
		return *c, false
	}

	c.Status = domain.StatusAppealPending
	c.AppealReason = reason
	c.UpdatedAt = s.now()

	s.log.Info().Str("case_id", c.ID).Str("user_id", c.UserID).Msg("appeal submitted")
	return *c, true
}

func (s *ModerationService) Resolve(actor domain.CapabilitySet, caseID string, decision domain.ModerationDecision) (domain.ModerationCase, bool, error) {
	if !actor.Has(domain.CapManageAllContracts) {
		return domain.ModerationCase{}, false, domain.ErrPermissionDenied
	}
	next, ok := decision.Status()
	if !ok {
		return domain.ModerationCase{}, false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i, found := s.indexLocked(caseID)
	if !found {
		return domain.ModerationCase{}, false, domain.ErrCaseNotFound
	}
	c := &s.cases[i]
	if !c.Status.CanTransitionTo(next) {
		return *c, false, nil
	}

	c.Status = next
	c.UpdatedAt = s.now()

	s.log.Info().Str("case_id", c.ID).Str("status", string(next)).Msg("moderation case resolved")
	return *c, true, nil
}

func (s *ModerationService) Get(caseID string) (domain.ModerationCase, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.indexLocked(caseID)
	if !ok {
		return domain.ModerationCase{}, false
	}
	return s.cases[i], true
}

func (s *ModerationService) OpenCaseFor(userID string) (domain.ModerationCase, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.openCaseLocked(userID)
}

func (s *ModerationService) List() []domain.ModerationCase {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]domain.ModerationCase(nil), s.cases...)
}

func (s *ModerationService) openCaseLocked(userID string) (domain.ModerationCase, bool) {
	for _, c := range s.cases {
		if c.UserID == userID && c.Status.Open() {
			return c, true
		}
	}
	return domain.ModerationCase{}, false
}

func (s *ModerationService) indexLocked(caseID string) (int, bool) {
	for i := range s.cases {
		if s.cases[i].ID == caseID {
			return i, true
		}
	}
	return 0, false
}
