package app

import (
	"context"

	"board/internal/domain"
)

// ErrAdminOnly is returned when a non-admin calls an admin operation.
var ErrAdminOnly = domain.E(domain.KindForbidden, "관리자만 접근할 수 있습니다.")

// MemberService implements admin-only member management.
type MemberService struct {
	users         domain.UserRepository
	adminUsername string
}

// NewMemberService creates a MemberService. adminUsername is hidden from the
// member list and cannot be blacklisted.
func NewMemberService(users domain.UserRepository, adminUsername string) *MemberService {
	return &MemberService{users: users, adminUsername: adminUsername}
}

// ListMembers returns all members newest first, numbered from 1.
func (s *MemberService) ListMembers(ctx context.Context, who domain.Identity) ([]domain.Member, error) {
	if !who.IsAdmin() {
		return nil, ErrAdminOnly
	}
	users, err := s.users.ListMembers(ctx, s.adminUsername)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Member, 0, len(users))
	for i, u := range users {
		out = append(out, domain.Member{
			ID:            u.ID,
			Number:        i + 1,
			Username:      u.Username,
			IsBlacklisted: u.IsBlacklisted,
			CreatedAt:     u.CreatedAt,
		})
	}
	return out, nil
}

// SetBlacklist flags or unflags a member. Unknown ids and the admin account
// are silently ignored.
func (s *MemberService) SetBlacklist(ctx context.Context, who domain.Identity, memberID int64, blacklisted bool) error {
	if !who.IsAdmin() {
		return ErrAdminOnly
	}
	return s.users.SetBlacklisted(ctx, memberID, s.adminUsername, blacklisted)
}
