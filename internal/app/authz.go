package app

import "board/internal/domain"

// Action is a mutation on a post that needs authorization.
type Action int

const (
	ActionUpdate Action = iota
	ActionDelete
)

func (a Action) String() string {
	if a == ActionDelete {
		return "delete"
	}
	return "update"
}

var errPasswordMismatch = domain.E(domain.KindForbidden, "비밀번호가 일치하지 않습니다.")

// Authorize decides whether who may perform action on a post written by
// author and protected by passwordHash. The checks run in this order:
//
//  1. the admin may delete anything;
//  2. a logged-in caller whose username equals author owns the post;
//  3. anyone else must supply the post's password.
//
// The admin override covers deletion only. An admin editing someone else's
// post goes through the password check like everybody else.
func Authorize(creds Credentials, action Action, author, passwordHash string, who domain.Identity, password string) error {
	if action == ActionDelete && who.IsAdmin() {
		return nil
	}
	if !who.IsAnonymous() && who.Username == author {
		return nil
	}
	if passwordHash == "" || !creds.Verify(passwordHash, password) {
		return errPasswordMismatch
	}
	return nil
}
