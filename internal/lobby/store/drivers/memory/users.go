package memory

import (
	"slices"

	"github.com/aussiebroadwan/breakroom/internal/lobby/domain"
)

// Users is the lobby directory. order holds ids in join order; byID holds records.
type Users struct {
	byID  map[string]domain.User
	order []string
}

func NewUsers() *Users {
	return &Users{byID: make(map[string]domain.User)}
}

func (u *Users) Admit(user domain.User) domain.User {
	if _, ok := u.byID[user.ID]; !ok {
		u.order = append(u.order, user.ID)
	}
	u.byID[user.ID] = user
	return user
}

func (u *Users) Remove(userID string) {
	if _, ok := u.byID[userID]; !ok {
		return
	}
	delete(u.byID, userID)
	if i := slices.Index(u.order, userID); i >= 0 {
		u.order = slices.Delete(u.order, i, i+1)
	}
}

func (u *Users) Get(userID string) (domain.User, bool) {
	user, ok := u.byID[userID]
	return user, ok
}

func (u *Users) Snapshot() []domain.User {
	out := make([]domain.User, 0, len(u.order))
	for _, id := range u.order {
		out = append(out, u.byID[id])
	}
	return out
}

func (u *Users) Len() int { return len(u.order) }
