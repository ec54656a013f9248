package service

import (
	"slices"

	"github.com/itchan-dev/postmove/shared/domain"
	internal_errors "github.com/itchan-dev/postmove/shared/errors"
)

type CategoryAccess interface {
	AllowedDomains(category domain.CategoryId) []string
}

// Guardian answers visibility questions about topics.
type Guardian struct {
	access CategoryAccess
}

func NewGuardian(access CategoryAccess) *Guardian {
	return &Guardian{access: access}
}

func (g *Guardian) CanSee(user domain.User, topic domain.Topic) bool {
	if user.Admin {
		return true
	}
	if topic.DeletedAt != nil {
		return false
	}
	allowed := g.access.AllowedDomains(topic.CategoryId)
	if len(allowed) == 0 {
		return true
	}
	return user.EmailDomain != "" && slices.Contains(allowed, user.EmailDomain)
}

// EnsureCanSee fails with NotFound for a missing topic and Forbidden for an
// invisible one.
func (g *Guardian) EnsureCanSee(user domain.User, topic *domain.Topic) error {
	if topic == nil {
		return internal_errors.NotFound("Topic not found")
	}
	if !g.CanSee(user, *topic) {
		return internal_errors.Forbidden("You are not allowed to see this topic")
	}
	return nil
}
