package service

import (
	"net/http"
	"testing"
	"time"

	"github.com/itchan-dev/postmove/shared/domain"
	internal_errors "github.com/itchan-dev/postmove/shared/errors"
	"github.com/stretchr/testify/assert"
)

func TestGuardianCanSee(t *testing.T) {
	guardian := NewGuardian(&MockCategoryAccess{allowed: map[domain.CategoryId][]string{
		restrictedCategory: {"corp.example", "partner.example"},
	}})
	deletedAt := time.Now()

	public := domain.Topic{Id: 1, CategoryId: publicCategory}
	restricted := domain.Topic{Id: 2, CategoryId: restrictedCategory}
	deleted := domain.Topic{Id: 3, CategoryId: publicCategory, DeletedAt: &deletedAt}

	tests := []struct {
		name  string
		user  domain.User
		topic domain.Topic
		want  bool
	}{
		{"anyone sees public topics", domain.User{Id: 5}, public, true},
		{"matching domain sees restricted topic", domain.User{Id: 5, EmailDomain: "partner.example"}, restricted, true},
		{"other domain does not", domain.User{Id: 5, EmailDomain: "elsewhere.example"}, restricted, false},
		{"missing domain does not", domain.User{Id: 5}, restricted, false},
		{"admin sees restricted topic", domain.User{Id: 1, Admin: true}, restricted, true},
		{"deleted topic is hidden", domain.User{Id: 5, EmailDomain: "corp.example"}, deleted, false},
		{"admin sees deleted topic", domain.User{Id: 1, Admin: true}, deleted, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, guardian.CanSee(tt.user, tt.topic))
		})
	}
}

func TestGuardianEnsureCanSee(t *testing.T) {
	guardian := NewGuardian(&MockCategoryAccess{allowed: map[domain.CategoryId][]string{
		restrictedCategory: {"corp.example"},
	}})
	user := domain.User{Id: 5, EmailDomain: "elsewhere.example"}

	err := guardian.EnsureCanSee(user, nil)
	assert.Equal(t, http.StatusNotFound, internal_errors.StatusCode(err))

	err = guardian.EnsureCanSee(user, &domain.Topic{Id: 2, CategoryId: restrictedCategory})
	assert.Equal(t, http.StatusForbidden, internal_errors.StatusCode(err))

	assert.NoError(t, guardian.EnsureCanSee(user, &domain.Topic{Id: 1, CategoryId: publicCategory}))
}
