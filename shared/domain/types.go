package domain

import "github.com/lib/pq"

type (
	Email      = string
	UserId     = int64
	Emails     = pq.StringArray
	CategoryId = int64

	TopicTitle = string
	TopicId    = int64

	PostId     = int64
	PostNumber = int
	PostRaw    = string
)

type PostType int

const (
	PostTypeRegular PostType = iota + 1
	PostTypeModeratorAction
)

func (t PostType) String() string {
	switch t {
	case PostTypeRegular:
		return "regular"
	case PostTypeModeratorAction:
		return "moderator_action"
	default:
		return "unknown"
	}
}
