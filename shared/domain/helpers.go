package domain

import (
	"fmt"
	"time"
)

// for debug
func (p *Post) String() string {
	return fmt.Sprintf("[id:%d, topic:%d, number:%d, sort:%d, user:%d, type:%s, created:%s]",
		p.Id, p.TopicId, p.PostNumber, p.SortOrder, p.UserId, p.Type, p.CreatedAt.Format(time.StampMilli))
}

func (t *Topic) String() string {
	return fmt.Sprintf("[id:%d, title:%s, category:%d, posts:%d, highest:%d]",
		t.Id, t.Title, t.CategoryId, t.PostsCount, t.HighestPostNumber)
}
