package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/itchan-dev/postmove/backend/internal/service"
	"github.com/itchan-dev/postmove/shared/api"
	"github.com/itchan-dev/postmove/shared/domain"
	mw "github.com/itchan-dev/postmove/shared/middleware"
	"github.com/itchan-dev/postmove/shared/utils"
)

func (h *Handler) GetTopic(w http.ResponseWriter, r *http.Request) {
	user := mw.GetUserFromContext(r)
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	topicId, err := parseIdParam(chi.URLParam(r, "topic"), "topic ID")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	topic, err := h.topic.Get(r.Context(), *user, domain.TopicId(topicId))
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	response := api.TopicWithPostsResponse{
		TopicResponse: api.NewTopicResponse(topic.Topic, service.TopicURL(h.cfg.Public.BaseURL, topic.Topic)),
		Posts:         make([]api.PostResponse, 0, len(topic.Posts)),
	}
	for _, p := range topic.Posts {
		response.Posts = append(response.Posts, api.NewPostResponse(*p))
	}
	utils.WriteJSON(w, http.StatusOK, response)
}
