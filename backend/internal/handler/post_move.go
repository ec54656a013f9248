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

// MovePosts moves posts of the path topic into the topic named by the body,
// or into a new topic when the body carries a title.
func (h *Handler) MovePosts(w http.ResponseWriter, r *http.Request) {
	user := mw.GetUserFromContext(r)
	if user == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	originId, err := parseIdParam(chi.URLParam(r, "topic"), "topic ID")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var body api.MovePostsRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	origin, err := h.topic.Find(r.Context(), *user, domain.TopicId(originId))
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	req := domain.RelocationRequest{
		OriginTopic: origin,
		ActingUser:  *user,
		PostIds:     body.PostIds,
	}

	var result domain.RelocationResult
	if body.Title != nil {
		result, err = h.postMove.ToNewTopic(r.Context(), req, *body.Title)
	} else {
		result, err = h.postMove.ToTopic(r.Context(), req, *body.DestinationTopicId)
	}
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, api.MovePostsResponse{
		Topic: api.NewTopicResponse(result.Destination, service.TopicURL(h.cfg.Public.BaseURL, result.Destination)),
	})
}
