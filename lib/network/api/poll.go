package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"pollpulse.io/pollpulse/lib/errors"
	"pollpulse.io/pollpulse/lib/network/api/resource"
	"pollpulse.io/pollpulse/lib/network/httputils"
)

type PostPollRequest struct {
	Question  string   `json:"question"`
	Options   []string `json:"options"`
	CreatedBy string   `json:"created_by"`
}

func (api NetworkHandlerAPI) PostPollHandler(w http.ResponseWriter, r *http.Request) {
	var req PostPollRequest
	if err := parseJSONBody(r, &req); err != nil {
		httputils.WriteJSONError(w, errors.ErrorInvalidJSONRequestBody)
		return
	}

	snapshot, err := api.registry.CreatePoll(req.Question, req.Options, req.CreatedBy)
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	api.invalidate("")
	api.log.Debug("poll created", "poll", snapshot.ID)
	api.writeResource(w, http.StatusCreated, snapshot)
}

func (api NetworkHandlerAPI) GetPollsHandler(w http.ResponseWriter, r *http.Request) {
	snapshots := api.registry.Polls()

	rs := make([]resource.Resource, 0, len(snapshots))
	for _, s := range snapshots {
		rs = append(rs, resource.NewPoll(s))
	}

	list := resource.NewResourceList(rs, resource.URLPolls)
	if err := httputils.WriteJSON(w, http.StatusOK, list); err != nil {
		httputils.WriteJSONError(w, err)
	}
}

func (api NetworkHandlerAPI) GetPollHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]

	if httputils.IsEventStream(r) {
		es := NewDefaultEventStream(w, r)
		es.Run(api.broadcaster, id)
		return
	}

	snapshot, err := api.registry.GetPoll(id)
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	api.writeResource(w, http.StatusOK, snapshot)
}

func (api NetworkHandlerAPI) ClosePollHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]

	snapshot, err := api.registry.ClosePoll(id)
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	api.invalidate(id)
	api.log.Debug("poll closed", "poll", id)
	api.writeResource(w, http.StatusOK, snapshot)
}

func (api NetworkHandlerAPI) DeletePollHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]

	if err := api.registry.DeletePoll(id); err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	api.invalidate(id)
	api.log.Debug("poll deleted", "poll", id)
	w.WriteHeader(http.StatusNoContent)
}
