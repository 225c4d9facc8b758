package api

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"pollpulse.io/pollpulse/lib/common"
	"pollpulse.io/pollpulse/lib/errors"
	"pollpulse.io/pollpulse/lib/network/httputils"
)

type PostVoteRequest struct {
	OptionID    string `json:"option_id"`
	Fingerprint string `json:"fingerprint"`
}

func (api NetworkHandlerAPI) PostVoteHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]

	var req PostVoteRequest
	if err := parseJSONBody(r, &req); err != nil {
		httputils.WriteJSONError(w, errors.ErrorInvalidJSONRequestBody)
		return
	}

	fingerprint := strings.TrimSpace(req.Fingerprint)

	snapshot, err := api.registry.SubmitVote(id, req.OptionID, fingerprint)
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	api.invalidate(id)
	api.log.Debug("vote accepted", "poll", id, "option", req.OptionID)
	api.writeResource(w, http.StatusOK, snapshot)
}

func (api NetworkHandlerAPI) GetVoteStatusHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id := vars["id"]

	fingerprint := strings.TrimSpace(common.GetUrlQuery(r.URL.Query(), "fingerprint", ""))
	if len(fingerprint) < 1 {
		httputils.WriteJSONError(w, errors.ErrorMissingFingerprint)
		return
	}

	if _, err := api.registry.GetPoll(id); err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	body := map[string]interface{}{
		"poll_id":   id,
		"has_voted": api.registry.HasVoted(id, fingerprint),
	}
	if err := httputils.WriteJSON(w, http.StatusOK, body); err != nil {
		httputils.WriteJSONError(w, err)
	}
}
