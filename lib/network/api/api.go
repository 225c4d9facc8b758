package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	logging "github.com/inconshreveable/log15"

	"pollpulse.io/pollpulse/lib/common"
	"pollpulse.io/pollpulse/lib/network/api/resource"
	"pollpulse.io/pollpulse/lib/network/httpcache"
	"pollpulse.io/pollpulse/lib/network/httputils"
	"pollpulse.io/pollpulse/lib/poll"
)

// API Endpoint patterns
const (
	PostPollHandlerPattern      = "/polls"
	GetPollsHandlerPattern      = "/polls"
	GetPollHandlerPattern       = "/polls/{id}"
	DeletePollHandlerPattern    = "/polls/{id}"
	PostVoteHandlerPattern      = "/polls/{id}/votes"
	ClosePollHandlerPattern     = "/polls/{id}/close"
	GetVoteStatusHandlerPattern = "/polls/{id}/voted"
)

type NetworkHandlerAPI struct {
	registry    *poll.Registry
	broadcaster *poll.Broadcaster
	urlPrefix   string
	cache       httpcache.Cacher
	log         logging.Logger
}

func NewNetworkHandlerAPI(registry *poll.Registry, broadcaster *poll.Broadcaster, urlPrefix string, logger logging.Logger) *NetworkHandlerAPI {
	return &NetworkHandlerAPI{
		registry:    registry,
		broadcaster: broadcaster,
		urlPrefix:   urlPrefix,
		cache:       httpcache.NewNopClient(),
		log:         logger,
	}
}

// SetCache replaces the nop cache; must be called before the handlers
// start serving.
func (api *NetworkHandlerAPI) SetCache(c httpcache.Cacher) {
	api.cache = c
}

func (api NetworkHandlerAPI) HandlerURLPattern(pattern string) string {
	return fmt.Sprintf("%s%s", api.urlPrefix, pattern)
}

// invalidate drops the cached list page and, when `pollID` is set, the
// cached poll page.
func (api NetworkHandlerAPI) invalidate(pollID string) {
	api.cache.Remove(api.HandlerURLPattern(GetPollsHandlerPattern))
	if len(pollID) > 0 {
		api.cache.Remove(api.HandlerURLPattern("/polls/" + pollID))
	}
}

func renderEventStream(args ...interface{}) ([]byte, error) {
	if len(args) <= 1 {
		return nil, fmt.Errorf("render: value is empty")
	}
	i := args[1]

	switch v := i.(type) {
	case poll.Event:
		return json.Marshal(v)
	case *poll.Snapshot:
		return json.Marshal(poll.Event{Type: poll.EventPollData, Poll: v})
	case httputils.HALResource:
		return json.Marshal(v.Resource())
	}

	return json.Marshal(i)
}

func (api NetworkHandlerAPI) writeResource(w http.ResponseWriter, code int, snapshot *poll.Snapshot) {
	if err := httputils.WriteJSON(w, code, resource.NewPoll(snapshot)); err != nil {
		api.log.Error("failed to write response", "err", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// parseJSONBody decodes the request body and rejects trailing garbage.
func parseJSONBody(r *http.Request, v interface{}) error {
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(v); err != nil {
		return err
	}
	return nil
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	body := map[string]string{
		"status":    "ok",
		"timestamp": common.NowISO8601(),
	}
	httputils.WriteJSON(w, http.StatusOK, body)
}

// HealthHandler answers `/healthz` outside the API prefix.
var HealthHandler http.HandlerFunc = healthHandler
