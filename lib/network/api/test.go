package api

import (
	"net/http/httptest"

	observable "github.com/GianlucaGuarini/go-observable"
	"github.com/gorilla/mux"

	"pollpulse.io/pollpulse/lib/common"
	"pollpulse.io/pollpulse/lib/poll"
)

func prepareAPIServer() (*httptest.Server, *poll.Registry, *poll.Broadcaster) {
	conf := common.NewConfig()
	broadcaster := poll.NewBroadcaster(conf, observable.New())
	registry := poll.NewRegistry(conf, broadcaster)
	apiHandler := NewNetworkHandlerAPI(registry, broadcaster, "", common.NopLogger())

	router := mux.NewRouter()
	router.HandleFunc(PostPollHandlerPattern, apiHandler.PostPollHandler).Methods("POST")
	router.HandleFunc(GetPollsHandlerPattern, apiHandler.GetPollsHandler).Methods("GET")
	router.HandleFunc(GetPollHandlerPattern, apiHandler.GetPollHandler).Methods("GET")
	router.HandleFunc(PostVoteHandlerPattern, apiHandler.PostVoteHandler).Methods("POST")
	router.HandleFunc(ClosePollHandlerPattern, apiHandler.ClosePollHandler).Methods("PATCH")
	router.HandleFunc(DeletePollHandlerPattern, apiHandler.DeletePollHandler).Methods("DELETE")
	router.HandleFunc(GetVoteStatusHandlerPattern, apiHandler.GetVoteStatusHandler).Methods("GET")

	ts := httptest.NewServer(router)
	return ts, registry, broadcaster
}

func preparePoll(registry *poll.Registry) *poll.Snapshot {
	snapshot, err := registry.CreatePoll("favorite color?", []string{"red", "blue"}, "tester")
	if err != nil {
		panic(err)
	}
	return snapshot
}
