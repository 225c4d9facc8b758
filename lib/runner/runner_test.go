package runner

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"pollpulse.io/pollpulse/lib/common"
	"pollpulse.io/pollpulse/lib/network"
)

func prepareRunner(t *testing.T, conf common.Config) (*httptest.Server, *Runner) {
	endpoint, err := common.ParseEndpoint("http://127.0.0.1:12345")
	require.NoError(t, err)

	config, err := network.NewServerConfigFromEndpoint("pollpulse-test", endpoint)
	require.NoError(t, err)

	r, err := NewRunner(network.NewServer(config), conf)
	require.NoError(t, err)
	r.Ready()

	ts := httptest.NewServer(r.Network().Router())
	return ts, r
}

func createPoll(t *testing.T, ts *httptest.Server, question string) map[string]interface{} {
	body, err := json.Marshal(map[string]interface{}{
		"question":   question,
		"options":    []string{"yes", "no"},
		"created_by": "runner-test",
	})
	require.NoError(t, err)

	resp, err := ts.Client().Post(ts.URL+"/api/v1/polls", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	return created
}

func TestRunnerServesAPI(t *testing.T) {
	ts, _ := prepareRunner(t, common.NewConfig())
	defer ts.Close()

	created := createPoll(t, ts, "ship it?")
	pollID := created["id"].(string)

	resp, err := ts.Client().Get(ts.URL + "/api/v1/polls/" + pollID)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.Equal(t, "ship it?", got["question"])
}

func TestRunnerVoteFlow(t *testing.T) {
	ts, r := prepareRunner(t, common.NewConfig())
	defer ts.Close()

	created := createPoll(t, ts, "tabs or spaces?")
	pollID := created["id"].(string)
	options := created["options"].([]interface{})
	optionID := options[0].(map[string]interface{})["id"].(string)

	body, err := json.Marshal(map[string]string{
		"option_id":   optionID,
		"fingerprint": "fp-runner",
	})
	require.NoError(t, err)

	resp, err := ts.Client().Post(ts.URL+"/api/v1/polls/"+pollID+"/votes", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	require.True(t, r.Registry().HasVoted(pollID, "fp-runner"))
}

func TestRunnerHealthz(t *testing.T) {
	ts, _ := prepareRunner(t, common.NewConfig())
	defer ts.Close()

	resp, err := ts.Client().Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "ok", body["status"])
}

func TestRunnerMetricEndpoint(t *testing.T) {
	ts, _ := prepareRunner(t, common.NewConfig())
	defer ts.Close()

	resp, err := ts.Client().Get(ts.URL + "/metric")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRunnerHTTPCache(t *testing.T) {
	conf := common.NewConfig()
	conf.HTTPCacheAdapter = common.HTTPCacheMemoryAdapterName

	ts, _ := prepareRunner(t, conf)
	defer ts.Close()

	createPoll(t, ts, "first?")

	list := func() int {
		resp, err := ts.Client().Get(ts.URL + "/api/v1/polls")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var page map[string]interface{}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&page))
		embedded := page["_embedded"].(map[string]interface{})
		return len(embedded["records"].([]interface{}))
	}

	require.Equal(t, 1, list())

	// creating a poll invalidates the cached list page
	createPoll(t, ts, "second?")
	require.Equal(t, 2, list())
}
