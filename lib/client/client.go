package client

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"pollpulse.io/pollpulse/lib/common"
)

const (
	UrlPrefixForAPIV1 = "/api/v1"

	UrlPolls     = "/polls"
	UrlPoll      = "/polls/{id}"
	UrlPollVotes = "/polls/{id}/votes"
	UrlPollClose = "/polls/{id}/close"
	UrlPollVoted = "/polls/{id}/voted"
)

type Client struct {
	URL string

	HTTP *common.HTTP2Client
}

func NewClient(url string) *Client {
	httpClient, err := common.NewHTTP2Client(0, 0, true)
	if err != nil {
		panic(err)
	}
	return &Client{
		URL:  url,
		HTTP: httpClient,
	}
}

func (c *Client) toResponse(resp *http.Response, response interface{}) (err error) {
	defer resp.Body.Close()
	decoder := json.NewDecoder(resp.Body)

	if !(resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices) {
		var p Problem
		err = decoder.Decode(&p)
		if err != nil {
			return
		}
		return Error{Problem: p}
	}

	if response == nil {
		return
	}
	err = decoder.Decode(&response)
	if err != nil {
		return
	}
	return
}

func jsonHeaders() http.Header {
	headers := http.Header{}
	headers.Set("Content-Type", "application/json")
	return headers
}

func (c *Client) Get(path string, headers http.Header) (response *http.Response, err error) {
	url := c.URL + UrlPrefixForAPIV1 + path
	return c.HTTP.Get(url, headers)
}

func (c *Client) Post(path string, body []byte, headers http.Header) (response *http.Response, err error) {
	url := c.URL + UrlPrefixForAPIV1 + path
	return c.HTTP.Post(url, body, headers)
}

func (c *Client) Patch(path string, body []byte, headers http.Header) (response *http.Response, err error) {
	url := c.URL + UrlPrefixForAPIV1 + path
	return c.HTTP.Patch(url, body, headers)
}

func (c *Client) Delete(path string, headers http.Header) (response *http.Response, err error) {
	url := c.URL + UrlPrefixForAPIV1 + path
	return c.HTTP.Delete(url, headers)
}

func (c *Client) CreatePoll(question string, options []string, createdBy string) (poll Poll, err error) {
	body, err := json.Marshal(map[string]interface{}{
		"question":   question,
		"options":    options,
		"created_by": createdBy,
	})
	if err != nil {
		return
	}
	resp, err := c.Post(UrlPolls, body, jsonHeaders())
	if err != nil {
		return
	}
	err = c.toResponse(resp, &poll)
	return
}

func (c *Client) LoadPoll(id string) (poll Poll, err error) {
	url := strings.Replace(UrlPoll, "{id}", id, -1)
	resp, err := c.Get(url, jsonHeaders())
	if err != nil {
		return
	}
	err = c.toResponse(resp, &poll)
	return
}

func (c *Client) LoadPolls() (page PollsPage, err error) {
	resp, err := c.Get(UrlPolls, jsonHeaders())
	if err != nil {
		return
	}
	err = c.toResponse(resp, &page)
	return
}

func (c *Client) SubmitVote(pollID, optionID, fingerprint string) (poll Poll, err error) {
	body, err := json.Marshal(map[string]string{
		"option_id":   optionID,
		"fingerprint": fingerprint,
	})
	if err != nil {
		return
	}
	url := strings.Replace(UrlPollVotes, "{id}", pollID, -1)
	resp, err := c.Post(url, body, jsonHeaders())
	if err != nil {
		return
	}
	err = c.toResponse(resp, &poll)
	return
}

func (c *Client) ClosePoll(id string) (poll Poll, err error) {
	url := strings.Replace(UrlPollClose, "{id}", id, -1)
	resp, err := c.Patch(url, nil, jsonHeaders())
	if err != nil {
		return
	}
	err = c.toResponse(resp, &poll)
	return
}

func (c *Client) DeletePoll(id string) (err error) {
	url := strings.Replace(UrlPoll, "{id}", id, -1)
	resp, err := c.Delete(url, jsonHeaders())
	if err != nil {
		return
	}
	return c.toResponse(resp, nil)
}

func (c *Client) HasVoted(pollID, fingerprint string) (status VoteStatus, err error) {
	url := strings.Replace(UrlPollVoted, "{id}", pollID, -1)
	url += "?fingerprint=" + fingerprint
	resp, err := c.Get(url, jsonHeaders())
	if err != nil {
		return
	}
	err = c.toResponse(resp, &status)
	return
}

// Stream follows the live feed of one path; `handler` gets each frame's
// payload. It blocks until the context is done or the connection drops.
func (c *Client) Stream(ctx context.Context, theUrl string, handler func(data []byte) error) (err error) {
	var headers = http.Header{}
	headers.Set("Accept", "text/event-stream")
	resp, err := c.Get(theUrl, headers)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	reader := bufio.NewReader(resp.Body)
	for {
		line, err := reader.ReadBytes('\n')
		if err != nil {
			return err
		}

		line = bytes.TrimSpace(line)
		line = bytes.TrimPrefix(line, []byte("data: "))
		if len(line) == 0 {
			continue
		}
		if err := handler(line); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return nil
		default:
		}
	}
}

func (c *Client) StreamPoll(ctx context.Context, id string, handler func(PollEvent)) (err error) {
	url := strings.Replace(UrlPoll, "{id}", id, -1)
	handlerFunc := func(b []byte) (err error) {
		var v PollEvent
		err = json.Unmarshal(b, &v)
		if err != nil {
			return err
		}
		handler(v)
		return nil
	}
	return c.Stream(ctx, url, handlerFunc)
}
