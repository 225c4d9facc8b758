package resource

import (
	"github.com/nvellon/hal"
)

const (
	URLPolls = "/api/v1/polls"
	URLPoll  = "/api/v1/polls/{id}"
	URLVotes = "/api/v1/polls/{id}/votes"
)

type Resource interface {
	LinkSelf() string
	Resource() *hal.Resource
	GetMap() hal.Entry
}

type ResourceList struct {
	Resources []Resource
	SelfLink  string
}

func NewResourceList(list []Resource, selfLink string) *ResourceList {
	return &ResourceList{Resources: list, SelfLink: selfLink}
}

func (l ResourceList) Resource() *hal.Resource {
	rl := hal.NewResource(struct{}{}, l.LinkSelf())
	for _, apiResource := range l.Resources {
		r := apiResource.Resource()
		rl.Embed("records", r)
	}
	return rl
}

func (l ResourceList) LinkSelf() string {
	return l.SelfLink
}

func (l ResourceList) GetMap() hal.Entry {
	return hal.Entry{}
}
