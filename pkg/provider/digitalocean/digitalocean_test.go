package digitalocean

import (
	"bytes"
	"context"
	"io/ioutil"
	"net/http"
	"os"
	"testing"

	"github.com/pkg/errors"

	"github.com/digitalocean/godo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/containership/fleetscaler/pkg/fleet"
	"github.com/containership/fleetscaler/pkg/provider"
	"github.com/containership/fleetscaler/pkg/provider/digitalocean/mocks"
)

const clusterID = "cluster-uuid"

func newFakeNodePool(id, name string, count int) *godo.KubernetesNodePool {
	return &godo.KubernetesNodePool{
		ID:    id,
		Name:  name,
		Count: count,
	}
}

func newFakeResponse(status int, pages *godo.Pages) *godo.Response {
	return &godo.Response{
		Response: &http.Response{
			StatusCode: status,
			Body:       ioutil.NopCloser(bytes.NewBufferString("test")),
		},
		Links: &godo.Links{Pages: pages},
	}
}

func newFakeErrorResponse(status int) *godo.ErrorResponse {
	req, _ := http.NewRequest(http.MethodPut, "https://api.digitalocean.com/v2/kubernetes/clusters", nil)
	return &godo.ErrorResponse{
		Response: &http.Response{
			StatusCode: status,
			Request:    req,
		},
		Message: http.StatusText(status),
	}
}

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func pageIs(n int) interface{} {
	return mock.MatchedBy(func(opts *godo.ListOptions) bool {
		return opts.Page == n && opts.PerPage == defaultPerPage
	})
}

// fakeGateway creates a gateway backed by a mocked godo Kubernetes service
func fakeGateway() (*Gateway, *mocks.KubernetesService) {
	kmocks := mocks.KubernetesService{}
	client := godo.NewClient(nil)
	client.Kubernetes = &kmocks

	return &Gateway{
		name:   "digitalocean",
		client: client,
		config: &cloudConfig{
			TokenEnvVarName: "TOKEN_ENV_VAR",
			ClusterID:       clusterID,
			minNodes:        defaultMinNodes,
			maxNodes:        defaultMaxNodes,
			perPage:         defaultPerPage,
		},
		poolIDs: make(map[string]string),
	}, &kmocks
}

func TestNewClient(t *testing.T) {
	configuration := map[string]string{
		ConfigKeyTokenEnvVarName: "TOKEN_ENV_VAR",
		ConfigKeyClusterID:       clusterID,
	}

	_, err := NewClient("digitalocean", configuration)
	assert.Error(t, err, "token env var must be set")

	os.Setenv("TOKEN_ENV_VAR", "token")
	defer os.Unsetenv("TOKEN_ENV_VAR")

	_, err = NewClient("", configuration)
	assert.Error(t, err, "name is required")

	g, err := NewClient("digitalocean", configuration)
	assert.NoError(t, err)
	assert.Equal(t, "digitalocean", g.Name())
}

func TestListGroups(t *testing.T) {
	g, kmocks := fakeGateway()

	workers := newFakeNodePool("pool-1", "workers", 3)
	workers.Labels = map[string]string{"tier": "app", "env": "prod"}
	workers.Tags = []string{"team:payments", "k8s"}

	batch := newFakeNodePool("pool-2", "batch", 2)
	batch.AutoScale = true
	batch.MinNodes = 0
	batch.MaxNodes = 10

	kmocks.On("ListNodePools", mock.Anything, clusterID, pageIs(1)).
		Return([]*godo.KubernetesNodePool{workers, nil}, newFakeResponse(http.StatusOK, &godo.Pages{
			Next: "https://api.digitalocean.com/v2/kubernetes/clusters/cluster-uuid/node_pools?page=2",
			Last: "https://api.digitalocean.com/v2/kubernetes/clusters/cluster-uuid/node_pools?page=2",
		}), nil)
	kmocks.On("ListNodePools", mock.Anything, clusterID, pageIs(2)).
		Return([]*godo.KubernetesNodePool{batch}, newFakeResponse(http.StatusOK, &godo.Pages{
			First: "https://api.digitalocean.com/v2/kubernetes/clusters/cluster-uuid/node_pools?page=1",
			Prev:  "https://api.digitalocean.com/v2/kubernetes/clusters/cluster-uuid/node_pools?page=1",
		}), nil)

	groups, next, err := g.ListGroups(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "2", next)
	assert.Equal(t, []fleet.Group{
		{
			Name:    "workers",
			Desired: 3,
			Min:     defaultMinNodes,
			Max:     defaultMaxNodes,
			Tags: []fleet.Tag{
				{Key: "env", Value: "prod"},
				{Key: "tier", Value: "app"},
				{Key: "team", Value: "payments"},
				{Key: "k8s"},
			},
		},
	}, groups)

	groups, next, err = g.ListGroups(context.Background(), next)
	require.NoError(t, err)
	assert.Empty(t, next, "last page has no next token")
	assert.Equal(t, []fleet.Group{
		{Name: "batch", Desired: 2, Min: 0, Max: 10},
	}, groups, "auto-scale pools use their own bounds")

	kmocks.AssertExpectations(t)
}

func TestListGroupsSinglePage(t *testing.T) {
	g, kmocks := fakeGateway()

	kmocks.On("ListNodePools", mock.Anything, clusterID, pageIs(1)).
		Return([]*godo.KubernetesNodePool{newFakeNodePool("pool-1", "workers", 1)}, newFakeResponse(http.StatusOK, nil), nil)

	groups, next, err := g.ListGroups(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, next)
	assert.Len(t, groups, 1)
}

func TestListGroupsErrors(t *testing.T) {
	g, kmocks := fakeGateway()

	_, _, err := g.ListGroups(context.Background(), "not-a-page")
	assert.Error(t, err)
	assert.False(t, provider.IsTransient(err), "bad page token is permanent")

	kmocks.On("ListNodePools", mock.Anything, clusterID, pageIs(1)).
		Return(nil, nil, newFakeErrorResponse(http.StatusServiceUnavailable)).Once()
	_, _, err = g.ListGroups(context.Background(), "")
	assert.Error(t, err)
	assert.True(t, provider.IsTransient(err))

	kmocks.On("ListNodePools", mock.Anything, clusterID, pageIs(1)).
		Return(nil, nil, newFakeErrorResponse(http.StatusUnauthorized)).Once()
	_, _, err = g.ListGroups(context.Background(), "")
	assert.Error(t, err)
	assert.False(t, provider.IsTransient(err))
}

func TestUpdateCapacity(t *testing.T) {
	g, kmocks := fakeGateway()

	kmocks.On("ListNodePools", mock.Anything, clusterID, pageIs(1)).
		Return([]*godo.KubernetesNodePool{
			newFakeNodePool("pool-1", "workers", 3),
			newFakeNodePool("pool-2", "batch", 2),
		}, newFakeResponse(http.StatusOK, nil), nil).Once()

	kmocks.On("UpdateNodePool", mock.Anything, clusterID, "pool-2",
		mock.MatchedBy(func(req *godo.KubernetesNodePoolUpdateRequest) bool {
			return req.Name == "batch" && req.Count != nil && *req.Count == 5
		})).
		Return(newFakeNodePool("pool-2", "batch", 5), newFakeResponse(http.StatusAccepted, nil), nil)

	err := g.UpdateCapacity(context.Background(), "batch", 5)
	assert.NoError(t, err, "unseen pool is looked up by listing")

	err = g.UpdateCapacity(context.Background(), "batch", 5)
	assert.NoError(t, err, "pool ID is remembered")

	kmocks.AssertExpectations(t)
	kmocks.AssertNumberOfCalls(t, "ListNodePools", 1)
}

func TestUpdateCapacityUnknownPool(t *testing.T) {
	g, kmocks := fakeGateway()

	kmocks.On("ListNodePools", mock.Anything, clusterID, pageIs(1)).
		Return([]*godo.KubernetesNodePool{newFakeNodePool("pool-1", "workers", 3)}, newFakeResponse(http.StatusOK, nil), nil)

	err := g.UpdateCapacity(context.Background(), "missing", 5)
	assert.Error(t, err)
	assert.False(t, provider.IsTransient(err))
	kmocks.AssertNotCalled(t, "UpdateNodePool", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateCapacityErrors(t *testing.T) {
	g, kmocks := fakeGateway()
	g.poolIDs["workers"] = "pool-1"

	kmocks.On("UpdateNodePool", mock.Anything, clusterID, "pool-1", mock.Anything).
		Return(nil, nil, newFakeErrorResponse(http.StatusTooManyRequests)).Once()
	err := g.UpdateCapacity(context.Background(), "workers", 4)
	assert.Error(t, err)
	assert.True(t, provider.IsTransient(err), "rate limiting is transient")

	kmocks.On("UpdateNodePool", mock.Anything, clusterID, "pool-1", mock.Anything).
		Return(nil, nil, newFakeErrorResponse(http.StatusUnprocessableEntity)).Once()
	err = g.UpdateCapacity(context.Background(), "workers", 4)
	assert.Error(t, err)
	assert.False(t, provider.IsTransient(err), "validation failures are permanent")
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		transient bool
	}{
		{"internal error", newFakeErrorResponse(http.StatusInternalServerError), true},
		{"bad gateway", newFakeErrorResponse(http.StatusBadGateway), true},
		{"too many requests", newFakeErrorResponse(http.StatusTooManyRequests), true},
		{"not found", newFakeErrorResponse(http.StatusNotFound), false},
		{"forbidden", newFakeErrorResponse(http.StatusForbidden), false},
		{"network timeout", timeoutError{}, true},
		{"wrapped network timeout", errors.Wrap(timeoutError{}, "dialing"), true},
		{"unclassified", errors.New("something odd"), false},
	}

	for _, test := range tests {
		err := classify(errors.Wrap(test.err, "calling"), test.err)
		assert.Equal(t, test.transient, provider.IsTransient(err), test.name)
	}
}
