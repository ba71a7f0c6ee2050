package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/digitalocean/godo"
)

// KubernetesService is a mock of the godo calls the DigitalOcean gateway
// makes. Calling any other method of the interface panics.
type KubernetesService struct {
	mock.Mock
	godo.KubernetesService
}

// ListNodePools provides a mock function with given fields: ctx, clusterID, opts
func (_m *KubernetesService) ListNodePools(ctx context.Context, clusterID string, opts *godo.ListOptions) ([]*godo.KubernetesNodePool, *godo.Response, error) {
	ret := _m.Called(ctx, clusterID, opts)

	var r0 []*godo.KubernetesNodePool
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*godo.KubernetesNodePool)
	}

	var r1 *godo.Response
	if ret.Get(1) != nil {
		r1 = ret.Get(1).(*godo.Response)
	}

	return r0, r1, ret.Error(2)
}

// UpdateNodePool provides a mock function with given fields: ctx, clusterID, poolID, req
func (_m *KubernetesService) UpdateNodePool(ctx context.Context, clusterID, poolID string, req *godo.KubernetesNodePoolUpdateRequest) (*godo.KubernetesNodePool, *godo.Response, error) {
	ret := _m.Called(ctx, clusterID, poolID, req)

	var r0 *godo.KubernetesNodePool
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*godo.KubernetesNodePool)
	}

	var r1 *godo.Response
	if ret.Get(1) != nil {
		r1 = ret.Get(1).(*godo.Response)
	}

	return r0, r1, ret.Error(2)
}
