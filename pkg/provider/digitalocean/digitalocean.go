package digitalocean

import (
	"context"
	"net"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"

	"github.com/digitalocean/godo"

	"github.com/containership/cluster-manager/pkg/log"

	"github.com/containership/fleetscaler/pkg/fleet"
	"github.com/containership/fleetscaler/pkg/provider"
)

// Gateway exposes the node pools of a DigitalOcean Kubernetes cluster as
// fleet groups; it implements provider.Gateway
type Gateway struct {
	name   string
	client *godo.Client
	config *cloudConfig

	// Node pools are updated by ID but selected by name
	poolIDsLock sync.RWMutex
	poolIDs     map[string]string
}

// NewClient creates a new instance of the DigitalOcean gateway, or an error
// It is expected that we do not modify the name or configuration here as the caller
// may not have passed a copy
func NewClient(name string, configuration map[string]string) (provider.Gateway, error) {
	if name == "" {
		return nil, errors.New("name must be provided")
	}

	config := cloudConfig{}
	if err := config.defaultAndValidate(configuration); err != nil {
		return nil, errors.Wrap(err, "validating configuration")
	}

	token := os.Getenv(config.TokenEnvVarName)
	oauthClient := oauth2.NewClient(context.Background(), &tokenSource{
		AccessToken: token,
	})

	return &Gateway{
		name:    name,
		client:  godo.NewClient(oauthClient),
		config:  &config,
		poolIDs: make(map[string]string),
	}, nil
}

// Name returns the name of the gateway
func (g *Gateway) Name() string {
	return g.name
}

// ListGroups returns one page of node pools. Tokens are page numbers.
func (g *Gateway) ListGroups(ctx context.Context, token string) ([]fleet.Group, string, error) {
	page := 1
	if token != "" {
		var err error
		page, err = strconv.Atoi(token)
		if err != nil || page < 1 {
			return nil, "", provider.Permanent(errors.Errorf("invalid page token %q", token))
		}
	}

	pools, resp, err := g.client.Kubernetes.ListNodePools(ctx, g.config.ClusterID, &godo.ListOptions{
		Page:    page,
		PerPage: g.config.perPage,
	})
	if err != nil {
		return nil, "", classify(errors.Wrapf(err, "listing node pools page %d from DigitalOcean", page), err)
	}

	groups := make([]fleet.Group, 0, len(pools))
	for _, np := range pools {
		if np == nil {
			continue
		}
		g.rememberPool(np)
		groups = append(groups, g.groupFromNodePool(np))
	}

	return groups, nextPageToken(resp), nil
}

// UpdateCapacity sets the node count of the named node pool
func (g *Gateway) UpdateCapacity(ctx context.Context, group string, desired int) error {
	id, err := g.poolID(ctx, group)
	if err != nil {
		return err
	}

	// Both name and count are required fields
	req := godo.KubernetesNodePoolUpdateRequest{
		Name:  group,
		Count: &desired,
	}
	log.Infof("Requesting DigitalOcean to scale node pool %s to %d", req.Name, desired)

	_, _, err = g.client.Kubernetes.UpdateNodePool(ctx, g.config.ClusterID, id, &req)
	if err != nil {
		return classify(errors.Wrapf(err, "scaling DigitalOcean node pool %q to %d", group, desired), err)
	}

	return nil
}

func (g *Gateway) rememberPool(np *godo.KubernetesNodePool) {
	g.poolIDsLock.Lock()
	defer g.poolIDsLock.Unlock()

	g.poolIDs[np.Name] = np.ID
}

// poolID returns the ID of the named pool, listing pools if it hasn't been
// seen yet
func (g *Gateway) poolID(ctx context.Context, name string) (string, error) {
	g.poolIDsLock.RLock()
	id, ok := g.poolIDs[name]
	g.poolIDsLock.RUnlock()
	if ok {
		return id, nil
	}

	token := ""
	for {
		_, next, err := g.ListGroups(ctx, token)
		if err != nil {
			return "", errors.Wrapf(err, "looking up node pool %q", name)
		}

		g.poolIDsLock.RLock()
		id, ok = g.poolIDs[name]
		g.poolIDsLock.RUnlock()
		if ok {
			return id, nil
		}

		if next == "" {
			return "", provider.Permanent(errors.Errorf("node pool %q not found in cluster %s", name, g.config.ClusterID))
		}
		token = next
	}
}

func (g *Gateway) groupFromNodePool(np *godo.KubernetesNodePool) fleet.Group {
	group := fleet.Group{
		Name:    np.Name,
		Desired: np.Count,
		Min:     g.config.minNodes,
		Max:     g.config.maxNodes,
	}

	if np.AutoScale {
		group.Min = np.MinNodes
		group.Max = np.MaxNodes
	}

	keys := make([]string, 0, len(np.Labels))
	for k := range np.Labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		group.Tags = append(group.Tags, fleet.Tag{Key: k, Value: np.Labels[k]})
	}

	// DigitalOcean tags are plain strings; "key:value" tags are split so
	// they can be matched like labels
	for _, t := range np.Tags {
		parts := strings.SplitN(t, ":", 2)
		tag := fleet.Tag{Key: parts[0]}
		if len(parts) == 2 {
			tag.Value = parts[1]
		}
		group.Tags = append(group.Tags, tag)
	}

	return group
}

func nextPageToken(resp *godo.Response) string {
	if resp == nil || resp.Links == nil || resp.Links.IsLastPage() {
		return ""
	}

	page, err := resp.Links.CurrentPage()
	if err != nil {
		return ""
	}

	return strconv.Itoa(page + 1)
}

// classify marks wrapped as transient or permanent based on the original
// godo error
func classify(wrapped error, original error) error {
	var errResp *godo.ErrorResponse
	if errors.As(original, &errResp) && errResp.Response != nil {
		code := errResp.Response.StatusCode
		if code == http.StatusTooManyRequests || code >= http.StatusInternalServerError {
			return provider.Transient(wrapped)
		}
		return provider.Permanent(wrapped)
	}

	var netErr net.Error
	if errors.As(original, &netErr) && netErr.Timeout() {
		return provider.Transient(wrapped)
	}

	return provider.Permanent(wrapped)
}
