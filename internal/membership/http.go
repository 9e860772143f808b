package membership

import (
	"context"
	"fmt"
	"net/url"

	"golang.org/x/time/rate"

	"github.com/wonny/freshness/pkg/httputil"
	"github.com/wonny/freshness/pkg/logger"
)

// HTTPResolver queries a remote contract-store API for group membership
type HTTPResolver struct {
	client  *httputil.Client
	baseURL string
	limiter *rate.Limiter
	logger  *logger.Logger
}

// NewHTTPResolver creates a resolver against the contract-store API.
// ratePerSecond bounds outbound lookups locally, on top of whatever
// distributed rate limit the shared client carries.
func NewHTTPResolver(client *httputil.Client, baseURL string, ratePerSecond int, log *logger.Logger) *HTTPResolver {
	if ratePerSecond <= 0 {
		ratePerSecond = 10
	}
	return &HTTPResolver{
		client:  client,
		baseURL: baseURL,
		limiter: rate.NewLimiter(rate.Limit(ratePerSecond), ratePerSecond),
		logger:  log,
	}
}

// membersResponse is the contract-store API response shape
type membersResponse struct {
	ProductGroup string   `json:"product_group"`
	ContractIDs  []string `json:"contract_ids"`
}

// ListContractIDs fetches the group's contracts from the remote store.
// Any transport or decode failure wraps ErrUnavailable; the caller's
// context deadline bounds the whole call, including the limiter wait.
func (r *HTTPResolver) ListContractIDs(ctx context.Context, productGroup string) ([]string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limit wait: %v", ErrUnavailable, err)
	}

	endpoint := fmt.Sprintf("%s/api/product-groups/%s/contracts", r.baseURL, url.PathEscape(productGroup))

	var resp membersResponse
	if err := r.client.GetJSON(ctx, endpoint, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if resp.ContractIDs == nil {
		resp.ContractIDs = []string{}
	}
	return resp.ContractIDs, nil
}
