package documentdb

import (
	"context"
	"encoding/base64"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"cosmos-admin/internal/shared/errors"
	"cosmos-admin/internal/shared/logger"
	"cosmos-admin/internal/shared/utils"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/data/azcosmos"
)

// HeaderActivityID correlates a request with the service's diagnostics.
const HeaderActivityID = "x-ms-activity-id"

// Options configures a Client.
type Options struct {
	Host      string
	MasterKey string
	// Timeout bounds each try of a request.
	Timeout time.Duration
	// MaxRetries of a failed request; zero keeps the SDK default, a
	// negative value disables retries.
	MaxRetries int32
	// Transport replaces the HTTP transport, mainly for tests.
	Transport policy.Transporter
}

// containerRef names a collection by the ids the SDK addresses it with.
type containerRef struct {
	database   string
	collection string
}

// Client is a master-key authenticated client of the account, backed by the
// azcosmos SDK.
type Client struct {
	cosmos *azcosmos.Client
	http   *http.Client
	logger logger.Logger

	// links maps the self-links handed out with collections back to their
	// ids, so offers addressed by self-link can reach their container.
	mu    sync.RWMutex
	links map[string]containerRef

	closed bool
}

// NewClient validates opts and returns a ready client. No request is sent
// until the first operation.
func NewClient(opts Options, log logger.Logger) (*Client, error) {
	endpoint, err := url.Parse(opts.Host)
	if err != nil || endpoint.Scheme == "" || endpoint.Host == "" {
		return nil, errors.NewValidationError("invalid account endpoint").WithDetail("host", opts.Host)
	}
	if _, err := base64.StdEncoding.DecodeString(opts.MasterKey); err != nil {
		return nil, errors.NewValidationError("master key is not valid base64").WithCause(err)
	}
	cred, err := azcosmos.NewKeyCredential(opts.MasterKey)
	if err != nil {
		return nil, errors.NewValidationError("invalid master key").WithCause(err)
	}

	c := &Client{links: map[string]containerRef{}}
	transport := opts.Transport
	if transport == nil {
		c.http = &http.Client{Transport: http.DefaultTransport.(*http.Transport).Clone()}
		transport = c.http
	}

	cosmos, err := azcosmos.NewClientWithKey(strings.TrimRight(opts.Host, "/"), cred, &azcosmos.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			Transport: transport,
			Retry: policy.RetryOptions{
				MaxRetries: opts.MaxRetries,
				TryTimeout: opts.Timeout,
			},
		},
	})
	if err != nil {
		return nil, errors.NewValidationError("failed to create account client").WithCause(err)
	}
	if log == nil {
		log = logger.Default()
	}

	c.cosmos = cosmos
	c.logger = log.WithComponent("documentdb")
	return c, nil
}

// Close releases idle connections of the client's own transport.
func (c *Client) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	if c.http != nil {
		c.http.CloseIdleConnections()
	}
	return nil
}

// begin tags ctx with the request's activity id and returns the function that
// classifies and logs the outcome of the call.
func (c *Client) begin(ctx context.Context, op, link string) (context.Context, func(*error)) {
	activityID := utils.GetRequestIDOrDefault(ctx, "")
	if activityID != "" {
		ctx = policy.WithHTTPHeader(ctx, http.Header{HeaderActivityID: []string{activityID}})
	}
	start := time.Now()

	return ctx, func(errp *error) {
		fields := map[string]interface{}{
			"op":          op,
			"link":        link,
			"duration_ms": time.Since(start).Milliseconds(),
		}
		if *errp == nil {
			c.logger.WithContext(ctx).WithFields(fields).Debug("documentdb call")
			return
		}
		*errp = classify(*errp, op, link)
		fields["error"] = (*errp).Error()
		c.logger.WithContext(ctx).WithFields(fields).Debug("documentdb call failed")
	}
}

// serviceError is the error body the service returns.
type serviceError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// classify turns an SDK error into a kind-tagged error. Service responses keep
// their status, error code and activity id; anything else never reached the
// service.
func classify(err error, op, link string) error {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return err
	}

	var respErr *azcore.ResponseError
	if !stderrors.As(err, &respErr) {
		return errors.NewInfrastructureError(fmt.Sprintf("%s %s failed", op, link)).
			WithCause(err).
			WithComponent("documentdb")
	}

	body := serviceError{Code: respErr.ErrorCode}
	activityID := ""
	if resp := respErr.RawResponse; resp != nil {
		activityID = resp.Header.Get(HeaderActivityID)
		if raw, err := runtime.Payload(resp); err == nil {
			_ = json.Unmarshal(raw, &body)
		}
	}
	if body.Message == "" {
		body.Message = http.StatusText(respErr.StatusCode)
	}

	return errors.FromStatus(respErr.StatusCode, body.Code, body.Message).
		WithResponse(respErr.StatusCode, activityID).
		WithComponent("documentdb")
}

// drain collects every page of a query.
func drain[R, T any](ctx context.Context, pager *runtime.Pager[R], items func(R) []T) ([]T, error) {
	result := []T{}
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		result = append(result, items(page)...)
	}
	return result, nil
}

func (c *Client) remember(self string, ref containerRef) {
	if self == "" {
		return
	}
	c.mu.Lock()
	c.links[self] = ref
	c.mu.Unlock()
}

func (c *Client) forget(ref containerRef) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for self, known := range c.links {
		if known == ref || (ref.collection == "" && known.database == ref.database) {
			delete(c.links, self)
		}
	}
}

func (c *Client) lookup(self string) (containerRef, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ref, ok := c.links[self]
	return ref, ok
}
