// Package fsclient reads serving prepared statements from the feature store REST API.
package fsclient

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/marcodd23/go-serving-stmt/pkg/configmgr"
	"github.com/marcodd23/go-serving-stmt/pkg/errorx"
	"github.com/marcodd23/go-serving-stmt/pkg/logx"
	"github.com/marcodd23/go-serving-stmt/pkg/servingstmt"
	"github.com/marcodd23/go-serving-stmt/pkg/utilx"
	"github.com/marcodd23/go-serving-stmt/pkg/utilx/compressx"
	"github.com/marcodd23/go-serving-stmt/pkg/validator"
)

// DefaultTimeout bounds a request when neither the config nor the context set a deadline.
const DefaultTimeout = 30 * time.Second

const (
	headerAuthorization = "Authorization"
	headerRequestID     = "X-Request-ID"
)

// Config of the feature store endpoint.
type Config struct {
	BaseURL string `validate:"required,url"`
	APIKey  string
	Timeout time.Duration
}

// ConfigFrom maps the featureStore section of a service configuration.
func ConfigFrom(conf configmgr.Config) Config {
	fs := conf.GetFeatureStoreConfig()

	return Config{
		BaseURL: fs.URL,
		APIKey:  fs.ApiKey,
		Timeout: time.Duration(fs.TimeoutMilli) * time.Millisecond,
	}
}

// Client - feature store REST client.
type Client struct {
	baseURL string
	apiKey  string
	timeout time.Duration
}

func New(conf Config) (*Client, error) {
	if err := validator.NewValidator().Validate(conf); err != nil {
		return nil, errorx.NewGeneralErrorWrapper(err, "invalid feature store client config")
	}

	timeout := conf.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		baseURL: strings.TrimSuffix(conf.BaseURL, "/"),
		apiKey:  conf.APIKey,
		timeout: timeout,
	}, nil
}

// GetServingPreparedStatements returns the serving prepared statements of a feature view version, in the
// order the feature store lists them. batch selects the statements of batch lookups.
func (c *Client) GetServingPreparedStatements(
	ctx context.Context,
	featureStoreID int,
	featureViewName string,
	featureViewVersion int,
	batch bool,
) ([]*servingstmt.ServingPreparedStatement, error) {
	target := fmt.Sprintf("%s/featurestores/%d/featureview/%s/version/%d/preparedstatement",
		c.baseURL, featureStoreID, url.PathEscape(featureViewName), featureViewVersion)

	body, err := c.get(ctx, target, url.Values{"batch": {strconv.FormatBool(batch)}})
	if err != nil {
		return nil, err
	}

	stmts, err := servingstmt.DecodeList(body)
	if err != nil {
		return nil, errorx.NewGeneralErrorWrapper(err, "error decoding response of %s", target)
	}

	return stmts, nil
}

func (c *Client) get(ctx context.Context, target string, query url.Values) ([]byte, error) {
	timeout, err := c.requestTimeout(ctx)
	if err != nil {
		return nil, err
	}

	requestID, ok := logx.RequestIDFromContext(ctx)
	if !ok {
		requestID = utilx.GenerateUUID().String()
		ctx = logx.WithRequestID(ctx, requestID)
	}

	agent := fiber.Get(target).
		QueryString(query.Encode()).
		Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON).
		Set(fiber.HeaderAcceptEncoding, "gzip").
		Set(headerRequestID, requestID).
		Timeout(timeout)
	if c.apiKey != "" {
		agent.Set(headerAuthorization, "ApiKey "+c.apiKey)
	}

	if err := agent.Parse(); err != nil {
		return nil, errorx.NewGeneralErrorWrapper(err, "error building request to %s", target)
	}

	logx.GetLogger().LogDebug(ctx, fmt.Sprintf("GET %s?%s", target, query.Encode()))

	status, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return nil, errorx.NewGeneralErrorWrapper(errs[0], "error calling %s", target)
	}

	if status < fiber.StatusOK || status >= fiber.StatusMultipleChoices {
		if decompressed, err := compressx.GzipDecompressIfNeeded(ctx, body); err == nil {
			body = decompressed
		}
		return nil, errorx.NewHttpError(status, target, body)
	}

	body, err = compressx.GzipDecompressIfNeeded(ctx, body)
	if err != nil {
		return nil, errorx.NewGeneralErrorWrapper(err, "error reading response of %s", target)
	}

	return body, nil
}

// requestTimeout is the configured timeout, shortened to the context deadline when that comes first.
func (c *Client) requestTimeout(ctx context.Context) (time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}

	if timeout <= 0 {
		return 0, context.DeadlineExceeded
	}

	return timeout, nil
}
