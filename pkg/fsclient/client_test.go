package fsclient_test

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/marcodd23/go-serving-stmt/pkg/configmgr"
	"github.com/marcodd23/go-serving-stmt/pkg/errorx"
	"github.com/marcodd23/go-serving-stmt/pkg/fsclient"
	"github.com/marcodd23/go-serving-stmt/pkg/utilx/compressx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const statementsBody = `{
	"href": "http://fs/featurestores/67/featureview/transactions/version/1/preparedstatement",
	"count": 2,
	"items": [
		{"featureGroupId": 13, "preparedStatementIndex": 1, "preparedStatementParameters": [{"name": "id", "index": 0}], "queryOnline": "SELECT * FROM fg13 WHERE id = ?", "prefix": "fg13_"},
		{"featureGroupId": 12, "preparedStatementIndex": 0, "queryOnline": "SELECT * FROM fg12", "unknown": {"nested": true}}
	]
}`

type recorded struct {
	path          string
	batch         string
	authorization string
	requestID     string
}

// startFeatureStore serves a fake feature store on a loopback port.
func startFeatureStore(t *testing.T, handler fiber.Handler) (string, *recorded) {
	t.Helper()

	rec := &recorded{}
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Get("/featurestores/:fsId/featureview/:name/version/:version/preparedstatement", func(c *fiber.Ctx) error {
		rec.path = c.Path()
		rec.batch = c.Query("batch")
		rec.authorization = c.Get("Authorization")
		rec.requestID = c.Get("X-Request-ID")
		return handler(c)
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() { _ = app.Shutdown() })

	return "http://" + ln.Addr().String(), rec
}

func TestGetServingPreparedStatements(t *testing.T) {
	baseURL, rec := startFeatureStore(t, func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.SendString(statementsBody)
	})

	client, err := fsclient.New(fsclient.Config{BaseURL: baseURL + "/", APIKey: "secret"})
	require.NoError(t, err)

	stmts, err := client.GetServingPreparedStatements(context.Background(), 67, "transactions", 1, true)
	require.NoError(t, err)
	require.Len(t, stmts, 2)

	assert.Equal(t, 13, *stmts[0].GetFeatureGroupID())
	assert.Equal(t, "id", *stmts[0].GetPreparedStatementParameters()[0].GetName())
	assert.Equal(t, "fg13_", *stmts[0].GetPrefix())
	assert.Equal(t, 0, *stmts[1].GetPreparedStatementIndex())
	assert.Nil(t, stmts[1].GetPreparedStatementParameters())
	assert.Nil(t, stmts[1].GetPrefix())

	assert.Equal(t, "/featurestores/67/featureview/transactions/version/1/preparedstatement", rec.path)
	assert.Equal(t, "true", rec.batch)
	assert.Equal(t, "ApiKey secret", rec.authorization)
	assert.Len(t, rec.requestID, 36)
}

func TestGetServingPreparedStatementsGzipped(t *testing.T) {
	compressed, err := compressx.GzipCompressJSON(context.Background(), []byte(statementsBody))
	require.NoError(t, err)

	baseURL, rec := startFeatureStore(t, func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentEncoding, "gzip")
		return c.Send(compressed)
	})

	client, err := fsclient.New(fsclient.Config{BaseURL: baseURL})
	require.NoError(t, err)

	stmts, err := client.GetServingPreparedStatements(context.Background(), 67, "transactions", 1, false)
	require.NoError(t, err)
	assert.Len(t, stmts, 2)
	assert.Equal(t, "false", rec.batch)
	assert.Empty(t, rec.authorization)
}

func TestGetServingPreparedStatementsErrorStatus(t *testing.T) {
	baseURL, _ := startFeatureStore(t, func(c *fiber.Ctx) error {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"errorMsg": "feature view not found"})
	})

	client, err := fsclient.New(fsclient.Config{BaseURL: baseURL})
	require.NoError(t, err)

	_, err = client.GetServingPreparedStatements(context.Background(), 67, "missing", 1, false)
	require.Error(t, err)

	var httpErr *errorx.HttpError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.StatusCode)
	assert.Contains(t, httpErr.Body, "feature view not found")
}

func TestGetServingPreparedStatementsErrorStatusWithCorruptBody(t *testing.T) {
	baseURL, _ := startFeatureStore(t, func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentEncoding, "gzip")
		return c.Status(http.StatusBadGateway).Send([]byte{0x1f, 0x8b, 0x08, 'n', 'o', 't'})
	})

	client, err := fsclient.New(fsclient.Config{BaseURL: baseURL})
	require.NoError(t, err)

	_, err = client.GetServingPreparedStatements(context.Background(), 67, "transactions", 1, false)

	var httpErr *errorx.HttpError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadGateway, httpErr.StatusCode)
}

func TestGetServingPreparedStatementsMalformedBody(t *testing.T) {
	baseURL, _ := startFeatureStore(t, func(c *fiber.Ctx) error {
		return c.SendString(`"not statements"`)
	})

	client, err := fsclient.New(fsclient.Config{BaseURL: baseURL})
	require.NoError(t, err)

	_, err = client.GetServingPreparedStatements(context.Background(), 67, "transactions", 1, false)
	var generalErr *errorx.GeneralError
	assert.ErrorAs(t, err, &generalErr)
}

func TestGetServingPreparedStatementsCancelledContext(t *testing.T) {
	client, err := fsclient.New(fsclient.Config{BaseURL: "http://127.0.0.1:1"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = client.GetServingPreparedStatements(ctx, 67, "transactions", 1, false)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	_, err := fsclient.New(fsclient.Config{})
	assert.Error(t, err)

	_, err = fsclient.New(fsclient.Config{BaseURL: "not a url"})
	assert.Error(t, err)
}

func TestConfigFrom(t *testing.T) {
	conf := fsclient.ConfigFrom(&configmgr.BaseConfig{
		FeatureStore: &configmgr.FeatureStoreConfig{URL: "https://fs.local/hopsworks-api/api", ApiKey: "k", TimeoutMilli: 1500},
	})

	assert.Equal(t, fsclient.Config{BaseURL: "https://fs.local/hopsworks-api/api", APIKey: "k", Timeout: 1500 * time.Millisecond}, conf)
}
