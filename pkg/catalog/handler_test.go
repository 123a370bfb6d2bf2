package catalog_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/marcodd23/go-serving-stmt/pkg/catalog"
	"github.com/marcodd23/go-serving-stmt/pkg/servingstmt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const viewPath = "/featurestores/67/featureview/transactions/version/1/preparedstatement"

type failingStore struct{}

func (failingStore) Replace(context.Context, catalog.FeatureView, []*servingstmt.ServingPreparedStatement) error {
	return errors.New("connection refused")
}

func (failingStore) List(context.Context, catalog.FeatureView) ([]*servingstmt.ServingPreparedStatement, error) {
	return nil, errors.New("connection refused")
}

func (failingStore) Delete(context.Context, catalog.FeatureView) (int64, error) {
	return 0, errors.New("connection refused")
}

func newTestApp(store catalog.Store) *fiber.App {
	app := fiber.New(fiber.Config{JSONEncoder: json.Marshal, JSONDecoder: json.Unmarshal})
	catalog.RegisterRoutes(app, store)

	return app
}

func doRequest(t *testing.T, app *fiber.App, method, target, body string) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp, data
}

func TestHandlerReplaceAndList(t *testing.T) {
	app := newTestApp(catalog.NewMemoryStore())

	resp, body := doRequest(t, app, http.MethodGet, viewPath, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"href":"http://example.com`+viewPath+`","count":0,"items":[]}`, string(body))

	resp, body = doRequest(t, app, http.MethodPut, viewPath, `{
		"count": 2,
		"type": "servingPreparedStatementDTO",
		"items": [
			{"featureGroupId": 7, "preparedStatementIndex": 0, "preparedStatementParameters": [{"name": "id", "index": 0, "type": "int"}], "queryOnline": "SELECT * FROM fg7 WHERE id = ?", "extraField": "ignored"},
			{"featureGroupId": 8, "preparedStatementIndex": 1, "queryOnline": "SELECT * FROM fg8"}
		]
	}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	stored, err := servingstmt.DecodeList(body)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, 7, *stored[0].GetFeatureGroupID())
	assert.Equal(t, "id", *stored[0].GetPreparedStatementParameters()[0].GetName())
	assert.Nil(t, stored[1].GetPreparedStatementParameters())

	resp, body = doRequest(t, app, http.MethodGet, viewPath, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var collection map[string]any
	require.NoError(t, json.Unmarshal(body, &collection))
	assert.EqualValues(t, 2, collection["count"])

	resp, _ = doRequest(t, app, http.MethodGet, "/featurestores/67/featureview/transactions/version/2/preparedstatement", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHandlerReplaceAcceptsBareArray(t *testing.T) {
	app := newTestApp(catalog.NewMemoryStore())

	resp, body := doRequest(t, app, http.MethodPut, viewPath, `[{"preparedStatementIndex": 3}]`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	stored, err := servingstmt.DecodeList(body)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, 3, *stored[0].GetPreparedStatementIndex())
}

func TestHandlerDelete(t *testing.T) {
	app := newTestApp(catalog.NewMemoryStore())

	resp, _ := doRequest(t, app, http.MethodPut, viewPath, `[{"preparedStatementIndex": 0}]`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := doRequest(t, app, http.MethodDelete, viewPath, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Empty(t, body)

	_, body = doRequest(t, app, http.MethodGet, viewPath, "")
	stored, err := servingstmt.DecodeList(body)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestHandlerKeepsNullParameters(t *testing.T) {
	app := newTestApp(catalog.NewMemoryStore())

	resp, _ := doRequest(t, app, http.MethodPut, viewPath,
		`[{"preparedStatementIndex": 0, "preparedStatementParameters": [{"name": "id", "index": 0}, null]}]`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := doRequest(t, app, http.MethodGet, viewPath, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	stored, err := servingstmt.DecodeList(body)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	params := stored[0].GetPreparedStatementParameters()
	require.Len(t, params, 2)
	assert.Equal(t, "id", *params[0].GetName())
	assert.Nil(t, params[1])
}

func TestHandlerBadRequests(t *testing.T) {
	app := newTestApp(catalog.NewMemoryStore())

	tests := []struct {
		name   string
		method string
		target string
		body   string
	}{
		{"non numeric version", http.MethodGet, "/featurestores/67/featureview/transactions/version/latest/preparedstatement", ""},
		{"non numeric feature store", http.MethodGet, "/featurestores/fs/featureview/transactions/version/1/preparedstatement", ""},
		{"version zero", http.MethodDelete, "/featurestores/67/featureview/transactions/version/0/preparedstatement", ""},
		{"body not json", http.MethodPut, viewPath, `not json`},
		{"body is a string", http.MethodPut, viewPath, `"statements"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := doRequest(t, app, tt.method, tt.target, tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

			var errResp catalog.ErrorResponse
			require.NoError(t, json.Unmarshal(body, &errResp))
			assert.NotEmpty(t, errResp.ErrorMsg)
		})
	}
}

func TestHandlerStoreFailure(t *testing.T) {
	app := newTestApp(failingStore{})

	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		resp, body := doRequest(t, app, method, viewPath, "")
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode, method)
		assert.JSONEq(t, `{"errorMsg":"connection refused"}`, string(body), method)
	}

	resp, _ := doRequest(t, app, http.MethodPut, viewPath, `[]`)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestHandlerRequestID(t *testing.T) {
	app := newTestApp(catalog.NewMemoryStore())

	req := httptest.NewRequest(http.MethodGet, viewPath, nil)
	req.Header.Set(catalog.HeaderRequestID, "req-42")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, "req-42", resp.Header.Get(catalog.HeaderRequestID))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, viewPath, nil), -1)
	require.NoError(t, err)
	assert.Len(t, resp.Header.Get(catalog.HeaderRequestID), 36)
}
