package catalog

import (
	"context"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/marcodd23/go-serving-stmt/pkg/errorx"
	"github.com/marcodd23/go-serving-stmt/pkg/logx"
	"github.com/marcodd23/go-serving-stmt/pkg/servingstmt"
	"github.com/marcodd23/go-serving-stmt/pkg/utilx"
	"github.com/marcodd23/go-serving-stmt/pkg/validator"
)

// RoutePath is the feature store REST path of the prepared statements of a feature view version.
const RoutePath = "/featurestores/:fsId/featureview/:name/version/:version/preparedstatement"

// HeaderRequestID carries the request id propagated to the logs.
const HeaderRequestID = "X-Request-ID"

// ErrorResponse is the body of every non successful response.
type ErrorResponse struct {
	ErrorMsg string `json:"errorMsg"`
}

type handler struct {
	store Store
}

// RegisterRoutes mounts the catalog endpoints on router:
//   - GET    RoutePath: the stored statements, wrapped in a servingstmt.Collection.
//   - PUT    RoutePath: replaces the statements with the decoded body and returns the stored collection.
//   - DELETE RoutePath: removes the statements, 204 on success.
func RegisterRoutes(router fiber.Router, store Store) {
	h := &handler{store: store}

	router.Get(RoutePath, h.list)
	router.Put(RoutePath, h.replace)
	router.Delete(RoutePath, h.delete)
}

func (h *handler) list(c *fiber.Ctx) error {
	ctx := requestContext(c)

	view, err := parseFeatureView(c)
	if err != nil {
		return respondError(ctx, c, fiber.StatusBadRequest, err)
	}

	stmts, err := h.store.List(ctx, view)
	if err != nil {
		return respondError(ctx, c, fiber.StatusInternalServerError, err)
	}

	return respondCollection(c, stmts)
}

func (h *handler) replace(c *fiber.Ctx) error {
	ctx := requestContext(c)

	view, err := parseFeatureView(c)
	if err != nil {
		return respondError(ctx, c, fiber.StatusBadRequest, err)
	}

	stmts, err := servingstmt.DecodeList(c.Body())
	if err != nil {
		return respondError(ctx, c, fiber.StatusBadRequest, err)
	}

	if err := h.store.Replace(ctx, view, stmts); err != nil {
		return respondError(ctx, c, fiber.StatusInternalServerError, err)
	}

	logx.GetLogger().LogInfo(ctx, fmt.Sprintf("replaced serving prepared statements of %s (%d items)", view, len(stmts)))

	stored, err := h.store.List(ctx, view)
	if err != nil {
		return respondError(ctx, c, fiber.StatusInternalServerError, err)
	}

	return respondCollection(c, stored)
}

func (h *handler) delete(c *fiber.Ctx) error {
	ctx := requestContext(c)

	view, err := parseFeatureView(c)
	if err != nil {
		return respondError(ctx, c, fiber.StatusBadRequest, err)
	}

	deleted, err := h.store.Delete(ctx, view)
	if err != nil {
		return respondError(ctx, c, fiber.StatusInternalServerError, err)
	}

	logx.GetLogger().LogInfo(ctx, fmt.Sprintf("deleted %d serving prepared statements of %s", deleted, view))

	return c.SendStatus(fiber.StatusNoContent)
}

// requestContext propagates the caller's request id, or a new one, to the response and the logs.
func requestContext(c *fiber.Ctx) context.Context {
	requestID := c.Get(HeaderRequestID)
	if requestID == "" {
		requestID = utilx.GenerateUUID().String()
	}
	c.Set(HeaderRequestID, requestID)

	return logx.WithRequestID(c.UserContext(), requestID)
}

func parseFeatureView(c *fiber.Ctx) (FeatureView, error) {
	fsID, err := strconv.Atoi(c.Params("fsId"))
	if err != nil {
		return FeatureView{}, errorx.NewGeneralError("invalid feature store id '%s'", c.Params("fsId"))
	}

	version, err := strconv.Atoi(c.Params("version"))
	if err != nil {
		return FeatureView{}, errorx.NewGeneralError("invalid feature view version '%s'", c.Params("version"))
	}

	view := FeatureView{FeatureStoreID: fsID, Name: c.Params("name"), Version: version}
	if err := validator.NewValidator().Validate(view); err != nil {
		return FeatureView{}, err
	}

	return view, nil
}

func respondCollection(c *fiber.Ctx, stmts []*servingstmt.ServingPreparedStatement) error {
	collection := servingstmt.NewCollection(stmts)
	collection.Href = c.BaseURL() + c.OriginalURL()

	return c.Status(fiber.StatusOK).JSON(collection)
}

func respondError(ctx context.Context, c *fiber.Ctx, status int, err error) error {
	if status >= fiber.StatusInternalServerError {
		logx.GetLogger().LogError(ctx, "catalog request failed", err)
	} else {
		logx.GetLogger().LogWarning(ctx, "catalog request rejected", err)
	}

	return c.Status(status).JSON(ErrorResponse{ErrorMsg: err.Error()})
}
