package fibersrv

import (
	"context"
	"fmt"
	"net"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/marcodd23/go-serving-stmt/pkg/configmgr"
	"github.com/marcodd23/go-serving-stmt/pkg/errorx"
	"github.com/marcodd23/go-serving-stmt/pkg/logx"
	"github.com/marcodd23/go-serving-stmt/pkg/serverx"
)

// DefaultPort is used when the server section has no port.
const DefaultPort = "8080"

// FiberServer - Fiber server.
type FiberServer struct {
	Server   *fiber.App
	config   configmgr.Config
	listener net.Listener
}

// Option customizes a FiberServer.
type Option func(srv *FiberServer)

// WithListener makes the server accept connections on ln instead of listening on the configured port.
func WithListener(ln net.Listener) Option {
	return func(srv *FiberServer) {
		srv.listener = ln
	}
}

// NewFiberServer - Fiber server constructor.
func NewFiberServer(config configmgr.Config, opts ...Option) serverx.Server[*fiber.App] {
	app := fiber.New(buildFiberConfig(config))
	app.Use(recover.New())

	srv := &FiberServer{Server: app, config: config}
	for _, opt := range opts {
		opt(srv)
	}

	return srv
}

func buildFiberConfig(config configmgr.Config) fiber.Config {
	return fiber.Config{
		AppName:               config.GetServiceName(),
		Concurrency:           config.GetServerConfig().Concurrency,
		DisableStartupMessage: config.GetServerConfig().DisableStartupMessage,
		Prefork:               false,
		CaseSensitive:         true,
		StrictRouting:         true,
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
	}
}

// GetServer - return the fiber server.
func (srv *FiberServer) GetServer() *fiber.App {
	return srv.Server
}

// RunSync - Run the server sync.
func (srv *FiberServer) RunSync() {
	if srv.Server != nil {
		srv.run()
	}
}

// RunAsync - Run the server async.
func (srv *FiberServer) RunAsync() {
	if srv.Server != nil {
		go srv.run()
	}
}

// Setup - Receive a callback function setupFunc that let to configure the server.
func (srv *FiberServer) Setup(_ context.Context, setupFunc func(fiber *fiber.App)) {
	if srv.Server != nil {
		setupFunc(srv.Server)
	}
}

// Shutdown - stop the server, waiting for open requests until ctx is done.
func (srv *FiberServer) Shutdown(ctx context.Context) error {
	if srv.Server == nil {
		return nil
	}

	if err := srv.Server.ShutdownWithContext(ctx); err != nil {
		return errorx.NewGeneralErrorWrapper(err, "error shutting down the server")
	}

	logx.GetLogger().LogInfo(ctx, "Server shut down")

	return nil
}

func (srv *FiberServer) run() {
	ctx := context.Background()

	if srv.listener != nil {
		logx.GetLogger().LogInfo(ctx, fmt.Sprintf("Server listening on: %s", srv.listener.Addr()))
		if err := srv.Server.Listener(srv.listener); err != nil {
			logx.GetLogger().LogPanic(ctx, "Oops... server is not running! error:", err)
		}

		return
	}

	serverAddr := fmt.Sprintf(":%s", srv.port())
	logx.GetLogger().LogInfo(ctx, fmt.Sprintf("Server listening on: %s", serverAddr))
	if err := srv.Server.Listen(serverAddr); err != nil {
		logx.GetLogger().LogPanic(ctx, "Oops... server is not running! error:", err)
	}
}

func (srv *FiberServer) port() string {
	if port := srv.config.GetServerConfig().Port; port != "" {
		return port
	}

	return DefaultPort
}
