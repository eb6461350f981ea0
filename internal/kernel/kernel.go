// Package kernel boots the application: it opens the configured stores,
// wires services to their collaborators and builds the HTTP handler. The
// serve, seed and queue:work commands all start from Boot.
package kernel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/sweetshop/app/controllers"
	"github.com/shashiranjanraj/sweetshop/app/jobs"
	"github.com/shashiranjanraj/sweetshop/app/notifications"
	"github.com/shashiranjanraj/sweetshop/app/repositories"
	"github.com/shashiranjanraj/sweetshop/app/routes"
	"github.com/shashiranjanraj/sweetshop/app/schema"
	"github.com/shashiranjanraj/sweetshop/app/services"
	"github.com/shashiranjanraj/sweetshop/config"
	"github.com/shashiranjanraj/sweetshop/pkg/cache"
	"github.com/shashiranjanraj/sweetshop/pkg/database"
	"github.com/shashiranjanraj/sweetshop/pkg/event"
	"github.com/shashiranjanraj/sweetshop/pkg/graphql"
	"github.com/shashiranjanraj/sweetshop/pkg/grpc"
	"github.com/shashiranjanraj/sweetshop/pkg/logger"
	"github.com/shashiranjanraj/sweetshop/pkg/mail"
	"github.com/shashiranjanraj/sweetshop/pkg/metrics"
	"github.com/shashiranjanraj/sweetshop/pkg/middleware"
	"github.com/shashiranjanraj/sweetshop/pkg/mongodb"
	"github.com/shashiranjanraj/sweetshop/pkg/notification"
	"github.com/shashiranjanraj/sweetshop/pkg/queue"
	"github.com/shashiranjanraj/sweetshop/pkg/reqid"
	"github.com/shashiranjanraj/sweetshop/pkg/response"
	"github.com/shashiranjanraj/sweetshop/pkg/router"
	"github.com/shashiranjanraj/sweetshop/pkg/schedule"
	"github.com/shashiranjanraj/sweetshop/pkg/storage"
	"github.com/shashiranjanraj/sweetshop/pkg/workerpool"
	"github.com/shashiranjanraj/sweetshop/pkg/ws"
)

// Kernel holds every long-lived dependency of a running process.
type Kernel struct {
	Stores repositories.Stores
	Cache  cache.Store
	Queue  *queue.Manager
	Disk   storage.Disk
	Router *router.Router

	// Schedule holds the background tasks the serve command runs.
	Schedule *schedule.Scheduler

	// Checks feed the gRPC health service.
	Checks map[string]grpc.Check

	webhooks *workerpool.Pool
	events   *event.Bus
	hub      *ws.Hub
	stopHub  context.CancelFunc

	sql     *gorm.DB
	mongo   *mongo.Database
	redis   *cache.Redis
	logSink *logger.MongoHandler
}

// Boot connects to the configured backends. Redis and the image disk are
// optional: without them the catalogue cache and queue fall back to memory
// and image uploads are refused.
func Boot(ctx context.Context) (*Kernel, error) {
	if err := config.Load(); err != nil {
		return nil, fmt.Errorf("kernel: load config: %w", err)
	}

	k := &Kernel{
		Checks:   map[string]grpc.Check{},
		Schedule: schedule.New(),
		webhooks: workerpool.New("webhooks", 4, 64),
		events:   event.New(),
	}
	if err := k.openStores(ctx); err != nil {
		k.Close()
		return nil, err
	}
	k.openLogSink(ctx)
	k.openCache(ctx)
	k.openQueue()

	disk, err := storage.New(ctx)
	if err != nil {
		logger.Warn("kernel: image storage unavailable", "error", err)
	} else {
		k.Disk = disk
	}

	cors := middleware.DefaultCORSOptions()
	k.startLiveFeed(cors)
	k.Router = k.buildRouter(cors)
	return k, nil
}

func (k *Kernel) openStores(ctx context.Context) error {
	switch config.StoreDriver() {
	case "mongo":
		db, err := k.mongoDB(ctx)
		if err != nil {
			return err
		}
		if err := repositories.EnsureMongoIndexes(ctx, db); err != nil {
			return fmt.Errorf("kernel: mongo indexes: %w", err)
		}
		k.Stores = repositories.NewMongoStores(db)
	default:
		db, err := database.Connect()
		if err != nil {
			return fmt.Errorf("kernel: %w", err)
		}
		k.sql = db
		k.Stores = repositories.NewGormStores(db)
		k.Checks["database"] = func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}
	}
	logger.Info("kernel: stores ready", "driver", config.StoreDriver())
	return nil
}

func (k *Kernel) mongoDB(ctx context.Context) (*mongo.Database, error) {
	if k.mongo != nil {
		return k.mongo, nil
	}
	db, err := mongodb.Connect(ctx)
	if err != nil {
		return nil, fmt.Errorf("kernel: %w", err)
	}
	k.mongo = db
	k.Checks["mongo"] = func(ctx context.Context) error { return db.Client().Ping(ctx, nil) }
	return db, nil
}

// openLogSink tees logs into LOG_MONGO_COLLECTION when set.
func (k *Kernel) openLogSink(ctx context.Context) {
	name := config.LogMongoCollection()
	if name == "" {
		return
	}
	db, err := k.mongoDB(ctx)
	if err != nil {
		logger.Warn("kernel: mongo log sink disabled", "error", err)
		return
	}
	k.logSink = logger.NewMongoHandler(context.WithoutCancel(ctx), db.Collection(name), slog.LevelInfo)
	logger.Tee(k.logSink)
}

func (k *Kernel) openCache(ctx context.Context) {
	r, err := cache.Connect(ctx)
	if err != nil {
		logger.Warn("kernel: redis unavailable, using in-process cache", "error", err)
		k.Cache = cache.NewMemory()
		return
	}
	k.redis = r
	k.Cache = r
	k.Checks["redis"] = func(ctx context.Context) error { return r.Client().Ping(ctx).Err() }
}

func (k *Kernel) openQueue() {
	var driver queue.Driver = queue.NewMemoryDriver()
	if config.QueueDriver() == "redis" {
		if k.redis == nil {
			logger.Warn("kernel: QUEUE_DRIVER=redis but redis is down, using memory queue")
		} else {
			driver = queue.NewRedisDriver(k.redis.Client())
		}
	}

	var failed queue.FailedStore = &queue.MemoryFailedStore{}
	if k.sql != nil {
		failed = queue.NewGormFailedStore(k.sql)
	}
	k.Queue = queue.New(driver, queue.WithFailedStore(failed))
}

// startLiveFeed relays stock events to WebSocket clients.
func (k *Kernel) startLiveFeed(cors middleware.CORSOptions) {
	k.hub = ws.NewHub(func(r *http.Request) bool { return cors.Allows(r.Header.Get("Origin")) })

	var hubCtx context.Context
	hubCtx, k.stopHub = context.WithCancel(context.Background())
	go k.hub.Run(hubCtx)

	k.events.Listen(services.EventStockChanged, func(p any) {
		msg, err := json.Marshal(map[string]any{"event": "stock", "data": p})
		if err != nil {
			logger.Error("kernel: encode stock event", "error", err)
			return
		}
		k.hub.Broadcast(msg)
	})
}

func (k *Kernel) buildRouter(cors middleware.CORSOptions) *router.Router {
	sender := notification.NewSender(mail.FromConfig(), &http.Client{Timeout: 10 * time.Second})
	notifier := notifications.NewNotifier(sender, config.AdminWebhookURL(), notifications.WithWebhookPool(k.webhooks))
	jobs.Register(k.Queue, notifier)

	catalog := services.NewCatalogService(k.Stores.Sweets, k.Cache, config.CacheTTL(), k.Disk)
	inventory := services.NewInventoryService(k.Stores, notifier,
		services.WithCatalogCache(k.Cache),
		services.WithEvents(k.events),
	)
	stats := services.NewStatsService(k.Stores.Purchases)
	k.scheduleTasks(catalog, stats)

	r := router.New()

	// Outermost first.
	r.Use(metrics.Middleware())
	r.Use(reqid.Middleware())
	r.Use(middleware.Recovery)
	r.Use(middleware.Logger)
	r.Use(middleware.CORS(cors))
	r.Use(middleware.NewRateLimiter(config.RateLimitPerMinute(), time.Minute).Middleware)
	r.Use(middleware.MaxBody(config.MaxBodyBytes()))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) { response.NotFound(w) })
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Handle("/metrics", "metrics", metrics.Handler())
	r.Get("/healthz", "health", func(w http.ResponseWriter, req *http.Request) {
		if err := k.Healthy(req.Context()); err != nil {
			response.Error(w, http.StatusServiceUnavailable, err.Error())
			return
		}
		response.Success(w, map[string]string{"status": "ok"})
	})

	if s, err := schema.Catalog(catalog); err != nil {
		logger.Error("kernel: graphql schema", "error", err)
	} else {
		r.Handle("/graphql", "graphql", graphql.Handler(s))
	}

	if local, ok := k.Disk.(*storage.LocalDisk); ok {
		if prefix := storagePrefix(config.StorageURL()); prefix != "" {
			r.Handle(prefix+"/*", "storage", http.StripPrefix(prefix, http.FileServer(http.Dir(local.Root()))))
		}
	}

	routes.RegisterAPI(r, routes.Controllers{
		Auth:      controllers.NewAuthController(services.NewAuthService(k.Stores.Users, jobs.NewWelcomer(k.Queue))),
		Sweets:    controllers.NewSweetController(catalog, config.MaxUploadBytes()),
		Inventory: controllers.NewInventoryController(inventory),
		Purchases: controllers.NewPurchaseController(
			services.NewPurchaseService(k.Stores.Purchases, k.Stores.Users),
			stats,
		),
		Live: controllers.NewLiveController(k.events, k.hub),
	})
	return r
}

func (k *Kernel) scheduleTasks(catalog *services.CatalogService, stats *services.StatsService) {
	if ttl := config.CacheTTL(); ttl > 0 {
		k.Schedule.Every(ttl, "catalog:warm", func(ctx context.Context) error {
			_, err := catalog.List(ctx)
			return err
		})
	}
	k.Schedule.Every(time.Hour, "sales:summary", func(ctx context.Context) error {
		sum, err := stats.Summarize(ctx, time.Now())
		if err != nil {
			return err
		}
		logger.Info("sales summary",
			"month_sales", sum.CurrentMonth.Sales,
			"month_orders", sum.CurrentMonth.Orders,
			"growth_rate", sum.GrowthRate,
			"customers", sum.TotalCustomers,
		)
		return nil
	})
}

// Healthy runs every check once.
func (k *Kernel) Healthy(ctx context.Context) error {
	var errs []error
	for name, check := range k.Checks {
		if err := check(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// Handler is the root HTTP handler.
func (k *Kernel) Handler() http.Handler { return k.Router.Handler() }

// SQL returns the relational handle, or nil on the mongo backend.
func (k *Kernel) SQL() *gorm.DB { return k.sql }

// Close releases every connection Boot opened.
func (k *Kernel) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if k.stopHub != nil {
		k.stopHub()
	}
	k.webhooks.Shutdown(ctx)
	if k.logSink != nil {
		k.logSink.Close()
	}
	if k.redis != nil {
		_ = k.redis.Close()
	}
	if k.sql != nil {
		_ = database.Close(k.sql)
	}
	if k.mongo != nil {
		_ = mongodb.Disconnect(ctx, k.mongo)
	}
}

// storagePrefix is the path part of STORAGE_URL, e.g. "/storage" for
// "http://localhost:8080/storage/".
func storagePrefix(base string) string {
	u, err := url.Parse(base)
	if err != nil {
		return ""
	}
	return strings.TrimRight(u.Path, "/")
}
