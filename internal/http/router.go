package http

import (
	"context"
	"time"

	"github.com/dicoevent/dicoevent/internal/auth"
	"github.com/dicoevent/dicoevent/internal/authz"
	"github.com/dicoevent/dicoevent/internal/cache"
	"github.com/dicoevent/dicoevent/internal/config"
	"github.com/dicoevent/dicoevent/internal/http/handlers"
	"github.com/dicoevent/dicoevent/internal/http/middlewares"
	"github.com/dicoevent/dicoevent/internal/observability"
	"github.com/dicoevent/dicoevent/internal/repo/postgres"
	"github.com/dicoevent/dicoevent/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Deps carries everything the router wires together; cmd/api builds it once
// at boot.
type Deps struct {
	Pool        *pgxpool.Pool
	Registry    *prometheus.Registry
	Prom        *observability.Prom
	DetailCache *cache.DetailCache
	Posters     *storage.PosterStore
	JWT         *auth.Manager
}

func NewRouter(cfg config.Config, d Deps) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// repositories
	usersRepo := postgres.NewUsersRepo(d.Pool)
	groupsRepo := postgres.NewGroupsRepo(d.Pool)
	rolesRepo := postgres.NewRolesRepo(d.Pool)
	eventsRepo := postgres.NewEventsRepo(d.Pool)
	ticketsRepo := postgres.NewTicketsRepo(d.Pool)
	registrationsRepo := postgres.NewRegistrationsRepo(d.Pool, d.Prom)
	paymentsRepo := postgres.NewPaymentsRepo(d.Pool)
	postersRepo := postgres.NewPostersRepo(d.Pool)
	jobsRepo := postgres.NewJobsRepo(d.Pool, d.Prom)
	refreshRepo := postgres.NewRefreshTokensRepo(d.Pool)

	// middleware chain
	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.CORSOrigins))
	r.Use(middlewares.MaxBodyBytes(1 << 20))
	r.Use(middlewares.RequireJSON())
	r.Use(otelgin.Middleware("dicoevent-api"))

	if d.Prom != nil {
		r.Use(d.Prom.GinHandleMiddleware())
	}

	r.Use(middlewares.Identity(d.JWT, usersRepo))

	// health and metrics
	ping := func() error {
		if d.Pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return d.Pool.Ping(ctx)
	}

	health := handlers.NewHealthHandler(ping)
	r.GET("/healthz", health.Healthz)
	r.GET("/readyz", health.Readyz)

	if d.Registry != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{})))
	}

	// handlers
	authHandler := handlers.NewAuthHandler(usersRepo, d.JWT, refreshRepo)
	usersHandler := handlers.NewUsersHandler(usersRepo)
	groupsHandler := handlers.NewGroupsHandler(groupsRepo)
	rolesHandler := handlers.NewRolesHandler(rolesRepo)
	eventsHandler := handlers.NewEventsHandlerWithCache(eventsRepo, d.DetailCache, d.Prom)
	ticketsHandler := handlers.NewTicketsHandlerWithCache(ticketsRepo, eventsRepo, d.DetailCache, d.Prom)
	registrationsHandler := handlers.NewRegistrationsHandler(registrationsRepo, jobsRepo)
	paymentsHandler := handlers.NewPaymentsHandler(paymentsRepo, registrationsRepo)
	postersHandler := handlers.NewPostersHandler(postersRepo, d.Posters, eventsRepo)
	adminJobsHandler := handlers.NewAdminJobsHandler(jobsRepo)

	// login gets a tighter lid than everything else
	loginLimiter := middlewares.NewRateLimiter(10, time.Minute)

	r.POST("/login", loginLimiter.RateLimiterMiddleware(middlewares.KeyByIP), authHandler.Login)
	r.POST("/token/refresh", loginLimiter.RateLimiterMiddleware(middlewares.KeyByIP), authHandler.Refresh)
	r.POST("/logout", authHandler.Logout)

	// groups
	r.POST("/groups", middlewares.Permit(authz.ActionCreate, authz.KindGroup), groupsHandler.CreateGroup)
	r.GET("/groups", middlewares.Permit(authz.ActionList, authz.KindGroup), groupsHandler.ListGroups)
	r.GET("/groups/:id", middlewares.Permit(authz.ActionRetrieve, authz.KindGroup), groupsHandler.GetGroupById)
	r.PUT("/groups/:id", middlewares.Permit(authz.ActionUpdate, authz.KindGroup), groupsHandler.UpdateGroup)
	r.DELETE("/groups/:id", middlewares.Permit(authz.ActionDelete, authz.KindGroup), groupsHandler.DeleteGroup)

	// users
	r.POST("/users", middlewares.Permit(authz.ActionCreate, authz.KindUser), usersHandler.CreateUser)
	r.GET("/users", middlewares.Permit(authz.ActionList, authz.KindUser), usersHandler.ListUsers)
	r.GET("/users/:id", middlewares.Permit(authz.ActionRetrieve, authz.KindUser), usersHandler.GetUserById)
	r.PUT("/users/:id", middlewares.Permit(authz.ActionUpdate, authz.KindUser), usersHandler.UpdateUser)
	r.DELETE("/users/:id", middlewares.Permit(authz.ActionDelete, authz.KindUser), usersHandler.DeleteUser)

	// role assignments
	r.POST("/assign-roles", middlewares.Permit(authz.ActionCreate, authz.KindRole), rolesHandler.AssignRole)
	r.GET("/assign-roles", middlewares.Permit(authz.ActionList, authz.KindRole), rolesHandler.ListRoles)
	r.GET("/assign-roles/:id", middlewares.Permit(authz.ActionRetrieve, authz.KindRole), rolesHandler.GetRoleById)
	r.DELETE("/assign-roles/:id", middlewares.Permit(authz.ActionDelete, authz.KindRole), rolesHandler.RevokeRole)

	// events
	r.POST("/events", middlewares.Permit(authz.ActionCreate, authz.KindEvent), eventsHandler.CreateEvent)
	r.GET("/events", middlewares.Permit(authz.ActionList, authz.KindEvent), eventsHandler.ListEvents)
	r.GET("/events/:id", middlewares.Permit(authz.ActionRetrieve, authz.KindEvent), eventsHandler.GetEventById)
	r.PUT("/events/:id", middlewares.Permit(authz.ActionUpdate, authz.KindEvent), eventsHandler.UpdateEvent)
	r.DELETE("/events/:id", middlewares.Permit(authz.ActionDelete, authz.KindEvent), eventsHandler.DeleteEvent)

	// posters hang off their event for upload, stand alone for the rest
	r.POST("/events/:id/poster", middlewares.Permit(authz.ActionCreate, authz.KindPoster), postersHandler.UploadPoster)
	r.GET("/posters", middlewares.Permit(authz.ActionList, authz.KindPoster), postersHandler.ListPosters)
	r.GET("/posters/:id", middlewares.Permit(authz.ActionRetrieve, authz.KindPoster), postersHandler.GetPosterById)
	r.DELETE("/posters/:id", middlewares.Permit(authz.ActionDelete, authz.KindPoster), postersHandler.DeletePoster)

	// tickets
	r.POST("/tickets", middlewares.Permit(authz.ActionCreate, authz.KindTicket), ticketsHandler.CreateTicket)
	r.GET("/tickets", middlewares.Permit(authz.ActionList, authz.KindTicket), ticketsHandler.ListTickets)
	r.GET("/tickets/:id", middlewares.Permit(authz.ActionRetrieve, authz.KindTicket), ticketsHandler.GetTicketById)
	r.PUT("/tickets/:id", middlewares.Permit(authz.ActionUpdate, authz.KindTicket), ticketsHandler.UpdateTicket)
	r.DELETE("/tickets/:id", middlewares.Permit(authz.ActionDelete, authz.KindTicket), ticketsHandler.DeleteTicket)

	// registrations
	r.POST("/registrations", middlewares.Permit(authz.ActionCreate, authz.KindRegistration), registrationsHandler.Register)
	r.GET("/registrations", middlewares.Permit(authz.ActionList, authz.KindRegistration), registrationsHandler.ListRegistrations)
	r.GET("/registrations/:id", middlewares.Permit(authz.ActionRetrieve, authz.KindRegistration), registrationsHandler.GetRegistrationById)
	r.DELETE("/registrations/:id", middlewares.Permit(authz.ActionDelete, authz.KindRegistration), registrationsHandler.DeleteRegistration)

	// payments
	r.POST("/payments", middlewares.Permit(authz.ActionCreate, authz.KindPayment), paymentsHandler.CreatePayment)
	r.GET("/payments", middlewares.Permit(authz.ActionList, authz.KindPayment), paymentsHandler.ListPayments)
	r.GET("/payments/:id", middlewares.Permit(authz.ActionRetrieve, authz.KindPayment), paymentsHandler.GetPaymentById)
	r.PUT("/payments/:id", middlewares.Permit(authz.ActionUpdate, authz.KindPayment), paymentsHandler.UpdatePayment)
	r.DELETE("/payments/:id", middlewares.Permit(authz.ActionDelete, authz.KindPayment), paymentsHandler.DeletePayment)

	// operator queue endpoints, superuser only via the job policy
	admin := r.Group("/admin")
	admin.GET("/jobs", middlewares.Permit(authz.ActionList, authz.KindJob), adminJobsHandler.List)
	admin.GET("/jobs/:id", middlewares.Permit(authz.ActionRetrieve, authz.KindJob), adminJobsHandler.GetByID)
	admin.POST("/jobs/:id/retry", middlewares.Permit(authz.ActionUpdate, authz.KindJob), adminJobsHandler.Retry)
	admin.POST("/jobs/reprocess-dead", middlewares.Permit(authz.ActionUpdate, authz.KindJob), adminJobsHandler.ReprocessDead)

	return r
}
