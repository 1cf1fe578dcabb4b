package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/maisonlabs/courtier/internal/agency"
	agencydomain "github.com/maisonlabs/courtier/internal/agency/domain"
	"github.com/maisonlabs/courtier/internal/analytics"
	analyticsdomain "github.com/maisonlabs/courtier/internal/analytics/domain"
	"github.com/maisonlabs/courtier/internal/auth"
	authdomain "github.com/maisonlabs/courtier/internal/auth/domain"
	"github.com/maisonlabs/courtier/internal/authorization"
	"github.com/maisonlabs/courtier/internal/client"
	clientdomain "github.com/maisonlabs/courtier/internal/client/domain"
	"github.com/maisonlabs/courtier/internal/clock"
	"github.com/maisonlabs/courtier/internal/config"
	"github.com/maisonlabs/courtier/internal/observability"
	obsmiddleware "github.com/maisonlabs/courtier/internal/observability/logger"
	obsmetrics "github.com/maisonlabs/courtier/internal/observability/metrics"
	obstracing "github.com/maisonlabs/courtier/internal/observability/tracing"
	"github.com/maisonlabs/courtier/internal/property"
	propertydomain "github.com/maisonlabs/courtier/internal/property/domain"
	"github.com/maisonlabs/courtier/internal/storage"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	authorization.Module,
	auth.Module,
	agency.Module,
	client.Module,
	property.Module,
	analytics.Module,
	fx.Provide(storage.New),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(cfg config.Config, obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware(!cfg.IsProduction()))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.Static("/uploads", cfg.UploadsDir)

	return r
}

func registerGin(cfg config.Config, obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(cfg, obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine *gin.Engine
	cfg    config.Config
	db     *gorm.DB
	log    *zap.Logger
	genID  *snowflake.Node
	clock  clock.Clock
	store  *storage.Store

	authsvc      authdomain.Service
	authzSvc     authorization.Service
	agencySvc    agencydomain.Service
	clientSvc    clientdomain.Service
	propertySvc  propertydomain.Service
	analyticsSvc analyticsdomain.Service
}

type ServerParams struct {
	fx.In

	Gin   *gin.Engine
	Cfg   config.Config
	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Store *storage.Store

	Authsvc      authdomain.Service
	AuthzSvc     authorization.Service
	AgencySvc    agencydomain.Service
	ClientSvc    clientdomain.Service
	PropertySvc  propertydomain.Service
	AnalyticsSvc analyticsdomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:       p.Gin,
		cfg:          p.Cfg,
		db:           p.DB,
		log:          p.Log.Named("http.server"),
		genID:        p.GenID,
		clock:        p.Clock,
		store:        p.Store,
		authsvc:      p.Authsvc,
		authzSvc:     p.AuthzSvc,
		agencySvc:    p.AgencySvc,
		clientSvc:    p.ClientSvc,
		propertySvc:  p.PropertySvc,
		analyticsSvc: p.AnalyticsSvc,
	}

	svc.registerAuthRoutes()
	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	authGroup := s.engine.Group("/auth")

	authGroup.POST("/verify-agency", s.VerifyAgency)
	authGroup.POST("/login", s.Login)
	authGroup.POST("/register", s.AuthRequired(), s.RequireCapability(authorization.ObjectUser, authorization.ActionManage), s.Register)
	authGroup.GET("/me", s.AuthRequired(), s.Me)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api", s.AuthRequired())

	can := func(object, action string) gin.HandlerFunc {
		return s.RequireCapability(object, action)
	}

	// -------- Agencies --------
	api.GET("/agencies", s.RequireSuperAdmin(), s.ListAgencies)
	api.POST("/agencies", s.RequireSuperAdmin(), s.CreateAgency)
	api.GET("/agencies/stats", can(authorization.ObjectAgency, authorization.ActionView), s.AgencyStats)
	api.GET("/agencies/:id", can(authorization.ObjectAgency, authorization.ActionView), s.GetAgencyByID)
	api.PUT("/agencies/:id", can(authorization.ObjectAgency, authorization.ActionManage), s.UpdateAgency)
	api.DELETE("/agencies/:id", s.RequireSuperAdmin(), s.DeactivateAgency)

	// -------- Users --------
	api.GET("/users", can(authorization.ObjectUser, authorization.ActionView), s.ListUsers)
	api.GET("/users/:id", can(authorization.ObjectUser, authorization.ActionView), s.GetUserByID)
	api.PUT("/users/:id", can(authorization.ObjectUser, authorization.ActionManage), s.UpdateUser)
	api.DELETE("/users/:id", can(authorization.ObjectUser, authorization.ActionManage), s.DeactivateUser)

	// -------- Clients --------
	api.GET("/clients", can(authorization.ObjectClient, authorization.ActionView), s.ListClients)
	api.POST("/clients", can(authorization.ObjectClient, authorization.ActionCreate), s.CreateClient)
	api.GET("/clients/:id", can(authorization.ObjectClient, authorization.ActionView), s.GetClientByID)
	api.PUT("/clients/:id", can(authorization.ObjectClient, authorization.ActionUpdate), s.UpdateClient)
	api.DELETE("/clients/:id", can(authorization.ObjectClient, authorization.ActionDelete), s.DeleteClient)

	// -------- Properties --------
	api.GET("/properties", can(authorization.ObjectProperty, authorization.ActionView), s.ListProperties)
	api.POST("/properties", can(authorization.ObjectProperty, authorization.ActionCreate), s.CreateProperty)
	api.GET("/properties/:id", can(authorization.ObjectProperty, authorization.ActionView), s.GetPropertyByID)
	api.PUT("/properties/:id", can(authorization.ObjectProperty, authorization.ActionUpdate), s.UpdateProperty)
	api.DELETE("/properties/:id", can(authorization.ObjectProperty, authorization.ActionDelete), s.DeleteProperty)
	api.POST("/properties/:id/photos", can(authorization.ObjectProperty, authorization.ActionUpdate), s.AddPropertyPhoto)
	api.PUT("/properties/:id/photos/:photoId/main", can(authorization.ObjectProperty, authorization.ActionUpdate), s.SetMainPropertyPhoto)
	api.DELETE("/properties/:id/photos/:photoId", can(authorization.ObjectProperty, authorization.ActionUpdate), s.DeletePropertyPhoto)

	// -------- Contracts --------
	api.GET("/contracts", can(authorization.ObjectContract, authorization.ActionView), s.ListContracts)
	api.POST("/contracts", can(authorization.ObjectContract, authorization.ActionCreate), s.CreateContract)
	api.GET("/contracts/:id", can(authorization.ObjectContract, authorization.ActionView), s.GetContractByID)
	api.PUT("/contracts/:id", can(authorization.ObjectContract, authorization.ActionUpdate), s.UpdateContract)
	api.DELETE("/contracts/:id", can(authorization.ObjectContract, authorization.ActionDelete), s.DeleteContract)

	// -------- Mandates --------
	api.GET("/mandates", can(authorization.ObjectMandate, authorization.ActionView), s.ListMandates)
	api.POST("/mandates", can(authorization.ObjectMandate, authorization.ActionCreate), s.CreateMandate)
	api.GET("/mandates/:id", can(authorization.ObjectMandate, authorization.ActionView), s.GetMandateByID)
	api.PUT("/mandates/:id", can(authorization.ObjectMandate, authorization.ActionUpdate), s.UpdateMandate)
	api.DELETE("/mandates/:id", can(authorization.ObjectMandate, authorization.ActionDelete), s.DeleteMandate)

	// -------- Offers --------
	api.GET("/offers", can(authorization.ObjectOffer, authorization.ActionView), s.ListOffers)
	api.POST("/offers", can(authorization.ObjectOffer, authorization.ActionCreate), s.CreateOffer)
	api.GET("/offers/:id", can(authorization.ObjectOffer, authorization.ActionView), s.GetOfferByID)
	api.PUT("/offers/:id", can(authorization.ObjectOffer, authorization.ActionUpdate), s.UpdateOffer)
	api.DELETE("/offers/:id", can(authorization.ObjectOffer, authorization.ActionDelete), s.DeleteOffer)

	// -------- Payments --------
	api.GET("/payments", can(authorization.ObjectPayment, authorization.ActionView), s.ListPayments)
	api.POST("/payments", can(authorization.ObjectPayment, authorization.ActionCreate), s.CreatePayment)
	api.GET("/payments/:id", can(authorization.ObjectPayment, authorization.ActionView), s.GetPaymentByID)
	api.PUT("/payments/:id", can(authorization.ObjectPayment, authorization.ActionUpdate), s.UpdatePayment)
	api.DELETE("/payments/:id", can(authorization.ObjectPayment, authorization.ActionDelete), s.DeletePayment)

	// -------- Tasks --------
	api.GET("/tasks", can(authorization.ObjectTask, authorization.ActionView), s.ListTasks)
	api.POST("/tasks", can(authorization.ObjectTask, authorization.ActionCreate), s.CreateTask)
	api.GET("/tasks/:id", can(authorization.ObjectTask, authorization.ActionView), s.GetTaskByID)
	api.PUT("/tasks/:id", can(authorization.ObjectTask, authorization.ActionUpdate), s.UpdateTask)
	api.DELETE("/tasks/:id", can(authorization.ObjectTask, authorization.ActionDelete), s.DeleteTask)

	// -------- Appointments --------
	api.GET("/appointments", can(authorization.ObjectAppointment, authorization.ActionView), s.ListAppointments)
	api.POST("/appointments", can(authorization.ObjectAppointment, authorization.ActionCreate), s.CreateAppointment)
	api.GET("/appointments/:id", can(authorization.ObjectAppointment, authorization.ActionView), s.GetAppointmentByID)
	api.PUT("/appointments/:id", can(authorization.ObjectAppointment, authorization.ActionUpdate), s.UpdateAppointment)
	api.DELETE("/appointments/:id", can(authorization.ObjectAppointment, authorization.ActionDelete), s.DeleteAppointment)

	// -------- Communications --------
	api.GET("/communications", can(authorization.ObjectCommunication, authorization.ActionView), s.ListCommunications)
	api.POST("/communications", can(authorization.ObjectCommunication, authorization.ActionCreate), s.CreateCommunication)
	api.GET("/communications/:id", can(authorization.ObjectCommunication, authorization.ActionView), s.GetCommunicationByID)
	api.PUT("/communications/:id", can(authorization.ObjectCommunication, authorization.ActionUpdate), s.UpdateCommunication)
	api.DELETE("/communications/:id", can(authorization.ObjectCommunication, authorization.ActionDelete), s.DeleteCommunication)

	// -------- Documents --------
	api.GET("/documents", can(authorization.ObjectDocument, authorization.ActionView), s.ListDocuments)
	api.POST("/documents", can(authorization.ObjectDocument, authorization.ActionCreate), s.UploadDocument)
	api.GET("/documents/:id", can(authorization.ObjectDocument, authorization.ActionView), s.GetDocumentByID)
	api.GET("/documents/:id/download", can(authorization.ObjectDocument, authorization.ActionView), s.DownloadDocument)
	api.DELETE("/documents/:id", can(authorization.ObjectDocument, authorization.ActionDelete), s.DeleteDocument)

	// -------- Saved searches --------
	api.GET("/saved-searches", can(authorization.ObjectSavedSearch, authorization.ActionView), s.ListSavedSearches)
	api.POST("/saved-searches", can(authorization.ObjectSavedSearch, authorization.ActionCreate), s.CreateSavedSearch)
	api.GET("/saved-searches/:id", can(authorization.ObjectSavedSearch, authorization.ActionView), s.GetSavedSearchByID)
	api.PUT("/saved-searches/:id", can(authorization.ObjectSavedSearch, authorization.ActionUpdate), s.UpdateSavedSearch)
	api.DELETE("/saved-searches/:id", can(authorization.ObjectSavedSearch, authorization.ActionDelete), s.DeleteSavedSearch)

	// -------- CMS --------
	api.GET("/cms/pages", can(authorization.ObjectCMS, authorization.ActionView), s.ListPages)
	api.POST("/cms/pages", can(authorization.ObjectCMS, authorization.ActionManage), s.CreatePage)
	api.GET("/cms/pages/:id", can(authorization.ObjectCMS, authorization.ActionView), s.GetPageByID)
	api.PUT("/cms/pages/:id", can(authorization.ObjectCMS, authorization.ActionManage), s.UpdatePage)
	api.DELETE("/cms/pages/:id", can(authorization.ObjectCMS, authorization.ActionManage), s.DeletePage)
	api.GET("/cms/posts", can(authorization.ObjectCMS, authorization.ActionView), s.ListPosts)
	api.POST("/cms/posts", can(authorization.ObjectCMS, authorization.ActionManage), s.CreatePost)
	api.GET("/cms/posts/:id", can(authorization.ObjectCMS, authorization.ActionView), s.GetPostByID)
	api.PUT("/cms/posts/:id", can(authorization.ObjectCMS, authorization.ActionManage), s.UpdatePost)
	api.DELETE("/cms/posts/:id", can(authorization.ObjectCMS, authorization.ActionManage), s.DeletePost)

	// -------- Analytics --------
	api.GET("/analytics/dashboard", can(authorization.ObjectAnalytics, authorization.ActionView), s.GetDashboard)
	api.GET("/analytics/operational-dashboard", can(authorization.ObjectAnalytics, authorization.ActionView), s.GetOperationalDashboard)
	api.GET("/analytics/revenue", can(authorization.ObjectAnalytics, authorization.ActionView), s.GetRevenue)
}
