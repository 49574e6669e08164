package router

import (
	"time"

	"consec/api"
	"consec/config"
	_ "consec/docs"
	"consec/middleware"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// SetupRouter 设置路由
func SetupRouter(cfg *config.Config) *gin.Engine {
	// 设置运行模式
	gin.SetMode(cfg.Server.Mode)

	r := gin.Default()

	// CORS 中间件
	r.Use(CORSMiddleware())

	// 上传文件静态访问
	r.Static("/uploads", cfg.Upload.Dir)

	// Swagger 文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 认证相关路由（无需登录）
	authHandler := api.NewAuthHandler(cfg)
	auth := r.Group("/api/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", middleware.LoginRateLimit(10, time.Minute), authHandler.Login)
	}

	// 支出（员工与管理者，JWT）
	custoHandler := api.NewCustoHandler(cfg)
	exportHandler := api.NewExportHandler()
	custo := r.Group("/api/custo")
	custo.Use(middleware.JWTAuth())
	{
		custo.GET("", custoHandler.ListMine)
		custo.POST("", custoHandler.Create)
		custo.GET("/:id", custoHandler.Get)
		custo.PUT("/:id", custoHandler.Update)
		custo.DELETE("/:id", custoHandler.Delete)
		custo.GET("/comprovante/:id", custoHandler.DownloadComprovante)
		custo.GET("/exportar/csv", exportHandler.ExportCSV)
	}

	// 支出主题（读取对全员开放，写入仅管理者）
	temaHandler := api.NewTemaCustoHandler()
	tema := r.Group("/api/temacusto")
	tema.Use(middleware.JWTAuth())
	{
		tema.GET("", temaHandler.List)
		tema.GET("/:id", temaHandler.Get)

		gestor := tema.Group("")
		gestor.Use(middleware.GestorOnly())
		{
			gestor.POST("", temaHandler.Create)
			gestor.PUT("/:id", temaHandler.Update)
			gestor.DELETE("/:id", temaHandler.Delete)
		}
	}

	// 员工管理（仅管理者）
	usuarioHandler := api.NewUsuarioHandler(cfg)
	usuario := r.Group("/api/usuario")
	usuario.Use(middleware.JWTAuth(), middleware.GestorOnly())
	{
		usuario.GET("/funcionarios", usuarioHandler.List)
		usuario.POST("/criar-funcionario", usuarioHandler.Create)
		usuario.PUT("/funcionario/:id", usuarioHandler.Update)
		usuario.DELETE("/funcionario/:id", usuarioHandler.Delete)
	}

	// 余额（仅管理者）
	saldoHandler := api.NewSaldoHandler(cfg)
	saldo := r.Group("/api/saldo")
	saldo.Use(middleware.JWTAuth(), middleware.GestorOnly())
	{
		saldo.GET("", saldoHandler.List)
		saldo.POST("", saldoHandler.Create)
		saldo.GET("/total", saldoHandler.Total)
		saldo.GET("/comprovante/:id", saldoHandler.DownloadComprovante)
		saldo.GET("/:id", saldoHandler.Get)
		saldo.PUT("/:id", saldoHandler.Update)
		saldo.DELETE("/:id", saldoHandler.Delete)
	}

	// 看板（仅管理者）
	dashboardHandler := api.NewDashboardHandler()
	dashboard := r.Group("/api/dashboard")
	dashboard.Use(middleware.JWTAuth(), middleware.GestorOnly())
	{
		dashboard.GET("/resumo", dashboardHandler.Resumo)
		dashboard.GET("/custos", dashboardHandler.Custos)
		dashboard.GET("/disponibilidade", dashboardHandler.Disponibilidade)
		dashboard.GET("/exportar", dashboardHandler.Exportar)
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	return r
}

// CORSMiddleware CORS 跨域中间件
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
