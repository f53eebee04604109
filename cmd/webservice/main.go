package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	_ "time/tzdata"

	"github.com/go-co-op/gocron/v2"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/gomail.v2"

	"github.com/schoolup-zm/payment-service/config"
	"github.com/schoolup-zm/payment-service/internal/controller"
	circuitbreaker "github.com/schoolup-zm/payment-service/internal/infrastructure/circuit-breaker"
	"github.com/schoolup-zm/payment-service/internal/infrastructure/database/postgres"
	"github.com/schoolup-zm/payment-service/internal/infrastructure/message-queue/kafka"
	paymentgateway "github.com/schoolup-zm/payment-service/internal/infrastructure/payment-gateway"
	"github.com/schoolup-zm/payment-service/internal/infrastructure/tracing"
	localmiddleware "github.com/schoolup-zm/payment-service/internal/middleware"
	"github.com/schoolup-zm/payment-service/internal/relay"
	"github.com/schoolup-zm/payment-service/internal/repository"
	"github.com/schoolup-zm/payment-service/internal/service"
	"github.com/schoolup-zm/payment-service/pkg/response"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = logger

	config := config.CreateNewConfig()

	kafkaProducer := kafka.CreateKafkaProducer(config)
	kafkaReader := kafka.CreateKafkaReader(config)

	db, err := postgres.GetDBInstance(config.PostgreSQLConfig.DBUsername, config.PostgreSQLConfig.DBPassword, config.PostgreSQLConfig.DBHost, config.PostgreSQLConfig.DBPort, config.PostgreSQLConfig.DBName)
	if err != nil {
		panic(err)
	}

	traceProvider, err := tracing.InitTracing(config.TracingConfig.CollectorHost)
	if err != nil {
		fmt.Println(err)
	}

	defer func() {
		if err := traceProvider.Shutdown(context.Background()); err != nil {
			fmt.Println(err)
		}
	}()

	tracer := traceProvider.Tracer("payment-service")

	e := echo.New()
	g := e.Group("/api/v1")

	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// span creation and naming
			ctx, span := tracer.Start(c.Request().Context(), fmt.Sprintf("[%s] %s", c.Request().Method, c.Path()))
			defer span.End()

			// add the context to the request
			req := c.Request()
			c.SetRequest(req.WithContext(ctx))

			return next(c)
		}
	})

	// Used empty string so that metrics are not prefixed with the service name making it easier to aggregate across services
	e.Use(echoprometheus.NewMiddleware(""))
	go func() {
		metrics := echo.New()
		metrics.GET("/metrics", echoprometheus.NewHandler())
		if err := metrics.Start(fmt.Sprintf(":%s", config.MetricsPort)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start metrics server")
		}
	}()

	e.Use(localmiddleware.Logger)

	g.GET("/ping", func(c echo.Context) error {
		return response.WriteSuccessResponse(c, "pong", nil)
	})

	cb := circuitbreaker.CreateCircuitBreaker("payment-service")
	momoGateway := paymentgateway.CreateAggregatorClient(config, cb)

	paymentRepo := repository.CreatePaymentRepository(db)
	paymentSvc := service.CreatePaymentService(paymentRepo, momoGateway, kafkaProducer, config)
	controller.CreatePaymentController(g, paymentSvc, localmiddleware.IsLoggedIn(config.JWTSecret))

	mailDialer := gomail.NewDialer(config.SMTPConfig.Host, config.SMTPConfig.Port, config.SMTPConfig.Sender, config.SMTPConfig.Password)
	notificationRelay := relay.CreateNotificationRelay(kafkaReader, paymentRepo, mailDialer, config)
	go notificationRelay.Start(context.Background())

	s, err := gocron.NewScheduler()
	if err != nil {
		panic(err)
	}

	_, err = s.NewJob(
		gocron.DurationJob(
			time.Minute,
		),
		gocron.NewTask(
			paymentSvc.ExpirePendingTransactions,
		),
	)
	if err != nil {
		panic(err)
	}

	s.Start()

	e.Logger.Fatal(e.Start(fmt.Sprintf(":%s", config.ServicePort)))
}
