package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"dogschool_backend/internals/configs"
	database "dogschool_backend/internals/databases"
	paysvc "dogschool_backend/internals/features/dogschool/payments/service"
	"dogschool_backend/internals/features/dogschool/scheduler"
	"dogschool_backend/internals/middlewares"
	"dogschool_backend/internals/route"
)

func main() {
	configs.LoadEnv()

	database.ConnectDB()
	database.TunePool()
	database.WarmUp()

	app := fiber.New(fiber.Config{
		AppName:      "dogschool-backend",
		JSONEncoder:  sonic.Marshal,
		JSONDecoder:  sonic.Unmarshal,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	})

	app.Use(requestid.New())
	app.Use(compress.New())
	app.Use(etag.New())
	middlewares.SetupMiddlewares(app)

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	schedCfg := configs.LoadSchedulerConfig()

	gateway := paysvc.NewMidtransGateway(
		configs.MidtransServerKey,
		configs.GetEnvBool("MIDTRANS_PRODUCTION", false),
	)

	svcs := route.BuildServices(database.DB, gateway, schedCfg)
	route.SetupRoutes(app, database.DB, svcs)

	sched := scheduler.New(svcs.Applications, svcs.Roller, schedCfg)
	sched.Start()

	go func() {
		port := configs.GetEnv("PORT", "8080")
		if err := app.Listen(":" + port); err != nil {
			log.Fatalf("[HTTP] listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[HTTP] shutting down")
	sched.Stop()
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("[HTTP] shutdown: %v", err)
	}
}
