package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"dogschool_backend/internals/configs"
	appcontroller "dogschool_backend/internals/features/dogschool/applications/controller"
	approute "dogschool_backend/internals/features/dogschool/applications/route"
	appsvc "dogschool_backend/internals/features/dogschool/applications/service"
	coursecontroller "dogschool_backend/internals/features/dogschool/courses/controller"
	courseroute "dogschool_backend/internals/features/dogschool/courses/route"
	coursesvc "dogschool_backend/internals/features/dogschool/courses/service"
	notifcontroller "dogschool_backend/internals/features/dogschool/notifications/controller"
	notifroute "dogschool_backend/internals/features/dogschool/notifications/route"
	notifsvc "dogschool_backend/internals/features/dogschool/notifications/service"
	paycontroller "dogschool_backend/internals/features/dogschool/payments/controller"
	payroute "dogschool_backend/internals/features/dogschool/payments/route"
	paysvc "dogschool_backend/internals/features/dogschool/payments/service"
	osshelper "dogschool_backend/internals/helpers/oss"
	middleware "dogschool_backend/internals/middlewares/auth"
)

// Services bundles the long-lived services shared between the HTTP surface
// and the scheduler.
type Services struct {
	Registry     *notifsvc.Registry
	Dispatcher   *notifsvc.Dispatcher
	Applications *appsvc.ApplicationService
	Courses      *coursesvc.CourseService
	Payments     *paysvc.PaymentService
	Roller       *coursesvc.StatusRoller
}

// BuildServices wires the service graph. The applications service and the
// payment orchestrator reference each other, so the canceler hook is set
// after both exist.
func BuildServices(db *gorm.DB, gateway paysvc.PaymentGateway, cfg configs.SchedulerConfig) *Services {
	registry := notifsvc.NewRegistry()
	dispatcher := notifsvc.NewDispatcher(db, registry)

	applications := appsvc.NewApplicationService(db, dispatcher, cfg.PaymentDeadlineHours)
	payments := paysvc.NewPaymentService(db, gateway, dispatcher, cfg.PaymentDeadlineHours)
	applications.SetPaymentCanceler(payments)

	return &Services{
		Registry:     registry,
		Dispatcher:   dispatcher,
		Applications: applications,
		Courses:      coursesvc.NewCourseService(db),
		Payments:     payments,
		Roller:       coursesvc.NewStatusRoller(db),
	}
}

// SetupRoutes mounts the public group, the /api/u user group, and the
// /api/t trainer group.
func SetupRoutes(app *fiber.App, db *gorm.DB, svcs *Services) {
	oss := osshelper.NewOSSServiceFromEnv()

	courseCtl := coursecontroller.NewCourseController(svcs.Courses, oss)
	appCtl := appcontroller.NewApplicationController(svcs.Applications)
	payCtl := paycontroller.NewPaymentController(svcs.Payments)
	notifCtl := notifcontroller.NewNotificationController(db, svcs.Registry)

	api := app.Group("/api")
	courseroute.PublicRoutes(api, courseCtl)

	authed := middleware.AuthJWT(middleware.AuthJWTOpts{
		Secret:              configs.JWTSecret,
		AllowCookieFallback: true,
	})

	user := api.Group("/u", authed)
	approute.UserRoutes(user, appCtl)
	payroute.UserRoutes(user, payCtl)
	notifroute.UserRoutes(user, notifCtl)

	trainer := api.Group("/t", authed)
	courseroute.TrainerRoutes(trainer, courseCtl)
	approute.TrainerRoutes(trainer, appCtl)
}
