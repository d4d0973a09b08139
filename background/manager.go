package background

import (
	"errors"
	"time"

	"github.com/RichardKnop/machinery/v1"
	"github.com/RichardKnop/machinery/v1/tasks"
	"github.com/getsentry/sentry-go"
	"github.com/jinzhu/gorm"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/quarantaenehelden/notification-api/external/geoinfo"
	"github.com/quarantaenehelden/notification-api/external/sendgrid"
	"github.com/quarantaenehelden/notification-api/match"
	"github.com/quarantaenehelden/notification-api/store"
)

const logPrefix = "background"

// Task names shared between the api (enqueue side) and the worker.
const (
	TaskSweepNotifications = "sweep_notifications"
	TaskNotifyOfferReply   = "notify_offer_reply"
	TaskBroadcastNewHelp   = "broadcast_new_help"
)

// BackgroundManager owns the worker side of the notification subsystem.
type BackgroundManager struct {
	store store.HeldenCore

	mailer     sendgrid.Mailer
	strategy   match.Strategy
	dispatcher *Dispatcher
	conf       Config

	taskServer *machinery.Server
	worker     *machinery.Worker
}

func New(ormDB *gorm.DB, mongoClient *mongo.Client, mongoDatabase string, taskServer *machinery.Server, mailer sendgrid.Mailer, geoClient geoinfo.GeoInfo, conf Config) *BackgroundManager {
	heldenStore := store.NewHeldenStore(ormDB, store.NewMongoStore(mongoClient, mongoDatabase))

	var strategy match.Strategy
	switch conf.Strategy {
	case StrategyGeoRadius:
		strategy = match.NewGeoRadiusStrategy(heldenStore, geoClient, conf.GeoRadiusMeters)
	default:
		strategy = match.NewPostalCodeRangeStrategy(heldenStore)
	}

	return &BackgroundManager{
		store:      heldenStore,
		mailer:     mailer,
		strategy:   strategy,
		dispatcher: NewDispatcher(mailer, heldenStore, heldenStore, conf),
		conf:       conf,
		taskServer: taskServer,
	}
}

// RegisterTasks wires every task the worker executes.
func (m *BackgroundManager) RegisterTasks() error {
	return m.taskServer.RegisterTasks(map[string]interface{}{
		TaskSweepNotifications: m.SweepNotifications,
		TaskNotifyOfferReply:   m.NotifyOfferReply,
		TaskBroadcastNewHelp:   m.BroadcastNewRequest,
	})
}

// enqueueSweep puts one sweep tick on the task queue.
func (m *BackgroundManager) enqueueSweep() error {
	_, err := m.taskServer.SendTask(&tasks.Signature{
		Name: TaskSweepNotifications,
	})
	return err
}

// scheduleSweeps enqueues a sweep task on the fixed cadence. The tick only
// publishes; execution happens in the worker pool, so a slow sweep delays
// its successor in the queue instead of stacking goroutines here.
func (m *BackgroundManager) scheduleSweeps() {
	ticker := time.NewTicker(m.conf.SweepInterval)
	defer ticker.Stop()

	for range ticker.C {
		if err := m.enqueueSweep(); err != nil {
			log.WithField("prefix", logPrefix).Errorf("enqueue sweep task with error: %s", err)
			sentry.CaptureException(err)
		}
	}
}

// Run spawns workers to execute background jobs and starts the sweep cadence
func (m *BackgroundManager) Run() error {
	if m.worker != nil {
		return errors.New("background worker has started")
	}

	go m.scheduleSweeps()

	m.worker = m.taskServer.NewWorker("helden-worker", 5)
	return m.worker.Launch()
}
