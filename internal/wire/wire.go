package wire

import (
	"Lattice/internal/api"
	"Lattice/internal/api/config"
	"Lattice/internal/api/handler"
	"Lattice/internal/job"
	"Lattice/internal/pkg/cron"
	"Lattice/internal/pkg/kafka"
	"Lattice/internal/repository"
	"Lattice/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ApplicationContainer 封装了应用运行所需的所有顶级组件
type ApplicationContainer struct {
	Router       *gin.Engine
	DB           *gorm.DB
	KafkaManager *kafka.ConsumerManager
	CronMgr      *cron.Manager
	Producer     *kafka.EventProducer
}

func BuildApplication(db *gorm.DB, cfg *config.Config) (*ApplicationContainer, error) {
	userRepo := repository.NewUserRepo(db)
	userFollowRepo := repository.NewUserFollowRepo(db)
	postRepo := repository.NewPostRepository(db)
	actionRepo := repository.NewPostActionRepo(db)
	notificationRepo := repository.NewNotificationRepo(db)

	producer, err := kafka.NewEventProducer(cfg)
	if err != nil {
		return nil, err
	}

	tokenService := service.NewTokenService()
	userService := service.NewUserService(userRepo, tokenService)
	userFollowService := service.NewUserFollowService(userFollowRepo, producer)
	postService := service.NewPostService(postRepo, userRepo)
	actionService := service.NewPostActionService(actionRepo, postRepo, producer)
	feedService := service.NewFeedService(postRepo, userFollowRepo, actionService)
	notificationService := service.NewNotificationService(notificationRepo, userRepo, postRepo)

	handlers := &api.HandlersGroup{
		UserHandler:         handler.NewUserHandler(userService),
		UserFollowHandler:   handler.NewUserFollowHandler(userFollowService),
		PostHandler:         handler.NewPostHandler(postService),
		PostActionHandler:   handler.NewPostActionHandler(actionService),
		FeedHandler:         handler.NewFeedHandler(feedService),
		NotificationHandler: handler.NewNotificationHandler(notificationService),
	}

	router := api.SetupRouter(handlers)

	kafkaMgr, err := kafka.NewConsumerManager(cfg, notificationService)
	if err != nil {
		return nil, err
	}

	reconcileJob := job.NewCounterReconcileJob(userFollowRepo, actionRepo)
	cronMgr := cron.NewCronManager(reconcileJob)

	return &ApplicationContainer{
		Router:       router,
		DB:           db,
		KafkaManager: kafkaMgr,
		CronMgr:      cronMgr,
		Producer:     producer,
	}, nil
}
