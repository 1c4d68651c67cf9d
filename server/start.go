package server

import (
	"fmt"
	"math"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samuel/go-zookeeper/zk"
	"go.uber.org/zap"
	"golang.org/x/net/context"

	"github.com/deciphernow/contact-registry-server/config"
	"github.com/deciphernow/contact-registry-server/dao"
	"github.com/deciphernow/contact-registry-server/services/kafka"
	"github.com/deciphernow/contact-registry-server/services/zookeeper"
	"github.com/deciphernow/contact-registry-server/util"
)

var logger = config.RootLogger

// Start wires together dependencies and runs the server until it receives a
// termination signal or the listener fails.
func Start(conf config.AppConfiguration) error {

	app, err := NewAppServer(conf.ServerSettings)
	if err != nil {
		logger.Error("error constructing app server", zap.Error(err))
		return err
	}

	d, dbID, err := dao.NewDataAccessLayer(conf.DatabaseConnection, dao.WithLogger(logger))
	if err != nil {
		logger.Error("error configuring dao. check environment variable settings for CR_DB_*", zap.Error(err))
		return err
	}
	logger.Info("database connected", zap.String("dbid", dbID), zap.String("driver", d.Driver))
	app.RootDAO = d

	configureEventQueue(app, conf.EventQueue, conf.ZK.Timeout)

	if len(conf.ZK.Address) > 0 {
		if err := connectWithZookeeper(app, conf.ZK.BasepathRegistry, conf.ZK.Address, conf.ZK.Timeout); err != nil {
			logger.Warn("could not register with zookeeper", zap.Error(err))
		}
	}

	httpServer := &http.Server{
		Addr:              app.Addr,
		Handler:           app,
		IdleTimeout:       time.Duration(60) * time.Second,
		ReadTimeout:       time.Duration(60) * time.Second,
		ReadHeaderTimeout: time.Duration(5) * time.Second,
		WriteTimeout:      time.Duration(60) * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	exitChan := make(chan error)
	go func() {
		if conf.ServerSettings.UseTLS {
			tlsConfig := conf.ServerSettings.GetTLSConfig()
			httpServer.TLSConfig = &tlsConfig
			exitChan <- httpServer.ListenAndServeTLS(conf.ServerSettings.ServerCertChain, conf.ServerSettings.ServerKey)
		} else {
			exitChan <- httpServer.ListenAndServe()
		}
	}()
	logger.Info("starting server", zap.String("addr", app.Addr), zap.Bool("tls", conf.ServerSettings.UseTLS))

	announceSelf(app, conf)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err = <-exitChan:
		logger.Error("server listener returned", zap.Error(err))
	case sig := <-sigChan:
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		err = httpServer.Shutdown(ctx)
	}

	app.Tracker.Stop()
	if app.DefaultZK != nil {
		app.DefaultZK.Conn.Close()
	}
	return err
}

// announceSelf registers an ephemeral node for this instance so peers can
// discover us. Without a zookeeper connection nothing is announced.
func announceSelf(app *AppServer, conf config.AppConfiguration) {
	if app.DefaultZK == nil {
		return
	}
	protocol := "http"
	if conf.ServerSettings.UseTLS {
		protocol = "https"
	}
	ip := conf.ZK.IP
	if ip == "" {
		ip = util.GetIP(logger)
	}
	port := conf.ZK.Port
	if port == "" {
		port = conf.ServerSettings.ListenPort
	}
	if err := zookeeper.ServiceAnnouncement(app.DefaultZK, protocol, "ALIVE", ip, port); err != nil {
		logger.Error("could not announce self in zk", zap.Error(err))
		return
	}
	logger.Info(
		"registered contact registry with zk",
		zap.String("ip", ip),
		zap.String("port", port),
		zap.String("zkBasePath", conf.ZK.BasepathRegistry),
		zap.String("zkAddress", conf.ZK.Address),
	)
}

// configureEventQueue will set a directly-configured Kafka queue on AppServer, or discover one from ZK.
func configureEventQueue(app *AppServer, conf config.EventQueueConfiguration, zkTimeout int64) {
	logger.Info("kafka config", zap.Any("conf", conf))

	if len(conf.KafkaAddrs) == 0 && len(conf.ZKAddrs) == 0 {
		// no configuration still provides null implementation
		app.EventQueue = kafka.NewFakeAsyncProducer(logger)
		return
	}

	help := "review CR_EVENT_ZK_ADDRS or CR_EVENT_KAFKA_ADDRS"

	if len(conf.KafkaAddrs) > 0 {
		logger.Info("using direct connect for kafka queue")
		var err error
		app.EventQueue, err = kafka.NewAsyncProducer(conf.KafkaAddrs, kafka.WithLogger(logger), kafka.WithPublishActions(conf.PublishSuccessActions, conf.PublishFailureActions), kafka.WithTopic(conf.Topic))
		if err != nil {
			logger.Fatal("cannot direct connect to Kafka queue", zap.Error(err), zap.String("help", help))
		}
		return
	}

	logger.Info("attempting to discover kafka queue from zookeeper")
	conn, _, err := zk.Connect(conf.ZKAddrs, time.Duration(zkTimeout)*time.Second)
	if err != nil {
		logger.Fatal("err from zk.Connect", zap.Error(err), zap.String("help", help))
	}
	setter := func(ap *kafka.AsyncProducer) {
		// Don't just reset the conn because a zk event told you to, do an explicit check.
		if app.EventQueue.Reconnect() {
			app.EventQueue = ap
		}
	}
	// Allow time for kafka to be available in zookeeper
	waitTime := 1
	prevWaitTime := 0
	ap, err := kafka.DiscoverKafka(conn, "/brokers/ids", setter, kafka.WithLogger(logger), kafka.WithPublishActions(conf.PublishSuccessActions, conf.PublishFailureActions), kafka.WithTopic(conf.Topic))
	for ap == nil || err != nil {
		logger.Info("kafka was not discovered in zookeeper.", zap.Int("waitTime in seconds", waitTime))
		if waitTime > 600 {
			logger.Error("kafka discovery is taking too long", zap.Int("waitTime in seconds", waitTime))
			break
		}
		time.Sleep(time.Duration(waitTime) * time.Second)
		waitTime = waitTime + prevWaitTime
		prevWaitTime = waitTime
		err = nil
		ap, err = kafka.DiscoverKafka(conn, "/brokers/ids", setter, kafka.WithLogger(logger), kafka.WithPublishActions(conf.PublishSuccessActions, conf.PublishFailureActions), kafka.WithTopic(conf.Topic))
	}
	if err != nil {
		logger.Fatal("error discovering kafka from zk", zap.Error(err), zap.String("help", help))
	}
	logger.Info("kafka discovery successful")
	app.EventQueue = ap
}

func connectWithZookeeperTry(app *AppServer, zkBasePath string, zkAddress string, zkTimeout int64) error {
	// We need the path to our announcements to exist, but not the ephemeral nodes yet
	zkState, err := zookeeper.RegisterApplication(zkBasePath, zkAddress, zkTimeout)
	if err != nil {
		return err
	}
	app.DefaultZK = zkState
	return nil
}

func connectWithZookeeper(app *AppServer, zkBasePath string, zkAddress string, zkTimeout int64) error {
	const retryDelaySeconds = 5
	const maxAttempts = 12
	err := connectWithZookeeperTry(app, zkBasePath, zkAddress, zkTimeout)
	for attempt := 1; err != nil && attempt < maxAttempts; attempt++ {
		sleepInSeconds := int(math.Max(1, math.Min(60, float64(retryDelaySeconds))))
		logger.Warn("zk cant register", zap.Int("retry time in seconds", sleepInSeconds), zap.Error(err))
		time.Sleep(time.Duration(sleepInSeconds) * time.Second)
		err = connectWithZookeeperTry(app, zkBasePath, zkAddress, zkTimeout)
	}
	if err != nil {
		return fmt.Errorf("zookeeper registration failed: %v", err)
	}
	return nil
}
