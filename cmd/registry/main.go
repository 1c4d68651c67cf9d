package main

import (
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/samuel/go-zookeeper/zk"
	"github.com/urfave/cli"

	"github.com/deciphernow/contact-registry-server/config"
	"github.com/deciphernow/contact-registry-server/dao"
	"github.com/deciphernow/contact-registry-server/server"
)

// Services that require network
const (
	DatabaseService  = "db"
	KafkaService     = "kafka"
	ZookeeperService = "zk"
)

func main() {

	cliParser := cli.NewApp()
	cliParser.Name = "registry"
	cliParser.Usage = "contact-registry-server binary"
	cliParser.Version = "1.0"

	cliParser.Commands = []cli.Command{
		{
			Name:  "env",
			Usage: "Print all environment variables",
			Action: func(ctx *cli.Context) error {
				config.PrintEnvironment()
				return nil
			},
		},
		{
			Name:   "testService",
			Usage:  "Run network diagnostic test against a service dependency. Values: db, kafka, zk",
			Action: runServiceTest,
		},
	}

	var defaultCiphers cli.StringSlice
	defaultCiphers.Set("TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256")

	cliParser.Flags = []cli.Flag{
		cli.StringSliceFlag{
			Name:  "addCipher",
			Usage: "A Go ciphersuite for TLS configuration. Can be specified multiple times. See: https://golang.org/src/crypto/tls/cipher_suites.go",
			Value: &defaultCiphers,
		},
		cli.BoolTFlag{
			Name:  "useTLS",
			Usage: "Serve content over TLS. Defaults to true.",
		},
		cli.StringFlag{
			Name:  "tlsMinimumVersion",
			Usage: "Minimum TLS version the server accepts, e.g. 1.2",
		},
		cli.StringFlag{
			Name:  "conf",
			Usage: "Path to yaml configuration file.",
			Value: "registry.yml",
		},
	}

	cliParser.Action = func(c *cli.Context) error {
		opts := config.NewCommandLineOpts(c)
		conf := config.NewAppConfiguration(opts)
		if err := server.Start(conf); err != nil {
			fmt.Printf("server stopped: %v\n", err)
			os.Exit(1)
		}
		return nil
	}

	cliParser.Run(os.Args)
}

func runServiceTest(ctx *cli.Context) error {
	service := ctx.Args().First()
	conf := config.NewAppConfigurationWithDefaults(config.CommandLineOpts{})
	switch service {
	case DatabaseService:
		d, dbID, err := dao.NewDataAccessLayer(conf.DatabaseConnection)
		if err != nil {
			fmt.Println("Cannot reach the database:", err)
			os.Exit(1)
		}
		defer d.MetadataDB.Close()
		fmt.Println("Database reachable. Instance:", dbID)
	case KafkaService:
		addrs := conf.EventQueue.KafkaAddrs
		if len(addrs) == 0 {
			fmt.Println("CR_EVENT_KAFKA_ADDRS is not set.")
			os.Exit(1)
		}
		for _, addr := range addrs {
			conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
			if err != nil {
				fmt.Println("Cannot reach kafka broker:", addr, err)
				os.Exit(1)
			}
			conn.Close()
		}
		fmt.Println("All kafka brokers reachable:", strings.Join(addrs, ","))
	case ZookeeperService:
		conn, _, err := zk.Connect(strings.Split(conf.ZK.Address, ","), time.Duration(conf.ZK.Timeout)*time.Second)
		if err != nil {
			fmt.Println("Cannot reach zookeeper:", err)
			os.Exit(1)
		}
		defer conn.Close()
		if _, _, err := conn.Children("/"); err != nil {
			fmt.Println("Connected but cannot list zookeeper root:", err)
			os.Exit(1)
		}
		fmt.Println("Zookeeper reachable:", conf.ZK.Address)
	default:
		fmt.Println("Unknown service. Values: db, kafka, zk")
	}
	return nil
}
