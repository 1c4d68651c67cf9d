package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/urfave/cli"

	"github.com/deciphernow/contact-registry-server/client"
	"github.com/deciphernow/contact-registry-server/events"
)

func main() {

	app := cli.NewApp()
	app.Name = "registry-events"
	app.Usage = "tail the contact registry event stream from kafka"

	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "zk",
			Usage: "zookeeper connection string locating the kafka brokers",
			Value: "localhost:2181",
		},
		cli.StringFlag{
			Name:  "group",
			Usage: "consumer group name",
			Value: "registry-events-tail",
		},
		cli.Int64Flag{
			Name:  "timeout",
			Usage: "seconds to consume for before exiting. Zero tails forever.",
		},
		cli.BoolFlag{
			Name:  "debug",
			Usage: "log consumer group internals",
		},
	}

	app.Action = run

	app.Run(os.Args)
}

func run(clictx *cli.Context) error {

	responder, err := client.NewRegistryResponder(
		client.Config{},
		clictx.String("group"),
		clictx.String("zk"),
		printEvent,
	)
	if err != nil {
		log.Fatalf("could not join consumer group: %v", err)
	}
	defer responder.Consumer.Close()
	responder.DebugMode = clictx.Bool("debug")

	timeout := time.Duration(clictx.Int64("timeout")) * time.Second
	if timeout == 0 {
		// effectively forever
		timeout = 100 * 365 * 24 * time.Hour
	}
	responder.Timeout = timeout

	fmt.Println("consuming contact-registry-event via", clictx.String("zk"))
	return responder.ConsumeKafka()
}

// printEvent renders each consumed event as a single json line.
func printEvent(c *client.RegistryResponder, gem *events.GEM) error {
	data, err := json.Marshal(gem)
	if err != nil {
		c.Note("could not remarshal event: %v", err)
		return err
	}
	fmt.Println(string(data))
	return nil
}
