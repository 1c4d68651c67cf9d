package main

import (
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/urfave/cli"

	"github.com/deciphernow/contact-registry-server/benchmark"
	"github.com/deciphernow/contact-registry-server/client"
)

func main() {

	app := cli.NewApp()
	app.Name = "registry-benchmark"
	app.Usage = "run timed query scenarios against a contact registry and export the results"

	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "url",
			Usage: "server base url including the service prefix",
			Value: "https://localhost:4430/services/contact-registry/1.0",
		},
		cli.IntFlag{
			Name:  "pageSize",
			Usage: "page size requested by the list scenarios",
			Value: benchmark.DefaultPageSize,
		},
		cli.IntFlag{
			Name:  "paginationPageSize",
			Usage: "page size for the pagination walk",
			Value: 100,
		},
		cli.StringFlag{
			Name:  "output",
			Usage: "directory receiving the exported json and csv reports",
			Value: benchmark.DefaultOutputDir,
		},
		cli.BoolFlag{
			Name:  "no-export",
			Usage: "print results without writing report files",
		},
		cli.BoolFlag{
			Name:  "skip-pagination",
			Usage: "run only the query scenarios",
		},
		cli.Int64Flag{
			Name:  "seed",
			Usage: "random seed for the pagination walk page selection",
			Value: time.Now().UnixNano(),
		},
		cli.StringFlag{
			Name:  "cert",
			Usage: "path to PEM encoded client certificate",
		},
		cli.StringFlag{
			Name:  "key",
			Usage: "path to PEM encoded client key",
		},
		cli.StringFlag{
			Name:  "trust",
			Usage: "path to PEM encoded certificate the server presents",
		},
		cli.BoolFlag{
			Name:  "insecure",
			Usage: "skip verification of the server certificate",
		},
		cli.Int64Flag{
			Name:  "timeout",
			Usage: "client timeout in seconds. Zero waits on the server indefinitely.",
		},
	}

	app.Action = run

	app.Run(os.Args)
}

func run(clictx *cli.Context) error {

	conf := client.Config{
		Remote:     clictx.String("url"),
		Cert:       clictx.String("cert"),
		Key:        clictx.String("key"),
		Trust:      clictx.String("trust"),
		SkipVerify: clictx.Bool("insecure"),
		Timeout:    clictx.Int64("timeout"),
	}

	runner, err := benchmark.NewRunner(conf, clictx.Int("pageSize"))
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("checking server at", conf.Remote)
	if err := runner.Ping(); err != nil {
		log.Fatalf("server is not reachable: %v", err)
	}

	results := runner.RunScenarios()
	benchmark.PrintSummary(os.Stdout, results)

	export := !clictx.Bool("no-export")
	outputDir := clictx.String("output")
	if export {
		jsonPath, csvPath, err := benchmark.ExportResults(outputDir, results)
		if err != nil {
			log.Fatalf("could not export results: %v", err)
		}
		fmt.Println("results written to", jsonPath, "and", csvPath)
	}

	if clictx.Bool("skip-pagination") {
		return nil
	}

	rng := rand.New(rand.NewSource(clictx.Int64("seed")))
	report := runner.RunPagination(clictx.Int("paginationPageSize"), rng)
	if export {
		jsonPath, csvPath, err := benchmark.ExportPagination(outputDir, report)
		if err != nil {
			log.Fatalf("could not export pagination report: %v", err)
		}
		fmt.Println("pagination report written to", jsonPath, "and", csvPath)
	}

	return nil
}
