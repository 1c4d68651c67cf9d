package config

import (
	"fmt"
	"os"
)

// Environment variables
const (
	CR_DB_CA                         = "CR_DB_CA"
	CR_DB_CERT                       = "CR_DB_CERT"
	CR_DB_CONN_PARAMS                = "CR_DB_CONN_PARAMS"
	CR_DB_DEADLOCK_RETRYCOUNTER      = "CR_DB_DEADLOCK_RETRYCOUNTER"
	CR_DB_DEADLOCK_RETRYDELAYMS      = "CR_DB_DEADLOCK_RETRYDELAYMS"
	CR_DB_DRIVER                     = "CR_DB_DRIVER"
	CR_DB_HOST                       = "CR_DB_HOST"
	CR_DB_KEY                        = "CR_DB_KEY"
	CR_DB_MAXIDLECONNS               = "CR_DB_MAXIDLECONNS"
	CR_DB_MAXOPENCONNS               = "CR_DB_MAXOPENCONNS"
	CR_DB_PASSWORD                   = "CR_DB_PASSWORD"
	CR_DB_PORT                       = "CR_DB_PORT"
	CR_DB_PROTOCOL                   = "CR_DB_PROTOCOL"
	CR_DB_QUERY_TIMEOUT              = "CR_DB_QUERY_TIMEOUT"
	CR_DB_SCHEMA                     = "CR_DB_SCHEMA"
	CR_DB_SKIP_VERIFY                = "CR_DB_SKIP_VERIFY"
	CR_DB_USE_TLS                    = "CR_DB_USE_TLS"
	CR_DB_USERNAME                   = "CR_DB_USERNAME"
	CR_EVENT_KAFKA_ADDRS             = "CR_EVENT_KAFKA_ADDRS"
	CR_EVENT_PUBLISH_FAILURE_ACTIONS = "CR_EVENT_PUBLISH_FAILURE_ACTIONS"
	CR_EVENT_PUBLISH_SUCCESS_ACTIONS = "CR_EVENT_PUBLISH_SUCCESS_ACTIONS"
	CR_EVENT_TOPIC                   = "CR_EVENT_TOPIC"
	CR_EVENT_ZK_ADDRS                = "CR_EVENT_ZK_ADDRS"
	CR_LOG_LEVEL                     = "CR_LOG_LEVEL"
	CR_SERVER_BASEPATH               = "CR_SERVER_BASEPATH"
	CR_SERVER_BIND                   = "CR_SERVER_BIND"
	CR_SERVER_CA                     = "CR_SERVER_CA"
	CR_SERVER_CERT                   = "CR_SERVER_CERT"
	CR_SERVER_CIPHERS                = "CR_SERVER_CIPHERS"
	CR_SERVER_KEY                    = "CR_SERVER_KEY"
	CR_SERVER_MINVERSION             = "CR_SERVER_MINVERSION"
	CR_SERVER_PORT                   = "CR_SERVER_PORT"
	CR_SERVER_REQUIRE_CLIENT_CERT    = "CR_SERVER_REQUIRE_CLIENT_CERT"
	CR_ZK_ANNOUNCE                   = "CR_ZK_ANNOUNCE"
	CR_ZK_MYIP                       = "CR_ZK_MYIP"
	CR_ZK_MYPORT                     = "CR_ZK_MYPORT"
	CR_ZK_TIMEOUT                    = "CR_ZK_TIMEOUT"
	CR_ZK_URL                        = "CR_ZK_URL"
)

// Vars lists all environment variables the application responds to.
var Vars = []string{
	CR_DB_CA,
	CR_DB_CERT,
	CR_DB_CONN_PARAMS,
	CR_DB_DEADLOCK_RETRYCOUNTER,
	CR_DB_DEADLOCK_RETRYDELAYMS,
	CR_DB_DRIVER,
	CR_DB_HOST,
	CR_DB_KEY,
	CR_DB_MAXIDLECONNS,
	CR_DB_MAXOPENCONNS,
	CR_DB_PASSWORD,
	CR_DB_PORT,
	CR_DB_PROTOCOL,
	CR_DB_QUERY_TIMEOUT,
	CR_DB_SCHEMA,
	CR_DB_SKIP_VERIFY,
	CR_DB_USE_TLS,
	CR_DB_USERNAME,
	CR_EVENT_KAFKA_ADDRS,
	CR_EVENT_PUBLISH_FAILURE_ACTIONS,
	CR_EVENT_PUBLISH_SUCCESS_ACTIONS,
	CR_EVENT_TOPIC,
	CR_EVENT_ZK_ADDRS,
	CR_LOG_LEVEL,
	CR_SERVER_BASEPATH,
	CR_SERVER_BIND,
	CR_SERVER_CA,
	CR_SERVER_CERT,
	CR_SERVER_CIPHERS,
	CR_SERVER_KEY,
	CR_SERVER_MINVERSION,
	CR_SERVER_PORT,
	CR_SERVER_REQUIRE_CLIENT_CERT,
	CR_ZK_ANNOUNCE,
	CR_ZK_MYIP,
	CR_ZK_MYPORT,
	CR_ZK_TIMEOUT,
	CR_ZK_URL,
}

// PrintEnvironment writes every CR_* variable and its current value to
// stdout. Secrets are redacted.
func PrintEnvironment() {
	filtered := []string{
		CR_DB_PASSWORD,
	}
	redact := func(envVar, value string) string {
		for _, restricted := range filtered {
			if envVar == restricted && len(value) > 0 {
				return "<redacted>"
			}
		}
		return value
	}
	fmt.Println("contact-registry environment variables. Number of vars:", len(Vars))
	for _, variable := range Vars {
		fmt.Printf("%s=%s\n", variable, redact(variable, os.Getenv(variable)))
	}
}
