package config

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	// register the postgres driver alongside mysql
	_ "github.com/lib/pq"
	"github.com/urfave/cli"
	"go.uber.org/zap"
)

var (
	defaultDBDriver = DriverMySQL
	defaultDBHost   = "contactdb"

	defaultDBPorts = map[string]string{
		DriverMySQL:    "3306",
		DriverPostgres: "5432",
	}
)

var empty []string

// AppConfiguration is a structure that defines the known configuration format
// for this application.
type AppConfiguration struct {
	DatabaseConnection DatabaseConfiguration       `yaml:"database"`
	ServerSettings     ServerSettingsConfiguration `yaml:"server"`
	EventQueue         EventQueueConfiguration     `yaml:"event_queue"`
	ZK                 ZKSettings                  `yaml:"zk"`
}

// CommandLineOpts holds command line options parsed on application start. This
// object is passed to higher level constructors so that command line params
// can override certain configurations.
type CommandLineOpts struct {
	// Ciphers is a list of TLS ciphers we are willing to accept.
	Ciphers []string
	// UseTLS specifies whether we will only accept TLS connections.
	UseTLS bool
	// TLSMinimumVersion is the minimum TLS version we accept.
	TLSMinimumVersion string
	// Conf is a path to our YAML configuration file.
	Conf string
}

// DatabaseConfiguration is a structure that defines the attributes
// needed for setting up database connection
type DatabaseConfiguration struct {
	// Driver specifies the database driver, either "mysql" or "postgres".
	Driver string `yaml:"driver"`
	// Username is the database username.
	Username string `yaml:"username"`
	// Password is the database password.
	Password string `yaml:"password"`
	// Protocol specifies the network protocol. Only "tcp" is supported.
	Protocol string `yaml:"protocol"`
	// Host is the database hostname.
	Host string `yaml:"host"`
	// Port is the database port. Commonly 3306 for MySQL, 5432 for PostgreSQL.
	Port string `yaml:"port"`
	// Schema is the database name to connect to. The contact registry
	// default is "contactregistry".
	Schema string `yaml:"schema"`
	// Params are custom connection params injected into the DSN. These
	// will vary depending on your server's configuration.
	Params string `yaml:"conn_params"`
	// UseTLS determines whether to connect to the database with TLS.
	UseTLS bool `yaml:"use_tls"`
	// SkipVerify controls whether the hostname of an SSL peer is verified.
	SkipVerify bool `yaml:"insecure_skip_verify"`
	// CAPath is the path to a PEM encoded certificate the database presents.
	CAPath string `yaml:"trust"`
	// ClientCert is the path to our PEM encoded client certificate.
	ClientCert string `yaml:"cert"`
	// ClientKey is the path to our PEM encoded client key.
	ClientKey string `yaml:"key"`
	// DeadlockRetryCounter is the number of times to retry statements in a
	// transaction that are failing due to a deadlock
	DeadlockRetryCounter int64 `yaml:"deadlock_retrycounter"`
	// DeadlockRetryDelay is the time to wait in milliseconds before retrying
	// a statement in a transaction that is failing due to a deadlock
	DeadlockRetryDelay int64 `yaml:"deadlock_retrydelay"`
	// QueryTimeoutSeconds bounds the statements of a single data access call.
	// The budget is installed as a session-level timeout on the database and
	// checked against elapsed wall time once statements return. Zero disables.
	QueryTimeoutSeconds int64 `yaml:"query_timeout"`
}

// ServerSettingsConfiguration holds the attributes needed for
// setting up an AppServer listener.
type ServerSettingsConfiguration struct {
	// BasePath is the root URL all service operations are nested under.
	BasePath string `yaml:"base_path"`
	// ListenPort is the port the server listens on. Default is 4480.
	ListenPort string `yaml:"port"`
	// ListenBind is the address to bind to. Default is 0.0.0.0.
	ListenBind string `yaml:"bind"`
	// UseTLS controls whether the server requires TLS.
	UseTLS bool `yaml:"use_tls"`
	// CAPath is the path to a PEM encoded certificate of our CA.
	CAPath string `yaml:"trust"`
	// ServerCertChain is the path to our server's PEM encoded cert.
	ServerCertChain string `yaml:"cert"`
	// ServerKey is the path to our server's PEM encoded key.
	ServerKey string `yaml:"key"`
	// RequireClientCert specifies whether clients must present a certificate
	// signed by our CA.
	RequireClientCert bool `yaml:"require_client_cert"`
	// CipherSuites specifies the ciphers we will accept. Common values are
	// TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256 and TLS_RSA_WITH_AES_128_CBC_SHA
	CipherSuites []string `yaml:"ciphers"`
	// MinimumVersion is the minimum TLS protocol version we support.
	MinimumVersion string `yaml:"min_version"`
}

// EventQueueConfiguration configures publishing to the Kafka event queue.
type EventQueueConfiguration struct {
	// KafkaAddrs is a list of host:port pairs of Kafka brokers. If provided,
	// a direct connection to the brokers is established.
	KafkaAddrs []string `yaml:"kafka_addrs"`
	// ZKAddrs is a list of host:port pairs of ZK nodes. A common
	// architecture is to have a ZK cluster entirely dedicated to Kafka. This
	// config option handles that scenario.
	ZKAddrs []string `yaml:"zk_addrs"`
	// PublishSuccessActions, if provided, specifies the types of success actions
	// to publish to Kafka. If empty, all success actions are published.
	PublishSuccessActions []string `yaml:"publish_success_actions"`
	// PublishFailureActions, if provided, specifies the types of failure actions
	// to publish to Kafka. If empty, all failure actions are published.
	PublishFailureActions []string `yaml:"publish_failure_actions"`
	// Topic denotes the name of the topic to publish events to in Kafka.
	Topic string `yaml:"topic"`
}

// ZKSettings holds the data required to communicate with default Zookeeper.
type ZKSettings struct {
	// The IP address of our server, as reported to Zookeeper. If configured,
	// we override the value detected as the server's IP address on startup.
	IP string `yaml:"ip"`
	// The Port of our server, announced to Zookeeper.
	Port string `yaml:"port"`
	// Address is the address of the Zookeeper cluster we attempt to connect to.
	Address string `yaml:"address"`
	// BasepathRegistry is a Zookeeper path. We register ourselves as an
	// ephemeral node under this path.
	BasepathRegistry string `yaml:"register_registry_as"`
	// Timeout configures a timeout for the Zookeeper driver in seconds.
	Timeout int64 `yaml:"timeout"`
}

// NewAppConfiguration loads the configuration from the different sources in
// the environment. If multiple configuration sources can be used, the order
// of precedence is: env var overrides config file.
func NewAppConfiguration(opts CommandLineOpts) AppConfiguration {

	confFile, err := LoadYAMLConfig(opts.Conf)
	if err != nil {
		fmt.Printf("Error loading yaml configuration at path %v: %v\n", opts.Conf, err)
		os.Exit(1)
	}

	return buildAppConfiguration(confFile, opts)
}

// NewAppConfigurationWithDefaults builds a configuration from environment
// variables and internal defaults alone, without a YAML file. Suitable for
// tests and tools run against a local stack.
func NewAppConfigurationWithDefaults(opts CommandLineOpts) AppConfiguration {
	return buildAppConfiguration(AppConfiguration{}, opts)
}

func buildAppConfiguration(confFile AppConfiguration, opts CommandLineOpts) AppConfiguration {
	dbConf := NewDatabaseConfigFromEnv(confFile, opts)
	serverSettings := NewServerSettingsFromEnv(confFile, opts)
	zkSettings := NewZKSettingsFromEnv(confFile, opts)
	if zkSettings.Port == "" {
		zkSettings.Port = serverSettings.ListenPort
	}
	eventQueue := NewEventQueueConfiguration(confFile, opts)

	return AppConfiguration{
		DatabaseConnection: dbConf,
		EventQueue:         eventQueue,
		ServerSettings:     serverSettings,
		ZK:                 zkSettings,
	}
}

// NewCommandLineOpts instantiates CommandLineOpts from a pointer to the parsed
// command line context. The actual parsing is handled by the cli framework.
func NewCommandLineOpts(clictx *cli.Context) CommandLineOpts {
	ciphers := clictx.StringSlice("addCipher")
	useTLS := clictx.BoolT("useTLS")
	// NOTE: cli lib appends to []string that already contains the "default" value. Must trim
	// the default cipher if addCipher is passed at command line.
	if len(ciphers) > 1 {
		ciphers = ciphers[1:]
	}

	// Config file YAML is parsed elsewhere. This is just the path.
	confPath := clictx.String("conf")

	// TLS Minimum Version (Optional. Has a default, but can be made a lower version)
	tlsMinimumVersion := clictx.String("tlsMinimumVersion")

	return CommandLineOpts{
		Ciphers:           ciphers,
		UseTLS:            useTLS,
		Conf:              confPath,
		TLSMinimumVersion: tlsMinimumVersion,
	}
}

// NewDatabaseConfigFromEnv inspects the environment and returns a DatabaseConfiguration.
func NewDatabaseConfigFromEnv(confFile AppConfiguration, opts CommandLineOpts) DatabaseConfiguration {

	var dbConf DatabaseConfiguration

	// From environment
	dbConf.Driver = cascade(CR_DB_DRIVER, confFile.DatabaseConnection.Driver, defaultDBDriver)
	dbConf.Username = cascade(CR_DB_USERNAME, confFile.DatabaseConnection.Username, "")
	dbConf.Password = cascade(CR_DB_PASSWORD, confFile.DatabaseConnection.Password, "")
	dbConf.Host = cascade(CR_DB_HOST, confFile.DatabaseConnection.Host, "")
	dbConf.Port = cascade(CR_DB_PORT, confFile.DatabaseConnection.Port, defaultDBPorts[dbConf.Driver])
	dbConf.Schema = cascade(CR_DB_SCHEMA, confFile.DatabaseConnection.Schema, "contactregistry")
	dbConf.CAPath = cascade(CR_DB_CA, confFile.DatabaseConnection.CAPath, "")
	dbConf.ClientCert = cascade(CR_DB_CERT, confFile.DatabaseConnection.ClientCert, "")
	dbConf.ClientKey = cascade(CR_DB_KEY, confFile.DatabaseConnection.ClientKey, "")
	switch dbConf.Driver {
	case DriverPostgres:
		dbConf.Params = cascade(CR_DB_CONN_PARAMS, confFile.DatabaseConnection.Params, "sslmode=disable")
	default:
		dbConf.Params = cascade(CR_DB_CONN_PARAMS, confFile.DatabaseConnection.Params, "parseTime=true&collation=utf8_unicode_ci&readTimeout=30s")
	}

	// Defaults
	dbConf.Protocol = cascade(CR_DB_PROTOCOL, confFile.DatabaseConnection.Protocol, "tcp")
	dbConf.UseTLS = cascadeBool(CR_DB_USE_TLS, confFile.DatabaseConnection.UseTLS, false)
	dbConf.SkipVerify = cascadeBool(CR_DB_SKIP_VERIFY, confFile.DatabaseConnection.SkipVerify, false)

	// Parameters necessary to handle deadlock situations
	dbConf.DeadlockRetryCounter = cascadeInt(CR_DB_DEADLOCK_RETRYCOUNTER, confFile.DatabaseConnection.DeadlockRetryCounter, 30)
	dbConf.DeadlockRetryDelay = cascadeInt(CR_DB_DEADLOCK_RETRYDELAYMS, confFile.DatabaseConnection.DeadlockRetryDelay, 55)

	// Query budget for a single data access call
	dbConf.QueryTimeoutSeconds = cascadeInt(CR_DB_QUERY_TIMEOUT, confFile.DatabaseConnection.QueryTimeoutSeconds, 30)

	return dbConf
}

// NewEventQueueConfiguration reads the environment to provide the configuration for the Kafka event queue.
func NewEventQueueConfiguration(confFile AppConfiguration, opts CommandLineOpts) EventQueueConfiguration {
	var eqc EventQueueConfiguration
	eqc.KafkaAddrs = CascadeStringSlice(CR_EVENT_KAFKA_ADDRS, confFile.EventQueue.KafkaAddrs, empty)
	eqc.ZKAddrs = CascadeStringSlice(CR_EVENT_ZK_ADDRS, confFile.EventQueue.ZKAddrs, empty)
	eqc.PublishSuccessActions = CascadeStringSlice(CR_EVENT_PUBLISH_SUCCESS_ACTIONS, confFile.EventQueue.PublishSuccessActions, []string{"*"})
	eqc.PublishFailureActions = CascadeStringSlice(CR_EVENT_PUBLISH_FAILURE_ACTIONS, confFile.EventQueue.PublishFailureActions, []string{"*"})
	eqc.Topic = cascade(CR_EVENT_TOPIC, confFile.EventQueue.Topic, "contact-registry-event")
	return eqc
}

// NewServerSettingsFromEnv inspects the environment and returns a ServerSettingsConfiguration.
func NewServerSettingsFromEnv(confFile AppConfiguration, opts CommandLineOpts) ServerSettingsConfiguration {

	var settings ServerSettingsConfiguration

	// From env
	settings.BasePath = cascade(CR_SERVER_BASEPATH, confFile.ServerSettings.BasePath, "/services/contact-registry/1.0")
	settings.ListenPort = cascade(CR_SERVER_PORT, confFile.ServerSettings.ListenPort, "4480")
	settings.ListenBind = cascade(CR_SERVER_BIND, confFile.ServerSettings.ListenBind, "0.0.0.0")
	settings.CAPath = cascade(CR_SERVER_CA, confFile.ServerSettings.CAPath, "")
	settings.ServerCertChain = cascade(CR_SERVER_CERT, confFile.ServerSettings.ServerCertChain, "")
	settings.ServerKey = cascade(CR_SERVER_KEY, confFile.ServerSettings.ServerKey, "")

	// Use environment, configuration file, or cli options (includes a default)
	// for the cipher suites (whichever has values first is used)
	settings.CipherSuites = selectNonEmptyStringSlice(CascadeStringSlice(CR_SERVER_CIPHERS, confFile.ServerSettings.CipherSuites, opts.Ciphers))

	// Defaults
	settings.UseTLS = opts.UseTLS
	settings.RequireClientCert = cascadeBool(CR_SERVER_REQUIRE_CLIENT_CERT, confFile.ServerSettings.RequireClientCert, false)
	settings.MinimumVersion = cascade(CR_SERVER_MINVERSION, confFile.ServerSettings.MinimumVersion, opts.TLSMinimumVersion)

	return settings
}

// NewZKSettingsFromEnv inspects the environment and returns ZKSettings.
func NewZKSettingsFromEnv(confFile AppConfiguration, opts CommandLineOpts) ZKSettings {

	var conf ZKSettings
	conf.Address = cascade(CR_ZK_URL, confFile.ZK.Address, "zk:2181")
	conf.BasepathRegistry = cascade(CR_ZK_ANNOUNCE, confFile.ZK.BasepathRegistry, "/cte/service/contact-registry/1.0")
	conf.IP = cascade(CR_ZK_MYIP, confFile.ZK.IP, "")
	conf.Port = cascade(CR_ZK_MYPORT, confFile.ZK.Port, "")
	conf.Timeout = cascadeInt(CR_ZK_TIMEOUT, confFile.ZK.Timeout, 5)

	return conf
}

// GetDatabaseHandle initializes a database connection using the configuration.
func (r *DatabaseConfiguration) GetDatabaseHandle() (*sqlx.DB, error) {
	switch r.Driver {
	case DriverMySQL, DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", r.Driver)
	}
	// Establish configuration settings for the database connection using
	// the TLS settings in the config file
	if r.UseTLS && r.Driver == DriverMySQL {
		dbTLS := r.buildTLSConfig()
		mysql.RegisterTLSConfig("custom", &dbTLS)
	}
	// Setup handle to the database
	db, err := sqlx.Open(r.Driver, r.buildDSN())
	if err != nil {
		return nil, err
	}
	db.SetMaxIdleConns(int(getEnvOrDefaultInt(CR_DB_MAXIDLECONNS, 10)))
	db.SetMaxOpenConns(int(getEnvOrDefaultInt(CR_DB_MAXOPENCONNS, 10)))
	return db, nil
}

// buildDSN prepares a Data Source Name for the driver in use. MySQL follows
// the format documented at https://github.com/go-sql-driver/mysql, PostgreSQL
// uses the keyword/value form accepted by lib/pq.
func (r *DatabaseConfiguration) buildDSN() string {
	var dbDSN string
	switch r.Driver {
	case DriverPostgres:
		dbDSN = r.buildPostgresDSN()
	default:
		dbDSN = r.buildMySQLDSN()
	}
	logDSN := dbDSN
	if len(r.Password) > 0 {
		logDSN = strings.Replace(logDSN, r.Password, "{password}", -1)
	}
	if len(r.Username) > 0 {
		logDSN = strings.Replace(logDSN, r.Username, "{username}", -1)
	}
	logger.Info("using this connection string", zap.String("dbdsn", logDSN))
	return dbDSN
}

func (r *DatabaseConfiguration) buildMySQLDSN() string {
	var dbDSN = ""
	if len(r.Username) > 0 {
		dbDSN += r.Username
		if len(r.Password) > 0 {
			dbDSN += ":" + r.Password
		}
	}
	if len(dbDSN) > 0 {
		dbDSN += "@"
	}
	if len(r.Protocol) > 0 {
		dbDSN += r.Protocol + "("
		if len(r.Host) > 0 {
			dbDSN += r.Host
		} else {
			// default to the common container hostname
			dbDSN += defaultDBHost
		}
		dbDSN += ":"
		if len(r.Port) > 0 {
			dbDSN += r.Port
		} else {
			dbDSN += defaultDBPorts[DriverMySQL]
		}
		dbDSN += ")"
	}
	dbDSN += "/"
	if len(r.Schema) > 0 {
		dbDSN += r.Schema
	}
	if (len(r.Params) > 0) || (r.UseTLS) {
		dbDSN += "?"
		if r.UseTLS {
			dbDSN += "tls=custom"
			if len(r.Params) > 0 {
				dbDSN += "&"
			}
		}
		if len(r.Params) > 0 {
			dbDSN += r.Params
		}
	}
	return dbDSN
}

func (r *DatabaseConfiguration) buildPostgresDSN() string {
	kv := make([]string, 0, 8)
	add := func(key, value string) {
		if len(value) > 0 {
			kv = append(kv, key+"="+value)
		}
	}
	host := r.Host
	if len(host) == 0 {
		host = defaultDBHost
	}
	port := r.Port
	if len(port) == 0 {
		port = defaultDBPorts[DriverPostgres]
	}
	add("host", host)
	add("port", port)
	add("user", r.Username)
	add("password", r.Password)
	add("dbname", r.Schema)
	if r.UseTLS {
		if r.SkipVerify {
			add("sslmode", "require")
		} else {
			add("sslmode", "verify-full")
		}
		add("sslrootcert", r.CAPath)
		add("sslcert", r.ClientCert)
		add("sslkey", r.ClientKey)
	}
	dsn := strings.Join(kv, " ")
	// Params carry additional keyword=value pairs, e.g. connect_timeout=10.
	// An sslmode here is only honored when TLS was not requested above.
	if len(r.Params) > 0 {
		for _, param := range strings.Split(r.Params, "&") {
			if r.UseTLS && strings.HasPrefix(param, "sslmode=") {
				continue
			}
			dsn += " " + strings.Replace(param, "&", " ", -1)
		}
	}
	return dsn
}

// NewTLSClientConfig gets a config to make TLS connections
func NewTLSClientConfig(trustPath, certPath, keyPath, serverName string, insecure bool) (*tls.Config, error) {
	trustBytes, err := ioutil.ReadFile(trustPath)
	if err != nil {
		return nil, fmt.Errorf("error parsing CA trust %s: %v", trustPath, err)
	}
	trustCertPool := x509.NewCertPool()
	if !trustCertPool.AppendCertsFromPEM(trustBytes) {
		return nil, fmt.Errorf("error adding CA trust to pool: %v", err)
	}
	cfg := tls.Config{
		RootCAs:            trustCertPool,
		InsecureSkipVerify: insecure,
		ServerName:         serverName,
	}
	if len(certPath) > 0 || len(keyPath) > 0 {
		cert, err := tls.LoadX509KeyPair(certPath, keyPath)
		if err != nil {
			return nil, fmt.Errorf("error parsing cert: %v", err)
		}
		cfg.Certificates = []tls.Certificate{cert}
	}
	return &cfg, nil
}

// NewTLSClientConn gets a TLS connection for a client, not sharing the config
func NewTLSClientConn(trustPath, certPath, keyPath, serverName, host, port string, insecure bool) (io.ReadWriteCloser, error) {
	conf, err := NewTLSClientConfig(trustPath, certPath, keyPath, serverName, insecure)
	if err != nil {
		return nil, err
	}
	return tls.Dial("tcp", fmt.Sprintf("%s:%s", host, port), conf)
}

// GetTLSConfig returns the built TLS configuration object based upon server
// settings configuration
func (r *ServerSettingsConfiguration) GetTLSConfig() tls.Config {
	return r.buildTLSConfig()
}

// buildTLSConfig prepares a standard go tls.Config with RootCAs and client
// Certificates for communicating with the database securely.
func (conf *DatabaseConfiguration) buildTLSConfig() tls.Config {

	// The set of root certificate authorities that this client will use when
	// verifying the server certificate indicated as the identity of the
	// server this config will be used to connect to.
	rootCAsCertPool := buildCertPoolFromPath(conf.CAPath, "for client")

	// Client public and private certificate
	if len(conf.ClientCert) == 0 || len(conf.ClientKey) == 0 {
		return tls.Config{
			RootCAs:            rootCAsCertPool,
			ServerName:         conf.Host,
			InsecureSkipVerify: conf.SkipVerify,
		}
	}
	clientCert := buildx509Identity(conf.ClientCert, conf.ClientKey)

	return tls.Config{
		RootCAs:            rootCAsCertPool,
		Certificates:       clientCert,
		ServerName:         conf.Host,
		InsecureSkipVerify: conf.SkipVerify,
	}
}

// buildTLSConfig prepares a standard go tls.Config with trusted CAs and
// server identity certificates to listen for connecting clients
func (r *ServerSettingsConfiguration) buildTLSConfig() tls.Config {
	return buildServerTLSConfig(r.CAPath, r.ServerCertChain, r.ServerKey, r.RequireClientCert, r.CipherSuites, r.MinimumVersion)
}

func cascade(fromEnv, fromFile, defaultVal string) string {
	if envVal := os.Getenv(fromEnv); envVal != "" {
		return envVal
	}
	if fromFile != "" {
		return fromFile
	}
	return defaultVal
}

func cascadeInt(fromEnv string, fromFile, defaultVal int64) int64 {
	if envVal := os.Getenv(fromEnv); envVal != "" {
		if parsed, err := strconv.ParseInt(envVal, 10, 64); err == nil {
			return parsed
		}
	}
	if fromFile != 0 {
		return fromFile
	}
	return defaultVal
}

func cascadeBool(fromEnv string, fromFile, defaultVal bool) bool {
	if envVal := os.Getenv(fromEnv); envVal != "" {
		if parsed, err := strconv.ParseBool(envVal); err == nil {
			return parsed
		}
	}
	return fromFile || defaultVal
}

// CascadeStringSlice will select the first non-empty string slice. Defined for
// environment variables that hold comma-separated values.
func CascadeStringSlice(fromEnv string, fromFile, defaultVal []string) []string {
	if envVal := os.Getenv(fromEnv); envVal != "" {
		return splitStringSlice(envVal)
	}
	if len(fromFile) > 0 {
		return fromFile
	}
	return defaultVal
}

func splitStringSlice(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(s); len(trimmed) > 0 {
			out = append(out, trimmed)
		}
	}
	return out
}

func selectNonEmptyStringSlice(slices ...[]string) []string {
	for _, s := range slices {
		if len(s) > 0 {
			return s
		}
	}
	return nil
}

func getEnvOrDefaultInt(envVar string, defaultVal int64) int64 {
	envVal := os.Getenv(envVar)
	if len(envVal) == 0 {
		return defaultVal
	}
	parsed, err := strconv.ParseInt(envVal, 10, 64)
	if err != nil {
		return defaultVal
	}
	return parsed
}
