package config_test

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v2"

	"github.com/deciphernow/contact-registry-server/config"
)

var testYAML = `
database:
  driver: postgres
  username: registry
  password: registry
  host: 127.0.0.1
  port: "9999"
  schema: contactregistry
  query_timeout: 10
server:
  base_path: /services/contact-registry/1.0
  port: "8443"
event_queue:
  zk_addrs:
    - zk1:2181
    - zk2:2181
  topic: contact-registry-event
zk:
  address: zk1:2181
  timeout: 5
`

func TestParseAppConfigurationFromConfigFile(t *testing.T) {
	reset1 := unsetReset(config.CR_DB_PORT)
	defer reset1()

	reset2 := unsetReset(config.CR_EVENT_ZK_ADDRS)
	defer reset2()

	var conf config.AppConfiguration
	if err := yaml.Unmarshal([]byte(testYAML), &conf); err != nil {
		t.Fatalf("Could not unmarshal yaml config file: %v", err)
	}

	if conf.DatabaseConnection.Driver != "postgres" {
		t.Errorf("expected postgres, got: %v", conf.DatabaseConnection.Driver)
	}
	if conf.DatabaseConnection.Port != "9999" {
		t.Errorf("expected 9999, got %v", conf.DatabaseConnection.Port)
	}
	if conf.DatabaseConnection.QueryTimeoutSeconds != 10 {
		t.Errorf("expected query_timeout 10, got %v", conf.DatabaseConnection.QueryTimeoutSeconds)
	}
	if len(conf.EventQueue.ZKAddrs) != 2 {
		t.Errorf("expected zk_addrs string slice of len 2, got: %v", conf.EventQueue.ZKAddrs)
	}
	if conf.EventQueue.Topic != "contact-registry-event" {
		t.Errorf("expected contact-registry-event, got: %v", conf.EventQueue.Topic)
	}
	if conf.ServerSettings.ListenPort != "8443" {
		t.Errorf("expected 8443, got: %v", conf.ServerSettings.ListenPort)
	}
}

func TestLoadYAMLConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "registry.yml")
	if err := ioutil.WriteFile(path, []byte(testYAML), 0600); err != nil {
		t.Fatal(err)
	}

	conf, err := config.LoadYAMLConfig(path)
	if err != nil {
		t.Fatalf("LoadYAMLConfig failed: %v", err)
	}
	if conf.ZK.Address != "zk1:2181" {
		t.Errorf("expected zk1:2181, got %v", conf.ZK.Address)
	}
}

func TestLoadYAMLConfigMissingFile(t *testing.T) {
	_, err := config.LoadYAMLConfig("testfixtures/does-not-exist.yml")
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func unsetReset(env string) func() {
	original := os.Getenv(env)
	os.Setenv(env, "")
	return func() {
		os.Setenv(env, original)
	}
}
