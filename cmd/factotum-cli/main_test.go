package main

import (
	"testing"

	"factotum-cli/internal/config"
)

func TestParseArgs(t *testing.T) {
	cli, err := parseArgs([]string{"-config", "custom.toml", "-gateway", "https://gw.example.com", "-agent", "codex"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cli.cfgPath != "custom.toml" {
		t.Errorf("cfgPath = %q", cli.cfgPath)
	}
	if cli.gateway != "https://gw.example.com" {
		t.Errorf("gateway = %q", cli.gateway)
	}
	if cli.agent != "codex" {
		t.Errorf("agent = %q", cli.agent)
	}
}

func TestParseArgsRejectsPositional(t *testing.T) {
	if _, err := parseArgs([]string{"extra"}); err == nil {
		t.Fatal("expected error for positional argument")
	}
}

func TestApplyOverrides(t *testing.T) {
	cfg := config.Default()
	cfg.GatewayURL = "https://from-config.example.com"

	got := applyOverrides(cfg, cliArgs{gateway: " https://cli.example.com ", agent: "gemini"})
	if got.GatewayURL != "https://cli.example.com" {
		t.Errorf("GatewayURL = %q", got.GatewayURL)
	}
	if got.Agent != "gemini" {
		t.Errorf("Agent = %q", got.Agent)
	}

	unchanged := applyOverrides(cfg, cliArgs{})
	if unchanged.GatewayURL != cfg.GatewayURL || unchanged.Agent != cfg.Agent {
		t.Error("empty overrides should not change config")
	}
}
