package server

// Version is the current build version, injected at build time via ldflags:
//
//	-X github.com/chainlink-tools/safe-fetch/src/server.Version=<tag>
//
// Defaults to "dev" when built without ldflags (local development).
var Version = "dev"
