package cmd

// Version is the application version, intended to be overridden at
// build time:
//
//	go build -ldflags "-X github.com/genesisos/genesis/cmd.Version=1.0.0"
var Version = "0.1.0"
