package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rmax-ai/flowcanvas/pkg/mcp"
)

func main() {
	apiURL := flag.String("api", "http://127.0.0.1:8095", "Base URL of flowcanvas-d API")
	flag.Parse()

	// stdout carries the protocol; logs go to stderr.
	fmt.Fprintf(os.Stderr, `{"level":"info","msg":"mcp_server_starting","api":%q}`+"\n", *apiURL)

	if err := mcp.NewServer(*apiURL).Serve(); err != nil {
		fmt.Fprintf(os.Stderr, `{"level":"fatal","msg":"mcp_server_failed","error":%q}`+"\n", err.Error())
		os.Exit(1)
	}
}
