// Command keyipchat is the unified CLI: serve the API, ingest documents and
// ask one-shot questions.
package main

import "github.com/turtacn/KeyIP-Chat/internal/interfaces/cli"

func main() {
	cli.Execute()
}
