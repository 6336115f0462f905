// politecaptcha: polite spam prevention for web forms.
// Serves the demo feedback site and inspects keys, honeypot challenges
// and the decision log.
package main

import "github.com/ppiankov/politecaptcha/internal/cli"

func main() {
	cli.Execute()
}
